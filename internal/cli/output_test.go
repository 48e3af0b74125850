// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-biovault.
//
// go-biovault is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/jeremyhahn/go-biovault/pkg/biometry"
)

func TestPrinter_PrintStatus_Text(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter("text", &buf)

	err := p.PrintStatus(biometry.Status{
		IsAvailable:  true,
		BiometryType: biometry.BiometryFingerprint,
	})
	if err != nil {
		t.Fatalf("PrintStatus() returned error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "true") || !strings.Contains(out, "fingerprint") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestPrinter_PrintStatus_Unavailable(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter("text", &buf)

	err := p.PrintStatus(biometry.Status{
		IsAvailable: false,
		Error:       "no biometrics enrolled",
		ErrorCode:   biometry.KindBiometryNotEnrolled,
	})
	if err != nil {
		t.Fatalf("PrintStatus() returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "no biometrics enrolled") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestPrinter_PrintData_TextIsRaw(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter("text", &buf)

	secret := []byte("hunter2\n")
	if err := p.PrintData("app", "password", secret); err != nil {
		t.Fatalf("PrintData() returned error: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), secret) {
		t.Errorf("text output should be the raw bytes, got %q", buf.String())
	}
}

func TestPrinter_PrintData_JSONIsBase64(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter("json", &buf)

	if err := p.PrintData("app", "password", []byte("hunter2")); err != nil {
		t.Fatalf("PrintData() returned error: %v", err)
	}
	var out map[string]string
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if out["data"] != "aHVudGVyMg==" {
		t.Errorf("data = %q, want base64 of hunter2", out["data"])
	}
	if out["domain"] != "app" || out["name"] != "password" {
		t.Errorf("unexpected slot fields: %+v", out)
	}
}

func TestPrinter_PrintExists(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter("text", &buf)

	if err := p.PrintExists("app", "token", false); err != nil {
		t.Fatalf("PrintExists() returned error: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "false" {
		t.Errorf("output = %q, want false", buf.String())
	}
}

func TestPrinter_PrintSecretList_Table(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter("table", &buf)

	if err := p.PrintSecretList("app", []string{"token", "password"}); err != nil {
		t.Fatalf("PrintSecretList() returned error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "DOMAIN") || !strings.Contains(out, "token") {
		t.Errorf("unexpected table output: %q", out)
	}
}

func TestPrinter_PrintSecretList_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter("text", &buf)

	if err := p.PrintSecretList("app", nil); err != nil {
		t.Fatalf("PrintSecretList() returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "No secrets found") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestPrinter_PrintError_ClassifiedKind(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter("json", &buf)

	err := p.PrintError(biometry.NewError(biometry.KindUserCancel, "user cancelled the prompt"))
	if err != nil {
		t.Fatalf("PrintError() returned error: %v", err)
	}
	var out map[string]string
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if out["kind"] != "userCancel" {
		t.Errorf("kind = %q, want userCancel", out["kind"])
	}
}

func TestPrinter_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter("yaml", &buf)

	if err := p.PrintStatus(biometry.Status{}); err == nil {
		t.Error("PrintStatus() should reject an unknown format")
	}
}
