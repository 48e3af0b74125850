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

package biometry

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func consolePrompt(t *testing.T, input string) (Outcome, string) {
	t.Helper()
	var out bytes.Buffer
	p := NewConsolePrompterWithIO(BiometryFingerprint, strings.NewReader(input), &out)
	outcome := p.Prompt(context.Background(), AuthenticationEvent{
		Reason: "unlock credential",
		Title:  "Confirm identity",
	})
	return outcome, out.String()
}

func TestConsolePrompter_Approve(t *testing.T) {
	outcome, rendered := consolePrompt(t, "y\n")
	assert.Equal(t, OutcomeApproved, outcome.Status)
	assert.Contains(t, rendered, "Confirm identity")
	assert.Contains(t, rendered, "unlock credential")
}

func TestConsolePrompter_Reject(t *testing.T) {
	outcome, _ := consolePrompt(t, "no\n")
	assert.Equal(t, OutcomeRejected, outcome.Status)
}

func TestConsolePrompter_UnrecognizedAnswer(t *testing.T) {
	outcome, _ := consolePrompt(t, "maybe\n")
	require.Equal(t, OutcomeErrored, outcome.Status)
	assert.Equal(t, KindAuthenticationFailed, outcome.Err.Kind)
}

func TestConsolePrompter_ClosedInput(t *testing.T) {
	outcome, _ := consolePrompt(t, "")
	require.Equal(t, OutcomeErrored, outcome.Status)
	assert.Equal(t, KindAppCancel, outcome.Err.Kind)
}

func TestConsolePrompter_Availability(t *testing.T) {
	p := NewConsolePrompter(BiometryFace)
	avail := p.Availability()
	assert.True(t, avail.Available)
	assert.Equal(t, BiometryFace, avail.BiometryType)
}

func TestConsolePrompter_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	p := NewConsolePrompterWithIO(BiometryFingerprint, blockingReader{}, &out)
	outcome := p.Prompt(ctx, AuthenticationEvent{Reason: "unlock credential"})
	require.Equal(t, OutcomeErrored, outcome.Status)
	assert.Equal(t, KindUserCancel, outcome.Err.Kind)
}

// blockingReader never returns, simulating an operator who walks away.
type blockingReader struct{}

func (blockingReader) Read(p []byte) (int, error) {
	select {}
}
