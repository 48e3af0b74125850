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
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jeremyhahn/go-biovault/pkg/biometry"
)

// OutputFormat defines the output format type
type OutputFormat string

const (
	OutputFormatText  OutputFormat = "text"
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatTable OutputFormat = "table"
)

// Printer handles formatted output
type Printer struct {
	format OutputFormat
	writer io.Writer
}

// NewPrinter creates a new Printer
func NewPrinter(format string, writer io.Writer) *Printer {
	return &Printer{
		format: OutputFormat(format),
		writer: writer,
	}
}

// PrintStatus prints biometric availability
func (p *Printer) PrintStatus(status biometry.Status) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(status)
	case OutputFormatTable, OutputFormatText:
		fmt.Fprintf(p.writer, "Available:     %t\n", status.IsAvailable)
		fmt.Fprintf(p.writer, "Biometry Type: %s\n", status.BiometryType)
		if !status.IsAvailable {
			fmt.Fprintf(p.writer, "Error:         %s (%s)\n", status.Error, status.ErrorCode)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintData prints decrypted secret data. Text mode writes the raw bytes
// so the output can be piped; JSON mode base64-encodes them.
func (p *Printer) PrintData(domain, name string, data []byte) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"domain": domain,
			"name":   name,
			"data":   base64.StdEncoding.EncodeToString(data),
		})
	case OutputFormatTable, OutputFormatText:
		_, err := p.writer.Write(data)
		return err
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintExists prints the result of an existence check
func (p *Printer) PrintExists(domain, name string, exists bool) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"domain": domain,
			"name":   name,
			"exists": exists,
		})
	case OutputFormatTable, OutputFormatText:
		fmt.Fprintf(p.writer, "%t\n", exists)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintSecretList prints the secret names stored under a domain
func (p *Printer) PrintSecretList(domain string, names []string) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"domain":  domain,
			"secrets": names,
		})
	case OutputFormatTable:
		if len(names) == 0 {
			fmt.Fprintln(p.writer, "No secrets found")
			return nil
		}
		fmt.Fprintf(p.writer, "%-30s %-30s\n", "DOMAIN", "NAME")
		fmt.Fprintln(p.writer, strings.Repeat("-", 61))
		for _, name := range names {
			fmt.Fprintf(p.writer, "%-30s %-30s\n", domain, name)
		}
		return nil
	case OutputFormatText:
		if len(names) == 0 {
			fmt.Fprintln(p.writer, "No secrets found")
			return nil
		}
		fmt.Fprintf(p.writer, "Secrets in %s:\n", domain)
		for _, name := range names {
			fmt.Fprintf(p.writer, "  - %s\n", name)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintMessage prints an informational message
func (p *Printer) PrintMessage(message string) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"message": message,
		})
	case OutputFormatTable, OutputFormatText:
		fmt.Fprintln(p.writer, message)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintError prints an error. Classified verification errors include
// their canonical kind.
func (p *Printer) PrintError(err error) error {
	var bioErr *biometry.Error
	switch p.format {
	case OutputFormatJSON:
		out := map[string]interface{}{
			"error": err.Error(),
		}
		if errors.As(err, &bioErr) {
			out["kind"] = string(bioErr.Kind)
		}
		return p.printJSON(out)
	default:
		if errors.As(err, &bioErr) {
			fmt.Fprintf(p.writer, "Error [%s]: %s\n", bioErr.Kind, bioErr.Message)
			return nil
		}
		fmt.Fprintf(p.writer, "Error: %v\n", err)
		return nil
	}
}

// printJSON prints data as JSON
func (p *Printer) printJSON(data interface{}) error {
	encoder := json.NewEncoder(p.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
