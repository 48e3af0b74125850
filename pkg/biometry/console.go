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
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// ConsolePrompter is an interactive Prompter that stands in for a native
// biometric prompt on development hosts. It renders the event on the
// terminal and reads a yes/no confirmation from the operator.
//
// A "y" answer resolves Approved, "n" resolves Rejected, and anything
// else resolves Errored with KindAuthenticationFailed. EOF on the input
// stream maps to KindAppCancel.
type ConsolePrompter struct {
	biometryType BiometryType
	in           io.Reader
	out          io.Writer
}

// NewConsolePrompter creates a console prompter reporting the given
// biometry type, reading from stdin and writing to stderr.
func NewConsolePrompter(biometryType BiometryType) *ConsolePrompter {
	return &ConsolePrompter{
		biometryType: biometryType,
		in:           os.Stdin,
		out:          os.Stderr,
	}
}

// NewConsolePrompterWithIO creates a console prompter over explicit
// streams, used by tests.
func NewConsolePrompterWithIO(biometryType BiometryType, in io.Reader, out io.Writer) *ConsolePrompter {
	return &ConsolePrompter{
		biometryType: biometryType,
		in:           in,
		out:          out,
	}
}

// Availability reports the configured biometry type as available.
func (c *ConsolePrompter) Availability() Availability {
	return Availability{
		Available:    true,
		BiometryType: c.biometryType,
	}
}

// Prompt renders the event and blocks until the operator answers or the
// context is cancelled.
func (c *ConsolePrompter) Prompt(ctx context.Context, event AuthenticationEvent) Outcome {
	title := event.Title
	if title == "" {
		title = "Verification required"
	}
	fmt.Fprintf(c.out, "\n%s\n", title)
	if event.Subtitle != "" {
		fmt.Fprintf(c.out, "%s\n", event.Subtitle)
	}
	fmt.Fprintf(c.out, "Reason: %s\n", event.Reason)
	fmt.Fprintf(c.out, "Approve? [y/n]: ")

	type answer struct {
		text string
		err  error
	}
	ch := make(chan answer, 1)
	go func() {
		line, err := bufio.NewReader(c.in).ReadString('\n')
		ch <- answer{text: line, err: err}
	}()

	select {
	case <-ctx.Done():
		// The pending read is abandoned. The gate maps the
		// cancellation itself; this outcome is discarded.
		return Errored(KindUserCancel, "prompt cancelled")
	case a := <-ch:
		if a.err != nil {
			return Errored(KindAppCancel, "prompt input closed")
		}
		switch strings.ToLower(strings.TrimSpace(a.text)) {
		case "y", "yes":
			return Approved()
		case "n", "no":
			return Rejected("operator rejected the request")
		default:
			return Errored(KindAuthenticationFailed, "unrecognized answer")
		}
	}
}
