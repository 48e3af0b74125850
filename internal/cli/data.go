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
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jeremyhahn/go-biovault/pkg/biometry"
	"github.com/spf13/cobra"
)

// setCmd stores a secret. Sealing needs only the domain public key, so no
// verification prompt is shown.
var setCmd = &cobra.Command{
	Use:   "set <domain> <name>",
	Short: "Store a secret",
	Long: `Encrypt and store a secret under <domain>/<name>, overwriting any
existing secret in that slot. The value is read from --value, --file or
standard input. No verification prompt is shown.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		domain, name := args[0], args[1]
		cfg := getConfig()
		printer := NewPrinter(cfg.OutputFormat, os.Stdout)

		value, err := readSecretValue(cmd)
		if err != nil {
			handleError(err)
			return
		}

		svc, closer, err := cfg.CreateService()
		if err != nil {
			handleError(err)
			return
		}
		defer func() { _ = closer() }()

		printVerbose("Storing %d bytes under %s/%s", len(value), domain, name)
		if err := svc.SetData(context.Background(), domain, name, value); err != nil {
			handleError(err)
			return
		}
		if err := printer.PrintMessage(fmt.Sprintf("Stored %s/%s", domain, name)); err != nil {
			handleError(err)
		}
	},
}

// getCmd retrieves a secret behind a verification prompt
var getCmd = &cobra.Command{
	Use:   "get <domain> <name>",
	Short: "Retrieve a secret",
	Long: `Verify the user and decrypt the secret stored under <domain>/<name>.
A verification prompt is always shown before any existence information is
revealed. Text output writes the raw secret bytes to stdout.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		domain, name := args[0], args[1]
		cfg := getConfig()
		printer := NewPrinter(cfg.OutputFormat, os.Stdout)

		reason, _ := cmd.Flags().GetString("reason")
		allowCredential, _ := cmd.Flags().GetBool("allow-device-credential")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		svc, closer, err := cfg.CreateService()
		if err != nil {
			handleError(err)
			return
		}
		defer func() { _ = closer() }()

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		data, err := svc.GetData(ctx, domain, name, biometry.AuthenticationEvent{
			Reason:                reason,
			AllowDeviceCredential: allowCredential,
		})
		if err != nil {
			handleError(err)
			return
		}
		if err := printer.PrintData(domain, name, data); err != nil {
			handleError(err)
		}
	},
}

// hasCmd checks whether a secret exists without prompting
var hasCmd = &cobra.Command{
	Use:   "has <domain> <name>",
	Short: "Check whether a secret exists",
	Long: `Report whether a secret exists under <domain>/<name>. Only existence
is revealed and no verification prompt is shown.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		domain, name := args[0], args[1]
		cfg := getConfig()
		printer := NewPrinter(cfg.OutputFormat, os.Stdout)

		svc, closer, err := cfg.CreateService()
		if err != nil {
			handleError(err)
			return
		}
		defer func() { _ = closer() }()

		exists, err := svc.HasData(context.Background(), domain, name)
		if err != nil {
			handleError(err)
			return
		}
		if err := printer.PrintExists(domain, name, exists); err != nil {
			handleError(err)
		}
	},
}

// removeCmd deletes a secret. Removal is idempotent.
var removeCmd = &cobra.Command{
	Use:   "remove <domain> <name>",
	Short: "Remove a secret",
	Long: `Remove the secret stored under <domain>/<name>. Removing an absent
secret succeeds. When the last secret of a domain is removed the domain
key pair is destroyed as well.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		domain, name := args[0], args[1]
		cfg := getConfig()
		printer := NewPrinter(cfg.OutputFormat, os.Stdout)

		svc, closer, err := cfg.CreateService()
		if err != nil {
			handleError(err)
			return
		}
		defer func() { _ = closer() }()

		if err := svc.RemoveData(context.Background(), domain, name); err != nil {
			handleError(err)
			return
		}
		if err := printer.PrintMessage(fmt.Sprintf("Removed %s/%s", domain, name)); err != nil {
			handleError(err)
		}
	},
}

// listCmd lists the secret names stored under a domain
var listCmd = &cobra.Command{
	Use:   "list <domain>",
	Short: "List secrets in a domain",
	Long: `List the names of the secrets stored under <domain>. Only names are
revealed and no verification prompt is shown.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		domain := args[0]
		cfg := getConfig()
		printer := NewPrinter(cfg.OutputFormat, os.Stdout)

		svc, closer, err := cfg.CreateService()
		if err != nil {
			handleError(err)
			return
		}
		defer func() { _ = closer() }()

		names, err := svc.ListData(context.Background(), domain)
		if err != nil {
			handleError(err)
			return
		}
		if err := printer.PrintSecretList(domain, names); err != nil {
			handleError(err)
		}
	},
}

// readSecretValue resolves the secret bytes for set from --value, --file
// or stdin, in that order of precedence.
func readSecretValue(cmd *cobra.Command) ([]byte, error) {
	value, _ := cmd.Flags().GetString("value")
	if value != "" {
		return []byte(value), nil
	}
	path, _ := cmd.Flags().GetString("file")
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read secret file: %w", err)
		}
		return data, nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret from stdin: %w", err)
	}
	return data, nil
}

func init() {
	setCmd.Flags().String("value", "", "secret value (prefer --file or stdin to keep it out of shell history)")
	setCmd.Flags().String("file", "", "read the secret value from a file")

	getCmd.Flags().String("reason", "", "reason shown on the verification prompt (required)")
	getCmd.Flags().Bool("allow-device-credential", false, "permit device credential fallback")
	getCmd.Flags().Duration("timeout", 2*time.Minute, "how long to wait for the prompt")
	_ = getCmd.MarkFlagRequired("reason")
}
