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
	"os"
	"time"

	"github.com/jeremyhahn/go-biovault/pkg/biometry"
	"github.com/spf13/cobra"
)

// authenticateCmd presents a standalone verification prompt
var authenticateCmd = &cobra.Command{
	Use:   "authenticate",
	Short: "Verify the user without touching any secret",
	Long: `Present a verification prompt and report whether the user passed.
No secret is read or written; this exercises the verification path alone.`,
	Run: func(cmd *cobra.Command, args []string) {
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

		printVerbose("Authenticating with reason: %s", reason)
		if err := svc.Authenticate(ctx, biometry.AuthenticationEvent{
			Reason:                reason,
			AllowDeviceCredential: allowCredential,
		}); err != nil {
			handleError(err)
			return
		}
		if err := printer.PrintMessage("Authentication succeeded"); err != nil {
			handleError(err)
		}
	},
}

func init() {
	authenticateCmd.Flags().String("reason", "", "reason shown on the verification prompt (required)")
	authenticateCmd.Flags().Bool("allow-device-credential", false, "permit device credential fallback")
	authenticateCmd.Flags().Duration("timeout", 2*time.Minute, "how long to wait for the prompt")
	_ = authenticateCmd.MarkFlagRequired("reason")
}
