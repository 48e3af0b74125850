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

	"github.com/spf13/cobra"
)

// statusCmd reports biometric availability without presenting a prompt
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check biometric availability",
	Long:  `Check whether biometric verification is available on this host. No prompt is shown.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := getConfig()
		printer := NewPrinter(cfg.OutputFormat, os.Stdout)

		svc, closer, err := cfg.CreateService()
		if err != nil {
			handleError(err)
			return
		}
		defer func() { _ = closer() }()

		status := svc.CheckStatus(context.Background())
		if err := printer.PrintStatus(status); err != nil {
			handleError(err)
		}
	},
}
