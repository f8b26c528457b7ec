// Package cli implements the scanward command tree.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "scanward",
	Short: "Policy-constrained scan decision engine",
	Long:  "Decides the next scanning action for a network node by blending organisation\npolicy hard limits with an optional external advisor. Policy always wins:\nadvisor output is validated, clamped to the policy ceiling, and replaced by\na deterministic fallback when the advisor is slow, wrong, or silent.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
