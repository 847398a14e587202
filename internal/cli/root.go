// Package cli implements the Wellspring command-line interface using Cobra.
// Each subcommand maps to a core capability (serve, award, summary, etc.).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "wellspring",
	Short: "Wellspring — wellness engagement engine",
	Long: `Wellspring is the gamification and recommendation engine behind the
wellness app: a points ledger with tiers, streaks, and badges, plus
personalized challenge recommendations.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
