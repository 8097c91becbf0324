// Package cli implements the proofpostctl command tree.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "proofpostctl",
	Short: "ProofPost CLI",
	Long: `proofpostctl is the command-line interface for ProofPost.

Send documents, inspect deliveries, verify signed receipts (online or
offline), and compute evidentiary scores from your terminal.`,
	Version: "0.1.0",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("api-url", "http://localhost:8080", "ProofPost API base URL")
	rootCmd.PersistentFlags().String("token", "", "bearer token for API authentication")
	rootCmd.PersistentFlags().String("output", "json", "output format: json, yaml")
}
