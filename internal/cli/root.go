// Package cli exposes the service as a cobra command tree.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "repairdesk",
	Short:         "Repair shop ticket service: intake, tracking and printable work orders",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE:          runServe,
}

// Execute runs the command tree.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(receiptCmd)
}
