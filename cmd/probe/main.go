package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "probe",
	Short: "Database diagnostics for the bangles backend",
	Long: `probe runs diagnostic checks against the configured database.
Connection settings come from the same environment (.env) as the server.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(insertCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
