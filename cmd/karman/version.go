package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// versionCmd prints the karman version.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print the version of the karman binary.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "karman %s\n", Version)
	},
}
