package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/germanamz/karman/cmd/karman/internal/editor"
	"github.com/germanamz/karman/cmd/karman/internal/preview"
	"github.com/germanamz/karman/pkg/simconfig"
)

// editCmd opens the form editor.
var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit the configuration with forms",
	Long:  "Walk the configuration section by section in interactive forms and save the result.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := simconfig.Load(configPath)
		if err != nil {
			return err
		}

		changes, saved, err := editor.Run(cfg)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if !saved {
			fmt.Fprintln(out, "No changes saved.")
			return nil
		}
		if len(changes) == 0 {
			fmt.Fprintln(out, "Nothing changed.")
			return nil
		}

		if err := simconfig.Save(configPath, cfg); err != nil {
			return err
		}

		yellow := color.New(color.FgYellow)
		for _, line := range preview.Lines(changes) {
			yellow.Fprintf(out, "  %s\n", line)
		}
		color.New(color.FgGreen).Fprintf(out, "Saved %d change(s) to %s\n", len(changes), configPath)
		return nil
	},
}
