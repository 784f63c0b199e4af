package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/germanamz/karman/cmd/karman/internal/preview"
	"github.com/germanamz/karman/pkg/simconfig"
)

var (
	showSection string
	showRaw     bool
)

// showCmd prints the configuration.
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the study configuration",
	Long:  "Print every configurable field grouped by section, or the raw configuration file contents with --raw.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := simconfig.Load(configPath)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if showRaw {
			data, err := simconfig.Marshal(configPath, cfg)
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		}
		return printConfig(out, cfg, showSection)
	},
}

func init() {
	showCmd.Flags().StringVarP(&showSection, "section", "s", "", "only print this section (e.g. \"Material\")")
	showCmd.Flags().BoolVar(&showRaw, "raw", false, "print the file encoding instead of the field listing")
}

func printConfig(w io.Writer, cfg *simconfig.Config, section string) error {
	rows, err := preview.Rows(cfg, section)
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)
	width := preview.LabelWidth(rows)

	var current simconfig.Section
	for i, r := range rows {
		if r.Section != current {
			if i > 0 {
				fmt.Fprintln(w)
			}
			bold.Fprintln(w, string(r.Section))
			current = r.Section
		}
		fmt.Fprintf(w, "  %s\n", r.Format(width))
	}
	return nil
}
