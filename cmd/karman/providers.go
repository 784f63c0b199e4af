package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/germanamz/karman/pkg/credentials"
	"github.com/germanamz/karman/pkg/engine"
)

// providersCmd lists the configured providers and where their keys come from.
var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List model providers and their key sources",
	Long:  "List the providers from the settings file in fallback order, with the source of each key. Keys themselves are never printed.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		settings, err := engine.LoadConfig(settingsPath)
		if err != nil {
			return err
		}

		logger := slog.New(slog.DiscardHandler)
		eng, err := engine.New(settings, engine.Options{
			Resolver: &credentials.Resolver{Files: credentials.CandidateFiles(envFile), Logger: logger},
			Logger:   logger,
		})
		if err != nil {
			return err
		}

		printProviders(cmd.OutOrStdout(), eng.Config(), eng.Credentials())
		return nil
	},
}

func printProviders(w io.Writer, cfg engine.Config, creds []credentials.Credential) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	dim := color.New(color.Faint)

	sources := make(map[string]string, len(creds))
	for _, c := range creds {
		sources[c.Provider] = c.Source
	}

	for i, p := range cfg.Providers {
		fmt.Fprintf(w, "%d. %s ", i+1, p.Name)
		dim.Fprintf(w, "(%s", p.Kind)
		if p.Model != "" {
			dim.Fprintf(w, ", %s", p.Model)
		}
		dim.Fprint(w, ") ")
		if src, ok := sources[p.Name]; ok {
			green.Fprintf(w, "key from %s\n", src)
		} else {
			red.Fprintln(w, "no key")
		}
	}
	if len(creds) == 0 {
		fmt.Fprintln(w, "\nNo provider has a key; the assistant is disabled.")
	}
}
