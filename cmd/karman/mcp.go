package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/germanamz/karman/pkg/tools/mcpserver"
)

const mcpInstructions = `Tools for editing the configuration of a 2D cylinder-flow CFD study.
Call get_config to see every field and its current value. Call propose_changes
with a natural-language request to get a list of field edits without applying
them. Call apply_changes with the edits you want; the configuration file is
saved after every successful apply.`

// mcpCmd is the parent command for MCP-related subcommands.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol server commands",
	Long:  "Commands for running karman as an MCP server, exposing the configuration tools to AI agents.",
}

// mcpServeCmd runs the MCP server over stdio.
var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server over stdio",
	Long: `Start an MCP server on stdin/stdout, exposing karman's tools:
  - get_config:      List the fields and their current values
  - propose_changes: Turn a natural-language request into proposed edits
  - apply_changes:   Write edits into the configuration and save it

Logs go to stderr.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger := slog.Default()

		a, err := loadApp(logger)
		if err != nil {
			return err
		}
		defer a.eng.CloseSession(a.sess.ID())

		srv := mcpserver.New("karman", Version, mcpInstructions, logger)
		srv.Register(a.sess.Tools(a.save))

		return srv.Serve(cmd.Context(), os.Stdin, os.Stdout)
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
}
