package main

import (
	"errors"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/germanamz/karman/cmd/karman/internal/logging"
	"github.com/germanamz/karman/pkg/engine"
)

// Global flag values.
var (
	configPath   string
	settingsPath string
	envFile      string
	verbose      bool
	quiet        bool
	noColor      bool
)

// rootCmd is the base command for karman. Without a subcommand it opens the
// chat.
var rootCmd = &cobra.Command{
	Use:   "karman",
	Short: "Edit a cylinder-flow study configuration in plain language",
	Long: `Karman turns requests such as "use water at 20 °C" or "refine the mesh
around the cylinder" into reviewed edits of the study configuration. A model
provider (Qwen or DeepSeek, with automatic fallback) proposes the changes; you
accept or discard them before anything is written.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logging.Setup(os.Stderr, verbose, quiet)
		if noColor {
			color.NoColor = true
		}
		return loadDotEnv(envFile)
	},
	RunE: runChat,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.json", "study configuration file (.json, .yaml, .yml or .toml)")
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", engine.SettingsFile, "assistant settings file (ignored if missing)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "path to .env file (ignored if missing)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(providersCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadDotEnv loads variables from a .env file into the process environment.
// A missing file is not an error. Existing variables are not overridden.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
