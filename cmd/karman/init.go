package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/germanamz/karman/pkg/engine"
	"github.com/germanamz/karman/pkg/simconfig"
)

var initForce bool

// initCmd writes starter files.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration and settings file",
	Long: `Write the default study configuration and an assistant settings file listing
the default providers. Existing files are left alone unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runInit(cmd.OutOrStdout(), configPath, settingsPath, initForce)
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing files")
}

func runInit(w io.Writer, cfgPath, settings string, force bool) error {
	green := color.New(color.FgGreen)
	dim := color.New(color.Faint)

	study, err := simconfig.Marshal(cfgPath, simconfig.Default())
	if err != nil {
		return err
	}
	assistantSettings, err := engine.DefaultConfig().Marshal()
	if err != nil {
		return err
	}

	for _, f := range []struct {
		path string
		data []byte
	}{
		{cfgPath, study},
		{settings, assistantSettings},
	} {
		written, err := writeStarter(f.path, f.data, force)
		if err != nil {
			return err
		}
		if written {
			green.Fprintf(w, "  created %s\n", f.path)
		} else {
			dim.Fprintf(w, "  skipped %s (exists, use --force to overwrite)\n", f.path)
		}
	}
	return nil
}

// writeStarter writes data to path unless the file exists and force is off.
func writeStarter(path string, data []byte, force bool) (bool, error) {
	if !force {
		_, err := os.Stat(path)
		if err == nil {
			return false, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return false, fmt.Errorf("init: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return false, fmt.Errorf("init: %w", err)
	}
	return true, nil
}
