package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/germanamz/karman/cmd/karman/internal/preview"
	"github.com/germanamz/karman/pkg/assistant"
	"github.com/germanamz/karman/pkg/engine"
)

var askApply bool

// askCmd sends one request and prints the proposal.
var askCmd = &cobra.Command{
	Use:   "ask <request>",
	Short: "Ask for a configuration change without opening the chat",
	Long: `Send one request to the assistant and print its explanation, the proposed
changes and a diff of the configuration file. Nothing is written unless
--apply is given.`,
	Example: `  karman ask "switch the fluid to water"
  karman ask --apply "run for 50 seconds with a 0.01 s step"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askApply, "apply", false, "apply the proposed changes and save the configuration")
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := loadApp(slog.Default())
	if err != nil {
		return err
	}
	defer a.eng.CloseSession(a.sess.ID())

	res, err := a.sess.Turn(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := printTurn(out, res); err != nil {
		return err
	}

	changes := res.Outcome.Changes
	if len(changes) == 0 {
		return nil
	}

	next, _ := preview.Simulate(a.cfg, changes)
	diff, err := preview.Diff(a.path, a.cfg, next)
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	printDiff(out, diff)

	if !askApply {
		color.New(color.Faint).Fprintln(out, "\nRun again with --apply to write these changes.")
		return nil
	}

	skipped, err := a.sess.ApplyAccepted(changes)
	if err != nil {
		return err
	}
	if err := a.save(); err != nil {
		return err
	}
	printApplied(out, a.path, len(changes), skipped)
	return nil
}

// printTurn writes the assistant's message and proposed changes. A turn that
// failed is reported as an error after its message is printed.
func printTurn(w io.Writer, res engine.TurnResult) error {
	bold := color.New(color.Bold)
	yellow := color.New(color.FgYellow)
	dim := color.New(color.Faint)

	out := res.Outcome
	if res.Err != nil {
		return errors.New(out.Message)
	}
	if !out.Succeeded {
		fmt.Fprintln(w, out.Message)
		return fmt.Errorf("could not read the assistant's reply: %s", out.FailureDetail)
	}

	fmt.Fprintln(w, out.Message)
	if len(out.Changes) == 0 {
		dim.Fprintln(w, "\nNo changes proposed.")
		return nil
	}

	bold.Fprintf(w, "\nProposed changes (%d):\n", len(out.Changes))
	for _, line := range preview.Lines(out.Changes) {
		yellow.Fprintf(w, "  %s\n", line)
	}
	if res.Provider != "" {
		via := fmt.Sprintf("via %s in %s", res.Provider, res.Duration.Round(100*time.Millisecond))
		if !res.Usage.IsZero() {
			via += " (" + res.Usage.String() + ")"
		}
		dim.Fprintf(w, "\n%s\n", via)
	}
	return nil
}

// printDiff colors a unified diff line by line.
func printDiff(w io.Writer, diff string) {
	if diff == "" {
		color.New(color.Faint).Fprintln(w, "The proposal does not change the file.")
		return
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	cyan := color.New(color.FgCyan)

	for _, line := range strings.SplitAfter(diff, "\n") {
		switch {
		case line == "":
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			fmt.Fprint(w, line)
		case strings.HasPrefix(line, "+"):
			green.Fprint(w, line)
		case strings.HasPrefix(line, "-"):
			red.Fprint(w, line)
		case strings.HasPrefix(line, "@@"):
			cyan.Fprint(w, line)
		default:
			fmt.Fprint(w, line)
		}
	}
}

func printApplied(w io.Writer, path string, total int, skipped []assistant.Skipped) {
	green := color.New(color.FgGreen)
	dim := color.New(color.Faint)

	green.Fprintf(w, "\nApplied %d of %d change(s) to %s.\n", total-len(skipped), total, path)
	for _, line := range preview.Skipped(skipped) {
		dim.Fprintf(w, "  skipped %s\n", line)
	}
}
