package main

import (
	"github.com/spf13/cobra"

	"github.com/germanamz/karman/cmd/karman/internal/logging"
	"github.com/germanamz/karman/cmd/karman/internal/tui"
	"github.com/germanamz/karman/pkg/simconfig"
)

var logFile string

// chatCmd opens the interactive chat.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive assistant",
	Long: `Open a full-screen chat over the study configuration. Each request is
answered with a list of proposed changes that you can apply, pick from or
discard. Logs go to a file so they do not disturb the screen.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&logFile, "log-file", "karman.log", "file that receives log output while the chat is open")
}

func runChat(cmd *cobra.Command, _ []string) error {
	logger, closeLog, err := logging.SetupFile(logFile, verbose, quiet)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	a, err := loadApp(logger)
	if err != nil {
		return err
	}
	defer a.eng.CloseSession(a.sess.ID())

	return tui.Run(cmd.Context(), tui.Options{
		Session:   a.sess,
		Config:    a.cfg,
		Path:      a.path,
		Save:      a.save,
		Load:      func() (*simconfig.Config, error) { return simconfig.Load(a.path) },
		Available: a.eng.Available(),
		Providers: a.eng.Providers(),
		Logger:    logger,
		Events:    a.eng.Events(),
		SessionID: a.sess.ID(),
		Usage:     a.eng.Usage,
	})
}
