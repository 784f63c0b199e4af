package main

import (
	"log/slog"

	"github.com/germanamz/karman/pkg/credentials"
	"github.com/germanamz/karman/pkg/engine"
	"github.com/germanamz/karman/pkg/simconfig"
)

// app is everything a command needs to talk to the assistant about one
// configuration file.
type app struct {
	path   string
	cfg    *simconfig.Config
	eng    *engine.Engine
	sess   *engine.Session
	logger *slog.Logger
}

// loadApp reads the settings and the study configuration named by the
// global flags and opens a session over the configuration.
func loadApp(logger *slog.Logger) (*app, error) {
	settings, err := engine.LoadConfig(settingsPath)
	if err != nil {
		return nil, err
	}

	eng, err := engine.New(settings, engine.Options{
		Resolver: &credentials.Resolver{Files: credentials.CandidateFiles(envFile), Logger: logger},
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	cfg, err := simconfig.Load(configPath)
	if err != nil {
		return nil, err
	}

	return &app{
		path:   configPath,
		cfg:    cfg,
		eng:    eng,
		sess:   eng.NewSession(cfg),
		logger: logger,
	}, nil
}

// save writes the configuration back to its file.
func (a *app) save() error {
	return simconfig.Save(a.path, a.cfg)
}
