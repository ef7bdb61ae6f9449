package main

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nathoo/statcore/config"
	"github.com/nathoo/statcore/engine/state"
	"github.com/nathoo/statcore/loader"
	"github.com/nathoo/statcore/logging"
)

// env is what every subcommand needs: settings, a logger and compiled
// content.
type env struct {
	cfg  *config.Config
	log  *zap.Logger
	defs *state.Defs
}

// setup loads the config named by --config, builds the logger and compiles
// the content directory.
func setup(cmd *cobra.Command, args []string) (*env, error) {
	e, err := setupConfig(cmd, args)
	if err != nil {
		return nil, err
	}
	e.defs, err = loader.Load(e.cfg.Content, e.log)
	if err != nil {
		_ = e.log.Sync()
		return nil, err
	}
	return e, nil
}

// setupConfig loads settings and the logger only. The first positional
// argument overrides the configured content directory.
func setupConfig(cmd *cobra.Command, args []string) (*env, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if len(args) > 0 {
		cfg.Content = args[0]
	}
	if cfg.Content == "" {
		return nil, errors.New("no content directory given (pass one or set content in the config)")
	}

	log, err := logging.New(logging.Config{
		Level:      cfg.LogLevel,
		Encoding:   cfg.LogEncoding,
		OutputPath: cfg.LogOutput,
	})
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log}, nil
}
