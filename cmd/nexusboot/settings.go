package main

import (
	"fmt"
	"io"
	"os"

	"nexusboot/pkg/config"
	"nexusboot/pkg/logwatch"
	"nexusboot/pkg/mux"

	"github.com/spf13/cobra"
)

// loadConfig layers defaults, the config file, the environment and the
// persistent flags, in that order. The result is not yet validated so that
// subcommands can apply their own flags first.
func loadConfig(cmd *cobra.Command, g *globalOpts) (*config.Config, error) {
	paths, err := ResolvePaths()
	if err != nil {
		return nil, fmt.Errorf("resolve paths: %w", err)
	}

	path := g.configPath
	if path == "" {
		path = paths.ConfigPath
	}

	cfg := config.Defaults()
	if path != "" {
		cfg, err = config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("session") {
		cfg.Session = g.session
	}
	if flags.Changed("log-file") {
		cfg.LogFile = g.logFile
	}
	if flags.Changed("mux") {
		cfg.Multiplexer = g.mux
	}

	return cfg, nil
}

// loadValidConfig is loadConfig followed by validation.
func loadValidConfig(cmd *cobra.Command, g *globalOpts) (*config.Config, error) {
	cfg, err := loadConfig(cmd, g)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newController checks that the configured multiplexer is installed and
// returns a controller for the configured session.
func newController(cfg *config.Config, d *deps, w io.Writer) (*mux.Controller, error) {
	if err := checkMultiplexer(cfg.Multiplexer, d.lookPath); err != nil {
		return nil, err
	}
	m, err := mux.New(cfg.Multiplexer, d.runner)
	if err != nil {
		return nil, err
	}
	ctrl := mux.NewController(m, cfg.Session, cfg.LogFile, w)
	ctrl.Shell = cfg.Shell
	return ctrl, nil
}

// newMonitor returns a log monitor answering prompts through sender.
func newMonitor(cfg *config.Config, sender logwatch.Sender, w io.Writer) *logwatch.Monitor {
	return &logwatch.Monitor{
		Path:     cfg.LogFile,
		Rules:    cfg.Rules(),
		Sender:   sender,
		Out:      w,
		FilePoll: cfg.FilePoll.Std(),
		LinePoll: cfg.LinePoll.Std(),
		Notify:   cfg.NotifyEnabled(),
	}
}
