package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newCreateCmd creates the "nexusboot create" subcommand.
func newCreateCmd(g *globalOpts, d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create the detached session with logging enabled",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadValidConfig(cmd, g)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			ctrl, err := newController(cfg, d, w)
			if err != nil {
				return err
			}

			// screen accepts duplicate names; a second session would split the log.
			if ok, err := ctrl.Exists(cmd.Context()); err == nil && ok {
				DefaultTheme().Warnf(w, "session %q already exists", cfg.Session)
			}
			if err := ctrl.Create(cmd.Context()); err != nil {
				return err
			}
			newStartupLog(w, false).Step(fmt.Sprintf("Created session %q logging to %s", cfg.Session, cfg.LogFile))
			return nil
		},
	}
}
