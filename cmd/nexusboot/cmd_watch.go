package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newWatchCmd creates the "nexusboot watch" subcommand.
func newWatchCmd(g *globalOpts, d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow the session log and answer prompts",
		Long: `Follows the session log from its current end, answering prompts like
"run" does, without touching sessions or starting the installer. Useful to
resume after an interrupted run.`,
		Args: cobra.NoArgs,
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

			res, err := newMonitor(cfg, ctrl, w).Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("monitor log: %w", err)
			}
			newStartupLog(w, false).Step(fmt.Sprintf("Matched %s after %d line(s)", res.Rule, res.Lines))
			return nil
		},
	}
}
