package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newKillCmd creates the "nexusboot kill" subcommand.
func newKillCmd(g *globalOpts, d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "kill",
		Short: "Terminate every multiplexer session",
		Long: `Terminates every session the multiplexer lists, not only the Nexus one.
A session that fails to terminate is reported and the rest are still tried.`,
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

			n, err := ctrl.KillAll(cmd.Context())
			if err != nil {
				return err
			}
			newStartupLog(w, false).Step(fmt.Sprintf("Terminated %d session(s)", n))
			return nil
		},
	}
}
