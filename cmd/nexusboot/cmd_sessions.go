package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// newSessionsCmd creates the "nexusboot sessions" subcommand.
func newSessionsCmd(g *globalOpts, d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List multiplexer sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadValidConfig(cmd, g)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			ctrl, err := newController(cfg, d, nil)
			if err != nil {
				return err
			}

			tokens, err := ctrl.Sessions(cmd.Context())
			if err != nil {
				return err
			}
			if len(tokens) == 0 {
				fmt.Fprintf(w, "no %s sessions\n", cfg.Multiplexer)
				return nil
			}
			fmt.Fprintln(w, strings.Join(tokens, "\n"))
			return nil
		},
	}
}
