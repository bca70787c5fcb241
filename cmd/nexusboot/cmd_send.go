package main

import (
	"strings"

	"github.com/spf13/cobra"
)

// newSendCmd creates the "nexusboot send" subcommand.
func newSendCmd(g *globalOpts, d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "send <text>...",
		Short: "Type a line of text into the session",
		Long:  "Types the arguments, joined by spaces, into the session followed by Enter.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadValidConfig(cmd, g)
			if err != nil {
				return err
			}
			ctrl, err := newController(cfg, d, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return ctrl.Send(cmd.Context(), strings.Join(args, " "))
		},
	}
}
