package main

import (
	"github.com/spf13/cobra"
)

// newConfigCmd creates the "nexusboot config" subcommand.
func newConfigCmd(g *globalOpts) *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Prints the configuration a run would use after applying the config file,
NEXUSBOOT_* environment variables and flags. The output is a valid config
file and can be saved to ~/.nexusboot/config.toml as a starting point.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}

			encode := cfg.EncodeTOML
			if asYAML {
				encode = cfg.EncodeYAML
			}
			out, err := encode()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print YAML instead of TOML")

	return cmd
}
