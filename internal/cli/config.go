package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/grapes/pkg/config"
)

// configCommand creates the config command printing the effective
// configuration as TOML.
func (c *CLI) configCommand() *cobra.Command {
	var showPath bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showPath {
				path := c.configPath
				if path == "" {
					p, err := config.Path()
					if err != nil {
						return err
					}
					path = p
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			return cfg.Encode(cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&showPath, "path", false, "print the config file location instead")

	return cmd
}
