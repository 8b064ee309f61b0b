package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func (c *cli) configCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the resolved settings",
		Long: `Print every setting after layering reactron.yaml, REACTRON_*
environment variables and flags, as YAML keyed like the environment
variables (engine.budget is REACTRON_ENGINE_BUDGET).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := yaml.Marshal(c.settings.Settings())
			if err != nil {
				return fmt.Errorf("encode settings: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# root: %s\n%s", c.settings.Root, data)
			return nil
		},
	}
}
