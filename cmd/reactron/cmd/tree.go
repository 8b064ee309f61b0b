package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-drift/reactron/cmd/reactron/internal/todo"
)

func (c *cli) treeCommand() *cobra.Command {
	var (
		play    bool
		effects bool
	)
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the committed fiber tree as JSON",
		Long: `Render the todo demo and print the committed fiber tree: fiber ids,
types, component names, props, bound listeners and hook values.

With --play the scripted demo runs first. With --effects the effect
list of the last commit is printed instead of the tree.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := c.newDemo()
			if err != nil {
				return err
			}
			if err := d.renderSync(); err != nil {
				return err
			}
			if play {
				if err := todo.Play(d.doc, d.sched, todo.Script(), nil); err != nil {
					return err
				}
			}

			var v any = d.sched.Context().Snapshot()
			if effects {
				v = d.sched.Context().LastCommit()
			}
			data, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				return fmt.Errorf("encode tree: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().BoolVar(&play, "play", false, "play the scripted demo before printing")
	cmd.Flags().BoolVar(&effects, "effects", false, "print the last commit's effects")
	return cmd
}
