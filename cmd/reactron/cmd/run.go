package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-drift/reactron/cmd/reactron/internal/todo"
)

func (c *cli) runCommand() *cobra.Command {
	var (
		quiet bool
		stats bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Play the scripted demo and print the document",
		Long: `Render the todo demo, play a fixed sequence of events against it
(typing, Enter, toggling, filtering, removing, blurring) and print the
container HTML after every step.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := c.newDemo()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := d.renderSync(); err != nil {
				return err
			}
			if !quiet {
				fmt.Fprintf(out, "# initial\n%s\n", d.doc.HTML())
			}

			err = todo.Play(d.doc, d.sched, todo.Script(), func(step todo.Step) error {
				if !quiet {
					fmt.Fprintf(out, "# %s\n%s\n", step.Desc, d.doc.HTML())
				}
				return nil
			})
			if err != nil {
				return err
			}
			if quiet {
				fmt.Fprintln(out, d.doc.HTML())
			}

			if stats {
				st := d.sched.Context().Stats()
				tl := d.sched.Trace().Snapshot()
				fmt.Fprintf(out, "frames=%d slow=%d units=%d commits=%d effects=%d live=%d arena=%d\n",
					len(tl.Samples), tl.SlowFrames, st.Units, st.Commits, st.Effects, st.LiveFiber, st.ArenaSize)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only the final document")
	cmd.Flags().BoolVar(&stats, "stats", false, "print engine counters at the end")
	return cmd
}
