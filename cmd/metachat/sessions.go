package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newSessionsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage stored sessions",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer app.cleanup()

			summaries, err := app.orch.ListSessions(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCREATED\tMESSAGES")
			for _, s := range summaries {
				fmt.Fprintf(w, "%s\t%s\t%d\n", s.ID, s.CreatedAt.Format("2006-01-02 15:04:05"), s.MessageCount)
			}
			return w.Flush()
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer app.cleanup()
			return app.orch.DeleteSession(ctx, args[0])
		},
	}

	cmd.AddCommand(list, del)
	return cmd
}
