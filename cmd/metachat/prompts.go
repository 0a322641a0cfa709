package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fwojciec/metachat"
	"github.com/fwojciec/metachat/registry"
)

func newPromptsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "Manage registered system prompts",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List registered system prompts",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := registry.New(metachat.DefaultPrompts()...)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tMODEL")
			for _, p := range reg.List() {
				fmt.Fprintf(w, "%d\t%s\t%s\n", p.ID, p.Name, p.Model)
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(list)
	return cmd
}
