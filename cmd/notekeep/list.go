package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aretw0/notekeep"
)

func newListCmd(g *globalFlags) *cobra.Command {
	var (
		asJSON    bool
		workspace string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes in the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := g.open(true)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}

			var notes []*notekeep.Entry
			if cmd.Flags().Changed("workspace") {
				notes, err = svc.ListNotesInWorkspace(cmd.Context(), workspace)
			} else {
				notes, err = svc.ListNotes(cmd.Context())
			}
			if err != nil {
				return fmt.Errorf("failed to list notes: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				if notes == nil {
					notes = []*notekeep.Entry{}
				}
				return encoder.Encode(notes)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, note := range notes {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", note.Key(), note.Workspace(), note.Title())
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "Only list notes in this workspace")
	return cmd
}
