package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/notekeep"
	"github.com/aretw0/notekeep/pkg/core"
)

func newWriteCmd(g *globalFlags) *cobra.Command {
	var (
		workspace string
		title     string
		body      string
		key       string
	)

	cmd := &cobra.Command{
		Use:   "write",
		Short: "Create or overwrite a note",
		Long: `Create a note and print its key. With --key, the note stored under
that key is replaced.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			note := notekeep.NewEntry(workspace, title, body)
			if key != "" {
				k, err := notekeep.ParseKey(key)
				if err != nil {
					return err
				}
				note = core.RestoreEntry(k, workspace, title, body)
			}

			svc, err := g.open(false)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}

			saved, err := svc.SaveNote(cmd.Context(), note)
			if err != nil {
				return fmt.Errorf("failed to save note: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), saved)
			return nil
		},
	}

	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace label")
	cmd.Flags().StringVarP(&title, "title", "t", "", "Note title")
	cmd.Flags().StringVarP(&body, "body", "b", "", "Note body")
	cmd.Flags().StringVarP(&key, "key", "k", "", "Existing key to overwrite")
	return cmd
}
