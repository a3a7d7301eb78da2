package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/notekeep"
	"github.com/aretw0/notekeep/pkg/core"
)

func newDeleteCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [key]",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := notekeep.ParseKey(args[0])
			if err != nil {
				return err
			}

			svc, err := g.open(true)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}

			if err := svc.DeleteNote(cmd.Context(), key); err != nil {
				if errors.Is(err, core.ErrNotFound) {
					return fmt.Errorf("note %s not found", key)
				}
				return fmt.Errorf("failed to delete note: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", key)
			return nil
		},
	}
}
