package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/notekeep"
	"github.com/aretw0/notekeep/pkg/core"
)

func newReadCmd(g *globalFlags) *cobra.Command {
	var (
		asJSON bool
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "read [key]",
		Short: "Read a note",
		Long: `Read a note by key. Prints the title and body by default, or the stored
record with --json. With --strict, a missing note and a corrupt one are
reported differently.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := notekeep.ParseKey(args[0])
			if err != nil {
				return err
			}

			svc, err := g.open(true)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}

			var note *notekeep.Entry
			if strict {
				note, err = svc.FetchNote(cmd.Context(), key)
				switch {
				case errors.Is(err, core.ErrNotFound):
					return fmt.Errorf("note %s not found", key)
				case errors.Is(err, core.ErrEncoding):
					return fmt.Errorf("note %s is corrupt: %w", key, err)
				case err != nil:
					return err
				}
			} else {
				var ok bool
				note, ok = svc.GetNote(cmd.Context(), key)
				if !ok {
					return fmt.Errorf("note %s not found", key)
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(note)
			}

			fmt.Fprintf(out, "# %s\n", note.Title())
			if note.Workspace() != "" {
				fmt.Fprintf(out, "workspace: %s\n", note.Workspace())
			}
			fmt.Fprintf(out, "\n%s\n", note.Body())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&strict, "strict", false, "Distinguish missing from unreadable notes")
	return cmd
}
