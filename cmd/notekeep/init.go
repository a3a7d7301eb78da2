package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the store if it does not exist",
		Long:  `Create the store directory (or database table). Existing notes are left untouched.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := g.open(false); err != nil {
				return fmt.Errorf("failed to initialize store: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Store ready at %s\n", g.dir)
			return nil
		},
	}
}
