package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/notekeep"
	notelifecycle "github.com/aretw0/notekeep/pkg/adapters/lifecycle"
)

func newWatchCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [pattern]",
		Short: "Print changes to the store as they happen",
		Long: `Watch the store directory and print one line per created, modified or
deleted note. The optional pattern is a glob matched against the key.
Only the fs adapter supports watching.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := ""
			if len(args) == 1 {
				pattern = args[0]
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, err := g.open(true, notekeep.WithWatcherErrorHandler(func(err error) {
				g.logger.Error("watcher error", "error", err)
			}))
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}

			return watch(ctx, cmd, svc, pattern)
		},
	}
}

func watch(ctx context.Context, cmd *cobra.Command, svc *notekeep.Service, pattern string) error {
	events, err := svc.Watch(ctx, pattern)
	if err != nil {
		return err
	}

	src := notelifecycle.NewSource(events)
	if err := src.Start(ctx); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for e := range src.Events() {
		fmt.Fprintln(out, e.String())
	}
	return nil
}
