package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tidyd/internal/watch"
)

// NewWatchCmd creates the watch command, which runs the daemon until
// interrupted.
func NewWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch directories and organize continuously",
		Long:  `Watch the source and configured watch directories, organizing new files once they are stable and running a full pass on the configured interval.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			daemon, err := watch.NewDaemon(loader)
			if err != nil {
				return err
			}
			daemon.OnRun = recordRun

			if err := daemon.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}
