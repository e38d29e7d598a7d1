package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tidyd/internal/history"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent organization runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.History.Path == "" {
				return fmt.Errorf("history is disabled (history.path is empty)")
			}
			store, err := history.Open(cfg.History.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			results, err := store.Recent(limit)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Println("no recorded runs")
				return nil
			}
			printRunHistory(results)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")
	return cmd
}
