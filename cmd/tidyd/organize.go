package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tidyd/internal/history"
	"tidyd/internal/log"
	"tidyd/internal/organize"
	"tidyd/pkg/types"
)

// NewOrganizeCmd creates the organize command.
func NewOrganizeCmd() *cobra.Command {
	var (
		source     string
		target     string
		organizeBy string
	)

	cmd := &cobra.Command{
		Use:   "organize [directory]",
		Short: "Organize files in a directory",
		Long:  `Organize files from the source directory into categorized destinations using the configured rules.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				source = args[0]
			}
			if source != "" {
				cfg.SourceDirectory = source
			}
			if target != "" {
				cfg.TargetDirectory = target
			}
			if organizeBy != "" {
				cfg.OrganizeBy = types.OrganizeMode(organizeBy)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			engine, err := organize.New(cfg)
			if err != nil {
				return err
			}

			result, err := engine.Organize(cmd.Context())
			if err != nil {
				return fmt.Errorf("organize %s: %w", cfg.SourceDirectory, err)
			}

			recordRun(result)
			printRunSummary(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "source directory to organize")
	cmd.Flags().StringVarP(&target, "target", "t", "", "target directory for organized files")
	cmd.Flags().StringVar(&organizeBy, "organize-by", "", "organization mode: extension, date, or size")

	return cmd
}

// recordRun persists the run when a history database is configured.
// History failures must never mask a completed run.
func recordRun(result *types.RunResult) {
	if cfg.History.Path == "" {
		return
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		log.L().Warn().Err(err).Msg("cannot open history database")
		return
	}
	defer store.Close()
	if err := store.Record(result); err != nil {
		log.L().Warn().Err(err).Msg("cannot record run")
	}
}
