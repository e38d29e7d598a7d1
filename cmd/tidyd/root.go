package main

import (
	"github.com/spf13/cobra"

	"tidyd/internal/config"
	"tidyd/internal/log"
)

var (
	cfgFile string
	debug   bool
	loader  *config.Loader
	cfg     *config.Config
)

// NewRootCmd creates the root command and wires configuration and
// logging for every subcommand.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "tidyd",
		Short:   "Rule-driven file organizer",
		Long:    `tidyd moves files from a source directory into categorized destinations by extension, modification date, or size, with duplicate handling and concurrent batch execution.`,
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path := cfgFile
			if path == "" {
				path = config.DefaultPath()
			}
			loader = config.NewLoader(path)

			var err error
			cfg, err = loader.Load()
			if err != nil {
				return err
			}

			level := cfg.Logging.Level
			if debug {
				level = "debug"
			}
			return log.Setup(level, cfg.Logging.File)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.config/tidyd/config.json)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(NewOrganizeCmd())
	rootCmd.AddCommand(NewWatchCmd())
	rootCmd.AddCommand(NewHistoryCmd())
	rootCmd.AddCommand(NewConfigCmd())

	return rootCmd
}
