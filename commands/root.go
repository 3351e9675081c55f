// Package commands holds the engagement CLI.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/tourwithmark/engagement/config"
)

// NewRootCmd builds the command tree. Running it without a subcommand serves HTTP.
func NewRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "engagement",
		Short:         "Likes and page-view analytics backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "path to JSON config file")

	load := func() (config.AppConfig, error) { return config.Load(configPath) }

	serve := NewServeCmd(load)
	root.AddCommand(serve, NewMigrateCmd(load), NewReportCmd(load))
	root.RunE = serve.RunE
	return root
}

// Execute runs the CLI with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}
