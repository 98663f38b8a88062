// Package cli implements the rankforge command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rankforge/rankforge/internal/config"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

// NewRootCommand assembles the full command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "rankforge",
		Short:         "Keyword discovery and clustering engine",
		Long:          "rankforge discovers, scores and clusters keyword opportunities for a target domain.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log level (debug|info|warn|error)")

	root.AddCommand(
		newServeCommand(opts),
		newWorkerCommand(opts),
		newMigrateCommand(opts),
		newResearchCommand(opts),
		newVersionCommand(),
	)
	return root
}

// loadConfig resolves the effective configuration for a command invocation.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	loader := config.NewLoader(o.configPath)
	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	return cfg, nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rankforge %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
		},
	}
}
