package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rankforge/rankforge/internal/application/discovery"
	"github.com/rankforge/rankforge/internal/config"
)

func newWorkerCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the research worker",
		Long:  "The worker polls for pending research runs and executes them to completion.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			return RunWorker(cmd.Context(), cfg)
		},
	}
}

// RunWorker wires the runtime and polls for pending runs until the context
// is cancelled or SIGINT/SIGTERM arrives. In-flight runs finish before it
// returns.
func RunWorker(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := buildRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	worker := discovery.NewWorker(cfg.Worker, rt.Runs, rt.Orchestrator, rt.Logger)
	worker.Run(ctx)
	return nil
}
