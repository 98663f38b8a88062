package discovery

import (
	"context"
	"sync"
	"time"

	"github.com/rankforge/rankforge/internal/config"
	"github.com/rankforge/rankforge/internal/domain/project"
	"github.com/rankforge/rankforge/internal/domain/research"
	"github.com/rankforge/rankforge/internal/infrastructure/monitoring/logging"
)

// Worker polls the run store for pending work and executes claimed runs
// concurrently, up to a configured ceiling. Claiming is atomic at the store
// level, so multiple worker processes can share one database.
type Worker struct {
	runs         research.Repository
	orchestrator *Orchestrator
	pollInterval time.Duration
	maxRuns      int
	logger       logging.Logger
}

// NewWorker builds a Worker from config.
func NewWorker(cfg config.WorkerConfig, runs research.Repository, orchestrator *Orchestrator, logger logging.Logger) *Worker {
	if logger == nil {
		logger = logging.Default()
	}
	return &Worker{
		runs:         runs,
		orchestrator: orchestrator,
		pollInterval: cfg.PollInterval,
		maxRuns:      cfg.MaxRuns,
		logger:       logger,
	}
}

// Run polls until ctx is cancelled, then waits for in-flight runs to reach
// a terminal state before returning.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("worker started",
		logging.Duration("poll_interval", w.pollInterval),
		logging.Int("max_runs", w.maxRuns))

	sem := make(chan struct{}, w.maxRuns)
	var wg sync.WaitGroup

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			w.logger.Info("worker stopped")
			return
		case <-ticker.C:
			w.claimAvailable(ctx, sem, &wg)
		}
	}
}

// claimAvailable claims pending runs until capacity or the queue is
// exhausted.
func (w *Worker) claimAvailable(ctx context.Context, sem chan struct{}, wg *sync.WaitGroup) {
	for {
		select {
		case sem <- struct{}{}:
		default:
			return
		}

		run, err := w.runs.NextPending(ctx)
		if err != nil {
			<-sem
			if ctx.Err() == nil {
				w.logger.Warn("claiming pending run", logging.Err(err))
			}
			return
		}
		if run == nil {
			<-sem
			return
		}

		w.logger.Info("claimed run", logging.String("run_id", run.ID.String()))
		wg.Add(1)
		go func(run *research.Run) {
			defer wg.Done()
			defer func() { <-sem }()
			domainCtx := project.Raw(run.Domain, run.Niche, run.Competitors)
			w.orchestrator.Execute(ctx, run, domainCtx)
		}(run)
	}
}
