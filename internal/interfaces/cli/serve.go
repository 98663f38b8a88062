package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rankforge/rankforge/internal/config"
	httpserver "github.com/rankforge/rankforge/internal/interfaces/http"
	"github.com/rankforge/rankforge/internal/interfaces/http/handlers"
	"github.com/rankforge/rankforge/internal/interfaces/http/middleware"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			return RunServe(cmd.Context(), cfg)
		},
	}
}

// RunServe wires the runtime and blocks serving HTTP until the context is
// cancelled or SIGINT/SIGTERM arrives.
func RunServe(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := buildRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	checks := map[string]handlers.Pinger{
		"postgres": handlers.PingerFunc(rt.DB.Ping),
		"redis": handlers.PingerFunc(func(ctx context.Context) error {
			return rt.Redis.Ping(ctx).Err()
		}),
	}

	research := handlers.NewResearchHandler(rt.Runs, rt.Keywords, rt.Embedder, searcherOrNil(rt), cfg.Milvus.DefaultTopK, rt.Logger)

	cors := middleware.DefaultCORSConfig()
	routerCfg := httpserver.RouterConfig{
		ResearchHandler: research,
		HealthHandler:   handlers.NewHealthHandler(checks),
		CORS:            &cors,
		Logger:          rt.Logger,
		Metrics:         rt.Metrics,
	}
	// Debug mode leaves requests unthrottled for local testing.
	if cfg.Server.Mode != "debug" {
		rateLimit := middleware.DefaultRateLimitConfig()
		routerCfg.RateLimit = &rateLimit
	}
	router := httpserver.NewRouter(routerCfg)

	srv := httpserver.NewServer(cfg.Server, router, rt.Logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		rt.Logger.Info("shutdown signal received")
		return srv.Stop(context.Background())
	}
}

// searcherOrNil avoids handing the handler a typed-nil interface value.
func searcherOrNil(rt *Runtime) handlers.RelatedSearcher {
	if rt.Index == nil {
		return nil
	}
	return rt.Index
}
