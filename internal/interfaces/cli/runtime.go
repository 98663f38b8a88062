package cli

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/rankforge/rankforge/internal/application/discovery"
	"github.com/rankforge/rankforge/internal/config"
	"github.com/rankforge/rankforge/internal/domain/keyword"
	"github.com/rankforge/rankforge/internal/domain/research"
	"github.com/rankforge/rankforge/internal/infrastructure/database/postgres"
	"github.com/rankforge/rankforge/internal/infrastructure/database/postgres/repositories"
	"github.com/rankforge/rankforge/internal/infrastructure/database/redis"
	"github.com/rankforge/rankforge/internal/infrastructure/messaging/kafka"
	"github.com/rankforge/rankforge/internal/infrastructure/monitoring/logging"
	"github.com/rankforge/rankforge/internal/infrastructure/monitoring/prometheus"
	"github.com/rankforge/rankforge/internal/infrastructure/search/milvus"
	"github.com/rankforge/rankforge/internal/infrastructure/sources"
	"github.com/rankforge/rankforge/internal/intelligence/embedding"
	"github.com/rankforge/rankforge/internal/intelligence/genai"
	"github.com/rankforge/rankforge/internal/intelligence/relevance"
	"github.com/rankforge/rankforge/internal/intelligence/seedgen"
)

// Runtime bundles the wired infrastructure shared by the server, the worker
// and the one-shot CLI commands.
type Runtime struct {
	Config  *config.Config
	Logger  logging.Logger
	Metrics *prometheus.Metrics

	DB    *pgxpool.Pool
	Redis *goredis.Client
	Index *milvus.Index

	Runs     research.Repository
	Keywords keyword.Repository
	Embedder embedding.Provider
	Events   kafka.Publisher

	Orchestrator *discovery.Orchestrator
}

// buildRuntime connects every backing service the configuration enables.
// Milvus and Kafka are optional and left nil / no-op when disabled.
func buildRuntime(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	logger := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	logging.SetDefault(logger)
	metrics := prometheus.NewMetrics()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		pool.Close()
		return nil, err
	}

	runs := repositories.NewRunRepository(pool)
	keywords := repositories.NewKeywordRepository(pool)

	embedder := embedding.NewCohereProvider(embedding.CohereOptions{
		APIKey:     cfg.Intelligence.CohereAPIKey,
		Model:      cfg.Intelligence.EmbedModel,
		Dimension:  cfg.Intelligence.EmbeddingDim,
		BatchLimit: cfg.Intelligence.EmbedBatchLimit,
		Timeout:    cfg.Intelligence.RequestTimeout,
		Logger:     logger,
	})
	completer := genai.NewClient(cfg.Intelligence.AnthropicAPIKey, cfg.Intelligence.ClassifierModel, 4096)
	filter := relevance.NewFilter(completer, cfg.Intelligence.ClassifyChunkSize, logger)
	seeds := seedgen.NewGenerator(completer, 0)

	expansion := []discovery.ExpansionSource{
		sources.NewAutocompleteSource(cfg.Sources.AutocompleteEndpoint, cfg.Sources.UserAgent, cfg.Sources.HTTPTimeout, logger),
		sources.NewSuggestSource(cfg.Sources.SuggestEndpoint, cfg.Sources.UserAgent, cfg.Sources.HTTPTimeout, logger),
	}
	miner := sources.NewCompetitorMiner(cfg.Sources.HTTPTimeout, logger)
	competitor := discovery.CompetitorFunc(func(ctx context.Context, domain string) ([]string, error) {
		return miner.Mine(ctx, domain), nil
	})

	var ads keyword.AdsProvider
	if cfg.Sources.AdsEndpoint != "" {
		client := sources.NewAdsClient(cfg.Sources.AdsEndpoint, cfg.Sources.UserAgent, cfg.Sources.HTTPTimeout, logger)
		cache := redis.NewCache(rdb, cfg.Redis.KeyPrefix, cfg.Redis.MetricsTTL, cfg.Redis.MetricsTTL/10)
		ads = redis.NewCachedAdsProvider(client, cache, logger)
	}
	estimator := keyword.NewEstimator(ads)

	var index *milvus.Index
	if cfg.Milvus.Enabled {
		index, err = milvus.NewIndex(ctx, cfg.Milvus, logger)
		if err != nil {
			pool.Close()
			_ = rdb.Close()
			return nil, err
		}
	}

	var events kafka.Publisher = kafka.NopPublisher{}
	if cfg.Kafka.Enabled {
		events = kafka.NewProducer(cfg.Kafka, logger)
	}

	var indexer discovery.RelatedIndexer
	if index != nil {
		indexer = index
	}
	orchestrator := discovery.NewOrchestrator(discovery.Options{
		Config:     cfg.Research,
		Runs:       runs,
		Keywords:   keywords,
		Seeds:      seeds,
		Sources:    expansion,
		Competitor: competitor,
		Filter:     filter,
		Embedder:   embedder,
		Estimator:  estimator,
		Indexer:    indexer,
		Events:     events,
		Metrics:    metrics,
		Logger:     logger,
	})

	return &Runtime{
		Config:       cfg,
		Logger:       logger,
		Metrics:      metrics,
		DB:           pool,
		Redis:        rdb,
		Index:        index,
		Runs:         runs,
		Keywords:     keywords,
		Embedder:     embedder,
		Events:       events,
		Orchestrator: orchestrator,
	}, nil
}

// Close releases every held connection.
func (r *Runtime) Close() {
	if r.Events != nil {
		if err := r.Events.Close(); err != nil {
			r.Logger.Warn("closing event publisher", logging.Err(err))
		}
	}
	if r.Index != nil {
		if err := r.Index.Close(); err != nil {
			r.Logger.Warn("closing vector index", logging.Err(err))
		}
	}
	if r.Redis != nil {
		if err := r.Redis.Close(); err != nil {
			r.Logger.Warn("closing redis client", logging.Err(err))
		}
	}
	if r.DB != nil {
		r.DB.Close()
	}
	_ = r.Logger.Sync()
}
