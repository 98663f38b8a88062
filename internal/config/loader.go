package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ─────────────────────────────────────────────────────────────────────────────
// Loader
// ─────────────────────────────────────────────────────────────────────────────

// Loader reads configuration from files and environment variables and keeps a
// hot-reloaded copy when watching is enabled.
type Loader struct {
	v *viper.Viper

	mu      sync.RWMutex
	current *Config

	onChange []func(*Config)
}

// NewLoader constructs a Loader. configPath may be empty, in which case only
// defaults and environment variables apply.
func NewLoader(configPath string) *Loader {
	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("rankforge")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/rankforge")
	}

	v.SetEnvPrefix("RANKFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v}
}

// Load reads the configuration, applying defaults, then file values, then
// environment overrides, and validates the result.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()
	bindDefaults(l.v, cfg)

	if err := l.v.ReadInConfig(); err != nil {
		// A missing config file is fine; anything else is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if l.v.ConfigFileUsed() != "" {
				return nil, fmt.Errorf("config: reading %s: %w", l.v.ConfigFileUsed(), err)
			}
		}
	}

	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.current = cfg
	l.mu.Unlock()
	return cfg, nil
}

// Current returns the most recently loaded configuration, or nil if Load has
// not been called yet.
func (l *Loader) Current() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// OnChange registers a callback invoked with the new configuration after every
// successful hot reload. Must be called before Watch.
func (l *Loader) OnChange(fn func(*Config)) {
	l.onChange = append(l.onChange, fn)
}

// Watch enables hot reloading of the config file. Reloads that fail to parse
// or validate are discarded and the previous configuration stays in effect.
func (l *Loader) Watch() {
	l.v.OnConfigChange(func(_ fsnotify.Event) {
		cfg := DefaultConfig()
		if err := l.v.Unmarshal(cfg); err != nil {
			return
		}
		if err := cfg.Validate(); err != nil {
			return
		}

		l.mu.Lock()
		l.current = cfg
		l.mu.Unlock()

		for _, fn := range l.onChange {
			fn(cfg)
		}
	})
	l.v.WatchConfig()
}

// ─────────────────────────────────────────────────────────────────────────────
// Defaults binding
// ─────────────────────────────────────────────────────────────────────────────

// bindDefaults registers every default value with viper so that environment
// variables resolve even when no config file is present.
func bindDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("server.port", cfg.Server.Port)
	v.SetDefault("server.mode", cfg.Server.Mode)
	v.SetDefault("server.read_timeout", cfg.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", cfg.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", cfg.Server.ShutdownTimeout)

	v.SetDefault("database.host", cfg.Database.Host)
	v.SetDefault("database.port", cfg.Database.Port)
	v.SetDefault("database.user", cfg.Database.User)
	v.SetDefault("database.password", cfg.Database.Password)
	v.SetDefault("database.db_name", cfg.Database.DBName)
	v.SetDefault("database.ssl_mode", cfg.Database.SSLMode)
	v.SetDefault("database.max_conns", cfg.Database.MaxConns)
	v.SetDefault("database.min_conns", cfg.Database.MinConns)
	v.SetDefault("database.conn_max_lifetime", cfg.Database.ConnMaxLifetime)
	v.SetDefault("database.conn_max_idle_time", cfg.Database.ConnMaxIdleTime)
	v.SetDefault("database.migration_path", cfg.Database.MigrationPath)

	v.SetDefault("redis.addr", cfg.Redis.Addr)
	v.SetDefault("redis.password", cfg.Redis.Password)
	v.SetDefault("redis.db", cfg.Redis.DB)
	v.SetDefault("redis.pool_size", cfg.Redis.PoolSize)
	v.SetDefault("redis.min_idle_conns", cfg.Redis.MinIdleConns)
	v.SetDefault("redis.dial_timeout", cfg.Redis.DialTimeout)
	v.SetDefault("redis.read_timeout", cfg.Redis.ReadTimeout)
	v.SetDefault("redis.write_timeout", cfg.Redis.WriteTimeout)
	v.SetDefault("redis.metrics_ttl", cfg.Redis.MetricsTTL)
	v.SetDefault("redis.key_prefix", cfg.Redis.KeyPrefix)

	v.SetDefault("kafka.enabled", cfg.Kafka.Enabled)
	v.SetDefault("kafka.brokers", cfg.Kafka.Brokers)
	v.SetDefault("kafka.batch_timeout", cfg.Kafka.BatchTimeout)
	v.SetDefault("kafka.write_timeout", cfg.Kafka.WriteTimeout)
	v.SetDefault("kafka.max_retries", cfg.Kafka.MaxRetries)

	v.SetDefault("milvus.enabled", cfg.Milvus.Enabled)
	v.SetDefault("milvus.addr", cfg.Milvus.Addr)
	v.SetDefault("milvus.db_name", cfg.Milvus.DBName)
	v.SetDefault("milvus.collection", cfg.Milvus.Collection)
	v.SetDefault("milvus.embedding_dim", cfg.Milvus.EmbeddingDim)
	v.SetDefault("milvus.default_top_k", cfg.Milvus.DefaultTopK)
	v.SetDefault("milvus.request_timeout", cfg.Milvus.RequestTimeout)

	v.SetDefault("intelligence.cohere_api_key", cfg.Intelligence.CohereAPIKey)
	v.SetDefault("intelligence.embed_model", cfg.Intelligence.EmbedModel)
	v.SetDefault("intelligence.embedding_dim", cfg.Intelligence.EmbeddingDim)
	v.SetDefault("intelligence.embed_batch_limit", cfg.Intelligence.EmbedBatchLimit)
	v.SetDefault("intelligence.anthropic_api_key", cfg.Intelligence.AnthropicAPIKey)
	v.SetDefault("intelligence.classifier_model", cfg.Intelligence.ClassifierModel)
	v.SetDefault("intelligence.classify_chunk_size", cfg.Intelligence.ClassifyChunkSize)
	v.SetDefault("intelligence.request_timeout", cfg.Intelligence.RequestTimeout)

	v.SetDefault("research.top_keywords", cfg.Research.TopKeywords)
	v.SetDefault("research.similarity_threshold", cfg.Research.SimilarityThreshold)
	v.SetDefault("research.max_cluster_size", cfg.Research.MaxClusterSize)
	v.SetDefault("research.max_cluster_passes", cfg.Research.MaxClusterPasses)
	v.SetDefault("research.expansion_delay", cfg.Research.ExpansionDelay)
	v.SetDefault("research.run_timeout", cfg.Research.RunTimeout)

	v.SetDefault("sources.autocomplete_endpoint", cfg.Sources.AutocompleteEndpoint)
	v.SetDefault("sources.suggest_endpoint", cfg.Sources.SuggestEndpoint)
	v.SetDefault("sources.ads_endpoint", cfg.Sources.AdsEndpoint)
	v.SetDefault("sources.http_timeout", cfg.Sources.HTTPTimeout)
	v.SetDefault("sources.user_agent", cfg.Sources.UserAgent)

	v.SetDefault("worker.poll_interval", cfg.Worker.PollInterval)
	v.SetDefault("worker.max_runs", cfg.Worker.MaxRuns)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
}
