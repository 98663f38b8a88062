// Package config defines all configuration structures for the RankForge
// platform.  No I/O or parsing logic lives here, only plain data types and
// validation.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	MigrationPath   string        `mapstructure:"migration_path"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MetricsTTL   time.Duration `mapstructure:"metrics_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds Kafka producer parameters for run lifecycle events.
type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MaxRetries   int           `mapstructure:"max_retries"`
}

// MilvusConfig holds the optional vector-index connection parameters.
type MilvusConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Addr           string        `mapstructure:"addr"`
	DBName         string        `mapstructure:"db_name"`
	Collection     string        `mapstructure:"collection"`
	EmbeddingDim   int           `mapstructure:"embedding_dim"`
	DefaultTopK    int           `mapstructure:"default_top_k"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// IntelligenceConfig holds AI provider parameters.
type IntelligenceConfig struct {
	CohereAPIKey      string        `mapstructure:"cohere_api_key"`
	EmbedModel        string        `mapstructure:"embed_model"`
	EmbeddingDim      int           `mapstructure:"embedding_dim"`
	EmbedBatchLimit   int           `mapstructure:"embed_batch_limit"`
	AnthropicAPIKey   string        `mapstructure:"anthropic_api_key"`
	ClassifierModel   string        `mapstructure:"classifier_model"`
	ClassifyChunkSize int           `mapstructure:"classify_chunk_size"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
}

// ResearchConfig holds the keyword research pipeline tunables.  All defaults
// mirror the engine's canonical constants; overriding them is intended for
// experimentation, not routine operation.
type ResearchConfig struct {
	TopKeywords         int           `mapstructure:"top_keywords"`
	SimilarityThreshold float64       `mapstructure:"similarity_threshold"`
	MaxClusterSize      int           `mapstructure:"max_cluster_size"`
	MaxClusterPasses    int           `mapstructure:"max_cluster_passes"`
	ExpansionDelay      time.Duration `mapstructure:"expansion_delay"`
	RunTimeout          time.Duration `mapstructure:"run_timeout"`
}

// SourcesConfig holds external keyword-source endpoints. AdsEndpoint is
// optional; when empty, metric estimation runs on heuristics alone.
type SourcesConfig struct {
	AutocompleteEndpoint string        `mapstructure:"autocomplete_endpoint"`
	SuggestEndpoint      string        `mapstructure:"suggest_endpoint"`
	AdsEndpoint          string        `mapstructure:"ads_endpoint"`
	HTTPTimeout          time.Duration `mapstructure:"http_timeout"`
	UserAgent            string        `mapstructure:"user_agent"`
}

// WorkerConfig holds background-worker execution parameters.
type WorkerConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	MaxRuns      int           `mapstructure:"max_runs"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `mapstructure:"format"` // "json" | "console"
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure for the entire platform.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Kafka        KafkaConfig        `mapstructure:"kafka"`
	Milvus       MilvusConfig       `mapstructure:"milvus"`
	Intelligence IntelligenceConfig `mapstructure:"intelligence"`
	Research     ResearchConfig     `mapstructure:"research"`
	Sources      SourcesConfig      `mapstructure:"sources"`
	Worker       WorkerConfig       `mapstructure:"worker"`
	Log          LogConfig          `mapstructure:"log"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start the application.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	// Database
	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
	}
	if c.Database.User == "" {
		return fmt.Errorf("config: database.user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.db_name is required")
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("config: database.max_conns must be ≥ 1, got %d", c.Database.MaxConns)
	}

	// Redis
	if c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
	}

	// Kafka
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: kafka.brokers must contain at least one broker address when kafka is enabled")
	}

	// Milvus
	if c.Milvus.Enabled {
		if c.Milvus.Addr == "" {
			return fmt.Errorf("config: milvus.addr is required when milvus is enabled")
		}
		if c.Milvus.EmbeddingDim < 1 {
			return fmt.Errorf("config: milvus.embedding_dim must be ≥ 1, got %d", c.Milvus.EmbeddingDim)
		}
	}

	// Intelligence
	if c.Intelligence.EmbeddingDim < 1 {
		return fmt.Errorf("config: intelligence.embedding_dim must be ≥ 1, got %d", c.Intelligence.EmbeddingDim)
	}
	if c.Intelligence.EmbedBatchLimit < 1 {
		return fmt.Errorf("config: intelligence.embed_batch_limit must be ≥ 1, got %d", c.Intelligence.EmbedBatchLimit)
	}
	if c.Intelligence.ClassifyChunkSize < 1 {
		return fmt.Errorf("config: intelligence.classify_chunk_size must be ≥ 1, got %d", c.Intelligence.ClassifyChunkSize)
	}

	// Research
	if c.Research.TopKeywords < 1 {
		return fmt.Errorf("config: research.top_keywords must be ≥ 1, got %d", c.Research.TopKeywords)
	}
	if c.Research.SimilarityThreshold <= 0 || c.Research.SimilarityThreshold > 1 {
		return fmt.Errorf("config: research.similarity_threshold %.2f is out of range (0, 1]", c.Research.SimilarityThreshold)
	}
	if c.Research.MaxClusterSize < 1 {
		return fmt.Errorf("config: research.max_cluster_size must be ≥ 1, got %d", c.Research.MaxClusterSize)
	}
	if c.Research.MaxClusterPasses < 1 {
		return fmt.Errorf("config: research.max_cluster_passes must be ≥ 1, got %d", c.Research.MaxClusterPasses)
	}

	// Worker
	if c.Worker.MaxRuns < 1 {
		return fmt.Errorf("config: worker.max_runs must be ≥ 1, got %d", c.Worker.MaxRuns)
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}
