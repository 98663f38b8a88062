package config

import "time"

// DefaultConfig returns a Config populated with sane development defaults.
// Production deployments are expected to override database credentials and
// AI provider keys through config files or RANKFORGE_* environment variables.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Mode:            "release",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "rankforge",
			Password:        "rankforge",
			DBName:          "rankforge",
			SSLMode:         "disable",
			MaxConns:        20,
			MinConns:        2,
			ConnMaxLifetime: time.Hour,
			ConnMaxIdleTime: 30 * time.Minute,
			MigrationPath:   "migrations",
		},
		Redis: RedisConfig{
			Addr:         "localhost:6379",
			Password:     "",
			DB:           0,
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			MetricsTTL:   24 * time.Hour,
			KeyPrefix:    "rankforge",
		},
		Kafka: KafkaConfig{
			Enabled:      false,
			Brokers:      []string{"localhost:9092"},
			BatchTimeout: 100 * time.Millisecond,
			WriteTimeout: 10 * time.Second,
			MaxRetries:   3,
		},
		Milvus: MilvusConfig{
			Enabled:        false,
			Addr:           "localhost:19530",
			DBName:         "default",
			Collection:     "keyword_embeddings",
			EmbeddingDim:   1024,
			DefaultTopK:    10,
			RequestTimeout: 10 * time.Second,
		},
		Intelligence: IntelligenceConfig{
			CohereAPIKey:      "",
			EmbedModel:        "embed-english-v3.0",
			EmbeddingDim:      1024,
			EmbedBatchLimit:   2000,
			AnthropicAPIKey:   "",
			ClassifierModel:   "claude-3-5-haiku-latest",
			ClassifyChunkSize: 200,
			RequestTimeout:    60 * time.Second,
		},
		Research: ResearchConfig{
			TopKeywords:         30,
			SimilarityThreshold: 0.85,
			MaxClusterSize:      10,
			MaxClusterPasses:    100,
			ExpansionDelay:      time.Second,
			RunTimeout:          15 * time.Minute,
		},
		Sources: SourcesConfig{
			AutocompleteEndpoint: "https://suggestqueries.google.com/complete/search",
			SuggestEndpoint:      "https://duckduckgo.com/ac/",
			HTTPTimeout:          10 * time.Second,
			UserAgent:            "Mozilla/5.0 (compatible; RankForgeBot/1.0)",
		},
		Worker: WorkerConfig{
			PollInterval: 5 * time.Second,
			MaxRuns:      2,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
