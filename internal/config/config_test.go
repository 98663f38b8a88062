package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 30, cfg.Research.TopKeywords)
	assert.InDelta(t, 0.85, cfg.Research.SimilarityThreshold, 1e-9)
	assert.Equal(t, 10, cfg.Research.MaxClusterSize)
	assert.Equal(t, 100, cfg.Research.MaxClusterPasses)
	assert.Equal(t, 2000, cfg.Intelligence.EmbedBatchLimit)
	assert.Equal(t, 200, cfg.Intelligence.ClassifyChunkSize)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero server port", func(c *Config) { c.Server.Port = 0 }},
		{"bad server mode", func(c *Config) { c.Server.Mode = "production" }},
		{"empty db host", func(c *Config) { c.Database.Host = "" }},
		{"empty redis addr", func(c *Config) { c.Redis.Addr = "" }},
		{"kafka enabled without brokers", func(c *Config) { c.Kafka.Enabled = true; c.Kafka.Brokers = nil }},
		{"threshold above one", func(c *Config) { c.Research.SimilarityThreshold = 1.5 }},
		{"threshold zero", func(c *Config) { c.Research.SimilarityThreshold = 0 }},
		{"zero cluster size", func(c *Config) { c.Research.MaxClusterSize = 0 }},
		{"bad log level", func(c *Config) { c.Log.Level = "trace" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoaderWithoutFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rankforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))
	l := NewLoader(path)

	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Same(t, cfg, l.Current())
}

func TestLoaderReadsFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rankforge.yaml")
	body := []byte("server:\n  port: 9090\nresearch:\n  top_keywords: 5\n")
	require.NoError(t, os.WriteFile(path, body, 0o644))

	t.Setenv("RANKFORGE_RESEARCH_MAX_CLUSTER_SIZE", "4")

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Research.TopKeywords)
	assert.Equal(t, 4, cfg.Research.MaxClusterSize)
}

func TestLoaderRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rankforge.yaml")
	body := []byte("research:\n  similarity_threshold: 3.0\n")
	require.NoError(t, os.WriteFile(path, body, 0o644))

	_, err := NewLoader(path).Load()
	assert.Error(t, err)
}
