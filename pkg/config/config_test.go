package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "invindex.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "struct", cfg.Indexer.DefaultStrategy)
	assert.False(t, cfg.Indexer.KeepEmptyTerms)
	assert.Equal(t, 1, cfg.Search.Workers)
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, 3, cfg.Storage.ConnectAttempts)
	assert.Equal(t, "invindex:", cfg.Redis.KeyPrefix)
	assert.Equal(t, "inverted_indexes", cfg.Postgres.Table)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, "index.built", cfg.Kafka.Topics.IndexBuilt)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
indexer:
  defaultStrategy: json
  keepEmptyTerms: true
search:
  workers: 4
storage:
  backend: redis
redis:
  addr: cache:6379
  ttl: 1h
kafka:
  enabled: true
  brokers: [k1:9092, k2:9092]
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Indexer.DefaultStrategy)
	assert.True(t, cfg.Indexer.KeepEmptyTerms)
	assert.Equal(t, 4, cfg.Search.Workers)
	assert.Equal(t, BackendRedis, cfg.Storage.Backend)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, time.Hour, cfg.Redis.TTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	// untouched sections keep their defaults
	assert.Equal(t, "invindex:", cfg.Redis.KeyPrefix)
	assert.Equal(t, 5432, cfg.Postgres.Port)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("IIX_INDEXER_STRATEGY", "json")
	t.Setenv("IIX_SEARCH_WORKERS", "8")
	t.Setenv("IIX_STORAGE_BACKEND", "postgres")
	t.Setenv("IIX_POSTGRES_PORT", "6543")
	t.Setenv("IIX_KAFKA_BROKERS", "a:1,b:2")
	t.Setenv("IIX_METRICS_TEXTFILE", "/tmp/invindex.prom")

	cfg, err := Load(writeConfig(t, "indexer:\n  defaultStrategy: struct\n"))
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Indexer.DefaultStrategy)
	assert.Equal(t, 8, cfg.Search.Workers)
	assert.Equal(t, BackendPostgres, cfg.Storage.Backend)
	assert.Equal(t, 6543, cfg.Postgres.Port)
	assert.Equal(t, []string{"a:1", "b:2"}, cfg.Kafka.Brokers)
	assert.Equal(t, "/tmp/invindex.prom", cfg.Metrics.TextfilePath)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading config file")

	_, err = Load(writeConfig(t, "indexer: [not, a, map]\n"))
	assert.ErrorContains(t, err, "parsing config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"strategy", func(c *Config) { c.Indexer.DefaultStrategy = "xml" }, "indexer.defaultStrategy"},
		{"backend", func(c *Config) { c.Storage.Backend = "s3" }, "storage.backend"},
		{"workers", func(c *Config) { c.Search.Workers = 0 }, "search.workers"},
		{"kafka", func(c *Config) { c.Kafka.Enabled = true; c.Kafka.Brokers = nil }, "broker"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			require.NoError(t, cfg.Validate())
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestPostgresDSN(t *testing.T) {
	p := defaultConfig().Postgres
	assert.Equal(t, "host=localhost port=5432 user=invindex password=localdev dbname=invindex sslmode=disable", p.DSN())
}
