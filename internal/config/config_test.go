package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakmere/auditflow/internal/refdata"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("AUDITFLOW_TEST_DIR", "/srv/auditflow")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty path", input: "", expected: ""},
		{name: "bare tilde", input: "~", expected: home},
		{name: "tilde prefix", input: "~/data/app.db", expected: filepath.Join(home, "data/app.db")},
		{name: "environment variable", input: "$AUDITFLOW_TEST_DIR/app.db", expected: "/srv/auditflow/app.db"},
		{name: "plain path untouched", input: "/var/lib/auditflow/app.db", expected: "/var/lib/auditflow/app.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExpandPath(tt.input))
		})
	}
}

func TestDatabasePath(t *testing.T) {
	viper.Reset()

	path := DatabasePath()
	assert.True(t, strings.HasSuffix(path, "auditflow.db"), "got %s", path)
	assert.NotContains(t, path, "$HOME")

	viper.Set("database.path", "/tmp/custom.db")
	assert.Equal(t, "/tmp/custom.db", DatabasePath())
}

func TestLoadServerConfig(t *testing.T) {
	viper.Reset()

	cfg := LoadServerConfig()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)

	viper.Set("server.addr", ":9090")
	viper.Set("server.timeout", 30*time.Second)
	cfg = LoadServerConfig()
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestLoadCacheConfig(t *testing.T) {
	viper.Reset()

	cfg := LoadCacheConfig()
	assert.Zero(t, cfg.TTL, "cache defaults come from the cache, not config loading")
	assert.Equal(t, refdata.DefaultWarmSections(), cfg.WarmSections)
	assert.Equal(t, refdata.DefaultWarmPublications(), cfg.WarmPublications)

	viper.Set("cache.ttl", time.Hour)
	viper.Set("cache.warm_sections", []string{"61"})
	cfg = LoadCacheConfig()
	assert.Equal(t, time.Hour, cfg.TTL)
	assert.Equal(t, []string{"61"}, cfg.WarmSections)
	assert.Equal(t, refdata.DefaultWarmPublications(), cfg.WarmPublications)
}

func TestLoadFetcherConfig(t *testing.T) {
	viper.Reset()

	cfg := LoadFetcherConfig()
	assert.Empty(t, cfg.BaseURL)

	viper.Set("cache.base_url", "https://refs.example.com")
	viper.Set("cache.requests_per_second", 2.5)
	viper.Set("cache.burst", 5)
	cfg = LoadFetcherConfig()
	assert.Equal(t, "https://refs.example.com", cfg.BaseURL)
	assert.InDelta(t, 2.5, cfg.RequestsPerSecond, 1e-9)
	assert.Equal(t, 5, cfg.Burst)
}
