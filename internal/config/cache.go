package config

import (
	"github.com/spf13/viper"

	"github.com/oakmere/auditflow/internal/refdata"
)

// LoadCacheConfig loads reference cache configuration from Viper.
// It follows this precedence:
// 1. Viper configuration (from config file or AUDITFLOW_ env vars)
// 2. Default values baked into refdata.Config
func LoadCacheConfig() refdata.Config {
	cfg := refdata.Config{
		TTL:          viper.GetDuration("cache.ttl"),
		SyncInterval: viper.GetDuration("cache.sync_interval"),
		FetchTimeout: viper.GetDuration("cache.fetch_timeout"),
	}

	if sections := viper.GetStringSlice("cache.warm_sections"); len(sections) > 0 {
		cfg.WarmSections = sections
	} else {
		cfg.WarmSections = refdata.DefaultWarmSections()
	}
	if pubs := viper.GetStringSlice("cache.warm_publications"); len(pubs) > 0 {
		cfg.WarmPublications = pubs
	} else {
		cfg.WarmPublications = refdata.DefaultWarmPublications()
	}

	return cfg
}

// LoadFetcherConfig loads upstream fetcher configuration from Viper. An
// empty base URL keeps the fetcher on the embedded reference summaries.
func LoadFetcherConfig() refdata.FetcherConfig {
	return refdata.FetcherConfig{
		BaseURL:           viper.GetString("cache.base_url"),
		RequestsPerSecond: viper.GetFloat64("cache.requests_per_second"),
		Burst:             viper.GetInt("cache.burst"),
	}
}
