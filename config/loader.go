package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/unkn0wn-root/asidecache/strava"
)

// Load reads configPath (if non-empty), applies environment overrides with
// envPrefix, fills defaults and validates the result.
func Load(configPath, envPrefix string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if envPrefix != "" {
		v.SetEnvPrefix(envPrefix)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Plain names used by existing deployments.
	if err := v.BindEnv("store.redis.url", envName(envPrefix, "STORE_REDIS_URL"), "REDIS_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind env: %w", err)
	}
	if err := v.BindEnv("strava.access_token", envName(envPrefix, "STRAVA_ACCESS_TOKEN"), "STRAVA_ACCESS_TOKEN"); err != nil {
		return nil, fmt.Errorf("failed to bind env: %w", err)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func envName(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "_" + key
}

// Viper only resolves env overrides for keys it knows about, so every key
// gets a default here, including zero ones.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("server.request_timeout", 25*time.Second)

	v.SetDefault("store.backend", "redis")
	v.SetDefault("store.redis.url", "")
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.dial_timeout", 5*time.Second)
	v.SetDefault("store.redis.read_timeout", 3*time.Second)
	v.SetDefault("store.redis.write_timeout", 3*time.Second)
	v.SetDefault("store.redis.pool_size", 10)
	v.SetDefault("store.redis.connect_tries", 5)
	v.SetDefault("store.redis.connect_max_wait", 30*time.Second)
	v.SetDefault("store.olric.servers", []string{"localhost:3320"})
	v.SetDefault("store.olric.dmap", "asidecache")
	v.SetDefault("store.ristretto.num_counters", 100_000)
	v.SetDefault("store.ristretto.max_cost", 64<<20)
	v.SetDefault("store.ristretto.buffer_items", 64)
	v.SetDefault("store.bigcache.clean_window", 5*time.Minute)
	v.SetDefault("store.bigcache.max_entries_in_window", 10_000)
	v.SetDefault("store.bigcache.max_entry_size", 4096)
	v.SetDefault("store.bigcache.hard_max_cache_size_mb", 0)

	v.SetDefault("cache.ttl", time.Hour)
	v.SetDefault("cache.codec", "json")
	v.SetDefault("cache.max_entry_bytes", 0)
	v.SetDefault("cache.disabled", false)

	v.SetDefault("strava.base_url", strava.DefaultBaseURL)
	v.SetDefault("strava.access_token", "")
	v.SetDefault("strava.per_page", 7)
	v.SetDefault("strava.timeout", 10*time.Second)
	v.SetDefault("strava.retry_count", 2)

	v.SetDefault("feed.detail_concurrency", 1)
	v.SetDefault("feed.location", "Local")

	v.SetDefault("log.backend", "zap")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("log.cache_events", false)
	v.SetDefault("log.lookup_every", 100)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}
