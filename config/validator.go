package config

import (
	"fmt"
	"strings"

	"github.com/unkn0wn-root/asidecache/strava"
)

// Validate rejects values the service cannot start with.
func Validate(cfg *Config) error {
	if cfg.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}

	switch cfg.Store.Backend {
	case "redis":
		if cfg.Store.Redis.URL == "" && cfg.Store.Redis.Addr == "" {
			return fmt.Errorf("store.redis.url or store.redis.addr is required")
		}
	case "olric":
		if len(cfg.Store.Olric.Servers) == 0 {
			return fmt.Errorf("store.olric.servers is required")
		}
	case "ristretto":
		r := cfg.Store.Ristretto
		if r.NumCounters <= 0 || r.MaxCost <= 0 || r.BufferItems <= 0 {
			return fmt.Errorf("store.ristretto num_counters, max_cost and buffer_items must be positive")
		}
	case "bigcache":
	default:
		return fmt.Errorf("store.backend %q is not one of redis, olric, ristretto, bigcache", cfg.Store.Backend)
	}

	if cfg.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive")
	}
	switch cfg.Cache.Codec {
	case "json", "cbor", "msgpack", "protobuf":
	default:
		return fmt.Errorf("cache.codec %q is not one of json, cbor, msgpack, protobuf", cfg.Cache.Codec)
	}
	if cfg.Cache.MaxEntryBytes < 0 {
		return fmt.Errorf("cache.max_entry_bytes must not be negative")
	}

	if cfg.Strava.BaseURL == "" {
		return fmt.Errorf("strava.base_url is required")
	}
	if cfg.Strava.PerPage < 1 || cfg.Strava.PerPage > strava.MaxPerPage {
		return fmt.Errorf("strava.per_page must be between 1 and %d", strava.MaxPerPage)
	}
	if cfg.Strava.RetryCount < 0 {
		return fmt.Errorf("strava.retry_count must not be negative")
	}

	if cfg.Feed.DetailConcurrency < 1 {
		return fmt.Errorf("feed.detail_concurrency must be at least 1")
	}
	if _, err := cfg.Feed.TimeLocation(); err != nil {
		return fmt.Errorf("feed.location: %w", err)
	}

	switch cfg.Log.Backend {
	case "zap", "logrus", "slog", "zerolog":
	default:
		return fmt.Errorf("log.backend %q is not one of zap, logrus, slog, zerolog", cfg.Log.Backend)
	}
	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", cfg.Log.Level)
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /")
	}
	return nil
}
