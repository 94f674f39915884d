// Command asidecache serves the athlete's recent activities, reading through a
// shared key-value store in front of the Strava API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/unkn0wn-root/asidecache"
	"github.com/unkn0wn-root/asidecache/codec"
	"github.com/unkn0wn-root/asidecache/config"
	"github.com/unkn0wn-root/asidecache/feed"
	asynchook "github.com/unkn0wn-root/asidecache/hooks/async"
	promhooks "github.com/unkn0wn-root/asidecache/hooks/prom"
	sloghooks "github.com/unkn0wn-root/asidecache/hooks/slog"
	"github.com/unkn0wn-root/asidecache/internal/server"
	logruslog "github.com/unkn0wn-root/asidecache/log/logrus"
	sloglog "github.com/unkn0wn-root/asidecache/log/slog"
	zaplog "github.com/unkn0wn-root/asidecache/log/zap"
	zerologlog "github.com/unkn0wn-root/asidecache/log/zerolog"
	"github.com/unkn0wn-root/asidecache/provider"
	bcprov "github.com/unkn0wn-root/asidecache/provider/bigcache"
	olricprov "github.com/unkn0wn-root/asidecache/provider/olric"
	redisprov "github.com/unkn0wn-root/asidecache/provider/redis"
	rprov "github.com/unkn0wn-root/asidecache/provider/ristretto"
	"github.com/unkn0wn-root/asidecache/strava"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML or JSON config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "asidecache:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath, config.EnvPrefix)
	if err != nil {
		return err
	}

	logger, syncLog, err := newLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer syncLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			logger.Error("store close failed", asidecache.Fields{"err": err})
		}
	}()
	logger.Info("store ready", asidecache.Fields{"backend": cfg.Store.Backend})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := promhooks.New(reg)
	if err != nil {
		return err
	}
	events := eventLogger(cfg.Log, logger)
	listHooks := asynchook.New(cacheHooks("list", metrics, events, cfg.Log.LookupEvery), 1, 1024)
	defer listHooks.Close()
	detailHooks := asynchook.New(cacheHooks("details", metrics, events, cfg.Log.LookupEvery), 1, 1024)
	defer detailHooks.Close()

	listCodec, err := newCodec[[]strava.Activity](cfg.Cache)
	if err != nil {
		return err
	}
	detailCodec, err := newCodec[strava.ActivityDetail](cfg.Cache)
	if err != nil {
		return err
	}

	list, err := asidecache.New(asidecache.Options[[]strava.Activity]{
		Provider:   store,
		Name:       "list",
		Codec:      listCodec,
		Logger:     logger,
		Hooks:      listHooks,
		DefaultTTL: cfg.Cache.TTL,
		Disabled:   cfg.Cache.Disabled,
		Validate:   feed.ValidateList,
	})
	if err != nil {
		return err
	}
	details, err := asidecache.New(asidecache.Options[strava.ActivityDetail]{
		Provider:   store,
		Name:       "details",
		Codec:      detailCodec,
		Logger:     logger,
		Hooks:      detailHooks,
		DefaultTTL: cfg.Cache.TTL,
		Disabled:   cfg.Cache.Disabled,
		Validate:   feed.ValidateDetail,
	})
	if err != nil {
		return err
	}

	up := strava.New(strava.Config{
		BaseURL:     cfg.Strava.BaseURL,
		AccessToken: cfg.Strava.AccessToken,
		Timeout:     cfg.Strava.Timeout,
		RetryCount:  cfg.Strava.RetryCount,
	})
	defer up.Close()
	if cfg.Strava.AccessToken == "" {
		logger.Warn("strava access token not set; upstream calls will be rejected", nil)
	}

	loc, err := cfg.Feed.TimeLocation()
	if err != nil {
		return err
	}
	svc, err := feed.New(feed.Config{
		PerPage:           cfg.Strava.PerPage,
		TTL:               cfg.Cache.TTL,
		DetailConcurrency: cfg.Feed.DetailConcurrency,
		Location:          loc,
		Logger:            logger,
	}, up, list, details)
	if err != nil {
		return err
	}

	scfg := server.Config{
		Addr:           cfg.Server.Addr,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		RequestTimeout: cfg.Server.RequestTimeout,
		Logger:         logger,
	}
	if p, ok := store.(provider.Pinger); ok {
		scfg.Pinger = p
	}
	if cfg.Metrics.Enabled {
		scfg.Metrics = promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
		scfg.MetricsPath = cfg.Metrics.Path
	}
	srv := server.New(scfg, svc)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", nil)
	sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

func newLogger(cfg config.LogConfig) (asidecache.Logger, func(), error) {
	level := strings.ToLower(cfg.Level)
	switch cfg.Backend {
	case "zap":
		l, zl, err := zaplog.New(level, cfg.Development)
		if err != nil {
			return nil, nil, err
		}
		return l, func() { _ = zl.Sync() }, nil
	case "logrus":
		l, err := logruslog.New(os.Stderr, level, cfg.Development)
		return l, func() {}, err
	case "slog":
		return sloglog.New(os.Stderr, level, cfg.Development), func() {}, nil
	case "zerolog":
		l, err := zerologlog.New(os.Stderr, level, cfg.Development)
		return l, func() {}, err
	default:
		return nil, nil, fmt.Errorf("unknown log backend %q", cfg.Backend)
	}
}

// eventLogger returns the slog logger engine events go to, or nil when
// log.cache_events is off. The slog backend is reused; other backends get a
// JSON slog logger on stderr at the same level.
func eventLogger(cfg config.LogConfig, logger asidecache.Logger) *slog.Logger {
	if !cfg.CacheEvents {
		return nil
	}
	if l, ok := logger.(sloglog.Logger); ok {
		return l.L
	}
	return sloglog.New(os.Stderr, strings.ToLower(cfg.Level), false).L
}

// cacheHooks counts events for the named cache and, with events set, also
// logs them with lookups sampled every lookupEvery.
func cacheHooks(name string, metrics *promhooks.Metrics, events *slog.Logger, lookupEvery uint64) asidecache.Hooks {
	h := metrics.Hooks(name)
	if events == nil {
		return h
	}
	return asidecache.Tee(h, sloghooks.New(events.With("cache", name), sloghooks.Options{LookupEvery: lookupEvery}))
}

func openStore(ctx context.Context, cfg *config.Config) (provider.Provider, error) {
	switch s := cfg.Store; s.Backend {
	case "redis":
		return redisprov.Dial(ctx, redisprov.DialConfig{
			URL:            s.Redis.URL,
			Addr:           s.Redis.Addr,
			Password:       s.Redis.Password,
			DB:             s.Redis.DB,
			DialTimeout:    s.Redis.DialTimeout,
			ReadTimeout:    s.Redis.ReadTimeout,
			WriteTimeout:   s.Redis.WriteTimeout,
			PoolSize:       s.Redis.PoolSize,
			ConnectTries:   s.Redis.ConnectTries,
			ConnectMaxWait: s.Redis.ConnectMaxWait,
		})
	case "olric":
		return olricprov.New(olricprov.Config{Servers: s.Olric.Servers, DMap: s.Olric.DMap})
	case "ristretto":
		return rprov.New(rprov.Config{
			NumCounters: s.Ristretto.NumCounters,
			MaxCost:     s.Ristretto.MaxCost,
			BufferItems: s.Ristretto.BufferItems,
		})
	case "bigcache":
		return bcprov.New(bcprov.Config{
			LifeWindow:         cfg.Cache.TTL,
			CleanWindow:        s.BigCache.CleanWindow,
			MaxEntriesInWindow: s.BigCache.MaxEntriesInWindow,
			MaxEntrySize:       s.BigCache.MaxEntrySize,
			HardMaxCacheSizeMB: s.BigCache.HardMaxCacheSizeMB,
		})
	default:
		return nil, errors.New("unknown store backend " + s.Backend)
	}
}

func newCodec[V any](cfg config.CacheConfig) (codec.Codec[V], error) {
	var inner codec.Codec[V]
	switch cfg.Codec {
	case "json":
		inner = codec.JSON[V]{}
	case "cbor":
		c, err := codec.NewCBOR[V](true)
		if err != nil {
			return nil, err
		}
		inner = c
	case "msgpack":
		inner = codec.Msgpack[V]{}
	case "protobuf":
		inner = codec.Protobuf[V]{}
	default:
		return nil, fmt.Errorf("unknown codec %q", cfg.Codec)
	}
	if cfg.MaxEntryBytes > 0 {
		return codec.Limit[V]{Inner: inner, MaxDecode: cfg.MaxEntryBytes}, nil
	}
	return inner, nil
}
