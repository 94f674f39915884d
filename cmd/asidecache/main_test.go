package main

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/unkn0wn-root/asidecache"
	"github.com/unkn0wn-root/asidecache/codec"
	"github.com/unkn0wn-root/asidecache/config"
	promhooks "github.com/unkn0wn-root/asidecache/hooks/prom"
	sloglog "github.com/unkn0wn-root/asidecache/log/slog"
	"github.com/unkn0wn-root/asidecache/strava"
)

func TestNewCodec(t *testing.T) {
	in := []strava.Activity{{ID: 9, Name: "Hill Repeats", StartDate: "2024-05-01T06:00:00Z", Distance: 8000}}

	for _, name := range []string{"json", "cbor", "msgpack", "protobuf"} {
		t.Run(name, func(t *testing.T) {
			cd, err := newCodec[[]strava.Activity](config.CacheConfig{Codec: name})
			if err != nil {
				t.Fatalf("newCodec: %v", err)
			}
			b, err := cd.Encode(in)
			if err != nil {
				t.Fatal(err)
			}
			out, err := cd.Decode(b)
			if err != nil {
				t.Fatal(err)
			}
			if len(out) != 1 || out[0] != in[0] {
				t.Fatalf("round trip: %+v", out)
			}
		})
	}

	cd, err := newCodec[[]strava.Activity](config.CacheConfig{Codec: "protobuf"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := cd.(codec.Protobuf[[]strava.Activity]); !ok {
		t.Fatalf("protobuf codec = %T", cd)
	}

	limited, err := newCodec[[]strava.Activity](config.CacheConfig{Codec: "json", MaxEntryBytes: 4})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := limited.Decode([]byte(`[{"id":1}]`)); err == nil {
		t.Fatalf("max_entry_bytes not applied")
	}

	if _, err := newCodec[int](config.CacheConfig{Codec: "xml"}); err == nil {
		t.Fatalf("unknown codec accepted")
	}
}

func TestCacheHooksMetricsOnly(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := promhooks.New(reg)
	if err != nil {
		t.Fatal(err)
	}
	h := cacheHooks("list", m, nil, 0)
	h.Bypass("allActivities-4-3")

	if n, err := testutil.GatherAndCount(reg, "asidecache_bypass_total"); err != nil || n != 1 {
		t.Fatalf("bypass series = %d, %v", n, err)
	}
}

func TestCacheHooksWithEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := promhooks.New(reg)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	events := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	h := cacheHooks("details", m, events, 2)
	h.Lookup("activity-1-details-4-3", true)
	h.Lookup("activity-1-details-4-3", true)
	h.StoreFailed(asidecache.OpSet, "activity-1-details-4-3", errors.New("refused"))

	if n, err := testutil.GatherAndCount(reg, "asidecache_lookups_total", "asidecache_store_errors_total"); err != nil || n != 2 {
		t.Fatalf("series = %d, %v", n, err)
	}
	out := buf.String()
	if got := strings.Count(out, "asidecache.lookup"); got != 1 {
		t.Fatalf("sampled lookups logged = %d, want 1: %s", got, out)
	}
	if !strings.Contains(out, "asidecache.store_failed") || !strings.Contains(out, `"cache":"details"`) {
		t.Fatalf("store failure not logged with cache name: %s", out)
	}
}

func TestEventLogger(t *testing.T) {
	if l := eventLogger(config.LogConfig{Backend: "slog", Level: "info"}, asidecache.NopLogger{}); l != nil {
		t.Fatalf("events logged while cache_events is off")
	}

	sl := sloglog.New(&bytes.Buffer{}, "debug", false)
	if l := eventLogger(config.LogConfig{Backend: "slog", CacheEvents: true}, sl); l != sl.L {
		t.Fatalf("slog backend logger not reused")
	}
	if l := eventLogger(config.LogConfig{Backend: "zap", Level: "warn", CacheEvents: true}, asidecache.NopLogger{}); l == nil {
		t.Fatalf("no event logger for non-slog backend")
	}
}
