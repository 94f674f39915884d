// Package promhooks counts cache events as Prometheus metrics.
//
//	m, err := promhooks.New(registry)
//	list, _ := asidecache.New(asidecache.Options[[]strava.Activity]{
//	    Provider: provider,
//	    Hooks:    m.Hooks("list"),
//	})
//
// All counters carry a "cache" label so one Metrics serves every cache.
package promhooks

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/asidecache"
)

const namespace = "asidecache"

const (
	resultHit  = "hit"
	resultMiss = "miss"
)

type Metrics struct {
	lookups        *prometheus.CounterVec
	bypass         *prometheus.CounterVec
	malformed      *prometheus.CounterVec
	producerErrors *prometheus.CounterVec
	storeErrors    *prometheus.CounterVec
	setRejected    *prometheus.CounterVec
}

// New creates the counters and registers them with reg. A counter already
// registered by an earlier New on the same registry is reused.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		return nil, errors.New("promhooks: nil registerer")
	}
	m := &Metrics{}
	var err error
	if m.lookups, err = register(reg, "lookups_total", "Store reads by result.", "cache", "result"); err != nil {
		return nil, err
	}
	if m.bypass, err = register(reg, "bypass_total", "Forced refreshes that skipped the stored value.", "cache"); err != nil {
		return nil, err
	}
	if m.malformed, err = register(reg, "malformed_total", "Stored entries that failed to decode or validate.", "cache"); err != nil {
		return nil, err
	}
	if m.producerErrors, err = register(reg, "producer_errors_total", "Upstream producer failures.", "cache"); err != nil {
		return nil, err
	}
	if m.storeErrors, err = register(reg, "store_errors_total", "Failed store reads and writes.", "cache", "op"); err != nil {
		return nil, err
	}
	if m.setRejected, err = register(reg, "set_rejected_total", "Writes the store declined under pressure.", "cache"); err != nil {
		return nil, err
	}
	return m, nil
}

func register(reg prometheus.Registerer, name, help string, labels ...string) (*prometheus.CounterVec, error) {
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, labels)
	if err := reg.Register(vec); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("failed to register %s_%s: %w", namespace, name, err)
	}
	return vec, nil
}

// Hooks returns the asidecache.Hooks view for one cache.
func (m *Metrics) Hooks(cache string) asidecache.Hooks {
	return &hooks{m: m, cache: cache}
}

type hooks struct {
	m     *Metrics
	cache string
}

var _ asidecache.Hooks = (*hooks)(nil)

func (h *hooks) Lookup(_ string, hit bool) {
	r := resultMiss
	if hit {
		r = resultHit
	}
	h.m.lookups.WithLabelValues(h.cache, r).Inc()
}

func (h *hooks) Bypass(string) { h.m.bypass.WithLabelValues(h.cache).Inc() }

func (h *hooks) MalformedEntry(string, error) { h.m.malformed.WithLabelValues(h.cache).Inc() }

func (h *hooks) ProducerFailed(string, error) { h.m.producerErrors.WithLabelValues(h.cache).Inc() }

func (h *hooks) StoreFailed(op, _ string, _ error) {
	h.m.storeErrors.WithLabelValues(h.cache, op).Inc()
}

func (h *hooks) ProviderSetRejected(string) { h.m.setRejected.WithLabelValues(h.cache).Inc() }
