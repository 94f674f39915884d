// Package sloghooks logs cache events with log/slog. Keys are redacted by
// default since detail keys carry activity ids.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/asidecache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	LookupEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix; use an identity
	// func to log keys as-is.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	lookupCtr atomic.Uint64
}

var _ asidecache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) Lookup(key string, hit bool) {
	if h.l == nil || !sample(h.opts.LookupEvery, &h.lookupCtr) {
		return
	}
	h.l.Debug("asidecache.lookup",
		"key", h.redact(key),
		"hit", hit)
}

func (h *Hooks) Bypass(key string) {
	if h.l == nil {
		return
	}
	h.l.Debug("asidecache.bypass", "key", h.redact(key))
}

func (h *Hooks) MalformedEntry(key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("asidecache.malformed_entry",
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) ProducerFailed(key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("asidecache.producer_failed",
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) StoreFailed(op, key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("asidecache.store_failed",
		"op", op,
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) ProviderSetRejected(key string) {
	if h.l == nil {
		return
	}
	h.l.Warn("asidecache.provider_set_rejected", "key", h.redact(key))
}
