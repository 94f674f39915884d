package asidecache

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/asidecache/codec"
	pr "github.com/unkn0wn-root/asidecache/provider"
)

// Producer computes a fresh value on miss or bypass. Anything it needs beyond
// cancellation (ids, tokens) is bound by closure at the call site.
type Producer[V any] func(ctx context.Context) (V, error)

// Cache is the cache-aside engine over a byte Provider.
// V is the caller's value type. Serialization is handled by a pluggable Codec[V].
type Cache[V any] interface {
	Enabled() bool

	// Close closes the Provider. Caches sharing one provider must not each
	// call it; close the provider once instead.
	Close(context.Context) error

	// Get reads and decodes key without producing. A present but undecodable
	// entry is reported as *MalformedEntryError.
	Get(ctx context.Context, key string) (v V, ok bool, err error)

	// FetchOrCompute always reads key first. With forceRefresh it ignores what
	// it read and produces; otherwise a stored value is returned and produce is
	// not called. Produced values are written back with ttl (0 => DefaultTTL).
	FetchOrCompute(ctx context.Context, key string, produce Producer[V], ttl time.Duration, forceRefresh bool) (V, error)

	// StoreAndReturn produces, writes the encoded value under key and returns it.
	// No read is performed.
	StoreAndReturn(ctx context.Context, key string, produce Producer[V], ttl time.Duration) (V, error)
}

// Options tune the engine. Only Provider is required.
type Options[V any] struct {
	// Required
	Provider pr.Provider

	Name       string        // label used in logs and hooks; not part of stored keys
	Codec      c.Codec[V]    // nil => codec.JSON[V]
	Logger     Logger        // nil => NopLogger
	Hooks      Hooks         // nil => NopHooks
	DefaultTTL time.Duration // used when a call passes ttl == 0; 0 => 1h
	Disabled   bool          // skip the store; every call runs the producer

	// Validate, when set, is applied to every decoded entry. A non-nil error
	// makes the entry malformed.
	Validate func(V) error
}

func New[V any](opts Options[V]) (Cache[V], error) {
	return newCache[V](opts)
}
