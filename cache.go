package asidecache

import (
	"context"
	"errors"
	"fmt"
	"time"

	c "github.com/unkn0wn-root/asidecache/codec"
	pr "github.com/unkn0wn-root/asidecache/provider"
)

const defaultTTL = time.Hour

type cache[V any] struct {
	name     string
	provider pr.Provider
	codec    c.Codec[V]
	log      Logger
	hooks    Hooks
	enabled  bool

	defaultTTL time.Duration
	validate   func(V) error
}

func newCache[V any](opts Options[V]) (*cache[V], error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("asidecache: provider is required")
	}
	if opts.DefaultTTL < 0 {
		return nil, fmt.Errorf("asidecache: default ttl must not be negative, got %v", opts.DefaultTTL)
	}

	ch := &cache[V]{
		name:     opts.Name,
		provider: opts.Provider,
		enabled:  !opts.Disabled,
		validate: opts.Validate,
	}

	// defaults
	if opts.Codec != nil {
		ch.codec = opts.Codec
	} else {
		ch.codec = c.JSON[V]{}
	}
	ch.log = coalesce[Logger](opts.Logger, NopLogger{})
	ch.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	ch.defaultTTL = coalesce[time.Duration](opts.DefaultTTL, defaultTTL)

	return ch, nil
}

func (ch *cache[V]) Enabled() bool { return ch.enabled }

func (ch *cache[V]) Close(ctx context.Context) error {
	if ch.provider != nil {
		return ch.provider.Close(ctx)
	}
	return nil
}

func (ch *cache[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	if key == "" {
		return zero, false, ErrEmptyKey
	}
	if !ch.enabled {
		return zero, false, nil
	}
	return ch.lookup(ctx, key)
}

func (ch *cache[V]) FetchOrCompute(ctx context.Context, key string, produce Producer[V], ttl time.Duration, forceRefresh bool) (V, error) {
	var zero V
	if err := checkCall(key, produce, ttl); err != nil {
		return zero, err
	}
	if !ch.enabled {
		return ch.produce(ctx, key, produce)
	}

	// The read happens even when bypassing so hit/miss reporting stays
	// identical for both modes.
	existing, ok, err := ch.lookup(ctx, key)
	if err != nil && (!forceRefresh || !errors.Is(err, ErrMalformedEntry)) {
		return zero, err
	}

	if forceRefresh {
		ch.hooks.Bypass(key)
		ch.log.Debug("calling upstream (bypass)", Fields{"cache": ch.name, "key": key})
		return ch.StoreAndReturn(ctx, key, produce, ttl)
	}

	if ok {
		ch.log.Debug("serving from store", Fields{"cache": ch.name, "key": key})
		return existing, nil
	}

	ch.log.Debug("calling upstream; key does not exist", Fields{"cache": ch.name, "key": key})
	return ch.StoreAndReturn(ctx, key, produce, ttl)
}

func (ch *cache[V]) StoreAndReturn(ctx context.Context, key string, produce Producer[V], ttl time.Duration) (V, error) {
	var zero V
	if err := checkCall(key, produce, ttl); err != nil {
		return zero, err
	}

	v, err := ch.produce(ctx, key, produce)
	if err != nil {
		return zero, err
	}
	if !ch.enabled {
		return v, nil
	}
	if ttl == 0 {
		ttl = ch.defaultTTL
	}

	payload, err := ch.codec.Encode(v)
	if err != nil {
		// nothing was written; the produced value is still good
		ch.log.Error("encode failed; value not stored", Fields{"cache": ch.name, "key": key, "err": err})
		return v, fmt.Errorf("asidecache: encode %q: %w", key, err)
	}

	ok, err := ch.provider.Set(ctx, key, payload, int64(len(payload)), ttl)
	if err != nil {
		ch.hooks.StoreFailed(OpSet, key, err)
		ch.log.Warn("store write failed", Fields{"cache": ch.name, "key": key, "err": err})
		return v, &StoreError{Op: OpSet, Key: key, Err: err}
	}
	if !ok {
		ch.hooks.ProviderSetRejected(key)
		ch.log.Debug("store rejected write (pressure)", Fields{"cache": ch.name, "key": key})
	}
	return v, nil
}

// lookup performs the single store read of a call.
// A decode or validation failure is returned as *MalformedEntryError.
func (ch *cache[V]) lookup(ctx context.Context, key string) (V, bool, error) {
	var zero V
	raw, ok, err := ch.provider.Get(ctx, key)
	if err != nil {
		ch.hooks.StoreFailed(OpGet, key, err)
		ch.log.Warn("store read failed", Fields{"cache": ch.name, "key": key, "err": err})
		return zero, false, &StoreError{Op: OpGet, Key: key, Err: err}
	}
	ch.hooks.Lookup(key, ok)
	if !ok {
		return zero, false, nil
	}

	v, err := ch.codec.Decode(raw)
	if err == nil && ch.validate != nil {
		err = ch.validate(v)
	}
	if err != nil {
		ch.hooks.MalformedEntry(key, err)
		ch.log.Warn("malformed entry in store", Fields{"cache": ch.name, "key": key, "err": err})
		return zero, false, &MalformedEntryError{Key: key, Err: err}
	}
	return v, true, nil
}

func (ch *cache[V]) produce(ctx context.Context, key string, produce Producer[V]) (V, error) {
	v, err := produce(ctx)
	if err != nil {
		var zero V
		ch.hooks.ProducerFailed(key, err)
		ch.log.Warn("producer failed; nothing stored", Fields{"cache": ch.name, "key": key, "err": err})
		return zero, &ProducerError{Key: key, Err: err}
	}
	return v, nil
}

func checkCall[V any](key string, produce Producer[V], ttl time.Duration) error {
	switch {
	case key == "":
		return ErrEmptyKey
	case produce == nil:
		return ErrNilProducer
	case ttl < 0:
		return fmt.Errorf("%w: %v", ErrInvalidTTL, ttl)
	}
	return nil
}

// coalesce returns def when v is the zero value of T.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
