// Package provider defines the key-value store the cache-aside engine reads
// from and writes back to.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly the
// same []byte that was previously passed to Set for a key (no prepended/appended
// metadata, no re-encoding, no mutation). Whatever the codec produced is what
// other readers of the store see under the key.
//
// A provider is a process-wide shared resource. It is constructed once at
// startup, injected into every cache that uses it, and closed at shutdown.
package provider

import (
	"context"
	"time"
)

// Provider is a minimal byte store with TTLs.
// Must be safe for concurrent use. Per-key Set must be atomic; nothing else is
// coordinated across keys.
type Provider interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL, passed through unmodified to the
	// backend when it supports per-entry expiry. May ignore cost if unsupported.
	// Returns ok=false when the store rejected the write under pressure.
	Set(ctx context.Context, key string, value []byte, cost int64, ttl time.Duration) (ok bool, err error)

	// Del removes a key (best-effort).
	Del(ctx context.Context, key string) error

	// Close releases resources.
	Close(ctx context.Context) error
}

// Pinger is implemented by network-backed providers that can report
// reachability without touching any key.
type Pinger interface {
	Ping(ctx context.Context) error
}
