// Package asidecache implements a read-through cache-aside engine in front of a
// slow upstream. Values are produced on demand, encoded with a pluggable codec
// and written to a byte store with a TTL; later calls are served from the store
// until the entry expires or the caller forces a refresh.
//
// Components:
//   - Provider: byte store with TTL (e.g. Redis, Olric, Ristretto, BigCache).
//   - Codec[V]: (de)serializes V <-> []byte. JSON by default.
//   - Producer[V]: the upstream call, bound by closure at the call site.
//
// FetchOrCompute protocol:
//
//	v, ok := store.Get(key)              // always, even when bypassing
//	if force       { v = produce(); store.Set(key, v, ttl) }
//	else if ok     { return v }
//	else           { v = produce(); store.Set(key, v, ttl) }
//
// There is no single-flight: concurrent misses on one key may each produce and
// write, and the last write wins. Producer errors are never cached.
package asidecache
