// Package asynchook moves hook calls off the request path.
//
//	raw := promhooks.New(prometheus.DefaultRegisterer).Hooks("list")
//	hooks := asynchook.New(raw, 1, 1024) // 1 worker; queue 1024 events
//	defer hooks.Close()
//
//	list, _ := asidecache.New(asidecache.Options[[]strava.Activity]{
//	    Provider: provider,
//	    Hooks:    hooks, // or raw if you don't want async
//	})
//
// Events are dropped, never blocked on, when the queue is full.
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/asidecache"
)

type Hooks struct {
	inner asidecache.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once

	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

var _ asidecache.Hooks = (*Hooks)(nil)

func New(inner asidecache.Hooks, workers, qlen int) *Hooks {
	if inner == nil {
		inner = asidecache.NopHooks{}
	}
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Events arriving after
// Close are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped reports events discarded because the queue was full or closed.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default:
		h.dropped.Add(1)
	}
}

func (h *Hooks) Lookup(k string, hit bool) { h.try(func() { h.inner.Lookup(k, hit) }) }
func (h *Hooks) Bypass(k string)           { h.try(func() { h.inner.Bypass(k) }) }
func (h *Hooks) MalformedEntry(k string, err error) {
	h.try(func() { h.inner.MalformedEntry(k, err) })
}
func (h *Hooks) ProducerFailed(k string, err error) {
	h.try(func() { h.inner.ProducerFailed(k, err) })
}
func (h *Hooks) StoreFailed(op, k string, err error) {
	h.try(func() { h.inner.StoreFailed(op, k, err) })
}
func (h *Hooks) ProviderSetRejected(k string) { h.try(func() { h.inner.ProviderSetRejected(k) }) }
