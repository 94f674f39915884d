package asidecache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTeeFansOut(t *testing.T) {
	a, b := &recHooks{}, &recHooks{}
	h := Tee(a, nil, b)

	h.Lookup("k", true)
	h.Lookup("k", false)
	h.Bypass("k")
	h.MalformedEntry("k", errors.New("bad"))
	h.ProducerFailed("k", errors.New("down"))
	h.StoreFailed(OpSet, "k", errors.New("refused"))
	h.ProviderSetRejected("k")

	for i, r := range []*recHooks{a, b} {
		if r.hits.Load() != 1 || r.misses.Load() != 1 || r.bypass.Load() != 1 || r.malformed.Load() != 1 ||
			r.producer.Load() != 1 || r.store.Load() != 1 || r.rejected.Load() != 1 {
			t.Fatalf("hooks %d missed events: %+v", i, r)
		}
	}
}

func TestTeeSingleAndEmpty(t *testing.T) {
	a := &recHooks{}
	if got := Tee(nil, a); got != Hooks(a) {
		t.Fatalf("single hook should be returned as is, got %T", got)
	}
	Tee().Bypass("k") // no hooks, no panic
}

func TestTeeDrivenByCache(t *testing.T) {
	ctx := context.Background()
	a, b := &recHooks{}, &recHooks{}
	cc := newTestCache[int](t, newMemProvider(), func(o *Options[int]) { o.Hooks = Tee(a, b) })

	var calls counter
	if _, err := cc.FetchOrCompute(ctx, "k", calls.producer(1), time.Minute, false); err != nil {
		t.Fatal(err)
	}
	if _, err := cc.FetchOrCompute(ctx, "k", calls.producer(1), time.Minute, false); err != nil {
		t.Fatal(err)
	}
	for i, r := range []*recHooks{a, b} {
		if r.misses.Load() != 1 || r.hits.Load() != 1 {
			t.Fatalf("hooks %d: misses=%d hits=%d", i, r.misses.Load(), r.hits.Load())
		}
	}
}
