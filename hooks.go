package asidecache

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The cache calls them on hot paths.
type Hooks interface {
	// A store read completed; hit reports whether key was present.
	Lookup(key string, hit bool)

	// A call with forceRefresh skipped whatever the read returned.
	Bypass(key string)

	// A stored entry failed to decode or validate.
	MalformedEntry(key string, err error)

	// The producer returned an error; nothing was written.
	ProducerFailed(key string, err error)

	// Provider Get/Set returned a transport error. op is OpGet or OpSet.
	StoreFailed(op, key string, err error)

	// Provider returned ok=false on Set (backpressure/eviction).
	ProviderSetRejected(key string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Lookup(string, bool)               {}
func (NopHooks) Bypass(string)                     {}
func (NopHooks) MalformedEntry(string, error)      {}
func (NopHooks) ProducerFailed(string, error)      {}
func (NopHooks) StoreFailed(string, string, error) {}
func (NopHooks) ProviderSetRejected(string)        {}

// Tee fans every event out to each of hs in order. Nil entries are skipped.
func Tee(hs ...Hooks) Hooks {
	out := make(teeHooks, 0, len(hs))
	for _, h := range hs {
		if h != nil {
			out = append(out, h)
		}
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}

type teeHooks []Hooks

func (t teeHooks) Lookup(k string, hit bool) {
	for _, h := range t {
		h.Lookup(k, hit)
	}
}

func (t teeHooks) Bypass(k string) {
	for _, h := range t {
		h.Bypass(k)
	}
}

func (t teeHooks) MalformedEntry(k string, err error) {
	for _, h := range t {
		h.MalformedEntry(k, err)
	}
}

func (t teeHooks) ProducerFailed(k string, err error) {
	for _, h := range t {
		h.ProducerFailed(k, err)
	}
}

func (t teeHooks) StoreFailed(op, k string, err error) {
	for _, h := range t {
		h.StoreFailed(op, k, err)
	}
}

func (t teeHooks) ProviderSetRejected(k string) {
	for _, h := range t {
		h.ProviderSetRejected(k)
	}
}
