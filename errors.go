package asidecache

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreUnavailable matches any failed provider read or write.
	ErrStoreUnavailable = errors.New("asidecache: store unavailable")
	// ErrProducerFailure matches any producer error. Nothing is stored for it.
	ErrProducerFailure = errors.New("asidecache: producer failed")
	// ErrMalformedEntry matches a stored entry that does not decode into V
	// or that Options.Validate rejected.
	ErrMalformedEntry = errors.New("asidecache: malformed entry")

	ErrEmptyKey    = errors.New("asidecache: empty key")
	ErrNilProducer = errors.New("asidecache: nil producer")
	ErrInvalidTTL  = errors.New("asidecache: invalid ttl")
)

// Store operations reported in StoreError and Hooks.StoreFailed.
const (
	OpGet = "get"
	OpSet = "set"
)

type StoreError struct {
	Op  string
	Key string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Is(target error) bool { return target == ErrStoreUnavailable }
func (e *StoreError) Unwrap() error        { return e.Err }

type ProducerError struct {
	Key string
	Err error
}

func (e *ProducerError) Error() string {
	return fmt.Sprintf("produce %q: %v", e.Key, e.Err)
}

func (e *ProducerError) Is(target error) bool { return target == ErrProducerFailure }
func (e *ProducerError) Unwrap() error        { return e.Err }

type MalformedEntryError struct {
	Key string
	Err error
}

func (e *MalformedEntryError) Error() string {
	return fmt.Sprintf("malformed entry %q: %v", e.Key, e.Err)
}

func (e *MalformedEntryError) Is(target error) bool { return target == ErrMalformedEntry }
func (e *MalformedEntryError) Unwrap() error        { return e.Err }
