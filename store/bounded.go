package store

import (
	"errors"
	"sync/atomic"

	"github.com/dgraph-io/ristretto/v2"
)

// ErrInvalidCapacity is returned by NewBounded for a non-positive capacity.
var ErrInvalidCapacity = errors.New("store: capacity must be positive")

// Bounded is a Store backed by ristretto that holds at most maxEntries
// values (each entry has a cost of 1). Once full, ristretto's admission
// policy decides whether a new value replaces a colder one; a refused value
// makes Store return false.
type Bounded[V any] struct {
	rc *ristretto.Cache[string, V]

	// n tracks live entries; ristretto does not expose a count.
	n atomic.Int64
}

// NewBounded creates a Bounded store holding at most maxEntries values.
func NewBounded[V any](maxEntries int64) (*Bounded[V], error) {
	if maxEntries <= 0 {
		return nil, ErrInvalidCapacity
	}

	b := &Bounded[V]{}
	rc, err := ristretto.NewCache(&ristretto.Config[string, V]{
		NumCounters:        maxEntries * 10,
		MaxCost:            maxEntries,
		BufferItems:        64,
		IgnoreInternalCost: true,
		OnEvict:            func(*ristretto.Item[V]) { b.n.Add(-1) },
		OnReject:           func(*ristretto.Item[V]) { b.n.Add(-1) },
	})
	if err != nil {
		return nil, err
	}
	b.rc = rc
	return b, nil
}

// Load returns the value stored under key.
func (b *Bounded[V]) Load(key string) (V, bool) {
	return b.rc.Get(key)
}

// Store saves val under key and waits until ristretto has applied the write,
// so a following Load observes it.
func (b *Bounded[V]) Store(key string, val V) bool {
	_, existed := b.rc.Get(key)
	if !existed {
		b.n.Add(1)
	}
	if !b.rc.Set(key, val, 1) {
		if !existed {
			b.n.Add(-1)
		}
		return false
	}
	b.rc.Wait()

	// A rejected insert fires OnReject during Wait and undoes the count.
	_, ok := b.rc.Get(key)
	return ok
}

// Delete removes key.
func (b *Bounded[V]) Delete(key string) {
	if _, ok := b.rc.Get(key); !ok {
		return
	}
	b.rc.Del(key)
	b.rc.Wait()
	b.n.Add(-1)
}

// Len returns the number of live entries.
func (b *Bounded[V]) Len() int {
	return int(max(b.n.Load(), 0))
}

// Clear drops every entry.
func (b *Bounded[V]) Clear() {
	b.rc.Clear()
	b.n.Store(0)
}

// Close stops ristretto's background goroutines. The store must not be used
// afterwards.
func (b *Bounded[V]) Close() {
	b.rc.Close()
}
