// Package store provides the keyed storage used by the record cache: an
// unbounded map and a ristretto-backed store with an upper bound on the
// number of entries it keeps.
package store

// Store is a keyed value container. Implementations are not required to be
// safe for concurrent use; callers serialize access themselves.
type Store[V any] interface {
	// Load returns the value stored under key. The boolean reports a hit.
	Load(key string) (V, bool)

	// Store saves val under key, replacing any existing value. It reports
	// false when the value was not kept.
	Store(key string, val V) bool

	// Delete removes key. Deleting a missing key is a no-op.
	Delete(key string)

	// Len returns the number of stored entries.
	Len() int

	// Clear removes every entry.
	Clear()
}
