package store

// Map is an unbounded Store backed by a Go map.
type Map[V any] struct {
	items map[string]V
}

// NewMap creates an empty Map.
func NewMap[V any]() *Map[V] {
	return &Map[V]{items: make(map[string]V)}
}

// Load returns the value stored under key.
func (m *Map[V]) Load(key string) (V, bool) {
	v, ok := m.items[key]
	return v, ok
}

// Store saves val under key. It always succeeds.
func (m *Map[V]) Store(key string, val V) bool {
	m.items[key] = val
	return true
}

// Delete removes key.
func (m *Map[V]) Delete(key string) {
	delete(m.items, key)
}

// Len returns the number of entries.
func (m *Map[V]) Len() int {
	return len(m.items)
}

// Clear drops every entry.
func (m *Map[V]) Clear() {
	clear(m.items)
}
