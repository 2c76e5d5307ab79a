// Package cvar models the game server's configuration-variable store: named
// numeric values that operators can change while the server runs.
package cvar

import (
	"math"
	"sync"
	"time"
)

// SaveTime is the variable holding the restore window in seconds.
const SaveTime = "_scoreSaveTime"

// DefaultSaveTime is the restore window applied when SaveTime is unset.
const DefaultSaveTime = 120 * time.Second

// Store is the get/set surface of a variable store. Hosts with their own
// variable database implement it; Memory serves embedded use and tests.
type Store interface {
	Get(name string) (float64, bool)
	Set(name string, value float64)
}

// Memory is an in-process Store safe for concurrent use.
type Memory struct {
	mu   sync.RWMutex
	vals map[string]float64
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{vals: make(map[string]float64)}
}

// Get returns the value of name.
func (m *Memory) Get(name string) (float64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vals[name]
	return v, ok
}

// Set assigns value to name.
func (m *Memory) Set(name string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vals[name] = value
}

// EnsureDefault sets name to def only when the store has no value for it, so
// a value configured before startup is left alone.
func EnsureDefault(s Store, name string, def float64) {
	if _, ok := s.Get(name); !ok {
		s.Set(name, def)
	}
}

// Seconds returns a function that reads name from s on every call and
// converts it to a duration. Missing, negative, NaN or infinite values yield
// def. Values beyond the range of time.Duration saturate at its maximum.
func Seconds(s Store, name string, def time.Duration) func() time.Duration {
	return func() time.Duration {
		v, ok := s.Get(name)
		if !ok || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return def
		}
		ns := v * float64(time.Second)
		if ns >= math.MaxInt64 {
			return time.Duration(math.MaxInt64)
		}
		return time.Duration(ns)
	}
}
