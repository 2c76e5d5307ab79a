// Package core holds wiring shared by the restorer and the bridge.
package core

import (
	"cmp"
	"slices"
)

// Priority levels for layered handlers. Lower values run first (outermost).
const (
	OrderRecovery  = 0
	OrderRequestID = 10
	OrderTracing   = 20
	OrderAuth      = 30
	OrderAllowList = 40
	OrderRateLimit = 50
	OrderLogging   = 60
)

type entry[T any] struct {
	order int
	v     T
}

// Ordered collects layers with an explicit priority and returns them sorted,
// so the final chain does not depend on the order options were applied in.
type Ordered[T any] struct {
	entries []entry[T]
}

// Add registers v at the given order.
func (o *Ordered[T]) Add(order int, v T) {
	o.entries = append(o.entries, entry[T]{order: order, v: v})
}

// Len returns the number of registered layers.
func (o *Ordered[T]) Len() int {
	return len(o.entries)
}

// Build returns the layers sorted by order. Layers with equal order keep
// their registration order.
func (o *Ordered[T]) Build() []T {
	sorted := slices.Clone(o.entries)
	slices.SortStableFunc(sorted, func(a, b entry[T]) int {
		return cmp.Compare(a.order, b.order)
	})

	out := make([]T, 0, len(sorted))
	for _, e := range sorted {
		out = append(out, e.v)
	}
	return out
}
