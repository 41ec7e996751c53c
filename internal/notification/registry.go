package notification

import (
	"slices"
)

// Registry maps a notification type to the strategy that delivers it.
// It is built once and only read afterwards, so concurrent lookups are safe.
type Registry struct {
	strategies map[Type]Strategy
}

// NewRegistry indexes strategies by the type they declare. When two
// strategies declare the same type the later one wins. An empty registry is
// valid; every dispatch against it fails with UnsupportedTypeError.
func NewRegistry(strategies ...Strategy) *Registry {
	r := &Registry{strategies: make(map[Type]Strategy, len(strategies))}
	for _, s := range strategies {
		if s == nil {
			continue
		}
		r.strategies[s.Type()] = s
	}
	return r
}

// Lookup returns the strategy registered for t.
func (r *Registry) Lookup(t Type) (Strategy, bool) {
	s, ok := r.strategies[t]
	return s, ok
}

// Types returns the registered types in sorted order.
func (r *Registry) Types() []Type {
	types := make([]Type, 0, len(r.strategies))
	for t := range r.strategies {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}
