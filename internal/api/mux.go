package api

import (
	"context"
	"strings"

	"cachedfetch/internal/services"
)

type route[T any] struct {
	prefix  string
	fetcher services.Fetcher[T]
}

// Mux dispatches each key to the fetcher registered for the longest matching
// prefix, falling back to a default fetcher.
type Mux[T any] struct {
	routes   []route[T]
	fallback services.Fetcher[T]
}

func NewMux[T any](fallback services.Fetcher[T]) *Mux[T] {
	return &Mux[T]{fallback: fallback}
}

// Handle registers f for keys starting with prefix.
func (m *Mux[T]) Handle(prefix string, f services.Fetcher[T]) *Mux[T] {
	m.routes = append(m.routes, route[T]{prefix: prefix, fetcher: f})
	return m
}

func (m *Mux[T]) Fetch(ctx context.Context, key string) (T, error) {
	return m.match(key).Fetch(ctx, key)
}

func (m *Mux[T]) match(key string) services.Fetcher[T] {
	best := -1
	var f services.Fetcher[T] = m.fallback
	for _, r := range m.routes {
		if strings.HasPrefix(key, r.prefix) && len(r.prefix) > best {
			best = len(r.prefix)
			f = r.fetcher
		}
	}
	return f
}
