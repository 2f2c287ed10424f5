package services

import "context"

// Fetcher retrieves the payload addressed by key.
type Fetcher[T any] interface {
	Fetch(ctx context.Context, key string) (T, error)
}

// FetchFunc adapts an ordinary function to a Fetcher.
type FetchFunc[T any] func(ctx context.Context, key string) (T, error)

func (f FetchFunc[T]) Fetch(ctx context.Context, key string) (T, error) {
	return f(ctx, key)
}
