package services

import (
	"context"
	"sync"

	"github.com/apex/log"
	"golang.org/x/sync/singleflight"
)

// CacheService memoizes successful results of a Fetcher by key. Entries are
// kept for the lifetime of the service; failures are never stored.
type CacheService[T any] struct {
	fetcher Fetcher[T]
	logger  log.Interface
	notify  func(key string, value T)

	coalesce bool
	group    singleflight.Group

	mu      sync.RWMutex
	entries map[string]T
}

type Option[T any] func(*CacheService[T])

// WithLogger replaces the global apex logger used for hit and failure records.
func WithLogger[T any](logger log.Interface) Option[T] {
	return func(s *CacheService[T]) {
		s.logger = logger
	}
}

// WithNotifier registers fn to be called after a freshly fetched value has
// been stored. It is not called for hits or failures.
func WithNotifier[T any](fn func(key string, value T)) Option[T] {
	return func(s *CacheService[T]) {
		s.notify = fn
	}
}

// WithCoalescing makes concurrent misses for the same key share a single
// Fetcher call. Without it every concurrent miss fetches on its own and the
// last one to finish wins.
func WithCoalescing[T any]() Option[T] {
	return func(s *CacheService[T]) {
		s.coalesce = true
	}
}

func NewCacheService[T any](fetcher Fetcher[T], opts ...Option[T]) *CacheService[T] {
	s := &CacheService[T]{
		fetcher: fetcher,
		logger:  log.Log,
		entries: make(map[string]T),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type outcome[T any] struct {
	value T
	err   error
}

// Get returns the stored value for key, or fetches, stores and returns it.
// A fetch error is returned as is and leaves key uncached.
//
// The Fetcher runs detached from ctx cancellation. If ctx is done first, Get
// returns ctx.Err() while the fetch carries on and stores its result.
func (s *CacheService[T]) Get(ctx context.Context, key string) (T, error) {
	if v, ok := s.lookup(key); ok {
		s.logger.WithField("key", key).Info("cache hit")
		return v, nil
	}

	done := make(chan outcome[T], 1)
	go func() {
		fctx := context.WithoutCancel(ctx)
		var o outcome[T]
		if s.coalesce {
			o.value, o.err = s.fetchShared(fctx, key)
		} else {
			o.value, o.err = s.fetch(fctx, key)
		}
		done <- o
	}()

	select {
	case o := <-done:
		return o.value, o.err
	case <-ctx.Done():
		select {
		case o := <-done:
			return o.value, o.err
		default:
		}
		var zero T
		return zero, ctx.Err()
	}
}

// Len reports the number of stored entries.
func (s *CacheService[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Contains reports whether key has a stored entry.
func (s *CacheService[T]) Contains(key string) bool {
	_, ok := s.lookup(key)
	return ok
}

func (s *CacheService[T]) lookup(key string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key]
	return v, ok
}

func (s *CacheService[T]) store(key string, value T) {
	s.mu.Lock()
	s.entries[key] = value
	s.mu.Unlock()
}

func (s *CacheService[T]) fetch(ctx context.Context, key string) (T, error) {
	result, err := s.fetcher.Fetch(ctx, key)
	if err != nil {
		s.logger.WithField("key", key).WithError(err).Error("fetch failed")
		var zero T
		return zero, err
	}

	s.store(key, result)
	if s.notify != nil {
		s.notify(key, result)
	}
	return result, nil
}

func (s *CacheService[T]) fetchShared(ctx context.Context, key string) (T, error) {
	v, err, _ := s.group.Do(key, func() (any, error) {
		// A call that finished between our lookup and joining the group has
		// already stored the entry.
		if v, ok := s.lookup(key); ok {
			return v, nil
		}
		return s.fetch(ctx, key)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	result, _ := v.(T)
	return result, nil
}
