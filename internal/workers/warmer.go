package workers

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/apex/log"

	"cachedfetch/internal/models"
)

// Getter is the part of the cache service the warmer needs.
type Getter[T any] interface {
	Get(ctx context.Context, key string) (T, error)
}

type Worker interface {
	Start(ctx context.Context)
}

// Warmer pulls keys arriving on a channel through a cache so later callers
// are served from memory.
type Warmer[T any] struct {
	messages <-chan []byte
	cache    Getter[T]
	logger   log.Interface
}

var _ Worker = (*Warmer[any])(nil)

func NewWarmer[T any](messages <-chan []byte, cache Getter[T], logger log.Interface) *Warmer[T] {
	if logger == nil {
		logger = log.Log
	}
	return &Warmer[T]{
		messages: messages,
		cache:    cache,
		logger:   logger,
	}
}

func (w *Warmer[T]) Start(ctx context.Context) {
	w.logger.Info("warmer started")

	for {
		select {
		case value, ok := <-w.messages:
			if !ok {
				w.logger.Info("warmer input closed")
				return
			}
			w.handle(ctx, value)

		case <-ctx.Done():
			w.logger.Info("warmer stopped")
			return
		}
	}
}

func (w *Warmer[T]) handle(ctx context.Context, value []byte) {
	key, ok := ParseWarmRequest(value)
	if !ok {
		w.logger.WithField("message", string(value)).Warn("warmer: empty key")
		return
	}

	// The cache logs failures itself; the key stays a miss.
	if _, err := w.cache.Get(ctx, key); err == nil {
		w.logger.WithField("key", key).Debug("warmed")
	}
}

// ParseWarmRequest accepts either a JSON WarmRequest or a bare key.
func ParseWarmRequest(value []byte) (string, bool) {
	var req models.WarmRequest
	if err := json.Unmarshal(value, &req); err == nil {
		return req.Key, req.Key != ""
	}
	key := strings.TrimSpace(string(value))
	return key, key != ""
}
