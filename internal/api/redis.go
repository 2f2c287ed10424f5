package api

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/apex/log"
	"github.com/redis/go-redis/v9"
)

// RedisFetcher reads JSON documents stored as plain string values in Redis.
// The key, minus an optional prefix, is used as the Redis key.
type RedisFetcher[T any] struct {
	redis  redis.Cmdable
	prefix string
	logger log.Interface
}

func NewRedisFetcher[T any](client redis.Cmdable, prefix string, logger log.Interface) *RedisFetcher[T] {
	if logger == nil {
		logger = log.Log
	}
	return &RedisFetcher[T]{redis: client, prefix: prefix, logger: logger}
}

func (f *RedisFetcher[T]) Fetch(ctx context.Context, key string) (T, error) {
	var result T
	redisKey := strings.TrimPrefix(key, f.prefix)
	if redisKey == "" {
		return result, &TransportError{Key: key, Op: OpRedis, Err: ErrEmptyKey}
	}

	f.logger.WithField("key", key).WithField("redis_key", redisKey).Info("fetching")

	data, err := f.redis.Get(ctx, redisKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return result, &TransportError{Key: key, Op: OpRedis, Err: ErrNotFound}
	}
	if err != nil {
		return result, &TransportError{Key: key, Op: OpRedis, Err: err}
	}

	if err := json.Unmarshal(data, &result); err != nil {
		var zero T
		return zero, &TransportError{Key: key, Op: OpDecode, Err: err}
	}
	return result, nil
}
