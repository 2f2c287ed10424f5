package api

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		_ = rdb.Close()
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestRedisFetcher(t *testing.T) {
	rdb := testRedis(t)
	ctx := context.Background()
	key := "cachedfetch-test:" + t.Name()

	require.NoError(t, rdb.Set(ctx, key, `{"id":7,"name":"grace"}`, 0).Err())
	t.Cleanup(func() { rdb.Del(context.Background(), key) })

	logger, _ := testLogger()
	f := NewRedisFetcher[user](rdb, "redis:", logger)

	got, err := f.Fetch(ctx, "redis:"+key)
	require.NoError(t, err)
	assert.Equal(t, user{ID: 7, Name: "grace"}, got)

	_, err = f.Fetch(ctx, "redis:"+key+":absent")
	assert.ErrorIs(t, err, ErrNotFound)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, OpRedis, te.Op)
}

func TestRedisFetcher_EmptyKey(t *testing.T) {
	logger, _ := testLogger()
	f := NewRedisFetcher[user](redis.NewClient(&redis.Options{Addr: "localhost:0"}), "redis:", logger)

	_, err := f.Fetch(context.Background(), "redis:")
	assert.ErrorIs(t, err, ErrEmptyKey)
}
