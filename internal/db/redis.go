package db

import (
	"context"
	"fmt"
	"time"

	"cachedfetch/internal/config"

	"github.com/apex/log"
	"github.com/redis/go-redis/v9"
)

const pingTimeout = 10 * time.Second

// ConnectRedis returns nil without error when no REDIS_URL is configured.
func ConnectRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisURL == "" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	log.WithField("addr", opt.Addr).Info("redis connected")
	return client, nil
}
