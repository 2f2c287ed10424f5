package bootstrap

import (
	"encoding/json"
	"net/http"
	"time"

	"cachedfetch/internal/api"
	"cachedfetch/internal/config"
	"cachedfetch/internal/handlers"
	"cachedfetch/internal/kafka"
	"cachedfetch/internal/models"
	"cachedfetch/internal/services"

	"github.com/redis/go-redis/v9"
)

type BootstrapBundle struct {
	Cache   *services.CacheService[json.RawMessage]
	Handler *handlers.FetchHandler
}

// NewFetcher builds the fetcher for cfg: HTTP for every key, and Redis for
// keys carrying cfg.RedisPrefix when redisClient is non-nil.
func NewFetcher(cfg *config.Config, redisClient *redis.Client) services.Fetcher[json.RawMessage] {
	httpFetcher := api.NewHTTPFetcher[json.RawMessage](
		api.WithClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		api.WithBaseURL(cfg.BaseURL),
	)
	if redisClient == nil {
		return httpFetcher
	}
	return api.NewMux[json.RawMessage](httpFetcher).
		Handle(cfg.RedisPrefix, api.NewRedisFetcher[json.RawMessage](redisClient, cfg.RedisPrefix, nil))
}

func InitBootstrap(cfg *config.Config, redisClient *redis.Client, kafkaBundle *kafka.KafkaBundle) *BootstrapBundle {
	var opts []services.Option[json.RawMessage]
	if cfg.Coalesce {
		opts = append(opts, services.WithCoalescing[json.RawMessage]())
	}
	if kafkaBundle != nil {
		opts = append(opts, services.WithNotifier(publishFetchEvent(kafkaBundle.FetchProducer)))
	}

	cache := services.NewCacheService(NewFetcher(cfg, redisClient), opts...)
	return &BootstrapBundle{
		Cache:   cache,
		Handler: handlers.NewFetchHandler(cache),
	}
}

func publishFetchEvent(producer kafka.ProducerInterface) func(string, json.RawMessage) {
	return func(key string, payload json.RawMessage) {
		producer.PublishObjectAsync([]byte(key), models.FetchEvent{
			Key:       key,
			Payload:   payload,
			FetchedAt: time.Now().UTC(),
		})
	}
}
