package bootstrap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/apex/log"

	"cachedfetch/internal/config"
	"cachedfetch/internal/db"
	"cachedfetch/internal/kafka"
	"cachedfetch/internal/workers"
)

// Run serves the fetch API until SIGINT/SIGTERM.
func Run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisClient, err := db.ConnectRedis(ctx, cfg)
	if err != nil {
		return err
	}

	var kafkaBundle *kafka.KafkaBundle
	if len(cfg.Brokers) > 0 {
		kafkaBundle, err = kafka.InitKafka(cfg.Brokers, cfg.FetchTopic, cfg.WarmTopic, cfg.KafkaGroup)
		if err != nil {
			if redisClient != nil {
				_ = redisClient.Close()
			}
			return err
		}
	}

	app := InitBootstrap(cfg, redisClient, kafkaBundle)
	if kafkaBundle != nil {
		workers.StartAllWorkers[json.RawMessage](ctx, app.Cache, kafkaBundle.WarmConsumer)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           InitRoutes(app.Handler, cfg.APIToken),
		ReadHeaderTimeout: 10 * time.Second,
	}

	cleanup := func() {
		cancel()
		kafkaBundle.Close()
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				log.WithError(err).Error("redis close")
			}
		}
	}

	return serve(srv, cfg.Port, cleanup)
}

// serve runs srv until a shutdown signal. cleanup runs once, either after a
// graceful shutdown or when the listener fails to start.
func serve(srv *http.Server, port string, cleanup func()) error {
	var once sync.Once
	release := func() { once.Do(cleanup) }

	done := GracefulShutdown(srv, release)

	log.WithField("port", port).Info("server started")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		release()
		return fmt.Errorf("listen: %w", err)
	}
	<-done
	return nil
}
