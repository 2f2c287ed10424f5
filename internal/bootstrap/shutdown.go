package bootstrap

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
)

const shutdownTimeout = 10 * time.Second

// GracefulShutdown waits for SIGINT/SIGTERM, shuts srv down, then runs the
// cleanup funcs in order. The returned channel closes when all of that is done.
func GracefulShutdown(srv *http.Server, cleanup ...func()) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		defer close(done)

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig

		log.Info("shutting down gracefully")

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.WithError(err).Error("server shutdown")
		}

		for _, fn := range cleanup {
			fn()
		}
	}()

	return done
}
