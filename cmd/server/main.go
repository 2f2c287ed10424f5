package main

import (
	"fmt"
	"os"

	"github.com/apex/log"

	"cachedfetch/internal/bootstrap"
	"cachedfetch/internal/config"
	"cachedfetch/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logging.Init(cfg.LogLevel)

	if err := bootstrap.Run(cfg); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
