package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"

	"cachedfetch/internal/api"
	"cachedfetch/internal/bootstrap"
	"cachedfetch/internal/config"
	"cachedfetch/internal/logging"
	"cachedfetch/internal/services"
)

var errSomeFailed = errors.New("one or more fetches failed")

func newApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "fetchctl",
		Usage:     "fetch JSON resources through an in-memory result cache",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error",
				Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_LEVEL")),
				Value:   "info",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logging.Init(cmd.String("log-level"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			getCommand(),
			serveCommand(),
		},
	}
}

func getCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "fetch each key, repeating the whole list --repeat times",
		ArgsUsage: "KEY...",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "repeat",
				Aliases: []string{"n"},
				Usage:   "number of passes over the keys",
				Value:   1,
			},
			&cli.StringFlag{
				Name:  "path",
				Usage: "gjson path applied to each payload before printing",
			},
			&cli.StringFlag{
				Name:    "base-url",
				Usage:   "prefix for keys that are not absolute URLs",
				Sources: cli.NewValueSourceChain(cli.EnvVar("BASE_URL")),
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "per-request timeout",
				Value: config.DefaultHTTPTimeout,
			},
			&cli.StringSliceFlag{
				Name:    "header",
				Aliases: []string{"H"},
				Usage:   "extra request header as Name=Value",
			},
			&cli.BoolFlag{
				Name:  "coalesce",
				Usage: "share one fetch between concurrent misses of a key",
			},
		},
		Action: getAction,
	}
}

func getAction(ctx context.Context, cmd *cli.Command) error {
	keys := cmd.Args().Slice()
	if len(keys) == 0 {
		return fmt.Errorf("at least one KEY is required")
	}
	repeat := cmd.Int("repeat")
	if repeat < 1 {
		return fmt.Errorf("--repeat must be at least 1, got %d", repeat)
	}

	httpOpts := []api.HTTPOption{
		api.WithClient(&http.Client{Timeout: cmd.Duration("timeout")}),
		api.WithBaseURL(cmd.String("base-url")),
	}
	for _, h := range cmd.StringSlice("header") {
		name, value, ok := strings.Cut(h, "=")
		if !ok || name == "" {
			return fmt.Errorf("invalid header %q, want Name=Value", h)
		}
		httpOpts = append(httpOpts, api.WithHeader(name, value))
	}

	var opts []services.Option[json.RawMessage]
	if cmd.Bool("coalesce") {
		opts = append(opts, services.WithCoalescing[json.RawMessage]())
	}
	cache := services.NewCacheService[json.RawMessage](api.NewHTTPFetcher[json.RawMessage](httpOpts...), opts...)

	return runGet(ctx, cache, keys, repeat, cmd.String("path"), cmd.Root().Writer)
}

func runGet(ctx context.Context, cache *services.CacheService[json.RawMessage], keys []string, repeat int, path string, out io.Writer) error {
	failed := false
	for pass := 0; pass < repeat; pass++ {
		for _, key := range keys {
			payload, err := cache.Get(ctx, key)
			if err != nil {
				failed = true
				continue
			}
			if path != "" {
				res := gjson.GetBytes(payload, path)
				if !res.Exists() {
					log.WithField("key", key).WithField("path", path).Error("path not found")
					failed = true
					continue
				}
				payload = json.RawMessage(res.Raw)
			}
			fmt.Fprintf(out, "%s\t%s\n", key, payload)
		}
	}

	log.WithField("entries", cache.Len()).Debug("done")
	if failed {
		return errSomeFailed
	}
	return nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP fetch API configured from the environment",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return bootstrap.Run(cfg)
		},
	}
}
