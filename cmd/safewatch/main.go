package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gabapcia/safewatch/internal/config"
	"github.com/gabapcia/safewatch/internal/handlers/cli"
	"github.com/gabapcia/safewatch/internal/infra/notifier/slack"
	"github.com/gabapcia/safewatch/internal/infra/safeindex"
	"github.com/gabapcia/safewatch/internal/infra/storage/redis"
	"github.com/gabapcia/safewatch/internal/pkg/logger"
	"github.com/gabapcia/safewatch/internal/pkg/telemetry"
	"github.com/gabapcia/safewatch/internal/pkg/transport/http"
	"github.com/gabapcia/safewatch/internal/safetx"
	"github.com/gabapcia/safewatch/internal/safewatch"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := cli.Run(context.Background(), setup); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration and wires every dependency of the commands.
// Telemetry is initialized before the logger so log entries are bridged.
func setup(ctx context.Context) (cli.Deps, cli.ReleaseFunc, error) {
	cfg, err := config.Load()
	if err != nil {
		return cli.Deps{}, nil, err
	}

	shutdown := telemetry.ShutdownFunc(telemetry.Noop)
	if cfg.Telemetry.Enabled {
		if shutdown, err = telemetry.Init(ctx, cfg.Telemetry.ServiceName, version); err != nil {
			return cli.Deps{}, nil, fmt.Errorf("initialize telemetry: %w", err)
		}
	}

	var closers []func()
	release := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	closers = append(closers, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := shutdown(ctx); err != nil {
			logger.Error(ctx, "telemetry shutdown failed", "error", err)
		}
	})

	if err := logger.Init(logger.WithLevel(cfg.LogLevel)); err != nil {
		release()
		return cli.Deps{}, nil, err
	}
	closers = append(closers, func() { _ = logger.Sync() })

	httpClient := http.NewClient(
		http.WithTimeout(cfg.HTTP.Timeout),
		http.WithRetryMax(cfg.HTTP.RetryMax),
		http.WithRetryWaitMin(cfg.HTTP.RetryWait),
		http.WithRetryWaitMax(cfg.HTTP.RetryLimit),
	)

	index := safeindex.NewClient(httpClient, cfg.APIURL, cfg.SafeAddress)

	notifiers := []safetx.Notifier{
		slack.New(cfg.SlackWebhookURL, cfg.SafeURL, slack.WithHTTPClient(
			http.NewClient(http.WithTimeout(cfg.HTTP.Timeout), http.WithRetryMax(0)),
		)),
	}

	// Already checked by config.Load.
	names, _ := cfg.SignerNames()
	opts := []safewatch.Option{
		safewatch.WithAddressBook(safetx.NewAddressBook(names)),
		safewatch.WithInterval(cfg.PollInterval),
	}

	if cfg.Redis.Addr != "" {
		store, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Username, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			release()
			return cli.Deps{}, nil, fmt.Errorf("connect to redis: %w", err)
		}
		closers = append(closers, func() { _ = store.Close() })

		opts = append(opts, safewatch.WithStateStorage(store))
	}

	deps := cli.Deps{
		Watcher: safewatch.New(index, cfg.ChainPrefix, cfg.SafeAddress, notifiers, opts...),
		Index:   index,
	}
	return deps, release, nil
}
