package main

import (
	"context"
	"fmt"
	"time"

	"civiclink/pkg/api/repository"
	"civiclink/pkg/config"
	"civiclink/pkg/log"
	"civiclink/pkg/storage"

	"github.com/getsentry/sentry-go"
)

const sentryFlushTimeout = 2 * time.Second

func initializeLogger(ctx context.Context, cfg *config.Config) {
	_, err := log.Initialize(ctx, cfg)
	if err != nil {
		panic(fmt.Errorf("error initializing logger, %w", err))
	}
}

func initializeRepository(ctx context.Context, cfg *config.Config) repository.Repository {
	repo, err := storage.Open(ctx, cfg)
	if err != nil {
		panic(fmt.Errorf("error initializing %s storage, %w", cfg.Storage.Driver, err))
	}
	return repo
}

// initializeSentry enables error reporting when a DSN is configured and returns the flush to
// run on exit
func initializeSentry(cfg *config.Config) func() {
	if len(cfg.Sentry.DSN) == 0 {
		return func() {}
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.Sentry.DSN,
		Environment: cfg.Sentry.Environment,
		ServerName:  "civiclink",
	})
	if err != nil {
		panic(fmt.Errorf("error initializing sentry, %w", err))
	}

	return func() {
		sentry.Flush(sentryFlushTimeout)
	}
}
