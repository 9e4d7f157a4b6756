package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"civiclink/pkg/api/repository"
	"civiclink/pkg/config"
	"civiclink/pkg/log"
	"civiclink/pkg/web"
)

const shutdownTimeout = 10 * time.Second

type server struct {
	cfg  *config.Config
	repo repository.Repository
}

func (s *server) start(ctx context.Context) {
	logger := log.Logger()

	w, err := web.NewServer(s.cfg, s.repo)
	if err != nil {
		logger.Rawf(log.Critical, "error creating server, %s", err)
		return
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errs := make(chan error, 1)
	go func() {
		errs <- w.Start()
	}()

	select {
	case err = <-errs:
		if err != nil {
			logger.Rawf(log.Critical, "server stopped, %s", err)
		}
		return
	case <-ctx.Done():
	}

	logger.Rawf(log.Notice, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err = w.Shutdown(shutdownCtx); err != nil {
		logger.Rawf(log.Error, "error shutting down server, %s", err)
	}
}
