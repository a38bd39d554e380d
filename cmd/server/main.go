package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devaloi/pairline/internal/client"
	"github.com/devaloi/pairline/internal/config"
	"github.com/devaloi/pairline/internal/handler"
	"github.com/devaloi/pairline/internal/hub"
	"github.com/devaloi/pairline/internal/logging"
	"github.com/devaloi/pairline/internal/metrics"
	"github.com/devaloi/pairline/internal/registry"
	"github.com/devaloi/pairline/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "pairline: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := logging.New(logging.Config{
		Level:   cfg.Level(),
		Pretty:  cfg.Debug,
		Service: "pairline",
	}, nil)
	logging.BridgeStdlib(logger)

	s, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer s.Close()

	m := metrics.New()
	reg := registry.New(s, logger, m)
	h := hub.New(logger, m)

	opts := client.Options{
		SendBuffer:     cfg.SendBuffer,
		MaxMessageSize: cfg.MaxMessageSize,
		WriteWait:      cfg.WriteWait,
		PongWait:       cfg.PongWait,
		Logger:         logger,
		Metrics:        m,
	}
	if cfg.StrictRooms {
		opts.Rooms = reg
	}

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: handler.NewRouter(handler.Deps{
			Registry: reg,
			Hub:      h,
			Metrics:  m,
			Client:   opts,
			Origins:  cfg.Origins(),
			Logger:   logger,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", srv.Addr).
			Str("db", cfg.DBPath).
			Bool("strict_rooms", cfg.StrictRooms).
			Msg("pairline listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
