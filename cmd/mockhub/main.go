package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/micro-ha/crestron-bridge/internal/config"
	httpapi "github.com/micro-ha/crestron-bridge/internal/http"
	"github.com/micro-ha/crestron-bridge/internal/logging"
	"github.com/micro-ha/crestron-bridge/internal/mockhub"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	dbPath := env("MOCKHUB_DB_PATH", ":memory:")
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			logger.Error("failed to create db directory", "err", err)
			os.Exit(1)
		}
	}

	store, err := mockhub.NewStore(ctx, dbPath, logger)
	if err != nil {
		logger.Error("failed to initialize state store", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	hub := mockhub.New(os.Getenv("MOCKHUB_AUTH_TOKEN"), store, logger)

	httpServer := &http.Server{
		Addr:              env("MOCKHUB_ADDR", ":8080"),
		Handler:           hub.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("mock hub starting", "addr", httpServer.Addr, "token", hub.AuthToken())
	if err := httpapi.RunServer(ctx, httpServer); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("mock hub terminated with error", "err", err)
		os.Exit(1)
	}
	logger.Info("mock hub stopped")
}

func env(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
