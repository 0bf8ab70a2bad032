package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/micro-ha/crestron-bridge/internal/catalog"
	"github.com/micro-ha/crestron-bridge/internal/config"
	"github.com/micro-ha/crestron-bridge/internal/crestron"
	httpapi "github.com/micro-ha/crestron-bridge/internal/http"
	"github.com/micro-ha/crestron-bridge/internal/http/handlers"
	"github.com/micro-ha/crestron-bridge/internal/logging"
	"github.com/micro-ha/crestron-bridge/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	hub := crestron.NewClient(crestron.Config{
		Timeout:            cfg.APITimeout,
		InsecureSkipVerify: cfg.TLSInsecureSkipVerify,
	}, logger)

	cat := catalog.New(hub, logger)
	svc := service.New(hub, cat, logger)

	if cfg.HasHubCredentials() {
		authCtx, cancel := context.WithTimeout(ctx, cfg.APITimeout)
		if _, err := svc.Authenticate(authCtx, cfg.HubHost, cfg.HubAuthToken); err != nil {
			logger.Warn("initial hub authentication failed", "err", err)
		} else if err := svc.RefreshCatalog(authCtx); err != nil {
			logger.Warn("initial catalog refresh failed", "err", err)
		}
		cancel()
	} else {
		logger.Warn("no hub credentials configured; waiting for authenticate call")
	}

	api := handlers.New(svc, logger)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(api),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("server starting", "addr", httpServer.Addr)
	if err := httpapi.RunServer(ctx, httpServer); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server terminated with error", "err", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
