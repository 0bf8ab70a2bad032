package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/micro-ha/crestron-bridge/internal/http/handlers"
)

// NewRouter builds the full HTTP routing tree for the bridge API.
func NewRouter(api *handlers.API) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RecoverJSON)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(RequestLogger(api))

	r.Get("/healthz", api.Health)
	r.Route("/api", func(apiRouter chi.Router) {
		apiRouter.Post("/authenticate", api.Authenticate)

		apiRouter.Get("/rooms", api.ListRooms)
		apiRouter.Get("/devices", api.ListDevices)
		apiRouter.Post("/catalog/refresh", api.RefreshCatalog)
		apiRouter.Post("/resolve", api.ResolveDevice)

		apiRouter.Get("/shades", api.ListShades)
		apiRouter.Post("/shades/state", api.SetShadeState)

		apiRouter.Get("/scenes", api.ListScenes)
		apiRouter.Post("/scenes/{id}/recall", api.RecallScene)

		apiRouter.Get("/thermostats", api.ListThermostats)
		apiRouter.Post("/thermostats/setpoints", api.SetThermostatSetpoints)
		apiRouter.Post("/thermostats/modes", api.SetThermostatModes)
		apiRouter.Post("/thermostats/fan-modes", api.SetThermostatFanModes)

		apiRouter.Get("/sensors", api.ListSensors)
	})

	return r
}

// RunServer starts and gracefully stops the HTTP server with context
// cancellation.
func RunServer(ctx context.Context, server *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
