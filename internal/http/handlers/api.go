package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/micro-ha/crestron-bridge/internal/crestron"
	"github.com/micro-ha/crestron-bridge/internal/service"
)

// API groups HTTP handlers and dependencies.
type API struct {
	service *service.Service
	logger  *slog.Logger
}

// New creates HTTP handlers with explicit dependencies.
func New(svc *service.Service, logger *slog.Logger) *API {
	return &API{service: svc, logger: logger}
}

// Logger returns request logger used by HTTP middleware.
func (a *API) Logger() *slog.Logger {
	return a.logger
}

// Health reports service liveness.
func (a *API) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}

// writeHubError maps the client's error taxonomy onto HTTP statuses. Partial
// failures carry the hub's failed ids so the caller can retry only those.
func writeHubError(w http.ResponseWriter, err error) {
	var validation *crestron.ValidationError
	if errors.As(err, &validation) {
		writeError(w, http.StatusBadRequest, "invalid_request", validation.Error())
		return
	}
	var expired *crestron.SessionExpiredError
	if errors.As(err, &expired) {
		writeError(w, http.StatusUnauthorized, "session_expired", expired.Error())
		return
	}
	var auth *crestron.AuthError
	if errors.As(err, &auth) {
		writeError(w, http.StatusUnauthorized, "auth_failed", auth.Error())
		return
	}
	var notFound *crestron.NotFoundError
	if errors.As(err, &notFound) {
		writeError(w, http.StatusNotFound, "not_found", notFound.Error())
		return
	}
	var partial *crestron.PartialFailureError
	if errors.As(err, &partial) {
		writeJSON(w, http.StatusMultiStatus, map[string]any{
			"error": map[string]any{
				"code":    "partial_failure",
				"message": partial.Error(),
			},
			"failedIds": partial.FailedIDs,
		})
		return
	}
	var timeout *crestron.TimeoutError
	if errors.As(err, &timeout) {
		writeError(w, http.StatusGatewayTimeout, "hub_timeout", timeout.Error())
		return
	}
	var hubErr *crestron.HubError
	if errors.As(err, &hubErr) {
		writeError(w, http.StatusBadGateway, "hub_error", hubErr.Error())
		return
	}
	var transport *crestron.TransportError
	if errors.As(err, &transport) {
		writeError(w, http.StatusBadGateway, "hub_unreachable", transport.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
}
