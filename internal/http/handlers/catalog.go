package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

type authenticateInput struct {
	Host      string `json:"host"`
	AuthToken string `json:"authToken"`
}

// Authenticate establishes a hub session with the supplied credentials.
func (a *API) Authenticate(w http.ResponseWriter, r *http.Request) {
	var payload authenticateInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid JSON payload")
		return
	}
	session, err := a.service.Authenticate(r.Context(), payload.Host, payload.AuthToken)
	if err != nil {
		writeHubError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"host":      session.Host,
		"issuedAt":  session.IssuedAt,
		"expiresAt": session.ExpiresAt,
	})
}

// ListRooms returns the hub's rooms.
func (a *API) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := a.service.ListRooms(r.Context())
	if err != nil {
		writeHubError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rooms": rooms})
}

// ListDevices returns devices, optionally filtered by room and type.
func (a *API) ListDevices(w http.ResponseWriter, r *http.Request) {
	roomID, ok := queryInt(w, r, "roomId")
	if !ok {
		return
	}
	devices, err := a.service.ListDevices(r.Context(), roomID, strings.TrimSpace(r.URL.Query().Get("type")))
	if err != nil {
		writeHubError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"devices": devices})
}

// RefreshCatalog re-fetches rooms and devices from the hub.
func (a *API) RefreshCatalog(w http.ResponseWriter, r *http.Request) {
	if err := a.service.RefreshCatalog(r.Context()); err != nil {
		writeHubError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

type resolveInput struct {
	Utterance       string `json:"utterance"`
	PreferredRoomID int    `json:"preferredRoomId"`
}

// ResolveDevice maps a natural-language utterance to a catalog device.
func (a *API) ResolveDevice(w http.ResponseWriter, r *http.Request) {
	var payload resolveInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid JSON payload")
		return
	}
	resolution, err := a.service.ResolveDevice(r.Context(), payload.Utterance, payload.PreferredRoomID)
	if err != nil {
		writeHubError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resolution)
}

// queryInt parses an optional positive integer query parameter; zero means
// the parameter was absent.
func queryInt(w http.ResponseWriter, r *http.Request, key string) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		writeError(w, http.StatusBadRequest, "invalid_"+key, key+" must be a positive integer")
		return 0, false
	}
	return value, true
}
