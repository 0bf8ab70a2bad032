// Package mockhub is an in-process Crestron Home hub stand-in. It speaks
// the hub's REST dialect (token login, AuthKey sessions with a 10 minute
// expiry, /cws/api resource routes) over a fixed fixture home, and persists
// control-call effects through a sqlite Store so state survives restarts.
package mockhub

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

const sessionTTL = 10 * time.Minute

const (
	headerAuthToken = "Crestron-RestAPI-AuthToken"
	headerAuthKey   = "Crestron-RestAPI-AuthKey"
)

// Hub serves the mock Crestron Home REST API.
type Hub struct {
	token  string
	store  *Store
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]time.Time
}

// New creates a hub that accepts authToken at login. An empty authToken
// selects the fixture token.
func New(authToken string, store *Store, logger *slog.Logger) *Hub {
	if authToken == "" {
		authToken = fixtureAuthToken
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		token:    authToken,
		store:    store,
		logger:   logger,
		now:      time.Now,
		sessions: map[string]time.Time{},
	}
}

// AuthToken returns the token the hub accepts at login.
func (h *Hub) AuthToken() string {
	return h.token
}

// Handler builds the hub's routing tree.
func (h *Hub) Handler() http.Handler {
	r := chi.NewRouter()
	r.Route("/cws/api", func(api chi.Router) {
		api.Get("/login", h.login)

		api.Group(func(authed chi.Router) {
			authed.Use(h.requireSession)
			authed.Get("/rooms", h.listRooms)
			authed.Get("/devices", h.listDevices)
			authed.Get("/shades", h.listShades)
			authed.Get("/shades/{id}", h.getShade)
			authed.Post("/shades/SetState", h.setShadeState)
			authed.Get("/scenes", h.listScenes)
			authed.Post("/scenes/recall/{id}", h.recallScene)
			authed.Get("/thermostats", h.listThermostats)
			authed.Post("/thermostats/SetPoint", h.setThermostatSetpoint)
			authed.Post("/thermostats/mode", h.setThermostatMode)
			authed.Post("/thermostats/fanmode", h.setThermostatFanMode)
			authed.Get("/sensors", h.listSensors)
			authed.Get("/sensors/{id}", h.getSensor)
		})
	})
	return r
}

func (h *Hub) login(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get(headerAuthToken) != h.token {
		h.logger.Warn("login rejected")
		sendJSON(w, http.StatusUnauthorized, map[string]any{"error": "Invalid authorization token"})
		return
	}

	key := newSessionKey()
	h.mu.Lock()
	h.sessions[key] = h.now()
	h.mu.Unlock()

	h.logger.Info("session created")
	sendJSON(w, http.StatusOK, map[string]any{"version": "2.0", "AuthKey": key})
}

func (h *Hub) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(headerAuthKey)
		if !h.sessionValid(key) {
			sendJSON(w, http.StatusUnauthorized, map[string]any{
				"error":   "Unauthorized",
				"message": "Invalid or expired session. Please authenticate again.",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Hub) sessionValid(key string) bool {
	if key == "" {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	createdAt, ok := h.sessions[key]
	if !ok {
		return false
	}
	if h.now().Sub(createdAt) > sessionTTL {
		delete(h.sessions, key)
		return false
	}
	return true
}

// ExpireSessions invalidates every active session. Test hook for exercising
// reauthentication paths.
func (h *Hub) ExpireSessions() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions = map[string]time.Time{}
}

func (h *Hub) listRooms(w http.ResponseWriter, _ *http.Request) {
	sendJSON(w, http.StatusOK, map[string]any{"rooms": fixtureRooms(), "version": "2.0"})
}

func (h *Hub) listDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := h.renderDevices(r, "")
	if err != nil {
		sendJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	sendJSON(w, http.StatusOK, map[string]any{"devices": devices, "version": "2.0"})
}

func (h *Hub) listShades(w http.ResponseWriter, r *http.Request) {
	h.listDeviceType(w, r, "shade", "shades")
}

func (h *Hub) getShade(w http.ResponseWriter, r *http.Request) {
	h.getDeviceType(w, r, "shade", "shades", "Shade")
}

func (h *Hub) listSensors(w http.ResponseWriter, r *http.Request) {
	h.listDeviceType(w, r, "sensor", "sensors")
}

func (h *Hub) getSensor(w http.ResponseWriter, r *http.Request) {
	h.getDeviceType(w, r, "sensor", "sensors", "Sensor")
}

func (h *Hub) listThermostats(w http.ResponseWriter, r *http.Request) {
	h.listDeviceType(w, r, "thermostat", "thermostats")
}

func (h *Hub) listDeviceType(w http.ResponseWriter, r *http.Request, deviceType, envelope string) {
	devices, err := h.renderDevices(r, deviceType)
	if err != nil {
		sendJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	sendJSON(w, http.StatusOK, map[string]any{envelope: devices, "version": "2.0"})
}

// getDeviceType answers a single-entity lookup. The hub wraps even single
// results in the list envelope.
func (h *Hub) getDeviceType(w http.ResponseWriter, r *http.Request, deviceType, envelope, kind string) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		sendJSON(w, http.StatusNotFound, map[string]any{"error": "Endpoint not found"})
		return
	}
	devices, renderErr := h.renderDevices(r, deviceType)
	if renderErr != nil {
		sendJSON(w, http.StatusInternalServerError, map[string]any{"error": renderErr.Error()})
		return
	}
	for _, device := range devices {
		if device["id"] == id {
			sendJSON(w, http.StatusOK, map[string]any{envelope: []map[string]any{device}, "version": "2.0"})
			return
		}
	}
	sendJSON(w, http.StatusNotFound, map[string]any{"error": fmt.Sprintf("%s with ID %d not found", kind, id)})
}

type shadeStatePayload struct {
	Shades []struct {
		ID       int `json:"id"`
		Position int `json:"position"`
	} `json:"shades"`
}

func (h *Hub) setShadeState(w http.ResponseWriter, r *http.Request) {
	var payload shadeStatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		sendJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid JSON"})
		return
	}

	shadeIDs := map[int]bool{}
	for _, device := range fixtureDevices() {
		if device["type"] == "shade" {
			shadeIDs[device["id"].(int)] = true
		}
	}

	var successIDs, failedIDs []int
	for _, command := range payload.Shades {
		if !shadeIDs[command.ID] {
			failedIDs = append(failedIDs, command.ID)
			continue
		}
		if err := h.store.SetShadePosition(r.Context(), command.ID, command.Position); err != nil {
			sendJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
		successIDs = append(successIDs, command.ID)
	}

	if len(failedIDs) > 0 {
		status := "partial"
		if len(successIDs) == 0 {
			status = "failure"
		}
		sendJSON(w, http.StatusOK, map[string]any{
			"status":       status,
			"errorMessage": fmt.Sprintf("Shade(s) with ID(s) %v failed to update.", failedIDs),
			"errorDevices": failedIDs,
			"version":      "1.000.0001",
		})
		return
	}
	sendJSON(w, http.StatusOK, map[string]any{"status": "success", "version": "1.000.0001"})
}

func (h *Hub) recallScene(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		sendJSON(w, http.StatusNotFound, map[string]any{"error": "Endpoint not found"})
		return
	}
	known := false
	for _, scene := range fixtureScenes() {
		if scene["id"] == id {
			known = true
			break
		}
	}
	if !known {
		sendJSON(w, http.StatusNotFound, map[string]any{
			"error": fmt.Sprintf("Scene with ID %d not found in the system.", id),
		})
		return
	}
	if _, err := h.store.ToggleScene(r.Context(), id); err != nil {
		sendJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	sendJSON(w, http.StatusOK, map[string]any{"status": "success", "version": "1.000.0001"})
}

func (h *Hub) listScenes(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.store.SceneStatuses(r.Context())
	if err != nil {
		sendJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	scenes := fixtureScenes()
	for _, scene := range scenes {
		if active, ok := statuses[scene["id"].(int)]; ok {
			scene["status"] = active
		}
	}
	sendJSON(w, http.StatusOK, map[string]any{"scenes": scenes, "version": "2.0"})
}

type setpointPayload struct {
	ID        int `json:"id"`
	Setpoints []struct {
		Type        string `json:"type"`
		Temperature int    `json:"temperature"`
	} `json:"setpoints"`
}

func (h *Hub) setThermostatSetpoint(w http.ResponseWriter, r *http.Request) {
	var payload setpointPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		sendJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid JSON"})
		return
	}
	if !isThermostat(payload.ID) {
		sendJSON(w, http.StatusNotFound, map[string]any{
			"error": fmt.Sprintf("Thermostat with ID %d not found in the system.", payload.ID),
		})
		return
	}
	for _, setpoint := range payload.Setpoints {
		if err := h.store.SetThermostatSetpoint(r.Context(), payload.ID, setpoint.Type, setpoint.Temperature); err != nil {
			sendJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
	}
	sendJSON(w, http.StatusOK, map[string]any{"status": "success", "version": "1.000.0001"})
}

type modePayload struct {
	Thermostats []struct {
		ID   int    `json:"id"`
		Mode string `json:"mode"`
	} `json:"thermostats"`
}

func (h *Hub) setThermostatMode(w http.ResponseWriter, r *http.Request) {
	h.applyModes(w, r, h.store.SetThermostatMode)
}

func (h *Hub) setThermostatFanMode(w http.ResponseWriter, r *http.Request) {
	h.applyModes(w, r, h.store.SetThermostatFanMode)
}

func (h *Hub) applyModes(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, id int, mode string) error) {
	var payload modePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		sendJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid JSON"})
		return
	}
	for _, command := range payload.Thermostats {
		if !isThermostat(command.ID) {
			continue
		}
		if err := apply(r.Context(), command.ID, command.Mode); err != nil {
			sendJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
	}
	sendJSON(w, http.StatusOK, map[string]any{"status": "success", "version": "1.000.0001"})
}

// renderDevices merges fixture devices with persisted overrides, optionally
// keeping only one device type.
func (h *Hub) renderDevices(r *http.Request, deviceType string) ([]map[string]any, error) {
	positions, err := h.store.ShadePositions(r.Context())
	if err != nil {
		return nil, err
	}
	thermostats, err := h.store.ThermostatStates(r.Context())
	if err != nil {
		return nil, err
	}

	var devices []map[string]any
	for _, device := range fixtureDevices() {
		if deviceType != "" && device["type"] != deviceType {
			continue
		}
		switch device["type"] {
		case "shade":
			if position, ok := positions[device["id"].(int)]; ok {
				device["position"] = position
			}
		case "thermostat":
			if state, ok := thermostats[device["id"].(int)]; ok {
				if state.Mode != "" {
					device["mode"] = state.Mode
				}
				if state.FanMode != "" {
					device["currentFanMode"] = state.FanMode
				}
				if state.SetpointType != "" {
					device["setPoint"] = map[string]any{
						"type":        state.SetpointType,
						"temperature": state.SetpointTemperature,
						"minValue":    180,
						"maxValue":    300,
					}
				}
			}
		}
		devices = append(devices, device)
	}
	return devices, nil
}

func isThermostat(id int) bool {
	for _, device := range fixtureDevices() {
		if device["id"] == id && device["type"] == "thermostat" {
			return true
		}
	}
	return false
}

func newSessionKey() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return "session-" + hex.EncodeToString(buf)
}

func sendJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
