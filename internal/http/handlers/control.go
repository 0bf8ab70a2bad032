package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/micro-ha/crestron-bridge/internal/service"
)

// ListShades returns every shade, or one when the id query is present.
func (a *API) ListShades(w http.ResponseWriter, r *http.Request) {
	id, ok := queryInt(w, r, "id")
	if !ok {
		return
	}
	shades, err := a.service.GetShades(r.Context(), id)
	if err != nil {
		writeHubError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"shades": shades})
}

type shadeStateInput struct {
	Shades []service.ShadePosition `json:"shades"`
}

// SetShadeState moves a batch of shades to percent positions.
func (a *API) SetShadeState(w http.ResponseWriter, r *http.Request) {
	var payload shadeStateInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid JSON payload")
		return
	}
	if err := a.service.SetShadePositions(r.Context(), payload.Shades); err != nil {
		writeHubError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// ListScenes returns scenes filtered by the roomId and type queries.
func (a *API) ListScenes(w http.ResponseWriter, r *http.Request) {
	roomID, ok := queryInt(w, r, "roomId")
	if !ok {
		return
	}
	scenes, err := a.service.ListScenes(r.Context(), roomID, strings.TrimSpace(r.URL.Query().Get("type")))
	if err != nil {
		writeHubError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scenes": scenes})
}

// RecallScene activates the scene in the path.
func (a *API) RecallScene(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "invalid_id", "id must be a positive integer")
		return
	}
	if err := a.service.ActivateScene(r.Context(), id); err != nil {
		writeHubError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// ListThermostats returns every thermostat, or one when the id query is present.
func (a *API) ListThermostats(w http.ResponseWriter, r *http.Request) {
	id, ok := queryInt(w, r, "id")
	if !ok {
		return
	}
	thermostats, err := a.service.GetThermostats(r.Context(), id)
	if err != nil {
		writeHubError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"thermostats": thermostats})
}

type setpointInput struct {
	ID        int                     `json:"id"`
	Setpoints []service.SetpointInput `json:"setpoints"`
}

// SetThermostatSetpoints applies setpoints to one thermostat.
func (a *API) SetThermostatSetpoints(w http.ResponseWriter, r *http.Request) {
	var payload setpointInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid JSON payload")
		return
	}
	if err := a.service.SetThermostatSetpoints(r.Context(), payload.ID, payload.Setpoints); err != nil {
		writeHubError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

type modeInput struct {
	Modes []service.ModeInput `json:"modes"`
}

// SetThermostatModes applies system modes to a batch of thermostats.
func (a *API) SetThermostatModes(w http.ResponseWriter, r *http.Request) {
	var payload modeInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid JSON payload")
		return
	}
	if err := a.service.SetThermostatModes(r.Context(), payload.Modes); err != nil {
		writeHubError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// SetThermostatFanModes applies fan modes to a batch of thermostats.
func (a *API) SetThermostatFanModes(w http.ResponseWriter, r *http.Request) {
	var payload modeInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid JSON payload")
		return
	}
	if err := a.service.SetThermostatFanModes(r.Context(), payload.Modes); err != nil {
		writeHubError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// ListSensors returns sensors narrowed by the id or subType queries.
func (a *API) ListSensors(w http.ResponseWriter, r *http.Request) {
	id, ok := queryInt(w, r, "id")
	if !ok {
		return
	}
	sensors, err := a.service.GetSensors(r.Context(), id, strings.TrimSpace(r.URL.Query().Get("subType")))
	if err != nil {
		writeHubError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sensors": sensors})
}
