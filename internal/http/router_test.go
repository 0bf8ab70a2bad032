package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/micro-ha/crestron-bridge/internal/catalog"
	"github.com/micro-ha/crestron-bridge/internal/crestron"
	httpapi "github.com/micro-ha/crestron-bridge/internal/http"
	"github.com/micro-ha/crestron-bridge/internal/http/handlers"
	"github.com/micro-ha/crestron-bridge/internal/model"
	"github.com/micro-ha/crestron-bridge/internal/service"
)

// stubHub lets each test choose the error every hub call returns.
type stubHub struct {
	err         error
	shadeResult crestron.Result
}

func (s *stubHub) Authenticate(_ context.Context, host, _ string) (crestron.Session, error) {
	return crestron.Session{Host: host, Key: "key-1"}, s.err
}

func (s *stubHub) Rooms(context.Context) ([]model.Room, error) {
	return []model.Room{{ID: 1, Name: "Soggiorno"}}, s.err
}

func (s *stubHub) Devices(context.Context) ([]model.Device, error) {
	return []model.Device{{ID: 10, Name: "Lampadario Soggiorno", Type: model.DeviceTypeLight, RoomID: 1}}, s.err
}

func (s *stubHub) Shades(context.Context) ([]crestron.Shade, error) {
	return []crestron.Shade{{ID: 20, Name: "Tapparella Grande", RoomID: 1}}, s.err
}

func (s *stubHub) Shade(_ context.Context, id int) (crestron.Shade, error) {
	return crestron.Shade{ID: id}, s.err
}

func (s *stubHub) SetShadeState(context.Context, []crestron.ShadeCommand) (crestron.Result, error) {
	return s.shadeResult, s.err
}

func (s *stubHub) Scenes(context.Context) ([]crestron.Scene, error) { return nil, s.err }

func (s *stubHub) RecallScene(context.Context, int) (crestron.Result, error) {
	return crestron.Result{}, s.err
}

func (s *stubHub) Thermostats(context.Context) ([]crestron.Thermostat, error) { return nil, s.err }

func (s *stubHub) SetThermostatSetpoints(context.Context, int, []crestron.SetPoint) (crestron.Result, error) {
	return crestron.Result{}, s.err
}

func (s *stubHub) SetThermostatModes(context.Context, []crestron.ThermostatModeCommand) (crestron.Result, error) {
	return crestron.Result{}, s.err
}

func (s *stubHub) SetThermostatFanModes(context.Context, []crestron.ThermostatModeCommand) (crestron.Result, error) {
	return crestron.Result{}, s.err
}

func (s *stubHub) Sensors(context.Context) ([]crestron.Sensor, error) { return nil, s.err }

func (s *stubHub) Sensor(_ context.Context, id int) (crestron.Sensor, error) {
	return crestron.Sensor{ID: id}, s.err
}

func newTestRouter(hub *stubHub) http.Handler {
	svc := service.New(hub, catalog.New(hub, nil), nil)
	return httpapi.NewRouter(handlers.New(svc, nil))
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestHealth(t *testing.T) {
	recorder := doJSON(t, newTestRouter(&stubHub{}), http.MethodGet, "/healthz", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
}

func TestListDevices_RejectsBadRoomFilter(t *testing.T) {
	router := newTestRouter(&stubHub{})

	recorder := doJSON(t, router, http.MethodGet, "/api/devices?roomId=abc", nil)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}

	recorder = doJSON(t, router, http.MethodGet, "/api/devices?roomId=1", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
}

func TestResolve_ReturnsVerdict(t *testing.T) {
	router := newTestRouter(&stubHub{})

	recorder := doJSON(t, router, http.MethodPost, "/api/resolve", map[string]any{
		"utterance": "lampadario soggiorno",
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var payload struct {
		Outcome    string  `json:"outcome"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Outcome != "resolved" || payload.Confidence != 1.0 {
		t.Fatalf("expected a resolved verdict at 1.0, got %+v", payload)
	}
}

func TestResolve_EmptyUtteranceIsBadRequest(t *testing.T) {
	recorder := doJSON(t, newTestRouter(&stubHub{}), http.MethodPost, "/api/resolve", map[string]any{})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
}

func TestSetShadeState_ValidatesPercent(t *testing.T) {
	recorder := doJSON(t, newTestRouter(&stubHub{}), http.MethodPost, "/api/shades/state", map[string]any{
		"shades": []map[string]int{{"id": 20, "percent": 150}},
	})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), "invalid_request") {
		t.Fatalf("expected the invalid_request code, got %s", recorder.Body.String())
	}
}

func TestSetShadeState_PartialIsMultiStatus(t *testing.T) {
	hub := &stubHub{shadeResult: crestron.Result{Partial: true, FailedIDs: []int{99}}}
	recorder := doJSON(t, newTestRouter(hub), http.MethodPost, "/api/shades/state", map[string]any{
		"shades": []map[string]int{{"id": 20, "percent": 50}, {"id": 99, "percent": 50}},
	})
	if recorder.Code != http.StatusMultiStatus {
		t.Fatalf("expected 207, got %d", recorder.Code)
	}
	var payload struct {
		FailedIDs []int `json:"failedIds"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.FailedIDs) != 1 || payload.FailedIDs[0] != 99 {
		t.Fatalf("expected failedIds [99], got %v", payload.FailedIDs)
	}
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"session expired", &crestron.SessionExpiredError{Path: "/shades"}, http.StatusUnauthorized, "session_expired"},
		{"auth failed", &crestron.AuthError{Host: "hub.local", Status: 401}, http.StatusUnauthorized, "auth_failed"},
		{"not found", &crestron.NotFoundError{Kind: "shade", ID: 99}, http.StatusNotFound, "not_found"},
		{"hub failure", &crestron.HubError{Status: 200, Code: 7004, Message: "offline"}, http.StatusBadGateway, "hub_error"},
		{"timeout", &crestron.TimeoutError{Path: "/shades"}, http.StatusGatewayTimeout, "hub_timeout"},
		{"transport", &crestron.TransportError{Path: "/shades"}, http.StatusBadGateway, "hub_unreachable"},
	}

	for _, c := range cases {
		recorder := doJSON(t, newTestRouter(&stubHub{err: c.err}), http.MethodGet, "/api/shades", nil)
		if recorder.Code != c.status {
			t.Fatalf("%s: expected %d, got %d", c.name, c.status, recorder.Code)
		}
		if !strings.Contains(recorder.Body.String(), c.code) {
			t.Fatalf("%s: expected code %q in %s", c.name, c.code, recorder.Body.String())
		}
	}
}
