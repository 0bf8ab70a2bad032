package service

import (
	"context"
	"log/slog"

	"github.com/micro-ha/crestron-bridge/internal/catalog"
	"github.com/micro-ha/crestron-bridge/internal/crestron"
	"github.com/micro-ha/crestron-bridge/internal/model"
	"github.com/micro-ha/crestron-bridge/internal/resolve"
)

// HubClient is the hub contract the control service depends on.
type HubClient interface {
	Authenticate(ctx context.Context, host, token string) (crestron.Session, error)
	Rooms(ctx context.Context) ([]model.Room, error)
	Devices(ctx context.Context) ([]model.Device, error)
	Shades(ctx context.Context) ([]crestron.Shade, error)
	Shade(ctx context.Context, id int) (crestron.Shade, error)
	SetShadeState(ctx context.Context, commands []crestron.ShadeCommand) (crestron.Result, error)
	Scenes(ctx context.Context) ([]crestron.Scene, error)
	RecallScene(ctx context.Context, id int) (crestron.Result, error)
	Thermostats(ctx context.Context) ([]crestron.Thermostat, error)
	SetThermostatSetpoints(ctx context.Context, id int, setpoints []crestron.SetPoint) (crestron.Result, error)
	SetThermostatModes(ctx context.Context, commands []crestron.ThermostatModeCommand) (crestron.Result, error)
	SetThermostatFanModes(ctx context.Context, commands []crestron.ThermostatModeCommand) (crestron.Result, error)
	Sensors(ctx context.Context) ([]crestron.Sensor, error)
	Sensor(ctx context.Context, id int) (crestron.Sensor, error)
}

// Service implements the operations exposed to the tool layer: session
// establishment, discovery, device control and natural-language device
// resolution.
type Service struct {
	hub     HubClient
	catalog *catalog.Catalog
	logger  *slog.Logger
}

// New creates the control service.
func New(hub HubClient, cat *catalog.Catalog, logger *slog.Logger) *Service {
	return &Service{hub: hub, catalog: cat, logger: logger}
}

// Authenticate establishes a hub session for later calls.
func (s *Service) Authenticate(ctx context.Context, host, token string) (crestron.Session, error) {
	return s.hub.Authenticate(ctx, host, token)
}

// RefreshCatalog replaces the cached rooms/devices snapshot.
func (s *Service) RefreshCatalog(ctx context.Context) error {
	_, err := s.catalog.Refresh(ctx)
	return err
}

// ResolveDevice maps an utterance to a catalog entry. The catalog is
// refreshed once when no snapshot has been taken yet; afterwards resolution
// runs against the current snapshot and callers refresh explicitly when
// they want newer data.
func (s *Service) ResolveDevice(ctx context.Context, utterance string, preferredRoomID int) (resolve.Resolution, error) {
	if utterance == "" {
		return resolve.Resolution{}, &crestron.ValidationError{Field: "utterance", Reason: "is required"}
	}

	snapshot, ok := s.catalog.Snapshot()
	if !ok {
		refreshed, err := s.catalog.Refresh(ctx)
		if err != nil {
			return resolve.Resolution{}, err
		}
		snapshot = refreshed
	}
	return resolve.Resolve(utterance, snapshot, preferredRoomID), nil
}

// ListRooms returns the hub's rooms.
func (s *Service) ListRooms(ctx context.Context) ([]model.Room, error) {
	return s.hub.Rooms(ctx)
}

// ListDevices returns devices, optionally filtered by room and type.
func (s *Service) ListDevices(ctx context.Context, roomID int, deviceType string) ([]model.Device, error) {
	devices, err := s.hub.Devices(ctx)
	if err != nil {
		return nil, err
	}
	if roomID <= 0 && deviceType == "" {
		return devices, nil
	}

	filtered := make([]model.Device, 0, len(devices))
	for _, device := range devices {
		if roomID > 0 && device.RoomID != roomID {
			continue
		}
		if deviceType != "" && device.Type != deviceType {
			continue
		}
		filtered = append(filtered, device)
	}
	return filtered, nil
}
