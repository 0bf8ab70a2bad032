package catalog

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/micro-ha/crestron-bridge/internal/model"
)

// HubClient is the discovery contract the catalog needs from the hub.
type HubClient interface {
	Rooms(ctx context.Context) ([]model.Room, error)
	Devices(ctx context.Context) ([]model.Device, error)
}

// Catalog caches the last rooms/devices snapshot. Refreshes build a new
// snapshot off to the side and swap it in whole, so readers never observe a
// half-updated catalog. Reads never refresh implicitly; staleness is the
// caller's concern.
type Catalog struct {
	client HubClient
	logger *slog.Logger

	mu       sync.RWMutex
	snapshot *model.Snapshot
}

// New creates an empty catalog over the given hub client.
func New(client HubClient, logger *slog.Logger) *Catalog {
	return &Catalog{client: client, logger: logger}
}

// Refresh fetches rooms and devices and atomically replaces the snapshot.
// When either fetch fails the previous snapshot stays in place.
func (c *Catalog) Refresh(ctx context.Context) (*model.Snapshot, error) {
	rooms, err := c.client.Rooms(ctx)
	if err != nil {
		return nil, err
	}
	devices, err := c.client.Devices(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := model.NewSnapshot(rooms, devices, time.Now().UTC())

	c.mu.Lock()
	c.snapshot = snapshot
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Info("catalog refreshed", "rooms", len(rooms), "devices", len(devices))
	}
	return snapshot, nil
}

// Snapshot returns the current snapshot, if one has been taken.
func (c *Catalog) Snapshot() (*model.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot, c.snapshot != nil
}

// ByID looks a device up in the current snapshot.
func (c *Catalog) ByID(id int) (model.Device, bool) {
	snapshot, ok := c.Snapshot()
	if !ok {
		return model.Device{}, false
	}
	return snapshot.DeviceByID(id)
}

// Filter returns devices matching the given constraints. A zero roomID or
// empty deviceType leaves that dimension unconstrained.
func (c *Catalog) Filter(roomID int, deviceType string) []model.Device {
	snapshot, ok := c.Snapshot()
	if !ok {
		return nil
	}

	out := make([]model.Device, 0, len(snapshot.Devices))
	for _, device := range snapshot.Devices {
		if roomID > 0 && device.RoomID != roomID {
			continue
		}
		if deviceType != "" && !strings.EqualFold(device.Type, deviceType) {
			continue
		}
		out = append(out, device)
	}
	return out
}

// Rooms returns the rooms of the current snapshot.
func (c *Catalog) Rooms() []model.Room {
	snapshot, ok := c.Snapshot()
	if !ok {
		return nil
	}
	return snapshot.Rooms
}
