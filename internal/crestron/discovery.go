package crestron

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/micro-ha/crestron-bridge/internal/model"
)

// Rooms returns every room configured on the hub.
func (c *Client) Rooms(ctx context.Context) ([]model.Room, error) {
	result, err := c.Do(ctx, http.MethodGet, "/rooms", nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Rooms []model.Room `json:"rooms"`
	}
	if err := json.Unmarshal(result.Body, &payload); err != nil {
		return nil, &TransportError{Path: "/rooms", Err: fmt.Errorf("decode rooms: %w", err)}
	}
	return payload.Rooms, nil
}

// Devices returns every device known to the hub. Type-specific fields land
// in Attributes untouched.
func (c *Client) Devices(ctx context.Context) ([]model.Device, error) {
	result, err := c.Do(ctx, http.MethodGet, "/devices", nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Devices []map[string]any `json:"devices"`
	}
	if err := json.Unmarshal(result.Body, &payload); err != nil {
		return nil, &TransportError{Path: "/devices", Err: fmt.Errorf("decode devices: %w", err)}
	}

	devices := make([]model.Device, 0, len(payload.Devices))
	for _, row := range payload.Devices {
		device := decodeDeviceRow(row)
		if device.ID == 0 {
			continue
		}
		devices = append(devices, device)
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].ID < devices[j].ID })
	return devices, nil
}

// decodeDeviceRow splits the well-known identity fields off a discovery row
// and keeps everything else as opaque attributes.
func decodeDeviceRow(row map[string]any) model.Device {
	device := model.Device{
		ID:      intField(row, "id"),
		Name:    stringField(row, "name"),
		Type:    stringField(row, "type"),
		SubType: stringField(row, "subType"),
		RoomID:  intField(row, "roomId"),
	}

	attributes := make(map[string]any, len(row))
	for key, value := range row {
		switch key {
		case "id", "name", "type", "subType", "roomId":
			continue
		}
		attributes[key] = value
	}
	if len(attributes) > 0 {
		device.Attributes = attributes
	}
	return device
}

func intField(row map[string]any, key string) int {
	switch value := row[key].(type) {
	case float64:
		return int(value)
	case int:
		return value
	case json.Number:
		n, err := value.Int64()
		if err != nil {
			return 0
		}
		return int(n)
	default:
		return 0
	}
}

func stringField(row map[string]any, key string) string {
	value, _ := row[key].(string)
	return value
}
