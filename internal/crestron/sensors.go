package crestron

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Sensor subtypes reported by the hub.
const (
	SensorOccupancy = "OccupancySensor"
	SensorPhoto     = "PhotoSensor"
	SensorDoor      = "DoorSensor"
)

// Sensor is one read-only sensor. The hub reports door and battery fields
// with spaces in the key names.
type Sensor struct {
	ID               int    `json:"id"`
	Name             string `json:"name"`
	SubType          string `json:"subType"`
	RoomID           int    `json:"roomId"`
	Presence         string `json:"presence,omitempty"`
	Level            int    `json:"level,omitempty"`
	DoorStatus       string `json:"door status,omitempty"`
	BatteryLevel     string `json:"battery level,omitempty"`
	ConnectionStatus string `json:"connectionStatus,omitempty"`
}

// Sensors returns all sensors.
func (c *Client) Sensors(ctx context.Context) ([]Sensor, error) {
	return c.fetchSensors(ctx, "/sensors")
}

// Sensor returns one sensor by id.
func (c *Client) Sensor(ctx context.Context, id int) (Sensor, error) {
	if id < 1 {
		return Sensor{}, &ValidationError{Field: "id", Reason: "must be positive"}
	}
	sensors, err := c.fetchSensors(ctx, fmt.Sprintf("/sensors/%d", id))
	if err != nil {
		var herr *HubError
		if errors.As(err, &herr) && herr.Status == http.StatusNotFound {
			return Sensor{}, &NotFoundError{Kind: "sensor", ID: id}
		}
		return Sensor{}, err
	}
	if len(sensors) == 0 {
		return Sensor{}, &NotFoundError{Kind: "sensor", ID: id}
	}
	return sensors[0], nil
}

func (c *Client) fetchSensors(ctx context.Context, path string) ([]Sensor, error) {
	result, err := c.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Sensors []Sensor `json:"sensors"`
	}
	if err := json.Unmarshal(result.Body, &payload); err != nil {
		return nil, &TransportError{Path: path, Err: fmt.Errorf("decode sensors: %w", err)}
	}
	return payload.Sensors, nil
}
