package crestron

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Thermostat system modes accepted by the hub.
var systemModes = []string{"HEAT", "COOL", "AUTO", "OFF"}

// Fan modes accepted by the hub.
var fanModes = []string{"AUTO", "ON"}

// Setpoint types accepted by the hub.
var setpointTypes = []string{"Heat", "Cool", "Auto"}

// SetPoint is one thermostat target temperature in the thermostat's
// configured units.
type SetPoint struct {
	Type        string `json:"type"`
	Temperature int    `json:"temperature"`
	MinValue    int    `json:"minValue,omitempty"`
	MaxValue    int    `json:"maxValue,omitempty"`
}

// Thermostat is one climate device with its current state and capabilities.
type Thermostat struct {
	ID                   int        `json:"id"`
	Name                 string     `json:"name"`
	RoomID               int        `json:"roomId"`
	Mode                 string     `json:"mode"`
	CurrentTemperature   int        `json:"currentTemperature"`
	TemperatureUnits     string     `json:"temperatureUnits"`
	CurrentFanMode       string     `json:"currentFanMode"`
	SchedulerState       string     `json:"schedulerState"`
	SetPoint             *SetPoint  `json:"setPoint,omitempty"`
	AvailableSystemModes []string   `json:"availableSystemModes,omitempty"`
	AvailableFanModes    []string   `json:"availableFanModes,omitempty"`
	AvailableSetPoints   []SetPoint `json:"availableSetPoints,omitempty"`
}

// ThermostatModeCommand targets one thermostat with a system or fan mode.
type ThermostatModeCommand struct {
	ID   int    `json:"id"`
	Mode string `json:"mode"`
}

// Thermostats returns all thermostats.
func (c *Client) Thermostats(ctx context.Context) ([]Thermostat, error) {
	result, err := c.Do(ctx, http.MethodGet, "/thermostats", nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Thermostats []Thermostat `json:"thermostats"`
	}
	if err := json.Unmarshal(result.Body, &payload); err != nil {
		return nil, &TransportError{Path: "/thermostats", Err: fmt.Errorf("decode thermostats: %w", err)}
	}
	return payload.Thermostats, nil
}

// SetThermostatSetpoints applies setpoints to one thermostat.
func (c *Client) SetThermostatSetpoints(ctx context.Context, id int, setpoints []SetPoint) (Result, error) {
	if id < 1 {
		return Result{}, &ValidationError{Field: "id", Reason: "must be positive"}
	}
	if len(setpoints) == 0 {
		return Result{}, &ValidationError{Field: "setpoints", Reason: "at least one setpoint is required"}
	}
	outgoing := make([]map[string]any, 0, len(setpoints))
	for _, setpoint := range setpoints {
		if !containsFold(setpointTypes, setpoint.Type) {
			return Result{}, &ValidationError{
				Field:  "setpoints.type",
				Reason: fmt.Sprintf("must be one of %s", strings.Join(setpointTypes, ", ")),
			}
		}
		outgoing = append(outgoing, map[string]any{
			"type":        setpoint.Type,
			"temperature": setpoint.Temperature,
		})
	}

	body := map[string]any{"id": id, "setpoints": outgoing}
	result, err := c.Do(ctx, http.MethodPost, "/thermostats/SetPoint", body)
	if err != nil {
		var herr *HubError
		if errors.As(err, &herr) && herr.Status == http.StatusNotFound {
			return Result{}, &NotFoundError{Kind: "thermostat", ID: id}
		}
		return Result{}, err
	}
	return result, nil
}

// SetThermostatModes applies system modes to a batch of thermostats.
func (c *Client) SetThermostatModes(ctx context.Context, commands []ThermostatModeCommand) (Result, error) {
	if err := validateModeCommands(commands, systemModes, "thermostats"); err != nil {
		return Result{}, err
	}
	body := map[string]any{"thermostats": commands}
	return c.Do(ctx, http.MethodPost, "/thermostats/mode", body)
}

// SetThermostatFanModes applies fan modes to a batch of thermostats.
func (c *Client) SetThermostatFanModes(ctx context.Context, commands []ThermostatModeCommand) (Result, error) {
	if err := validateModeCommands(commands, fanModes, "thermostats"); err != nil {
		return Result{}, err
	}
	body := map[string]any{"thermostats": commands}
	return c.Do(ctx, http.MethodPost, "/thermostats/fanmode", body)
}

func validateModeCommands(commands []ThermostatModeCommand, allowed []string, field string) error {
	if len(commands) == 0 {
		return &ValidationError{Field: field, Reason: "at least one command is required"}
	}
	for _, command := range commands {
		if command.ID < 1 {
			return &ValidationError{Field: field + ".id", Reason: "must be positive"}
		}
		if !containsFold(allowed, command.Mode) {
			return &ValidationError{
				Field:  field + ".mode",
				Reason: fmt.Sprintf("must be one of %s", strings.Join(allowed, ", ")),
			}
		}
	}
	return nil
}

func containsFold(values []string, value string) bool {
	for _, candidate := range values {
		if strings.EqualFold(candidate, value) {
			return true
		}
	}
	return false
}
