package service

import (
	"context"
	"fmt"

	"github.com/micro-ha/crestron-bridge/internal/crestron"
)

// ShadePosition targets one shade with a caller-facing percentage:
// 0 fully closed, 100 fully open.
type ShadePosition struct {
	ID      int `json:"id"`
	Percent int `json:"percent"`
}

// SetpointInput is one caller-facing thermostat setpoint.
type SetpointInput struct {
	Type        string `json:"type"`
	Temperature int    `json:"temperature"`
}

// ModeInput targets one thermostat with a system or fan mode.
type ModeInput struct {
	ID   int    `json:"id"`
	Mode string `json:"mode"`
}

// GetShades returns all shades, or the single shade with id when id > 0.
func (s *Service) GetShades(ctx context.Context, id int) ([]crestron.Shade, error) {
	if id > 0 {
		shade, err := s.hub.Shade(ctx, id)
		if err != nil {
			return nil, err
		}
		return []crestron.Shade{shade}, nil
	}
	return s.hub.Shades(ctx)
}

// SetShadePositions converts percentages to the hub scale and applies the
// batch. A partial outcome is surfaced as PartialFailureError with the
// hub's failed ids untouched.
func (s *Service) SetShadePositions(ctx context.Context, positions []ShadePosition) error {
	if len(positions) == 0 {
		return &crestron.ValidationError{Field: "shades", Reason: "at least one position is required"}
	}

	commands := make([]crestron.ShadeCommand, 0, len(positions))
	for _, position := range positions {
		if position.ID < 1 {
			return &crestron.ValidationError{Field: "shades.id", Reason: "must be positive"}
		}
		if position.Percent < 0 || position.Percent > 100 {
			return &crestron.ValidationError{
				Field:  "shades.percent",
				Reason: fmt.Sprintf("%d is out of range 0..100", position.Percent),
			}
		}
		commands = append(commands, crestron.ShadeCommand{
			ID:       position.ID,
			Position: position.Percent * crestron.PositionScale / 100,
		})
	}

	result, err := s.hub.SetShadeState(ctx, commands)
	if err != nil {
		return err
	}
	return partialToError(result)
}

// ListScenes returns scenes, optionally filtered by room and type.
func (s *Service) ListScenes(ctx context.Context, roomID int, sceneType string) ([]crestron.Scene, error) {
	scenes, err := s.hub.Scenes(ctx)
	if err != nil {
		return nil, err
	}
	if roomID <= 0 && sceneType == "" {
		return scenes, nil
	}

	filtered := make([]crestron.Scene, 0, len(scenes))
	for _, scene := range scenes {
		if roomID > 0 && scene.RoomID != roomID {
			continue
		}
		if sceneType != "" && scene.Type != sceneType {
			continue
		}
		filtered = append(filtered, scene)
	}
	return filtered, nil
}

// ActivateScene recalls one scene.
func (s *Service) ActivateScene(ctx context.Context, id int) error {
	result, err := s.hub.RecallScene(ctx, id)
	if err != nil {
		return err
	}
	return partialToError(result)
}

// GetThermostats returns all thermostats, or only the one with id > 0.
func (s *Service) GetThermostats(ctx context.Context, id int) ([]crestron.Thermostat, error) {
	thermostats, err := s.hub.Thermostats(ctx)
	if err != nil {
		return nil, err
	}
	if id <= 0 {
		return thermostats, nil
	}
	for _, thermostat := range thermostats {
		if thermostat.ID == id {
			return []crestron.Thermostat{thermostat}, nil
		}
	}
	return nil, &crestron.NotFoundError{Kind: "thermostat", ID: id}
}

// SetThermostatSetpoints applies setpoints to one thermostat.
func (s *Service) SetThermostatSetpoints(ctx context.Context, id int, setpoints []SetpointInput) error {
	outgoing := make([]crestron.SetPoint, 0, len(setpoints))
	for _, setpoint := range setpoints {
		outgoing = append(outgoing, crestron.SetPoint{
			Type:        setpoint.Type,
			Temperature: setpoint.Temperature,
		})
	}
	result, err := s.hub.SetThermostatSetpoints(ctx, id, outgoing)
	if err != nil {
		return err
	}
	return partialToError(result)
}

// SetThermostatModes applies system modes to a batch of thermostats.
func (s *Service) SetThermostatModes(ctx context.Context, modes []ModeInput) error {
	result, err := s.hub.SetThermostatModes(ctx, modeCommands(modes))
	if err != nil {
		return err
	}
	return partialToError(result)
}

// SetThermostatFanModes applies fan modes to a batch of thermostats.
func (s *Service) SetThermostatFanModes(ctx context.Context, modes []ModeInput) error {
	result, err := s.hub.SetThermostatFanModes(ctx, modeCommands(modes))
	if err != nil {
		return err
	}
	return partialToError(result)
}

// GetSensors returns sensors, optionally narrowed to one id or a subtype.
func (s *Service) GetSensors(ctx context.Context, id int, subType string) ([]crestron.Sensor, error) {
	if id > 0 {
		sensor, err := s.hub.Sensor(ctx, id)
		if err != nil {
			return nil, err
		}
		return []crestron.Sensor{sensor}, nil
	}

	sensors, err := s.hub.Sensors(ctx)
	if err != nil {
		return nil, err
	}
	if subType == "" {
		return sensors, nil
	}
	filtered := make([]crestron.Sensor, 0, len(sensors))
	for _, sensor := range sensors {
		if sensor.SubType == subType {
			filtered = append(filtered, sensor)
		}
	}
	return filtered, nil
}

func modeCommands(modes []ModeInput) []crestron.ThermostatModeCommand {
	commands := make([]crestron.ThermostatModeCommand, 0, len(modes))
	for _, mode := range modes {
		commands = append(commands, crestron.ThermostatModeCommand{ID: mode.ID, Mode: mode.Mode})
	}
	return commands
}

// partialToError keeps the hub's failed ids verbatim; a partial outcome is
// never reported as full success or full failure.
func partialToError(result crestron.Result) error {
	if !result.Partial {
		return nil
	}
	return &crestron.PartialFailureError{FailedIDs: result.FailedIDs, Message: result.Message}
}
