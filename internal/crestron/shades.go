package crestron

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// PositionScale is the hub-native full-open shade position.
const PositionScale = 65535

// Shade is one shade/blind with its hub-scale position.
type Shade struct {
	ID               int    `json:"id"`
	Name             string `json:"name"`
	SubType          string `json:"subType"`
	RoomID           int    `json:"roomId"`
	Position         int    `json:"position"`
	ConnectionStatus string `json:"connectionStatus"`
}

// ShadeCommand targets one shade with a hub-scale position.
type ShadeCommand struct {
	ID       int `json:"id"`
	Position int `json:"position"`
}

// Shades returns all shades.
func (c *Client) Shades(ctx context.Context) ([]Shade, error) {
	return c.fetchShades(ctx, "/shades")
}

// Shade returns one shade by id.
func (c *Client) Shade(ctx context.Context, id int) (Shade, error) {
	if id < 1 {
		return Shade{}, &ValidationError{Field: "id", Reason: "must be positive"}
	}
	shades, err := c.fetchShades(ctx, fmt.Sprintf("/shades/%d", id))
	if err != nil {
		var herr *HubError
		if errors.As(err, &herr) && herr.Status == http.StatusNotFound {
			return Shade{}, &NotFoundError{Kind: "shade", ID: id}
		}
		return Shade{}, err
	}
	if len(shades) == 0 {
		return Shade{}, &NotFoundError{Kind: "shade", ID: id}
	}
	return shades[0], nil
}

// SetShadeState applies a batch of position commands. A partial outcome is
// returned as a Result with the hub's failed ids, not as an error.
func (c *Client) SetShadeState(ctx context.Context, commands []ShadeCommand) (Result, error) {
	if len(commands) == 0 {
		return Result{}, &ValidationError{Field: "shades", Reason: "at least one command is required"}
	}
	for _, command := range commands {
		if command.ID < 1 {
			return Result{}, &ValidationError{Field: "shades.id", Reason: "must be positive"}
		}
		if command.Position < 0 || command.Position > PositionScale {
			return Result{}, &ValidationError{
				Field:  "shades.position",
				Reason: fmt.Sprintf("must be within 0..%d", PositionScale),
			}
		}
	}

	body := map[string]any{"shades": commands}
	return c.Do(ctx, http.MethodPost, "/shades/SetState", body)
}

func (c *Client) fetchShades(ctx context.Context, path string) ([]Shade, error) {
	result, err := c.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Shades []Shade `json:"shades"`
	}
	if err := json.Unmarshal(result.Body, &payload); err != nil {
		return nil, &TransportError{Path: path, Err: fmt.Errorf("decode shades: %w", err)}
	}
	return payload.Shades, nil
}
