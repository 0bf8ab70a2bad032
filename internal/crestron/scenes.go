package crestron

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Scene is one pre-configured multi-device scenario.
type Scene struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Status bool   `json:"status"`
	RoomID int    `json:"roomId"`
}

// Scenes returns all scenes.
func (c *Client) Scenes(ctx context.Context) ([]Scene, error) {
	result, err := c.Do(ctx, http.MethodGet, "/scenes", nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Scenes []Scene `json:"scenes"`
	}
	if err := json.Unmarshal(result.Body, &payload); err != nil {
		return nil, &TransportError{Path: "/scenes", Err: fmt.Errorf("decode scenes: %w", err)}
	}
	return payload.Scenes, nil
}

// RecallScene activates one scene by id.
func (c *Client) RecallScene(ctx context.Context, id int) (Result, error) {
	if id < 1 {
		return Result{}, &ValidationError{Field: "id", Reason: "must be positive"}
	}

	result, err := c.Do(ctx, http.MethodPost, fmt.Sprintf("/scenes/recall/%d", id), nil)
	if err != nil {
		var herr *HubError
		if errors.As(err, &herr) && herr.Status == http.StatusNotFound {
			return Result{}, &NotFoundError{Kind: "scene", ID: id}
		}
		return Result{}, err
	}
	return result, nil
}
