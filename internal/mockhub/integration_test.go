package mockhub

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/micro-ha/crestron-bridge/internal/crestron"
)

// These tests drive the real hub client against the mock hub, covering the
// full wire protocol: login, keyed requests, transparent reauthentication
// and partial-failure classification.

func newIntegrationClient(t *testing.T) (*crestron.Client, *Hub) {
	t.Helper()
	store, err := NewStore(context.Background(), ":memory:", nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	hub := New("", store, testLogger())
	server := httptest.NewServer(hub.Handler())
	t.Cleanup(server.Close)

	client := crestron.NewClient(crestron.Config{}, testLogger())
	if _, err := client.Authenticate(context.Background(), server.URL, hub.AuthToken()); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	return client, hub
}

func TestClientAgainstMockHub_Discovery(t *testing.T) {
	client, _ := newIntegrationClient(t)

	rooms, err := client.Rooms(context.Background())
	if err != nil {
		t.Fatalf("rooms: %v", err)
	}
	if len(rooms) != 4 {
		t.Fatalf("expected 4 fixture rooms, got %d", len(rooms))
	}

	devices, err := client.Devices(context.Background())
	if err != nil {
		t.Fatalf("devices: %v", err)
	}
	if len(devices) != 15 {
		t.Fatalf("expected 15 fixture devices, got %d", len(devices))
	}
	for i := 1; i < len(devices); i++ {
		if devices[i-1].ID >= devices[i].ID {
			t.Fatalf("devices not sorted by id at index %d", i)
		}
	}
}

func TestClientAgainstMockHub_ReauthenticatesTransparently(t *testing.T) {
	client, hub := newIntegrationClient(t)

	hub.ExpireSessions()

	rooms, err := client.Rooms(context.Background())
	if err != nil {
		t.Fatalf("rooms after expiry: %v", err)
	}
	if len(rooms) != 4 {
		t.Fatalf("expected 4 rooms after transparent reauth, got %d", len(rooms))
	}
}

func TestClientAgainstMockHub_PartialShadeBatch(t *testing.T) {
	client, _ := newIntegrationClient(t)

	result, err := client.SetShadeState(context.Background(), []crestron.ShadeCommand{
		{ID: 20, Position: 40000},
		{ID: 99, Position: 0},
	})
	if err != nil {
		t.Fatalf("set shade state: %v", err)
	}
	if !result.Partial {
		t.Fatalf("expected a partial result for the unknown shade")
	}
	if len(result.FailedIDs) != 1 || result.FailedIDs[0] != 99 {
		t.Fatalf("expected failed ids [99], got %v", result.FailedIDs)
	}

	shade, err := client.Shade(context.Background(), 20)
	if err != nil {
		t.Fatalf("shade 20: %v", err)
	}
	if shade.Position != 40000 {
		t.Fatalf("expected position 40000 persisted, got %d", shade.Position)
	}
}

func TestClientAgainstMockHub_UnknownSceneIsNotFound(t *testing.T) {
	client, _ := newIntegrationClient(t)

	_, err := client.RecallScene(context.Background(), 99)
	var notFound *crestron.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
