package model

import "time"

// Device types reported by the Crestron Home discovery payload.
const (
	DeviceTypeLight      = "light"
	DeviceTypeShade      = "shade"
	DeviceTypeThermostat = "thermostat"
	DeviceTypeSensor     = "sensor"
)

// Room is one spatial grouping configured on the hub.
type Room struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Device is one catalog entry. Attributes carries type-specific fields
// (level, position, setPoint, ...) without interpretation.
type Device struct {
	ID         int            `json:"id"`
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	SubType    string         `json:"subType,omitempty"`
	RoomID     int            `json:"roomId"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Snapshot is the immutable catalog state taken in one refresh. A new
// refresh replaces the whole snapshot; readers never see it half-built.
type Snapshot struct {
	Rooms     []Room
	Devices   []Device
	FetchedAt time.Time

	roomsByID map[int]Room
}

// NewSnapshot builds a snapshot with its room index.
func NewSnapshot(rooms []Room, devices []Device, fetchedAt time.Time) *Snapshot {
	byID := make(map[int]Room, len(rooms))
	for _, room := range rooms {
		byID[room.ID] = room
	}
	return &Snapshot{
		Rooms:     rooms,
		Devices:   devices,
		FetchedAt: fetchedAt,
		roomsByID: byID,
	}
}

// RoomByID returns the room for id, if present in this snapshot.
func (s *Snapshot) RoomByID(id int) (Room, bool) {
	if s == nil {
		return Room{}, false
	}
	room, ok := s.roomsByID[id]
	return room, ok
}

// RoomName returns the room name for id, or "" when unknown.
func (s *Snapshot) RoomName(id int) string {
	room, ok := s.RoomByID(id)
	if !ok {
		return ""
	}
	return room.Name
}

// DeviceByID returns the device for id, if present in this snapshot.
func (s *Snapshot) DeviceByID(id int) (Device, bool) {
	if s == nil {
		return Device{}, false
	}
	for _, device := range s.Devices {
		if device.ID == id {
			return device, true
		}
	}
	return Device{}, false
}
