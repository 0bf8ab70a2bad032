package mockhub

// Fixture data modeled on a small Italian home: three rooms plus a
// whole-house group, dimmers, roller shades, sensors and one thermostat.
// Positions and levels use the hub's 0..65535 scale, temperatures are in
// half degrees Celsius times ten.

const fixtureAuthToken = "test-token-123"

func fixtureRooms() []map[string]any {
	return []map[string]any{
		{"id": 1001, "name": "Tutta la Casa"},
		{"id": 1, "name": "Soggiorno"},
		{"id": 2, "name": "Camera da Letto"},
		{"id": 3, "name": "Cucina"},
	}
}

func fixtureDevices() []map[string]any {
	return []map[string]any{
		{"id": 10, "name": "Lampadario Soggiorno", "type": "light", "subType": "Dimmer", "roomId": 1, "level": 65535, "state": "on"},
		{"id": 11, "name": "Applique Parete", "type": "light", "subType": "Dimmer", "roomId": 1, "level": 32768, "state": "on"},
		{"id": 12, "name": "Lampada Lettura", "type": "light", "subType": "Switch", "roomId": 1, "level": 65535, "state": "on"},
		{"id": 20, "name": "Tapparella Grande", "type": "shade", "subType": "Shade", "roomId": 1, "position": 0, "connectionStatus": "online"},
		{"id": 21, "name": "Tapparella Finestra", "type": "shade", "subType": "Shade", "roomId": 1, "position": 32768, "connectionStatus": "online"},
		{"id": 30, "name": "Lampadario Camera", "type": "light", "subType": "Dimmer", "roomId": 2, "level": 0, "state": "off"},
		{"id": 31, "name": "Abat-jour Sinistra", "type": "light", "subType": "Dimmer", "roomId": 2, "level": 16384, "state": "on"},
		{"id": 32, "name": "Abat-jour Destra", "type": "light", "subType": "Dimmer", "roomId": 2, "level": 16384, "state": "on"},
		{"id": 40, "name": "Tapparella Camera", "type": "shade", "subType": "Shade", "roomId": 2, "position": 65535, "connectionStatus": "online"},
		{"id": 50, "name": "Sensore Presenza Camera", "type": "sensor", "subType": "OccupancySensor", "roomId": 2, "presence": "occupied"},
		{"id": 60, "name": "Luci Cucina", "type": "light", "subType": "Dimmer", "roomId": 3, "level": 49152, "state": "on"},
		{"id": 61, "name": "Luce Piano Lavoro", "type": "light", "subType": "Dimmer", "roomId": 3, "level": 65535, "state": "on"},
		{"id": 70, "name": "Sensore Luce Finestra", "type": "sensor", "subType": "PhotoSensor", "roomId": 3, "level": 450, "connectionStatus": "online"},
		{"id": 71, "name": "Sensore Porta", "type": "sensor", "subType": "DoorSensor", "roomId": 3, "door status": "Closed", "battery level": "Normal"},
		{
			"id": 80, "name": "Termostato Principale", "type": "thermostat", "subType": nil, "roomId": 1001,
			"mode":                 "Cool",
			"setPoint":             map[string]any{"type": "Cool", "temperature": 220, "minValue": 180, "maxValue": 300},
			"currentTemperature":   235,
			"temperatureUnits":     "CelsiusHalfDegrees",
			"currentFanMode":       "Auto",
			"schedulerState":       "run",
			"availableFanModes":    []string{"Auto", "On"},
			"availableSystemModes": []string{"Off", "Cool", "Heat", "Auto"},
			"availableSetPoints": []map[string]any{
				{"type": "Heat", "minValue": 150, "maxValue": 250},
				{"type": "Cool", "minValue": 180, "maxValue": 300},
			},
		},
	}
}

func fixtureScenes() []map[string]any {
	return []map[string]any{
		{"id": 1, "name": "Tutto Acceso", "type": "Lighting", "status": false, "roomId": 1001},
		{"id": 2, "name": "Tutto Spento", "type": "Lighting", "status": false, "roomId": 1001},
		{"id": 3, "name": "Film", "type": "Lighting", "status": false, "roomId": 1},
		{"id": 4, "name": "Cena", "type": "Lighting", "status": false, "roomId": 3},
		{"id": 5, "name": "Notte", "type": "Lighting", "status": false, "roomId": 2},
		{"id": 6, "name": "Buongiorno", "type": "Shade", "status": false, "roomId": 1001},
		{"id": 7, "name": "Buonanotte", "type": "Shade", "status": false, "roomId": 1001},
	}
}
