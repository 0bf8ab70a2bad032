package resolve

import (
	"testing"
	"time"

	"github.com/micro-ha/crestron-bridge/internal/model"
)

func testSnapshot() *model.Snapshot {
	rooms := []model.Room{
		{ID: 1001, Name: "Tutta la Casa"},
		{ID: 1, Name: "Soggiorno"},
		{ID: 2, Name: "Camera da Letto"},
		{ID: 3, Name: "Cucina"},
	}
	devices := []model.Device{
		{ID: 10, Name: "Lampadario Soggiorno", Type: model.DeviceTypeLight, RoomID: 1},
		{ID: 11, Name: "Applique Parete", Type: model.DeviceTypeLight, RoomID: 1},
		{ID: 20, Name: "Tapparella Grande", Type: model.DeviceTypeShade, RoomID: 1},
		{ID: 30, Name: "Lampadario Camera", Type: model.DeviceTypeLight, RoomID: 2},
		{ID: 31, Name: "Abat-jour Sinistra", Type: model.DeviceTypeLight, RoomID: 2},
		{ID: 32, Name: "Abat-jour Destra", Type: model.DeviceTypeLight, RoomID: 2},
		{ID: 60, Name: "Luci Cucina", Type: model.DeviceTypeLight, RoomID: 3},
	}
	return model.NewSnapshot(rooms, devices, time.Now())
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  Lampadario   Soggiorno ", "lampadario soggiorno"},
		{"Abat-jour Sinistra", "abat jour sinistra"},
		{"Caffè & Tè!", "caffe te"},
		{"ÀÉÎÕÜ", "aeiou"},
		{"", ""},
		{"---", ""},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Fatalf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestResolve_ExactNameMatchWins(t *testing.T) {
	resolution := Resolve("accendi il Lampadario Soggiorno", testSnapshot(), 0)

	if resolution.Outcome != OutcomeResolved {
		t.Fatalf("expected resolved, got %s", resolution.Outcome)
	}
	if resolution.Device == nil || resolution.Device.ID != 10 {
		t.Fatalf("expected device 10, got %+v", resolution.Device)
	}
	if resolution.Confidence != 1.0 {
		t.Fatalf("expected confidence 1.0 for an exact name match, got %v", resolution.Confidence)
	}
}

func TestResolve_SharedScoreIsAmbiguous(t *testing.T) {
	resolution := Resolve("abat jour", testSnapshot(), 0)

	if resolution.Outcome != OutcomeAmbiguous {
		t.Fatalf("expected ambiguous, got %s", resolution.Outcome)
	}
	if len(resolution.Candidates) < 2 {
		t.Fatalf("expected both abat-jour lamps as candidates, got %d", len(resolution.Candidates))
	}
	if resolution.Candidates[0].Device.ID != 31 || resolution.Candidates[1].Device.ID != 32 {
		t.Fatalf("expected candidates ordered by id within equal scores, got %d then %d",
			resolution.Candidates[0].Device.ID, resolution.Candidates[1].Device.ID)
	}
}

func TestResolve_RoomTokensContribute(t *testing.T) {
	// "lampadario camera" names device 30 exactly; "lampadario" alone ties
	// with the living-room chandelier through the name token.
	resolution := Resolve("lampadario camera", testSnapshot(), 0)
	if resolution.Outcome != OutcomeResolved || resolution.Device == nil || resolution.Device.ID != 30 {
		t.Fatalf("expected device 30, got %+v", resolution)
	}

	resolution = Resolve("lampadario", testSnapshot(), 0)
	if resolution.Outcome != OutcomeAmbiguous {
		t.Fatalf("expected ambiguous for a bare chandelier utterance, got %s", resolution.Outcome)
	}
}

func TestResolve_LowScoresStayAmbiguous(t *testing.T) {
	// One overlapping token out of several never reaches the threshold.
	resolution := Resolve("luce vicino alla finestra della cucina", testSnapshot(), 0)

	if resolution.Outcome != OutcomeAmbiguous {
		t.Fatalf("expected ambiguous below the threshold, got %s", resolution.Outcome)
	}
	if resolution.Confidence >= resolveThreshold {
		t.Fatalf("expected a sub-threshold confidence, got %v", resolution.Confidence)
	}
}

func TestResolve_NoOverlapIsNotFound(t *testing.T) {
	resolution := Resolve("frigorifero garage", testSnapshot(), 0)
	if resolution.Outcome != OutcomeNotFound {
		t.Fatalf("expected not_found, got %s", resolution.Outcome)
	}
}

func TestResolve_RoomBoostIsCappedAtOne(t *testing.T) {
	resolution := Resolve("accendi il Lampadario Soggiorno", testSnapshot(), 1)

	if resolution.Outcome != OutcomeResolved {
		t.Fatalf("expected resolved, got %s", resolution.Outcome)
	}
	if resolution.Confidence > 1.0 {
		t.Fatalf("confidence must not exceed 1.0, got %v", resolution.Confidence)
	}
}

func TestResolve_RoomBoostRaisesScore(t *testing.T) {
	// "luci" against "Luci Cucina" scores 1/2 on token overlap; the room
	// hint adds the fixed boost on top.
	resolution := Resolve("luci", testSnapshot(), 0)
	if resolution.Outcome != OutcomeAmbiguous || resolution.Confidence != 0.5 {
		t.Fatalf("expected ambiguous at 0.5 without a hint, got %s at %v", resolution.Outcome, resolution.Confidence)
	}

	resolution = Resolve("luci", testSnapshot(), 3)
	if resolution.Confidence != 0.5+roomBoost {
		t.Fatalf("expected the room hint to add %v, got %v", roomBoost, resolution.Confidence)
	}
}

func TestResolve_EmptyInputs(t *testing.T) {
	if got := Resolve("", testSnapshot(), 0); got.Outcome != OutcomeNotFound {
		t.Fatalf("empty utterance: expected not_found, got %s", got.Outcome)
	}
	if got := Resolve("lampadario", nil, 0); got.Outcome != OutcomeNotFound {
		t.Fatalf("nil snapshot: expected not_found, got %s", got.Outcome)
	}
}
