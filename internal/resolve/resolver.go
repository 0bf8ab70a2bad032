package resolve

import (
	"sort"
	"strings"

	"github.com/micro-ha/crestron-bridge/internal/model"
)

const (
	// resolveThreshold is the minimum confidence for an automatic match.
	resolveThreshold = 0.8
	// roomBoost rewards candidates in the caller's preferred room. Applied
	// after base scoring so boosted and unboosted candidates stay on the
	// same scale.
	roomBoost = 0.15
	// maxCandidates bounds the list returned for an ambiguous verdict.
	maxCandidates = 5
)

// Outcome is the verdict kind of one resolution.
type Outcome string

const (
	OutcomeResolved  Outcome = "resolved"
	OutcomeAmbiguous Outcome = "ambiguous"
	OutcomeNotFound  Outcome = "not_found"
)

// Candidate is one scored catalog entry.
type Candidate struct {
	Device        model.Device `json:"device"`
	Score         float64      `json:"score"`
	MatchedTokens []string     `json:"matchedTokens,omitempty"`
}

// Resolution is the verdict for one utterance. Device is set only for
// OutcomeResolved; Candidates only for OutcomeAmbiguous.
type Resolution struct {
	Outcome    Outcome       `json:"outcome"`
	Confidence float64       `json:"confidence"`
	Device     *model.Device `json:"device,omitempty"`
	Candidates []Candidate   `json:"candidates,omitempty"`
}

// Resolve scores every device in the snapshot against the utterance.
//
// A device whose normalized name contains the normalized utterance (or
// vice versa) scores 1.0 outright. Every other device scores the Jaccard
// similarity between the utterance token set and the union of its name and
// room-name tokens; zero overlap excludes it. Candidates in preferredRoomID
// get a fixed boost capped at 1.0. The top candidate wins automatically
// only when it reaches the threshold and strictly beats every other score;
// a shared maximum is reported as ambiguous even above the threshold.
func Resolve(utterance string, snapshot *model.Snapshot, preferredRoomID int) Resolution {
	normalized := Normalize(utterance)
	if normalized == "" || snapshot == nil || len(snapshot.Devices) == 0 {
		return Resolution{Outcome: OutcomeNotFound}
	}
	utteranceTokens := tokenSet(normalized)

	candidates := make([]Candidate, 0)
	for _, device := range snapshot.Devices {
		name := Normalize(device.Name)
		room := Normalize(snapshot.RoomName(device.RoomID))
		deviceTokens := union(tokenSet(name), tokenSet(room))
		matched := intersection(utteranceTokens, deviceTokens)

		var score float64
		switch {
		case name != "" && (strings.Contains(name, normalized) || strings.Contains(normalized, name)):
			score = 1.0
		case len(matched) == 0:
			continue
		default:
			score = float64(len(matched)) / float64(len(union(utteranceTokens, deviceTokens)))
		}

		if preferredRoomID > 0 && device.RoomID == preferredRoomID {
			score += roomBoost
			if score > 1.0 {
				score = 1.0
			}
		}

		candidates = append(candidates, Candidate{
			Device:        device,
			Score:         score,
			MatchedTokens: matched,
		})
	}

	if len(candidates) == 0 {
		return Resolution{Outcome: OutcomeNotFound}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Device.ID < candidates[j].Device.ID
	})

	top := candidates[0]
	uncontested := len(candidates) == 1 || top.Score > candidates[1].Score
	if top.Score >= resolveThreshold && uncontested {
		device := top.Device
		return Resolution{
			Outcome:    OutcomeResolved,
			Confidence: top.Score,
			Device:     &device,
		}
	}

	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}
	return Resolution{
		Outcome:    OutcomeAmbiguous,
		Confidence: top.Score,
		Candidates: candidates,
	}
}
