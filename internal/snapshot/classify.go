package snapshot

import "strings"

// State is the lifecycle of a game derived from its status document.
type State string

const (
	StateLive  State = "LIVE"
	StateFinal State = "FINAL"
	// StateOther covers pre-game, delayed, postponed, suspended and unknown.
	StateOther State = "OTHER"
)

// Terminal reports whether no further upstream changes are expected.
func (s State) Terminal() bool { return s == StateFinal }

// Classify maps upstream status strings onto a State. Matching is case-insensitive
// and substring based because upstream wording varies ("Final", "Game Over",
// "Completed Early"). It never fails: anything unrecognised is StateOther.
func Classify(st GameStatus) State {
	det := strings.ToLower(strings.TrimSpace(st.DetailedState))
	ab := strings.ToLower(strings.TrimSpace(st.AbstractGameState))

	switch {
	case strings.Contains(det, "final"),
		strings.Contains(ab, "final"),
		ab == "completed",
		strings.Contains(det, "game over"):
		return StateFinal
	case ab == "live",
		strings.Contains(det, "progress"),
		strings.Contains(det, "live"):
		return StateLive
	}
	return StateOther
}

// ClassifyStatus classifies a decoded document; nil is StateOther.
func ClassifyStatus(s *Status) State {
	if s == nil {
		return StateOther
	}
	return Classify(s.GameData.Status)
}

// ClassifyPayload classifies a stored or raw status payload. Empty or
// undecodable payloads are StateOther.
func ClassifyPayload(payload []byte) State {
	s, err := DecodeStatus(payload)
	if err != nil {
		return StateOther
	}
	return ClassifyStatus(s)
}
