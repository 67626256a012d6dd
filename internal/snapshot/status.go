package snapshot

import (
	"time"

	"github.com/cesargomez89/walkmlb/internal/constants"
)

// GameStatus is the upstream status sub-object.
type GameStatus struct {
	AbstractGameState string `json:"abstractGameState,omitempty"`
	CodedGameState    string `json:"codedGameState,omitempty"`
	DetailedState     string `json:"detailedState,omitempty"`
	StatusCode        string `json:"statusCode,omitempty"`
}

// GameDateTime is the upstream schedule datetime sub-object.
type GameDateTime struct {
	DateTime     string `json:"dateTime,omitempty"`
	OfficialDate string `json:"officialDate,omitempty"`
}

type TeamName struct {
	Name string `json:"name,omitempty"`
}

type StatusTeams struct {
	Home TeamName `json:"home"`
	Away TeamName `json:"away"`
}

type StatusGameData struct {
	Status   GameStatus   `json:"status"`
	DateTime GameDateTime `json:"datetime"`
	Teams    StatusTeams  `json:"teams"`
}

// Status is the shrunk live feed: status, schedule datetime and the two team names.
// Play-by-play, decisions and rosters are never decoded.
type Status struct {
	GameData StatusGameData `json:"gameData"`
}

func (*Status) Kind() Kind { return KindStatus }

func (*Status) Shrink() {}

// DecodeStatus decodes a raw live feed or a stored status payload.
func DecodeStatus(raw []byte) (*Status, error) {
	var s Status
	if err := decodeInto(KindStatus, raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Status) Detailed() string {
	if s == nil {
		return ""
	}
	return s.GameData.Status.DetailedState
}

func (s *Status) Abstract() string {
	if s == nil {
		return ""
	}
	return s.GameData.Status.AbstractGameState
}

func (s *Status) HomeName() string {
	if s == nil {
		return ""
	}
	return s.GameData.Teams.Home.Name
}

func (s *Status) AwayName() string {
	if s == nil {
		return ""
	}
	return s.GameData.Teams.Away.Name
}

// ScheduledAt returns the scheduled first pitch, if the document carries one.
func (s *Status) ScheduledAt() (time.Time, bool) {
	if s == nil || s.GameData.DateTime.DateTime == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s.GameData.DateTime.DateTime)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// OfficialDate returns the league's official calendar date, if present and well formed.
func (s *Status) OfficialDate() (time.Time, bool) {
	if s == nil || s.GameData.DateTime.OfficialDate == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(constants.DateLayout, s.GameData.DateTime.OfficialDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
