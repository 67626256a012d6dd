package snapshot

import (
	"bytes"
	"sort"

	json "github.com/goccy/go-json"

	"github.com/cesargomez89/walkmlb/internal/domain"
)

// BoxScore is the shrunk box score. Game info, decisions, flags, alerts and
// officials are never decoded.
type BoxScore struct {
	Teams BoxTeams `json:"teams"`
}

type BoxTeams struct {
	Home BoxTeam `json:"home"`
	Away BoxTeam `json:"away"`
}

type BoxTeam struct {
	Team      TeamName              `json:"team"`
	TeamStats TeamStats             `json:"teamStats"`
	Players   map[string]*BoxPlayer `json:"players,omitempty"`
}

type TeamStats struct {
	Batting  TeamBatting `json:"batting"`
	Fielding Fielding    `json:"fielding"`
}

type TeamBatting struct {
	Runs     int `json:"runs"`
	Hits     int `json:"hits"`
	HomeRuns int `json:"homeRuns"`
}

type Fielding struct {
	Errors int `json:"errors"`
}

type Person struct {
	ID       int64  `json:"id,omitempty"`
	FullName string `json:"fullName,omitempty"`
}

type Position struct {
	Abbreviation string `json:"abbreviation,omitempty"`
}

type BoxPlayer struct {
	Person   Person      `json:"person"`
	Position Position    `json:"position"`
	Stats    PlayerStats `json:"stats"`
}

// PlayerStats keeps the batting line and fielding errors. Batting is nil when
// the player did not bat; upstream sends an empty object in that case.
type PlayerStats struct {
	Batting  *Batting `json:"batting,omitempty"`
	Fielding Fielding `json:"fielding"`
}

type Batting struct {
	AtBats      int `json:"atBats"`
	Runs        int `json:"runs"`
	Hits        int `json:"hits"`
	RBI         int `json:"rbi"`
	BaseOnBalls int `json:"baseOnBalls"`
	StrikeOuts  int `json:"strikeOuts"`
	LeftOnBase  int `json:"leftOnBase"`
	HomeRuns    int `json:"homeRuns"`
}

func (ps *PlayerStats) UnmarshalJSON(data []byte) error {
	var raw struct {
		Batting  json.RawMessage `json:"batting"`
		Fielding Fielding        `json:"fielding"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ps.Fielding = raw.Fielding
	ps.Batting = nil

	trimmed := bytes.TrimSpace(raw.Batting)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	var b Batting
	if err := json.Unmarshal(trimmed, &b); err != nil {
		return err
	}
	ps.Batting = &b
	return nil
}

func (*BoxScore) Kind() Kind { return KindBoxScore }

// Shrink drops players that neither batted nor committed an error.
func (b *BoxScore) Shrink() {
	for _, side := range []*BoxTeam{&b.Teams.Home, &b.Teams.Away} {
		for id, p := range side.Players {
			if p == nil || (p.Stats.Batting == nil && p.Stats.Fielding.Errors == 0) {
				delete(side.Players, id)
			}
		}
		if len(side.Players) == 0 {
			side.Players = nil
		}
	}
}

// DecodeBoxScore decodes a raw or stored box score.
func DecodeBoxScore(raw []byte) (*BoxScore, error) {
	var b BoxScore
	if err := decodeInto(KindBoxScore, raw, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Totals derives aggregate team counters for both sides.
func (b *BoxScore) Totals() (home, away domain.TeamTotals) {
	if b == nil {
		return home, away
	}
	return b.Teams.Home.totals(), b.Teams.Away.totals()
}

func (t BoxTeam) totals() domain.TeamTotals {
	return domain.TeamTotals{
		Runs:   t.TeamStats.Batting.Runs,
		Hits:   t.TeamStats.Batting.Hits,
		Errors: t.TeamStats.Fielding.Errors,
		Homers: t.TeamStats.Batting.HomeRuns,
	}
}

// Batters returns one line per player who batted, home side first, ordered by
// player key within a side. Team names fall back to the given defaults.
func (b *BoxScore) Batters(homeName, awayName string) []domain.BatterLine {
	if b == nil {
		return nil
	}
	var lines []domain.BatterLine
	lines = append(lines, b.Teams.Home.batters(fallback(b.Teams.Home.Team.Name, homeName))...)
	lines = append(lines, b.Teams.Away.batters(fallback(b.Teams.Away.Team.Name, awayName))...)
	return lines
}

func (t BoxTeam) batters(team string) []domain.BatterLine {
	keys := make([]string, 0, len(t.Players))
	for k, p := range t.Players {
		if p != nil && p.Stats.Batting != nil {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	lines := make([]domain.BatterLine, 0, len(keys))
	for _, k := range keys {
		p := t.Players[k]
		bat := p.Stats.Batting
		lines = append(lines, domain.BatterLine{
			Team:     team,
			Name:     fallback(p.Person.FullName, "Unknown"),
			Position: p.Position.Abbreviation,
			AB:       bat.AtBats,
			R:        bat.Runs,
			H:        bat.Hits,
			RBI:      bat.RBI,
			BB:       bat.BaseOnBalls,
			SO:       bat.StrikeOuts,
			LOB:      bat.LeftOnBase,
			HR:       bat.HomeRuns,
			Errors:   p.Stats.Fielding.Errors,
		})
	}
	return lines
}

// TeamNames returns the display names carried by the box score, if any.
func (b *BoxScore) TeamNames() (home, away string) {
	if b == nil {
		return "", ""
	}
	return b.Teams.Home.Team.Name, b.Teams.Away.Team.Name
}

func fallback(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
