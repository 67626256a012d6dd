package domain

import "time"

// TeamTotals are the aggregate counters the ledger keeps per side of a game.
type TeamTotals struct {
	Runs   int `json:"runs"`
	Hits   int `json:"hits"`
	Errors int `json:"errors"`
	Homers int `json:"homers"`
}

// Game is the canonical ledger row for one upstream game, keyed by GamePk.
type Game struct {
	ID         int64     `json:"id" db:"id"`
	GamePk     int64     `json:"game_pk" db:"game_pk"`
	Date       string    `json:"date" db:"date"`
	HomeTeam   string    `json:"home_team" db:"home_team"`
	AwayTeam   string    `json:"away_team" db:"away_team"`
	HomeRuns   int       `json:"home_runs" db:"home_runs"`
	AwayRuns   int       `json:"away_runs" db:"away_runs"`
	HomeHits   int       `json:"home_hits" db:"home_hits"`
	AwayHits   int       `json:"away_hits" db:"away_hits"`
	HomeErrors int       `json:"home_errors" db:"home_errors"`
	AwayErrors int       `json:"away_errors" db:"away_errors"`
	HomeHomers int       `json:"home_homers" db:"home_homers"`
	AwayHomers int       `json:"away_homers" db:"away_homers"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// SetTotals copies both sides' aggregate counters onto the row.
func (g *Game) SetTotals(home, away TeamTotals) {
	g.HomeRuns, g.HomeHits, g.HomeErrors, g.HomeHomers = home.Runs, home.Hits, home.Errors, home.Homers
	g.AwayRuns, g.AwayHits, g.AwayErrors, g.AwayHomers = away.Runs, away.Hits, away.Errors, away.Homers
}

// BatterLine is one player's batting line as derived from a box score.
// (Team, Name) identifies the player within a game.
type BatterLine struct {
	Team     string `json:"team" db:"team"`
	Name     string `json:"name" db:"name"`
	Position string `json:"position" db:"position"`
	AB       int    `json:"ab" db:"ab"`
	R        int    `json:"r" db:"r"`
	H        int    `json:"h" db:"h"`
	RBI      int    `json:"rbi" db:"rbi"`
	BB       int    `json:"bb" db:"bb"`
	SO       int    `json:"so" db:"so"`
	LOB      int    `json:"lob" db:"lob"`
	HR       int    `json:"hr" db:"hr"`
	Errors   int    `json:"errors" db:"errors"`
}

// BatterStat is a persisted BatterLine.
type BatterStat struct {
	ID     int64  `json:"id" db:"id"`
	GameID int64  `json:"game_id" db:"game_id"`
	Date   string `json:"date" db:"date"`
	BatterLine
}

// ScheduledGame is one entry of the upstream daily schedule.
type ScheduledGame struct {
	GamePk        int64     `json:"game_pk"`
	DetailedState string    `json:"detailed_state"`
	AbstractState string    `json:"abstract_state"`
	GameDate      time.Time `json:"game_date"`
	HomeTeam      string    `json:"home_team"`
	AwayTeam      string    `json:"away_team"`
}
