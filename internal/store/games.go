package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cesargomez89/walkmlb/internal/domain"
)

// UpsertGame inserts the game or refreshes its names and totals. The date
// recorded on first insert is kept. Returns the row id.
func (db *DB) UpsertGame(ctx context.Context, g *domain.Game) (int64, error) {
	if g.UpdatedAt.IsZero() {
		g.UpdatedAt = time.Now().UTC()
	}
	var id int64
	err := db.QueryRowxContext(ctx, `
		INSERT INTO games (
			game_pk, date, home_team, away_team,
			home_runs, away_runs, home_hits, away_hits,
			home_errors, away_errors, home_homers, away_homers, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(game_pk) DO UPDATE SET
			home_team = excluded.home_team,
			away_team = excluded.away_team,
			home_runs = excluded.home_runs,
			away_runs = excluded.away_runs,
			home_hits = excluded.home_hits,
			away_hits = excluded.away_hits,
			home_errors = excluded.home_errors,
			away_errors = excluded.away_errors,
			home_homers = excluded.home_homers,
			away_homers = excluded.away_homers,
			updated_at = excluded.updated_at
		RETURNING id
	`,
		g.GamePk, g.Date, g.HomeTeam, g.AwayTeam,
		g.HomeRuns, g.AwayRuns, g.HomeHits, g.AwayHits,
		g.HomeErrors, g.AwayErrors, g.HomeHomers, g.AwayHomers, g.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	g.ID = id
	return id, nil
}

// UpsertBatter inserts or refreshes one batting line under (game, team, name).
// Date and position recorded on first insert are kept.
func (db *DB) UpsertBatter(ctx context.Context, gameID int64, date string, line *domain.BatterLine) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO batter_stats (game_id, date, team, name, position, ab, r, h, rbi, bb, so, lob, hr, errors)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(game_id, team, name) DO UPDATE SET
			ab = excluded.ab,
			r = excluded.r,
			h = excluded.h,
			rbi = excluded.rbi,
			bb = excluded.bb,
			so = excluded.so,
			lob = excluded.lob,
			hr = excluded.hr,
			errors = excluded.errors
	`, gameID, date, line.Team, line.Name, line.Position,
		line.AB, line.R, line.H, line.RBI, line.BB, line.SO, line.LOB, line.HR, line.Errors)
	return err
}

// GameDate returns the recorded date of a game, if the ledger has it.
func (db *DB) GameDate(ctx context.Context, gamePk int64) (string, bool, error) {
	var date string
	err := db.GetContext(ctx, &date, "SELECT date FROM games WHERE game_pk = ?", gamePk)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return date, true, nil
}

func (db *DB) GetGameByPk(ctx context.Context, gamePk int64) (*domain.Game, error) {
	var g domain.Game
	err := db.GetContext(ctx, &g, "SELECT * FROM games WHERE game_pk = ?", gamePk)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// ListBatters returns a game's batting lines ordered by team then name.
func (db *DB) ListBatters(ctx context.Context, gameID int64) ([]*domain.BatterStat, error) {
	var rows []*domain.BatterStat
	err := db.SelectContext(ctx, &rows, `
		SELECT id, game_id, date, team, name, position, ab, r, h, rbi, bb, so, lob, hr, errors
		FROM batter_stats WHERE game_id = ? ORDER BY team, name
	`, gameID)
	return rows, err
}
