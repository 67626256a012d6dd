package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Snapshot is one cached artifact row. UpdatedAt is unix milliseconds.
type Snapshot struct {
	Kind        string `db:"kind"`
	GamePk      int64  `db:"game_pk"`
	Payload     []byte `db:"payload"`
	ContentHash string `db:"content_hash"`
	UpdatedAt   int64  `db:"updated_at"`
}

// Updated returns UpdatedAt as a time.
func (s *Snapshot) Updated() time.Time {
	return time.UnixMilli(s.UpdatedAt)
}

// KindSummary aggregates the rows of one kind.
type KindSummary struct {
	Kind         string        `db:"kind"`
	Count        int64         `db:"count"`
	LatestMS     sql.NullInt64 `db:"latest"`
	PayloadBytes int64         `db:"bytes"`
}

// GetSnapshot returns nil when no row exists.
func (db *DB) GetSnapshot(ctx context.Context, kind string, gamePk int64) (*Snapshot, error) {
	var s Snapshot
	err := db.GetContext(ctx, &s,
		"SELECT kind, game_pk, payload, content_hash, updated_at FROM snapshot_cache WHERE kind = ? AND game_pk = ?",
		kind, gamePk)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// PutSnapshotIfChanged inserts s, or replaces the stored row when its hash
// differs. The hash comparison happens inside the single statement, so two
// concurrent writers for the same key cannot interleave a stale overwrite.
// It reports whether a row was written.
func (db *DB) PutSnapshotIfChanged(ctx context.Context, s *Snapshot) (bool, error) {
	res, err := db.ExecContext(ctx, `
		INSERT INTO snapshot_cache (kind, game_pk, payload, content_hash, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(kind, game_pk) DO UPDATE SET
			payload = excluded.payload,
			content_hash = excluded.content_hash,
			updated_at = excluded.updated_at
		WHERE snapshot_cache.content_hash <> excluded.content_hash
	`, s.Kind, s.GamePk, s.Payload, s.ContentHash, s.UpdatedAt)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteSnapshots removes every kind for a game.
func (db *DB) DeleteSnapshots(ctx context.Context, gamePk int64) (int64, error) {
	res, err := db.ExecContext(ctx, "DELETE FROM snapshot_cache WHERE game_pk = ?", gamePk)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListSnapshots returns all rows of a kind ordered by game.
func (db *DB) ListSnapshots(ctx context.Context, kind string) ([]*Snapshot, error) {
	var rows []*Snapshot
	err := db.SelectContext(ctx, &rows,
		"SELECT kind, game_pk, payload, content_hash, updated_at FROM snapshot_cache WHERE kind = ? ORDER BY game_pk",
		kind)
	return rows, err
}

// DeleteSnapshotsBefore removes rows of every kind last written before cutoffMS.
func (db *DB) DeleteSnapshotsBefore(ctx context.Context, cutoffMS int64) (int64, error) {
	res, err := db.ExecContext(ctx, "DELETE FROM snapshot_cache WHERE updated_at < ?", cutoffMS)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ClearSnapshots removes all rows of kind, or every row when kind is empty.
func (db *DB) ClearSnapshots(ctx context.Context, kind string) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if kind == "" {
		res, err = db.ExecContext(ctx, "DELETE FROM snapshot_cache")
	} else {
		res, err = db.ExecContext(ctx, "DELETE FROM snapshot_cache WHERE kind = ?", kind)
	}
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SnapshotSummary returns per-kind counts for kinds that have rows.
func (db *DB) SnapshotSummary(ctx context.Context) ([]KindSummary, error) {
	var out []KindSummary
	err := db.SelectContext(ctx, &out, `
		SELECT kind, COUNT(*) AS count, MAX(updated_at) AS latest, COALESCE(SUM(LENGTH(payload)), 0) AS bytes
		FROM snapshot_cache
		GROUP BY kind
		ORDER BY kind
	`)
	return out, err
}
