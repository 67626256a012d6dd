// Package cache is the content-addressed snapshot cache. A write whose
// canonical hash equals the stored one is a no-op, timestamp included, so
// the cache doubles as a change detector.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/cesargomez89/walkmlb/internal/domain"
	"github.com/cesargomez89/walkmlb/internal/snapshot"
	"github.com/cesargomez89/walkmlb/internal/store"
)

// Entry is one cached artifact.
type Entry struct {
	Kind        snapshot.Kind
	GamePk      int64
	Payload     []byte
	ContentHash string
	UpdatedAt   time.Time
}

// KindSummary describes the rows of one kind.
type KindSummary struct {
	Kind         snapshot.Kind `json:"kind"`
	Count        int64         `json:"count"`
	LatestUpdate *time.Time    `json:"latest_update,omitempty"`
	PayloadBytes int64         `json:"payload_bytes"`
}

type Store struct {
	db  *store.DB
	now func() time.Time
}

func New(db *store.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// WithClock replaces the time source. Used by tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Get returns the stored entry, or nil when absent.
func (s *Store) Get(ctx context.Context, kind snapshot.Kind, gamePk int64) (*Entry, error) {
	row, err := s.db.GetSnapshot(ctx, string(kind), gamePk)
	if err != nil {
		return nil, fmt.Errorf("%w: get %s/%d: %v", domain.ErrPersistence, kind, gamePk, err)
	}
	if row == nil {
		return nil, nil
	}
	return toEntry(row), nil
}

// Status returns the decoded cached status. A missing or undecodable row
// yields nil without error.
func (s *Store) Status(ctx context.Context, gamePk int64) (*snapshot.Status, error) {
	e, err := s.Get(ctx, snapshot.KindStatus, gamePk)
	if err != nil || e == nil {
		return nil, err
	}
	st, err := snapshot.DecodeStatus(e.Payload)
	if err != nil {
		return nil, nil
	}
	return st, nil
}

// State classifies the cached status; absent is StateOther.
func (s *Store) State(ctx context.Context, gamePk int64) (snapshot.State, error) {
	st, err := s.Status(ctx, gamePk)
	if err != nil {
		return snapshot.StateOther, err
	}
	return snapshot.ClassifyStatus(st), nil
}

// UpsertIfChanged shrinks and canonically encodes doc, then writes it only
// when its hash differs from the stored one.
func (s *Store) UpsertIfChanged(ctx context.Context, gamePk int64, doc snapshot.Document) (bool, error) {
	payload, err := snapshot.Encode(doc)
	if err != nil {
		return false, err
	}
	row := &store.Snapshot{
		Kind:        string(doc.Kind()),
		GamePk:      gamePk,
		Payload:     payload,
		ContentHash: snapshot.ContentHash(payload),
		UpdatedAt:   s.now().UnixMilli(),
	}
	written, err := s.db.PutSnapshotIfChanged(ctx, row)
	if err != nil {
		return false, fmt.Errorf("%w: upsert %s/%d: %v", domain.ErrPersistence, doc.Kind(), gamePk, err)
	}
	return written, nil
}

// Delete removes every kind for a game. Deleting an absent game is not an error.
func (s *Store) Delete(ctx context.Context, gamePk int64) (int64, error) {
	n, err := s.db.DeleteSnapshots(ctx, gamePk)
	if err != nil {
		return 0, fmt.Errorf("%w: delete %d: %v", domain.ErrPersistence, gamePk, err)
	}
	return n, nil
}

// ListAll returns every entry of a kind.
func (s *Store) ListAll(ctx context.Context, kind snapshot.Kind) ([]*Entry, error) {
	rows, err := s.db.ListSnapshots(ctx, string(kind))
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %v", domain.ErrPersistence, kind, err)
	}
	out := make([]*Entry, 0, len(rows))
	for _, r := range rows {
		out = append(out, toEntry(r))
	}
	return out, nil
}

// EvictOlderThan removes entries of every kind not written within maxAge.
// A non-positive maxAge means unlimited retention and removes nothing.
func (s *Store) EvictOlderThan(ctx context.Context, maxAge time.Duration) (int64, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-maxAge).UnixMilli()
	n, err := s.db.DeleteSnapshotsBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%w: evict: %v", domain.ErrPersistence, err)
	}
	return n, nil
}

// AnyLive reports whether any cached status classifies LIVE. No network.
func (s *Store) AnyLive(ctx context.Context) (bool, error) {
	entries, err := s.ListAll(ctx, snapshot.KindStatus)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if snapshot.ClassifyPayload(e.Payload) == snapshot.StateLive {
			return true, nil
		}
	}
	return false, nil
}

// Summary returns one line per kind, including kinds with no rows.
func (s *Store) Summary(ctx context.Context) ([]KindSummary, error) {
	rows, err := s.db.SnapshotSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: summary: %v", domain.ErrPersistence, err)
	}
	byKind := make(map[string]store.KindSummary, len(rows))
	for _, r := range rows {
		byKind[r.Kind] = r
	}

	out := make([]KindSummary, 0, len(snapshot.Kinds()))
	for _, k := range snapshot.Kinds() {
		ks := KindSummary{Kind: k}
		if r, ok := byKind[string(k)]; ok {
			ks.Count = r.Count
			ks.PayloadBytes = r.PayloadBytes
			if r.LatestMS.Valid {
				t := time.UnixMilli(r.LatestMS.Int64).UTC()
				ks.LatestUpdate = &t
			}
		}
		out = append(out, ks)
	}
	return out, nil
}

// Clear removes all entries of kind. A nil kind clears everything.
func (s *Store) Clear(ctx context.Context, kind *snapshot.Kind) (int64, error) {
	var k string
	if kind != nil {
		k = string(*kind)
	}
	n, err := s.db.ClearSnapshots(ctx, k)
	if err != nil {
		return 0, fmt.Errorf("%w: clear: %v", domain.ErrPersistence, err)
	}
	return n, nil
}

func toEntry(r *store.Snapshot) *Entry {
	return &Entry{
		Kind:        snapshot.Kind(r.Kind),
		GamePk:      r.GamePk,
		Payload:     r.Payload,
		ContentHash: r.ContentHash,
		UpdatedAt:   r.Updated(),
	}
}
