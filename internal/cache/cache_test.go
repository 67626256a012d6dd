package cache

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/cesargomez89/walkmlb/internal/snapshot"
	"github.com/cesargomez89/walkmlb/internal/store"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func setupCache(t *testing.T) (*Store, *clock) {
	t.Helper()
	db, err := store.NewSQLiteDB(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	c := &clock{t: time.Date(2025, 4, 1, 18, 0, 0, 0, time.UTC)}
	return New(db).WithClock(c.Now), c
}

func status(detailed, abstract string) *snapshot.Status {
	s := &snapshot.Status{}
	s.GameData.Status = snapshot.GameStatus{DetailedState: detailed, AbstractGameState: abstract}
	s.GameData.Teams.Home.Name = "Boston Red Sox"
	s.GameData.Teams.Away.Name = "New York Yankees"
	return s
}

func TestUpsertIfChanged_Idempotent(t *testing.T) {
	s, clk := setupCache(t)
	ctx := context.Background()

	written, err := s.UpsertIfChanged(ctx, 700001, status("Scheduled", "Preview"))
	if err != nil || !written {
		t.Fatalf("first upsert: written=%v err=%v", written, err)
	}
	first, _ := s.Get(ctx, snapshot.KindStatus, 700001)

	clk.Advance(time.Minute)
	written, err = s.UpsertIfChanged(ctx, 700001, status("Scheduled", "Preview"))
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	if written {
		t.Error("Expected identical payload not to be written")
	}
	second, _ := s.Get(ctx, snapshot.KindStatus, 700001)
	if !second.UpdatedAt.Equal(first.UpdatedAt) {
		t.Errorf("Expected updatedAt to stay %v, got %v", first.UpdatedAt, second.UpdatedAt)
	}
	if second.ContentHash != snapshot.ContentHash(second.Payload) {
		t.Error("Expected stored hash to match stored payload")
	}

	clk.Advance(time.Minute)
	written, err = s.UpsertIfChanged(ctx, 700001, status("In Progress", "Live"))
	if err != nil || !written {
		t.Fatalf("changed upsert: written=%v err=%v", written, err)
	}
	third, _ := s.Get(ctx, snapshot.KindStatus, 700001)
	if !third.UpdatedAt.After(first.UpdatedAt) {
		t.Errorf("Expected updatedAt to advance, got %v", third.UpdatedAt)
	}
	if st, _ := s.State(ctx, 700001); st != snapshot.StateLive {
		t.Errorf("Expected LIVE, got %s", st)
	}
}

func TestUpsertIfChanged_Concurrent(t *testing.T) {
	s, _ := setupCache(t)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		writes  int
		lastErr error
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			written, err := s.UpsertIfChanged(ctx, 1, status("Final", "Final"))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				lastErr = err
			}
			if written {
				writes++
			}
		}()
	}
	wg.Wait()

	if lastErr != nil {
		t.Fatalf("concurrent upsert failed: %v", lastErr)
	}
	if writes != 1 {
		t.Errorf("Expected exactly one write, got %d", writes)
	}
}

func TestGet_Absent(t *testing.T) {
	s, _ := setupCache(t)
	ctx := context.Background()

	e, err := s.Get(ctx, snapshot.KindBoxScore, 42)
	if err != nil || e != nil {
		t.Errorf("Expected absent entry, got %+v %v", e, err)
	}
	st, err := s.State(ctx, 42)
	if err != nil || st != snapshot.StateOther {
		t.Errorf("Expected OTHER for absent status, got %s %v", st, err)
	}
}

func TestDelete_AllKinds(t *testing.T) {
	s, _ := setupCache(t)
	ctx := context.Background()

	docs := []snapshot.Document{status("Final", "Final"), &snapshot.BoxScore{}, &snapshot.LineScore{}}
	for _, d := range docs {
		if _, err := s.UpsertIfChanged(ctx, 9, d); err != nil {
			t.Fatalf("upsert %s: %v", d.Kind(), err)
		}
	}

	n, err := s.Delete(ctx, 9)
	if err != nil || n != 3 {
		t.Errorf("Delete: n=%d err=%v", n, err)
	}
	for _, k := range snapshot.Kinds() {
		if e, _ := s.Get(ctx, k, 9); e != nil {
			t.Errorf("Expected %s to be gone", k)
		}
	}

	if _, err := s.Delete(ctx, 9); err != nil {
		t.Errorf("Expected deleting an absent game to succeed, got %v", err)
	}
}

func TestEvictOlderThan(t *testing.T) {
	s, clk := setupCache(t)
	ctx := context.Background()

	if _, err := s.UpsertIfChanged(ctx, 1, status("Scheduled", "Preview")); err != nil {
		t.Fatal(err)
	}
	clk.Advance(4 * 24 * time.Hour)
	if _, err := s.UpsertIfChanged(ctx, 2, status("Scheduled", "Preview")); err != nil {
		t.Fatal(err)
	}

	n, err := s.EvictOlderThan(ctx, 0)
	if err != nil || n != 0 {
		t.Errorf("Expected zero retention to be a no-op, got n=%d err=%v", n, err)
	}
	n, err = s.EvictOlderThan(ctx, -time.Hour)
	if err != nil || n != 0 {
		t.Errorf("Expected negative retention to be a no-op, got n=%d err=%v", n, err)
	}

	n, err = s.EvictOlderThan(ctx, 3*24*time.Hour)
	if err != nil || n != 1 {
		t.Errorf("EvictOlderThan: n=%d err=%v", n, err)
	}
	if e, _ := s.Get(ctx, snapshot.KindStatus, 1); e != nil {
		t.Error("Expected old row to be evicted")
	}
	if e, _ := s.Get(ctx, snapshot.KindStatus, 2); e == nil {
		t.Error("Expected recent row to be retained")
	}
}

func TestAnyLive(t *testing.T) {
	s, _ := setupCache(t)
	ctx := context.Background()

	live, err := s.AnyLive(ctx)
	if err != nil || live {
		t.Errorf("Expected no live games in empty cache, got %v %v", live, err)
	}

	if _, err := s.UpsertIfChanged(ctx, 1, status("Final", "Final")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.UpsertIfChanged(ctx, 2, status("Scheduled", "Preview")); err != nil {
		t.Fatal(err)
	}
	if live, _ := s.AnyLive(ctx); live {
		t.Error("Expected no live games")
	}

	if _, err := s.UpsertIfChanged(ctx, 3, status("In Progress", "Live")); err != nil {
		t.Fatal(err)
	}
	if live, _ := s.AnyLive(ctx); !live {
		t.Error("Expected a live game")
	}
}

func TestSummaryAndClear(t *testing.T) {
	s, _ := setupCache(t)
	ctx := context.Background()

	if _, err := s.UpsertIfChanged(ctx, 1, status("Scheduled", "Preview")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.UpsertIfChanged(ctx, 1, &snapshot.LineScore{}); err != nil {
		t.Fatal(err)
	}

	sum, err := s.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if len(sum) != 3 {
		t.Fatalf("Expected a line per kind, got %+v", sum)
	}
	for _, ks := range sum {
		switch ks.Kind {
		case snapshot.KindBoxScore:
			if ks.Count != 0 || ks.LatestUpdate != nil {
				t.Errorf("Expected empty boxscore summary, got %+v", ks)
			}
		case snapshot.KindStatus, snapshot.KindLineScore:
			if ks.Count != 1 || ks.LatestUpdate == nil || ks.PayloadBytes == 0 {
				t.Errorf("Unexpected %s summary: %+v", ks.Kind, ks)
			}
		}
	}

	k := snapshot.KindLineScore
	n, err := s.Clear(ctx, &k)
	if err != nil || n != 1 {
		t.Errorf("Clear(linescore): n=%d err=%v", n, err)
	}
	n, err = s.Clear(ctx, nil)
	if err != nil || n != 1 {
		t.Errorf("Clear(all): n=%d err=%v", n, err)
	}
}
