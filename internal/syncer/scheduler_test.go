package syncer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cesargomez89/walkmlb/internal/domain"
)

func TestCycle_SweepSupersedesToday(t *testing.T) {
	h := newHarness(t, Options{LiveInterval: 20 * time.Second, IdleInterval: 5 * time.Minute})
	seedStatus(t, h, 50, statusJSON("In Progress", "Live"))
	h.feed.addGame("2025-03-31", 50, statusJSON("In Progress", "Live"), fullBoxJSON, lineJSON)
	h.feed.addGame("2025-04-01", 51, statusJSON("Scheduled", "Preview"), `{}`, `{}`)

	next := h.engine.Cycle(context.Background())

	if next != 20*time.Second {
		t.Errorf("Expected live interval, got %s", next)
	}
	if h.feed.scheduleCalls("2025-04-01") != 0 {
		t.Error("Expected today's schedule not to be read after a productive sweep")
	}
	if h.feed.count("status", 51) != 0 {
		t.Error("Expected today's games not to be touched")
	}
	st := h.engine.Status()
	if st.LastUpdated != 1 || st.Cycles != 1 || st.IsRunning || st.LastError != "" {
		t.Errorf("Unexpected run status: %+v", st)
	}
	if st.LastRunKind != runKindCycle || st.LastRunID == "" || st.NextInterval != "20s" {
		t.Errorf("Unexpected run identity: %+v", st)
	}
}

func TestCycle_PostponedGameDoesNotBlockToday(t *testing.T) {
	h := newHarness(t, Options{LiveInterval: 20 * time.Second, IdleInterval: 5 * time.Minute})
	ctx := context.Background()
	seedStatus(t, h, 9, statusJSON("Postponed", "Preview"))
	h.ledger.setDate(9, "2025-03-31")
	h.feed.addGame("2025-03-31", 9, statusJSON("Postponed", "Preview"), fullBoxJSON, lineJSON)
	h.feed.addGame("2025-04-01", 10, statusJSON("In Progress", "Live"), fullBoxJSON, lineJSON)

	next := h.engine.Cycle(ctx)

	if h.feed.scheduleCalls("2025-04-01") != 1 {
		t.Fatalf("Expected today's schedule to be read despite a refreshed postponed game, got %d reads",
			h.feed.scheduleCalls("2025-04-01"))
	}
	if h.feed.count("status", 10) != 1 || h.feed.count("boxscore", 9) != 1 {
		t.Errorf("Expected both games fetched, status(10)=%d boxscore(9)=%d",
			h.feed.count("status", 10), h.feed.count("boxscore", 9))
	}
	if next != 20*time.Second {
		t.Errorf("Expected live interval once today's live game is cached, got %s", next)
	}
	if got := h.engine.Status().LastUpdated; got != 2 {
		t.Errorf("Expected 2 updated games, got %d", got)
	}

	// Game 10 is now tracked and live, so the sweep alone covers the next cycle.
	h.engine.Cycle(ctx)

	if h.feed.scheduleCalls("2025-04-01") != 1 {
		t.Errorf("Expected the live sweep to supersede today's schedule, got %d reads",
			h.feed.scheduleCalls("2025-04-01"))
	}
	if h.feed.count("status", 10) != 2 || h.feed.count("boxscore", 9) != 2 {
		t.Errorf("Expected both games swept again, status(10)=%d boxscore(9)=%d",
			h.feed.count("status", 10), h.feed.count("boxscore", 9))
	}
}

func TestCycle_FallsBackToToday(t *testing.T) {
	h := newHarness(t, Options{LiveInterval: 20 * time.Second, IdleInterval: 5 * time.Minute})
	h.feed.addGame("2025-04-01", 60, statusJSON("Scheduled", "Preview"), `{}`, `{}`)

	next := h.engine.Cycle(context.Background())

	if h.feed.scheduleCalls("2025-04-01") != 1 {
		t.Errorf("Expected today's schedule to be read once, got %d", h.feed.scheduleCalls("2025-04-01"))
	}
	if next != 5*time.Minute {
		t.Errorf("Expected idle interval with nothing live, got %s", next)
	}
	if got := h.engine.Status().LastUpdated; got != 1 {
		t.Errorf("Expected 1 updated game, got %d", got)
	}
}

func TestCycle_TodayUsesConfiguredZone(t *testing.T) {
	h := newHarness(t, Options{})
	// 02:00 UTC on Apr 2 is still Apr 1 in New York.
	h.clock.Advance(8 * time.Hour)

	h.engine.Cycle(context.Background())

	if h.feed.scheduleCalls("2025-04-01") != 1 || h.feed.scheduleCalls("2025-04-02") != 0 {
		t.Errorf("Expected the New York date to be synced, calls: apr1=%d apr2=%d",
			h.feed.scheduleCalls("2025-04-01"), h.feed.scheduleCalls("2025-04-02"))
	}
}

func TestCycle_ErrorsAreRecorded(t *testing.T) {
	h := newHarness(t, Options{IdleInterval: time.Minute})
	h.feed.listErr = domain.ErrUpstreamUnavailable

	next := h.engine.Cycle(context.Background())

	if next != time.Minute {
		t.Errorf("Expected idle interval after a failed cycle, got %s", next)
	}
	st := h.engine.Status()
	if st.LastError == "" || st.IsRunning {
		t.Errorf("Expected a recorded error and no running flag, got %+v", st)
	}

	h.feed.listErr = nil
	h.engine.Cycle(context.Background())
	if st := h.engine.Status(); st.LastError != "" || st.Cycles != 2 {
		t.Errorf("Expected the next clean cycle to clear the error, got %+v", st)
	}
}

func TestCycle_AdminRunKeepsCycleError(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	h.feed.listErr = domain.ErrUpstreamUnavailable

	h.engine.Cycle(ctx)

	h.feed.listErr = nil
	if _, err := h.engine.RunOnce(ctx, mustDate(t, "2025-04-01"), false); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	st := h.engine.Status()
	if st.LastError != "" || st.AdminError != "" {
		t.Errorf("Expected the clean admin run to be the latest outcome, got %+v", st)
	}
	if !strings.Contains(st.CycleError, domain.ErrUpstreamUnavailable.Error()) {
		t.Errorf("Expected the failed cycle's error to be kept, got %q", st.CycleError)
	}
}

func TestCycle_PanicIsRecorded(t *testing.T) {
	h := newHarness(t, Options{IdleInterval: time.Minute})
	h.feed.panicOn("schedule", 0)

	next := h.engine.Cycle(context.Background())

	if next != time.Minute {
		t.Errorf("Expected idle interval after a panicking cycle, got %s", next)
	}
	if st := h.engine.Status(); !strings.Contains(st.LastError, "panic") {
		t.Errorf("Expected panic in last error, got %q", st.LastError)
	}
	found := false
	for _, line := range h.engine.Diagnostics(0) {
		if strings.Contains(line, "error: panic") {
			found = true
		}
	}
	if !found {
		t.Error("Expected the cycle error in diagnostics")
	}
}

func TestCycle_EvictsExpiredRows(t *testing.T) {
	h := newHarness(t, Options{Retention: 24 * time.Hour})
	ctx := context.Background()
	seedStatus(t, h, 70, statusJSON("Scheduled", "Preview"))
	h.clock.Advance(48 * time.Hour)

	h.engine.Cycle(ctx)

	if got := h.engine.Status().LastEvicted; got != 1 {
		t.Errorf("Expected 1 evicted row, got %d", got)
	}
	assertAbsent(t, h, 70)
}

func TestCycle_UnlimitedRetention(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	seedStatus(t, h, 71, statusJSON("Scheduled", "Preview"))
	h.clock.Advance(365 * 24 * time.Hour)

	h.engine.Cycle(ctx)

	if got := h.engine.Status().LastEvicted; got != 0 {
		t.Errorf("Expected nothing evicted, got %d", got)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	h := newHarness(t, Options{LiveInterval: 10 * time.Millisecond, IdleInterval: 10 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- h.engine.Run(ctx) }()

	waitFor(t, func() bool { return h.engine.Status().Cycles >= 2 })
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
