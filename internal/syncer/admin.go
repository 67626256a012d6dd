package syncer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cesargomez89/walkmlb/internal/cache"
	"github.com/cesargomez89/walkmlb/internal/domain"
	"github.com/cesargomez89/walkmlb/internal/snapshot"
)

const (
	runKindOnce     = "run-once"
	runKindBackfill = "backfill"
)

// RunOnce syncs one date synchronously and records it in the run state.
func (e *Engine) RunOnce(ctx context.Context, date time.Time, force bool) (int, error) {
	runID := uuid.NewString()
	e.state.begin(runID, runKindOnce, e.now())
	e.tracef("run %s: run-once date=%s force=%t", runID, domain.FormatDate(date), force)

	n, err := e.SyncDate(ctx, date, force)
	e.state.finish(runKindOnce, e.now(), n, err)
	return n, err
}

// StartRunOnce runs RunOnce in the background and returns immediately.
func (e *Engine) StartRunOnce(date time.Time, force bool) {
	go func() {
		if _, err := e.RunOnce(e.ctx, date, force); err != nil {
			e.logger.Error("Run-once failed", "date", domain.FormatDate(date), "error", err)
		}
	}()
}

// ValidateRange rejects reversed ranges and spans above the backfill limit.
func (e *Engine) ValidateRange(start, end time.Time) error {
	if start.After(end) {
		return fmt.Errorf("%w: start %s is after end %s", domain.ErrInvalidConfig,
			domain.FormatDate(start), domain.FormatDate(end))
	}
	days := int(end.Sub(start).Hours()/24) + 1
	if days > e.opts.MaxBackfillDays {
		return fmt.Errorf("%w: range of %d days exceeds the limit of %d", domain.ErrInvalidConfig,
			days, e.opts.MaxBackfillDays)
	}
	return nil
}

// BackfillRange syncs every date from start to end inclusive, in order. It
// returns the total refreshed count and the joined per-date errors.
func (e *Engine) BackfillRange(ctx context.Context, start, end time.Time, force bool) (int, error) {
	if err := e.ValidateRange(start, end); err != nil {
		return 0, err
	}

	runID := uuid.NewString()
	e.state.begin(runID, runKindBackfill, e.now())
	e.tracef("run %s: backfill %s..%s force=%t", runID, domain.FormatDate(start), domain.FormatDate(end), force)

	total := 0
	var errs []error
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		n, err := e.SyncDate(ctx, d, force)
		total += n
		if err != nil {
			errs = append(errs, err)
		}
	}

	err := errors.Join(errs...)
	e.state.finish(runKindBackfill, e.now(), total, err)
	e.logger.Info("Backfill finished", "start", domain.FormatDate(start), "end", domain.FormatDate(end),
		"refreshed", total, "errors", len(errs))
	return total, err
}

// StartBackfill validates the range synchronously and runs the backfill in the background.
func (e *Engine) StartBackfill(start, end time.Time, force bool) error {
	if err := e.ValidateRange(start, end); err != nil {
		return err
	}
	go func() {
		if _, err := e.BackfillRange(e.ctx, start, end, force); err != nil {
			e.logger.Error("Backfill finished with errors", "error", err)
		}
	}()
	return nil
}

// Status returns a snapshot of the run state.
func (e *Engine) Status() RunStatus {
	return e.state.Snapshot()
}

// CacheSummary returns per-kind cache counts.
func (e *Engine) CacheSummary(ctx context.Context) ([]cache.KindSummary, error) {
	return e.cache.Summary(ctx)
}

// ClearCache removes cached rows of one kind, or of every kind for "all" or "".
func (e *Engine) ClearCache(ctx context.Context, kind string) (int64, error) {
	var k *snapshot.Kind
	if s := strings.TrimSpace(kind); s != "" && !strings.EqualFold(s, "all") {
		parsed, err := snapshot.ParseKind(s)
		if err != nil {
			return 0, err
		}
		k = &parsed
	}
	n, err := e.cache.Clear(ctx, k)
	if err != nil {
		return 0, err
	}
	e.logger.Info("Cache cleared", "kind", kind, "removed", n)
	e.tracef("cache cleared kind=%s removed=%d", kind, n)
	return n, nil
}

// Diagnostics returns up to limit of the most recent trace lines, oldest first.
func (e *Engine) Diagnostics(limit int) []string {
	return e.diag.Recent(limit)
}

// Today is the current date in the configured zone.
func (e *Engine) Today() time.Time {
	return e.today()
}
