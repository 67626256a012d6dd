package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cesargomez89/walkmlb/internal/metrics"
)

const runKindCycle = "cycle"

// Run drives the scheduler loop until ctx is cancelled. Each cycle sweeps
// tracked games, reads today's schedule unless the sweep found a live game,
// evicts expired cache rows and then sleeps for the live or idle
// interval. A failing or panicking cycle is recorded and the loop goes on.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("Starting scheduler",
		"live_interval", e.opts.LiveInterval,
		"idle_interval", e.opts.IdleInterval,
		"retention", e.opts.Retention,
		"timezone", e.opts.Location.String(),
	)

	for {
		next := e.Cycle(ctx)

		timer := time.NewTimer(next)
		select {
		case <-ctx.Done():
			timer.Stop()
			e.logger.Info("Stopping scheduler")
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Cycle runs one scheduler iteration and returns the sleep before the next.
func (e *Engine) Cycle(ctx context.Context) time.Duration {
	runID := uuid.NewString()
	start := e.now()
	e.state.begin(runID, runKindCycle, start)
	e.tracef("cycle %s started", runID)

	var (
		updated int
		evicted int64
		err     error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic in sync cycle: %v", r)
			}
		}()
		updated, evicted, err = e.runCycle(ctx)
	}()

	next := e.nextInterval(ctx)
	finished := e.now()
	e.state.finish(runKindCycle, finished, updated, err)
	e.state.cycleDone(evicted, next)
	metrics.RecordCycle(finished.Sub(start), updated, evicted, err)
	metrics.SchedulerNextInterval.Set(next.Seconds())

	log := e.logger.With("run_id", runID)
	if err != nil {
		log.Error("Sync cycle failed", "error", err, "updated", updated, "evicted", evicted, "next", next)
		e.tracef("cycle %s error: %v", runID, err)
	} else {
		log.Info("Sync cycle finished", "updated", updated, "evicted", evicted, "next", next)
	}
	e.tracef("cycle %s finished updated=%d evicted=%d next=%s", runID, updated, evicted, next)
	return next
}

func (e *Engine) runCycle(ctx context.Context) (updated int, evicted int64, err error) {
	var errs []error

	swept, sweepErr := e.sweep(ctx)
	if sweepErr != nil {
		errs = append(errs, sweepErr)
	}
	updated = swept.refreshed
	if swept.live {
		e.tracef("active sweep refreshed %d games with live play, skipping today's schedule", swept.refreshed)
	} else {
		n, syncErr := e.SyncDate(ctx, e.today(), false)
		if syncErr != nil {
			errs = append(errs, syncErr)
		}
		updated += n
	}

	evicted, evictErr := e.cache.EvictOlderThan(ctx, e.opts.Retention)
	if evictErr != nil {
		errs = append(errs, evictErr)
	} else if evicted > 0 {
		e.logger.Info("Evicted expired cache rows", "count", evicted, "retention", e.opts.Retention)
	}
	e.tracef("evicted %d cache rows", evicted)

	return updated, evicted, errors.Join(errs...)
}

// nextInterval is the live interval while any cached status classifies LIVE.
func (e *Engine) nextInterval(ctx context.Context) time.Duration {
	live, err := e.cache.AnyLive(ctx)
	if err != nil {
		e.logger.Warn("Live check failed, using idle interval", "error", err)
		return e.opts.IdleInterval
	}
	if live {
		return e.opts.LiveInterval
	}
	return e.opts.IdleInterval
}
