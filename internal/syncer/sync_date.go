package syncer

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cesargomez89/walkmlb/internal/domain"
	"github.com/cesargomez89/walkmlb/internal/snapshot"
)

// SyncDate refreshes every game on the date's schedule and returns how many
// had their box score refreshed. Games whose cached status is FINAL are
// skipped without a fetch unless force is set. Per-game failures are logged
// and never fail the call; only a schedule failure does.
func (e *Engine) SyncDate(ctx context.Context, date time.Time, force bool) (int, error) {
	ds := domain.FormatDate(date)
	ctx, span := e.tracer.Start(ctx, "syncer.SyncDate", trace.WithAttributes(
		attribute.String("date", ds),
		attribute.Bool("force", force),
	))
	defer span.End()

	log := e.logger.WithDate(ds)

	games, err := e.feed.ListGames(ctx, date)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "schedule unavailable")
		log.Warn("Schedule unavailable", "error", err)
		e.tracef("date=%s schedule unavailable: %v", ds, err)
		return 0, fmt.Errorf("list games for %s: %w", ds, err)
	}
	if len(games) == 0 {
		log.Info("No games scheduled")
		e.tracef("date=%s no games scheduled", ds)
		return 0, nil
	}

	pks := make([]int64, 0, len(games))
	for _, g := range games {
		if g.GamePk <= 0 {
			log.Warn("Skipping schedule entry without a game id", "home", g.HomeTeam, "away", g.AwayTeam)
			continue
		}
		pks = append(pks, g.GamePk)
	}

	results := e.forEach(ctx, pks, func(ctx context.Context, pk int64) outcome {
		o := e.syncGame(ctx, ds, pk, force)
		e.record(ds, pk, force, o)
		return o
	})

	n := countRefreshed(results)
	span.SetAttributes(attribute.Int("games", len(pks)), attribute.Int("refreshed", n))
	log.Info("Date sync finished", "games", len(pks), "refreshed", n, "force", force)
	return n, nil
}

func (e *Engine) syncGame(ctx context.Context, date string, gamePk int64, force bool) outcome {
	if !force {
		state, err := e.cache.State(ctx, gamePk)
		if err != nil {
			e.logger.WithGame(gamePk).Warn("Cached status unreadable, fetching", "error", err)
		} else if state.Terminal() {
			return outcome{decision: decisionSkipCachedFinal}
		}
	}

	status, err := e.feed.Status(ctx, gamePk)
	if err != nil {
		// No fresh status: treat the game as OTHER and still refresh its scores.
		e.logger.WithGame(gamePk).Warn("Status unavailable", "error", err)
		status = nil
	} else {
		if _, err := e.upsert(ctx, gamePk, status); err != nil {
			return failed(err)
		}
		if !force && e.fetchedState(gamePk, status).Terminal() {
			return outcome{decision: decisionSkipFreshFinal}
		}
	}

	return e.refreshGame(ctx, date, gamePk, status)
}

// refreshGame fetches the box score, writes it through to the ledger, fetches
// the line score, and purges the game if the freshly fetched status is FINAL.
// A nil fresh status means the fetch failed: the cached one is used for team
// names only and the game is never purged.
func (e *Engine) refreshGame(ctx context.Context, date string, gamePk int64, fresh *snapshot.Status) outcome {
	log := e.logger.WithGame(gamePk).WithDate(date)
	o := outcome{decision: decisionRefreshed}

	status := fresh
	if status == nil {
		cached, err := e.cache.Status(ctx, gamePk)
		if err != nil {
			log.Warn("Cached status unreadable", "error", err)
		}
		status = cached
	}

	box, err := e.feed.BoxScore(ctx, gamePk)
	if err != nil {
		log.Warn("Box score unavailable", "error", err)
		o.decision, o.err = decisionPartial, err
	} else {
		if _, err := e.upsert(ctx, gamePk, box); err != nil {
			return failed(err)
		}
		if err := e.writeLedger(ctx, date, gamePk, box, status); err != nil {
			return failed(err)
		}
		o.boxRefreshed = true
	}

	line, err := e.feed.LineScore(ctx, gamePk)
	if err != nil {
		log.Warn("Line score unavailable", "error", err)
		o.decision, o.err = decisionPartial, err
	} else if _, err := e.upsert(ctx, gamePk, line); err != nil {
		return outcome{decision: decisionFailed, boxRefreshed: o.boxRefreshed, err: err}
	}

	if fresh != nil && snapshot.ClassifyStatus(fresh).Terminal() {
		if err := e.purge(ctx, gamePk); err != nil {
			return outcome{decision: decisionFailed, boxRefreshed: o.boxRefreshed, err: err}
		}
		if o.err == nil {
			o.decision = decisionRefreshedPurged
		}
	}
	return o
}
