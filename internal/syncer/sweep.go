package syncer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/cesargomez89/walkmlb/internal/domain"
	"github.com/cesargomez89/walkmlb/internal/snapshot"
)

// SweepActive revisits every game with a cached status regardless of its
// date. Games already FINAL in cache are purged without a fetch; games that
// turn FINAL on refresh are purged; the rest get their scores refreshed.
// It returns how many games had their box score refreshed.
func (e *Engine) SweepActive(ctx context.Context) (int, error) {
	res, err := e.sweep(ctx)
	return res.refreshed, err
}

// sweepResult summarises one active sweep.
type sweepResult struct {
	refreshed int
	// live is set when any freshly fetched status classified LIVE.
	live bool
}

func (e *Engine) sweep(ctx context.Context) (sweepResult, error) {
	ctx, span := e.tracer.Start(ctx, "syncer.SweepActive")
	defer span.End()

	entries, err := e.cache.ListAll(ctx, snapshot.KindStatus)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list cached statuses")
		return sweepResult{}, fmt.Errorf("list cached statuses: %w", err)
	}
	if len(entries) == 0 {
		return sweepResult{}, nil
	}

	stored := make(map[int64][]byte, len(entries))
	pks := make([]int64, 0, len(entries))
	for _, en := range entries {
		stored[en.GamePk] = en.Payload
		pks = append(pks, en.GamePk)
	}

	results := e.forEach(ctx, pks, func(ctx context.Context, pk int64) outcome {
		date, o := e.sweepGame(ctx, pk, stored[pk])
		e.record(date, pk, false, o)
		return o
	})

	res := sweepResult{refreshed: countRefreshed(results)}
	for _, o := range results {
		res.live = res.live || o.live
	}
	span.SetAttributes(
		attribute.Int("tracked", len(pks)),
		attribute.Int("refreshed", res.refreshed),
		attribute.Bool("live", res.live),
	)
	e.logger.Info("Active sweep finished", "tracked", len(pks), "refreshed", res.refreshed, "live", res.live)
	return res, nil
}

func (e *Engine) sweepGame(ctx context.Context, gamePk int64, storedPayload []byte) (string, outcome) {
	if snapshot.ClassifyPayload(storedPayload).Terminal() {
		if err := e.purge(ctx, gamePk); err != nil {
			return "", failed(err)
		}
		return "", outcome{decision: decisionPurgedStored}
	}

	status, err := e.feed.Status(ctx, gamePk)
	if err != nil {
		return "", outcome{decision: decisionStatusFailed, err: err}
	}
	if _, err := e.upsert(ctx, gamePk, status); err != nil {
		return "", failed(err)
	}
	state := e.fetchedState(gamePk, status)
	if state.Terminal() {
		if err := e.purge(ctx, gamePk); err != nil {
			return "", failed(err)
		}
		return "", outcome{decision: decisionPurgedFresh}
	}

	date := e.gameDate(ctx, gamePk, status)
	o := e.refreshGame(ctx, date, gamePk, status)
	o.live = state == snapshot.StateLive
	return date, o
}

// gameDate picks the calendar date a game is filed under: the ledger's
// recorded date, else the scheduled start in the local zone, else the
// official date, else today.
func (e *Engine) gameDate(ctx context.Context, gamePk int64, status *snapshot.Status) string {
	if date, ok, err := e.ledger.GameDate(ctx, gamePk); err != nil {
		e.logger.WithGame(gamePk).Warn("Ledger date lookup failed", "error", err)
	} else if ok && date != "" {
		return date
	}
	if at, ok := status.ScheduledAt(); ok {
		return domain.FormatDate(domain.DateIn(at, e.opts.Location))
	}
	if od, ok := status.OfficialDate(); ok {
		return domain.FormatDate(od)
	}
	return domain.FormatDate(e.today())
}
