package syncer

import (
	"fmt"

	"github.com/cesargomez89/walkmlb/internal/domain"
	"github.com/cesargomez89/walkmlb/internal/metrics"
	"github.com/cesargomez89/walkmlb/internal/snapshot"
)

// decision names what happened to one game in one pass.
type decision string

const (
	decisionSkipCachedFinal decision = "skip-cached-final"
	decisionSkipFreshFinal  decision = "skip-fresh-final"
	decisionRefreshed       decision = "refreshed"
	decisionRefreshedPurged decision = "refreshed-purged"
	decisionPartial         decision = "partial"
	decisionPurgedStored    decision = "purged-stored-final"
	decisionPurgedFresh     decision = "purged-fresh-final"
	decisionStatusFailed    decision = "status-unavailable"
	decisionFailed          decision = "failed"
)

// outcome is the result of processing one game.
type outcome struct {
	decision decision
	// boxRefreshed is set when a box score was fetched and written through to the ledger.
	boxRefreshed bool
	// live is set by the active sweep when the fresh status classified LIVE.
	live bool
	err  error
}

func failed(err error) outcome {
	return outcome{decision: decisionFailed, err: err}
}

func errPanic(v any) error {
	return fmt.Errorf("panic: %v", v)
}

func countRefreshed(results []outcome) int {
	n := 0
	for _, r := range results {
		if r.boxRefreshed {
			n++
		}
	}
	return n
}

// record logs the decision and emits a trace line when verbose diagnostics are on.
func (e *Engine) record(date string, gamePk int64, force bool, o outcome) {
	metrics.SyncDecisions.WithLabelValues(string(o.decision)).Inc()

	log := e.logger.WithGame(gamePk).WithDate(date)
	switch {
	case o.err != nil && domain.IsTransient(o.err):
		log.Warn("Game sync incomplete", "decision", o.decision, "force", force, "error", o.err)
	case o.err != nil:
		log.Error("Game sync failed", "decision", o.decision, "force", force, "error", o.err)
	default:
		log.Debug("Game sync decision", "decision", o.decision, "force", force)
	}

	if !e.opts.Verbose {
		return
	}
	if o.err != nil {
		e.tracef("date=%s game=%d decision=%s force=%t error=%v", date, gamePk, o.decision, force, o.err)
		return
	}
	e.tracef("date=%s game=%d decision=%s force=%t", date, gamePk, o.decision, force)
}

// fetchedState classifies a freshly fetched status and logs the raw upstream states.
func (e *Engine) fetchedState(gamePk int64, status *snapshot.Status) snapshot.State {
	state := snapshot.ClassifyStatus(status)
	e.logger.WithGame(gamePk).Debug("Fetched status",
		"detailed_state", status.Detailed(),
		"abstract_state", status.Abstract(),
		"state", state,
	)
	return state
}
