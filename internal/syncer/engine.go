// Package syncer keeps the snapshot cache and the game ledger in step with
// the upstream feed. It owns the date-scoped sync, the sweep over every
// tracked game and the adaptive scheduler loop that drives both.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/cesargomez89/walkmlb/internal/cache"
	"github.com/cesargomez89/walkmlb/internal/constants"
	"github.com/cesargomez89/walkmlb/internal/diag"
	"github.com/cesargomez89/walkmlb/internal/domain"
	"github.com/cesargomez89/walkmlb/internal/logger"
	"github.com/cesargomez89/walkmlb/internal/metrics"
	"github.com/cesargomez89/walkmlb/internal/snapshot"
	"github.com/cesargomez89/walkmlb/internal/telemetry"
)

// Feed is the upstream source. Every method may fail with a transient error.
type Feed interface {
	ListGames(ctx context.Context, date time.Time) ([]domain.ScheduledGame, error)
	BoxScore(ctx context.Context, gamePk int64) (*snapshot.BoxScore, error)
	LineScore(ctx context.Context, gamePk int64) (*snapshot.LineScore, error)
	Status(ctx context.Context, gamePk int64) (*snapshot.Status, error)
}

// Ledger is the canonical game store. Upserts are idempotent under their
// natural keys (game pk; game, team and player name).
type Ledger interface {
	UpsertGame(ctx context.Context, g *domain.Game) (int64, error)
	UpsertBatter(ctx context.Context, gameID int64, date string, line *domain.BatterLine) error
	GameDate(ctx context.Context, gamePk int64) (string, bool, error)
}

type Options struct {
	Location *time.Location
	// Retention is the cache row lifetime; zero or less keeps rows forever.
	Retention       time.Duration
	Verbose         bool
	LiveInterval    time.Duration
	IdleInterval    time.Duration
	Concurrency     int
	MaxBackfillDays int
	DiagCapacity    int
}

func (o *Options) applyDefaults() {
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.LiveInterval <= 0 {
		o.LiveInterval = constants.DefaultLiveInterval
	}
	if o.IdleInterval <= 0 {
		o.IdleInterval = constants.DefaultIdleInterval
	}
	if o.Concurrency <= 0 {
		o.Concurrency = constants.DefaultConcurrency
	}
	if o.MaxBackfillDays <= 0 {
		o.MaxBackfillDays = constants.DefaultMaxBackfillDays
	}
	if o.DiagCapacity <= 0 {
		o.DiagCapacity = constants.DefaultDiagnosticsCapacity
	}
}

type Engine struct {
	feed   Feed
	ledger Ledger
	cache  *cache.Store
	diag   *diag.Ring
	state  *RunState
	pool   *pool
	logger *logger.Logger
	tracer trace.Tracer
	opts   Options
	now    func() time.Time

	// lifecycle context for runs started from the admin surface
	ctx    context.Context
	cancel context.CancelFunc
}

func New(feed Feed, ledger Ledger, store *cache.Store, opts Options, log *logger.Logger) (*Engine, error) {
	opts.applyDefaults()
	if log == nil {
		log = logger.Default()
	}
	log = log.WithComponent("syncer")

	p, err := newPool(opts.Concurrency, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		feed:   feed,
		ledger: ledger,
		cache:  store,
		diag:   diag.NewRing(opts.DiagCapacity),
		state:  newRunState(),
		pool:   p,
		logger: log,
		tracer: telemetry.Tracer(),
		opts:   opts,
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Close cancels runs started from the admin surface and releases the worker pool.
func (e *Engine) Close() {
	e.cancel()
	e.pool.release()
}

// today is the current calendar date in the configured zone.
func (e *Engine) today() time.Time {
	return domain.DateIn(e.now(), e.opts.Location)
}

func (e *Engine) tracef(format string, args ...any) {
	e.diag.Addf(format, args...)
}

func (e *Engine) upsert(ctx context.Context, gamePk int64, doc snapshot.Document) (bool, error) {
	written, err := e.cache.UpsertIfChanged(ctx, gamePk, doc)
	metrics.RecordCacheWrite(string(doc.Kind()), written, err)
	return written, err
}

func (e *Engine) purge(ctx context.Context, gamePk int64) error {
	if _, err := e.cache.Delete(ctx, gamePk); err != nil {
		return err
	}
	metrics.CachePurges.Inc()
	return nil
}

// writeLedger upserts the game row and its batting lines from a box score.
func (e *Engine) writeLedger(ctx context.Context, date string, gamePk int64, box *snapshot.BoxScore, status *snapshot.Status) error {
	home, away := box.TeamNames()
	if home == "" {
		home = status.HomeName()
	}
	if away == "" {
		away = status.AwayName()
	}
	if home == "" {
		home = "Home"
	}
	if away == "" {
		away = "Away"
	}

	g := &domain.Game{GamePk: gamePk, Date: date, HomeTeam: home, AwayTeam: away, UpdatedAt: e.now().UTC()}
	g.SetTotals(box.Totals())

	gameID, err := e.ledger.UpsertGame(ctx, g)
	if err != nil {
		return fmt.Errorf("%w: upsert game %d: %v", domain.ErrPersistence, gamePk, err)
	}

	for _, line := range box.Batters(home, away) {
		if err := e.ledger.UpsertBatter(ctx, gameID, date, &line); err != nil {
			return fmt.Errorf("%w: upsert batter %q for game %d: %v", domain.ErrPersistence, line.Name, gamePk, err)
		}
	}
	return nil
}

// isPersistence reports whether err should abort the rest of a game's refresh.
func isPersistence(err error) bool {
	return errors.Is(err, domain.ErrPersistence)
}
