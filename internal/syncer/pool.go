package syncer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/cesargomez89/walkmlb/internal/logger"
)

const poolReleaseTimeout = 30 * time.Second

type task func(ctx context.Context)

// pool bounds how many games are refreshed at once.
type pool struct {
	ants   *ants.Pool
	logger *logger.Logger
}

func newPool(size int, log *logger.Logger) (*pool, error) {
	p, err := ants.NewPool(size,
		ants.WithPanicHandler(func(v any) {
			log.Error("Worker panic recovered", "panic", v)
		}),
		ants.WithNonblocking(false),
		ants.WithExpiryDuration(10*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return &pool{ants: p, logger: log}, nil
}

func (p *pool) submit(ctx context.Context, t task) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	return p.ants.Submit(func() { t(ctx) })
}

func (p *pool) release() {
	if err := p.ants.ReleaseTimeout(poolReleaseTimeout); err != nil && !errors.Is(err, ants.ErrPoolClosed) {
		p.logger.Warn("Worker pool shutdown timeout", "error", err)
	}
}

// forEach runs fn for every game on the pool and waits for all of them.
// Results are index-aligned with gamePks. A panicking fn yields a failed outcome.
func (e *Engine) forEach(ctx context.Context, gamePks []int64, fn func(context.Context, int64) outcome) []outcome {
	results := make([]outcome, len(gamePks))
	var wg sync.WaitGroup

	for i, pk := range gamePks {
		wg.Add(1)
		err := e.pool.submit(ctx, func(ctx context.Context) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					e.logger.WithGame(pk).Error("Panic while refreshing game", "panic", r)
					results[i] = failed(errPanic(r))
				}
			}()
			results[i] = fn(ctx, pk)
		})
		if err != nil {
			wg.Done()
			results[i] = failed(err)
		}
	}

	wg.Wait()
	return results
}
