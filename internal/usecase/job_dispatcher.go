package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/matchsync/internal/platform/logging"
)

// JobDispatcher runs triggered work on a bounded ants pool, detached from the
// caller's cancellation.
type JobDispatcher struct {
	pool   *ants.Pool
	logger *logging.Logger
	wg     sync.WaitGroup
}

func NewJobDispatcher(size int, logger *logging.Logger) (*JobDispatcher, error) {
	if size <= 0 {
		size = 4
	}
	if logger == nil {
		logger = logging.Default()
	}
	pool, err := ants.NewPool(size, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("create job pool: %w", err)
	}
	return &JobDispatcher{pool: pool, logger: logger}, nil
}

// Dispatch queues job. A full pool is reported as ErrDependencyUnavailable.
func (d *JobDispatcher) Dispatch(ctx context.Context, name string, job func(context.Context)) error {
	jobCtx := context.WithoutCancel(ctx)
	d.wg.Add(1)
	err := d.pool.Submit(func() {
		defer d.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				d.logger.ErrorContext(jobCtx, "job panicked", "job", name, "panic", fmt.Sprint(rec))
			}
		}()

		start := time.Now()
		job(jobCtx)
		d.logger.InfoContext(jobCtx, "job finished", "job", name, "duration_ms", time.Since(start).Milliseconds())
	})
	if err != nil {
		d.wg.Done()
		if errors.Is(err, ants.ErrPoolOverload) || errors.Is(err, ants.ErrPoolClosed) {
			return fmt.Errorf("%w: job pool busy: %v", ErrDependencyUnavailable, err)
		}
		return fmt.Errorf("submit job %s: %w", name, err)
	}
	return nil
}

func (d *JobDispatcher) Running() int {
	return d.pool.Running()
}

// Close waits for queued jobs until ctx ends, then releases the pool.
func (d *JobDispatcher) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	defer d.pool.Release()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
