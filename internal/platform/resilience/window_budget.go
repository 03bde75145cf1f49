package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrBudgetExhausted = errors.New("request budget exhausted")

// WindowBudget counts requests in fixed windows. The counter resets once the
// elapsed time since the window start reaches the window length.
type WindowBudget struct {
	mu sync.Mutex

	limit       int
	window      time.Duration
	count       int
	windowStart time.Time
	now         func() time.Time
}

func NewWindowBudget(limit int, window time.Duration) *WindowBudget {
	if limit < 1 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &WindowBudget{
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// BudgetSnapshot is a point-in-time view used for status reporting.
type BudgetSnapshot struct {
	Limit       int           `json:"limit"`
	Used        int           `json:"used"`
	Window      time.Duration `json:"window"`
	WindowStart time.Time     `json:"window_start"`
}

// TryAcquire takes one slot. When the window is full it returns
// ErrBudgetExhausted and the time left until the window resets.
func (b *WindowBudget) TryAcquire() (time.Duration, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	b.rollLocked(now)
	if b.count >= b.limit {
		return b.window - now.Sub(b.windowStart), ErrBudgetExhausted
	}
	b.count++
	return 0, nil
}

// Wait blocks until a slot is available or ctx is done.
func (b *WindowBudget) Wait(ctx context.Context, sleep func(context.Context, time.Duration) error) error {
	if sleep == nil {
		sleep = SleepContext
	}
	for {
		wait, err := b.TryAcquire()
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrBudgetExhausted) {
			return err
		}
		if err := sleep(ctx, wait); err != nil {
			return err
		}
	}
}

func (b *WindowBudget) Snapshot() BudgetSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rollLocked(b.now())
	return BudgetSnapshot{
		Limit:       b.limit,
		Used:        b.count,
		Window:      b.window,
		WindowStart: b.windowStart,
	}
}

func (b *WindowBudget) rollLocked(now time.Time) {
	if b.windowStart.IsZero() || now.Sub(b.windowStart) >= b.window {
		b.windowStart = now
		b.count = 0
	}
}

// SleepContext sleeps for d unless ctx finishes first.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
