package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWindowBudget_RejectsBeyondLimitAndResets(t *testing.T) {
	t.Parallel()

	b := NewWindowBudget(3, time.Minute)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if _, err := b.TryAcquire(); err != nil {
			t.Fatalf("expected slot %d to be granted: %v", i, err)
		}
	}

	now = now.Add(20 * time.Second)
	wait, err := b.TryAcquire()
	if !errors.Is(err, ErrBudgetExhausted) {
		t.Fatalf("expected budget exhausted, got %v", err)
	}
	if wait != 40*time.Second {
		t.Fatalf("expected 40s until reset, got=%s", wait)
	}

	now = now.Add(40 * time.Second)
	if _, err := b.TryAcquire(); err != nil {
		t.Fatalf("expected fresh window after reset: %v", err)
	}
	if snap := b.Snapshot(); snap.Used != 1 {
		t.Fatalf("expected used=1 after reset, got=%d", snap.Used)
	}
}

func TestWindowBudget_WaitDelaysUntilNextWindow(t *testing.T) {
	t.Parallel()

	b := NewWindowBudget(1, time.Minute)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	if _, err := b.TryAcquire(); err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	var slept []time.Duration
	fakeSleep := func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		now = now.Add(d)
		return nil
	}

	if err := b.Wait(context.Background(), fakeSleep); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if len(slept) != 1 || slept[0] != time.Minute {
		t.Fatalf("expected a single one-minute delay, got=%v", slept)
	}
}

func TestWindowBudget_WaitHonorsContext(t *testing.T) {
	t.Parallel()

	b := NewWindowBudget(1, time.Hour)
	if _, err := b.TryAcquire(); err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := b.Wait(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
}
