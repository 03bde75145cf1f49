package resilience

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
)

func TestRunGuard_SecondCallerIsRejected(t *testing.T) {
	t.Parallel()

	g := NewRunGuard()
	ctx := context.Background()

	unlock, ok, err := g.TryLock(ctx, "ingest:run")
	if err != nil || !ok {
		t.Fatalf("expected first lock, ok=%v err=%v", ok, err)
	}
	if _, ok, _ := g.TryLock(ctx, "ingest:run"); ok {
		t.Fatalf("expected second lock to be rejected")
	}
	if _, ok, _ := g.TryLock(ctx, "ingest:backfill"); !ok {
		t.Fatalf("expected independent key to be admitted")
	}

	unlock()
	unlock()
	if g.IsLocked("ingest:run") {
		t.Fatalf("expected key released")
	}
	if _, ok, _ := g.TryLock(ctx, "ingest:run"); !ok {
		t.Fatalf("expected lock after release")
	}
}

func TestRunGuard_ConcurrentTryLockAdmitsOne(t *testing.T) {
	t.Parallel()

	g := NewRunGuard()
	var admitted atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, ok, _ := g.TryLock(context.Background(), "k"); ok {
				admitted.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if got := admitted.Load(); got != 1 {
		t.Fatalf("expected exactly one holder, got=%d", got)
	}
}
