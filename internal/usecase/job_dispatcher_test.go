package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/matchsync/internal/platform/logging"
)

func TestJobDispatcher_RejectsWhenPoolFull(t *testing.T) {
	t.Parallel()

	d, err := NewJobDispatcher(1, logging.NewNop())
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}

	started := make(chan struct{})
	release := make(chan struct{})
	if err := d.Dispatch(context.Background(), "blocking", func(context.Context) {
		close(started)
		<-release
	}); err != nil {
		t.Fatalf("dispatch first job: %v", err)
	}
	<-started

	err = d.Dispatch(context.Background(), "overflow", func(context.Context) {})
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected dependency unavailable, got %v", err)
	}

	close(release)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestJobDispatcher_DetachesFromCallerAndSurvivesPanic(t *testing.T) {
	t.Parallel()

	d, err := NewJobDispatcher(2, logging.NewNop())
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}

	parent, cancel := context.WithCancel(context.Background())
	var (
		wg     sync.WaitGroup
		jobErr error
	)
	wg.Add(1)
	gate := make(chan struct{})
	if err := d.Dispatch(parent, "detached", func(ctx context.Context) {
		defer wg.Done()
		<-gate
		jobErr = ctx.Err()
	}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	cancel()
	close(gate)
	wg.Wait()
	if jobErr != nil {
		t.Fatalf("expected job context to outlive the caller, got %v", jobErr)
	}

	if err := d.Dispatch(context.Background(), "panics", func(context.Context) { panic("boom") }); err != nil {
		t.Fatalf("dispatch panicking job: %v", err)
	}

	ctx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := d.Close(ctx); err != nil {
		t.Fatalf("close after panic: %v", err)
	}
}
