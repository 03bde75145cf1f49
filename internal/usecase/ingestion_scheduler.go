package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/matchsync/internal/platform/logging"
)

type ingestionRunner interface {
	RunNow(ctx context.Context, input RunInput) RunSummary
	RefreshScores(ctx context.Context) RunSummary
}

type jobDispatcher interface {
	Dispatch(ctx context.Context, name string, job func(context.Context)) error
}

type SchedulerConfig struct {
	Interval   time.Duration
	RunOnStart bool
}

// IngestionScheduler fires a run and a score refresh on every tick. Ticks that
// land while a run is still going collapse in the run guard.
type IngestionScheduler struct {
	runner     ingestionRunner
	dispatcher jobDispatcher
	cfg        SchedulerConfig
	logger     *logging.Logger
}

func NewIngestionScheduler(runner ingestionRunner, dispatcher jobDispatcher, cfg SchedulerConfig, logger *logging.Logger) *IngestionScheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Minute
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &IngestionScheduler{
		runner:     runner,
		dispatcher: dispatcher,
		cfg:        cfg,
		logger:     logger,
	}
}

// Run blocks until ctx is done.
func (s *IngestionScheduler) Run(ctx context.Context) {
	s.logger.InfoContext(ctx, "ingestion scheduler started", "interval", s.cfg.Interval.String(), "run_on_start", s.cfg.RunOnStart)
	if s.cfg.RunOnStart {
		s.Tick(ctx)
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "ingestion scheduler stopped")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

func (s *IngestionScheduler) Tick(ctx context.Context) {
	if err := s.dispatcher.Dispatch(ctx, "scheduled-run", func(ctx context.Context) {
		s.runner.RunNow(ctx, RunInput{})
	}); err != nil {
		s.logger.WarnContext(ctx, "scheduled run not dispatched", "trigger", string(TriggerRun), "error", err)
	}
	if err := s.dispatcher.Dispatch(ctx, "scheduled-refresh-scores", func(ctx context.Context) {
		s.runner.RefreshScores(ctx)
	}); err != nil {
		s.logger.WarnContext(ctx, "scheduled refresh not dispatched", "trigger", string(TriggerRefreshScores), "error", err)
	}
}
