package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/matchsync/internal/domain/competition"
	"github.com/riskibarqy/matchsync/internal/domain/match"
	"github.com/riskibarqy/matchsync/internal/domain/rawdata"
	"github.com/riskibarqy/matchsync/internal/platform/id"
	"github.com/riskibarqy/matchsync/internal/platform/logging"
	"github.com/riskibarqy/matchsync/internal/platform/resilience"
	"github.com/sourcegraph/conc/pool"
)

const maxBackfillDays = 365

// RunLocker admits one holder per key. resilience.RunGuard covers a single
// process; the redis lock covers several.
type RunLocker interface {
	TryLock(ctx context.Context, key string) (func(), bool, error)
}

type reconciler interface {
	Reconcile(ctx context.Context, records []ExternalMatch) ReconcileResult
}

type orchestratorStore interface {
	ListMatchesByStatusBetween(ctx context.Context, statuses []match.Status, from, to time.Time) ([]match.Match, error)
	ArchivePayloads(ctx context.Context, items []rawdata.Payload)
	UpsertCompetitions(ctx context.Context, items []competition.Competition) (int, error)
}

type budgetReporter interface {
	Budget() resilience.BudgetSnapshot
}

type OrchestratorConfig struct {
	Competitions       []string
	LookbackDays       int
	LookaheadDays      int
	MultiSource        bool
	CompetitionDelay   time.Duration
	BackfillDelay      time.Duration
	ScoreRefreshDelay  time.Duration
	ScoreRefreshWindow time.Duration
	// Priorities orders providers; the lowest number is the primary source.
	Priorities map[string]int
}

type RunInput struct {
	MultiSource  *bool
	Competitions []string
}

// ProcessingStatus is a snapshot for the status endpoint.
type ProcessingStatus struct {
	IsProcessing    map[Trigger]bool                     `json:"is_processing"`
	LastProcessedAt *time.Time                           `json:"last_processed_at,omitempty"`
	LastSummary     *RunSummary                          `json:"last_summary,omitempty"`
	Budgets         map[string]resilience.BudgetSnapshot `json:"budgets,omitempty"`
}

// IngestionOrchestrator drives runs, backfills and score refreshes. Its entry
// points never return errors; every outcome is a RunSummary.
type IngestionOrchestrator struct {
	providers  []MatchProvider
	bySource   map[string]MatchProvider
	reconciler reconciler
	store      orchestratorStore
	locker     RunLocker
	ids        id.Generator
	cfg        OrchestratorConfig
	logger     *logging.Logger
	now        func() time.Time
	sleep      func(context.Context, time.Duration) error

	mu          sync.RWMutex
	running     map[Trigger]bool
	lastAt      time.Time
	lastSummary *RunSummary
}

func NewIngestionOrchestrator(
	providers []MatchProvider,
	reconciler reconciler,
	store orchestratorStore,
	locker RunLocker,
	ids id.Generator,
	cfg OrchestratorConfig,
	logger *logging.Logger,
) *IngestionOrchestrator {
	if locker == nil {
		locker = resilience.NewRunGuard()
	}
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.LookbackDays < 0 {
		cfg.LookbackDays = 0
	}
	if cfg.LookaheadDays < 0 {
		cfg.LookaheadDays = 0
	}
	if cfg.BackfillDelay <= 0 {
		cfg.BackfillDelay = 7 * time.Second
	}
	if cfg.ScoreRefreshDelay <= 0 {
		cfg.ScoreRefreshDelay = time.Second
	}
	if cfg.ScoreRefreshWindow <= 0 {
		cfg.ScoreRefreshWindow = 24 * time.Hour
	}

	ordered := make([]MatchProvider, 0, len(providers))
	bySource := make(map[string]MatchProvider, len(providers))
	for _, p := range providers {
		if p == nil {
			continue
		}
		ordered = append(ordered, p)
		bySource[p.Source()] = p
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return providerRank(cfg.Priorities, ordered[i].Source()) < providerRank(cfg.Priorities, ordered[j].Source())
	})

	return &IngestionOrchestrator{
		providers:  ordered,
		bySource:   bySource,
		reconciler: reconciler,
		store:      store,
		locker:     locker,
		ids:        ids,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
		sleep:      resilience.SleepContext,
		running:    make(map[Trigger]bool),
	}
}

// RunNow ingests every configured competition over the lookback/lookahead window.
func (o *IngestionOrchestrator) RunNow(ctx context.Context, input RunInput) RunSummary {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionOrchestrator.RunNow")
	defer span.End()

	multi := o.cfg.MultiSource
	if input.MultiSource != nil {
		multi = *input.MultiSource
	}
	competitions := input.Competitions
	if len(competitions) == 0 {
		competitions = o.cfg.Competitions
	}

	return o.guarded(ctx, TriggerRun, func(ctx context.Context, summary *RunSummary) {
		if len(competitions) == 0 {
			summary.Status = RunStatusFailed
			summary.Message = "no competitions configured"
			return
		}
		today := match.MergeDay(o.now())
		from := today.AddDate(0, 0, -o.cfg.LookbackDays)
		to := today.AddDate(0, 0, o.cfg.LookaheadDays)

		for i, raw := range competitions {
			code := competition.NormalizeCode(raw)
			if i > 0 && !o.pause(ctx, summary, o.cfg.CompetitionDelay) {
				return
			}
			unit := o.collect(ctx, "competition:"+code, o.sources(multi), func(ctx context.Context, p MatchProvider) (ProviderBatch, error) {
				return p.FetchCompetitionMatches(ctx, code, from, to)
			})
			o.logUnit(ctx, summary, unit)
			summary.Units = append(summary.Units, unit)
		}
	})
}

// Backfill walks each calendar day from days ago through today, one fetch per day.
func (o *IngestionOrchestrator) Backfill(ctx context.Context, days int) RunSummary {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionOrchestrator.Backfill")
	defer span.End()

	if days < 1 || days > maxBackfillDays {
		summary := o.newSummary(TriggerBackfill)
		summary.Status = RunStatusFailed
		summary.Message = fmt.Sprintf("days must be between 1 and %d", maxBackfillDays)
		summary.finish(o.now().UTC())
		return summary
	}

	return o.guarded(ctx, TriggerBackfill, func(ctx context.Context, summary *RunSummary) {
		today := match.MergeDay(o.now())
		for i := days; i >= 0; i-- {
			day := today.AddDate(0, 0, -i)
			if i < days && !o.pause(ctx, summary, o.cfg.BackfillDelay) {
				return
			}
			unit := o.collect(ctx, "day:"+day.Format(time.DateOnly), o.sources(o.cfg.MultiSource), func(ctx context.Context, p MatchProvider) (ProviderBatch, error) {
				return p.FetchMatchesByDate(ctx, day)
			})
			o.logUnit(ctx, summary, unit)
			summary.Units = append(summary.Units, unit)
		}
	})
}

// RefreshScores re-fetches recent scheduled or live matches from the provider
// that currently owns each record.
func (o *IngestionOrchestrator) RefreshScores(ctx context.Context) RunSummary {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionOrchestrator.RefreshScores")
	defer span.End()

	return o.guarded(ctx, TriggerRefreshScores, func(ctx context.Context, summary *RunSummary) {
		now := o.now().UTC()
		items, err := o.store.ListMatchesByStatusBetween(ctx,
			[]match.Status{match.StatusScheduled, match.StatusLive},
			now.Add(-o.cfg.ScoreRefreshWindow), now,
		)
		if err != nil {
			summary.Status = RunStatusFailed
			summary.Message = err.Error()
			return
		}

		for i, item := range items {
			if i > 0 && !o.pause(ctx, summary, o.cfg.ScoreRefreshDelay) {
				return
			}
			scope := "match:" + item.ExternalID
			source, nativeID, ok := match.SplitExternalID(item.OwnerID())
			provider, known := o.bySource[source]
			if !ok || !known {
				unit := UnitSummary{Scope: scope, Failed: true, Errors: 1}
				unit.ProviderErrors = append(unit.ProviderErrors, ProviderFailure{
					Provider: source,
					Reason:   "provider_not_configured",
				})
				summary.Units = append(summary.Units, unit)
				continue
			}
			unit := o.collect(ctx, scope, []MatchProvider{provider}, func(ctx context.Context, p MatchProvider) (ProviderBatch, error) {
				return p.FetchMatch(ctx, nativeID)
			})
			o.logUnit(ctx, summary, unit)
			summary.Units = append(summary.Units, unit)
		}
	})
}

// SyncCompetitions stores the competition catalogue of every provider that
// publishes one. A code already taken by a higher-priority provider is left alone.
func (o *IngestionOrchestrator) SyncCompetitions(ctx context.Context) RunSummary {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionOrchestrator.SyncCompetitions")
	defer span.End()

	return o.guarded(ctx, TriggerCompetitions, func(ctx context.Context, summary *RunSummary) {
		catalogues := make([]CompetitionProvider, 0, len(o.providers))
		for _, p := range o.providers {
			if c, ok := p.(CompetitionProvider); ok {
				catalogues = append(catalogues, c)
			}
		}
		if len(catalogues) == 0 {
			summary.Status = RunStatusFailed
			summary.Message = "no provider publishes a competition catalogue"
			return
		}

		seen := make(map[string]string)
		for i, provider := range catalogues {
			if i > 0 && !o.pause(ctx, summary, o.cfg.CompetitionDelay) {
				return
			}
			unit := o.syncCatalogue(ctx, provider, seen)
			o.logUnit(ctx, summary, unit)
			summary.Units = append(summary.Units, unit)
		}
	})
}

func (o *IngestionOrchestrator) syncCatalogue(ctx context.Context, provider CompetitionProvider, seen map[string]string) UnitSummary {
	source := provider.Source()
	unit := UnitSummary{Scope: "catalogue:" + source, Providers: []string{source}}

	batch, err := provider.FetchCompetitions(ctx)
	if err != nil {
		unit.Failed = true
		unit.Errors++
		unit.ProviderErrors = append(unit.ProviderErrors, ProviderFailure{
			Provider: source,
			Reason:   FailureReason(err),
			Message:  err.Error(),
		})
		o.logger.WarnContext(ctx, "competition catalogue fetch failed",
			"provider", source,
			"reason", FailureReason(err),
			"error", err,
		)
		return unit
	}
	o.store.ArchivePayloads(ctx, batch.Payloads)
	unit.Fetched = len(batch.Competitions)

	valid := make([]competition.Competition, 0, len(batch.Competitions))
	for _, item := range batch.Competitions {
		item.Code = competition.NormalizeCode(item.Code)
		if item.Source == "" {
			item.Source = source
		}
		if err := item.Validate(); err != nil {
			unit.Skipped++
			unit.Failures = append(unit.Failures, RecordFailure{
				Provider:   source,
				ExternalID: item.ExternalID,
				Reason:     FailureReason(err),
				Message:    err.Error(),
			})
			continue
		}
		if owner, taken := seen[item.Code]; taken && owner != source {
			unit.Unchanged++
			continue
		}
		seen[item.Code] = source
		valid = append(valid, item)
	}
	if len(valid) == 0 {
		return unit
	}

	stored, err := o.store.UpsertCompetitions(ctx, valid)
	if err != nil {
		unit.Errors += len(valid)
		unit.Failures = append(unit.Failures, RecordFailure{
			Provider: source,
			Reason:   FailureReason(err),
			Message:  err.Error(),
		})
		return unit
	}
	unit.Stored += stored
	if rest := len(valid) - stored; rest > 0 {
		unit.Unchanged += rest
	}
	return unit
}

func (o *IngestionOrchestrator) Status() ProcessingStatus {
	o.mu.RLock()
	defer o.mu.RUnlock()

	status := ProcessingStatus{
		IsProcessing: map[Trigger]bool{
			TriggerRun:           o.running[TriggerRun],
			TriggerBackfill:      o.running[TriggerBackfill],
			TriggerRefreshScores: o.running[TriggerRefreshScores],
			TriggerCompetitions:  o.running[TriggerCompetitions],
		},
		Budgets: make(map[string]resilience.BudgetSnapshot, len(o.providers)),
	}
	if !o.lastAt.IsZero() {
		at := o.lastAt
		status.LastProcessedAt = &at
	}
	if o.lastSummary != nil {
		summary := *o.lastSummary
		status.LastSummary = &summary
	}
	for _, p := range o.providers {
		if reporter, ok := p.(budgetReporter); ok {
			status.Budgets[p.Source()] = reporter.Budget()
		}
	}
	return status
}

func (o *IngestionOrchestrator) guarded(ctx context.Context, trigger Trigger, body func(context.Context, *RunSummary)) RunSummary {
	summary := o.newSummary(trigger)
	logger := o.logger.With("run_id", summary.RunID, "trigger", string(trigger))

	if len(o.providers) == 0 {
		summary.Status = RunStatusFailed
		summary.Message = "no match provider configured"
		summary.finish(o.now().UTC())
		logger.ErrorContext(ctx, "ingestion preflight failed", "reason", summary.Message)
		return summary
	}

	release, ok, err := o.locker.TryLock(ctx, trigger.lockKey())
	if err != nil {
		summary.Status = RunStatusFailed
		summary.Message = fmt.Sprintf("acquire run lock: %v", err)
		summary.finish(o.now().UTC())
		logger.ErrorContext(ctx, "ingestion lock failed", "error", err)
		return summary
	}
	if !ok {
		summary.Status = RunStatusSkipped
		summary.Message = "a run for this trigger is already in progress"
		summary.finish(o.now().UTC())
		logger.InfoContext(ctx, "ingestion skipped, already running")
		return summary
	}
	defer release()

	o.setRunning(trigger, true)
	defer o.setRunning(trigger, false)

	logger.InfoContext(ctx, "ingestion started")
	body(ctx, &summary)
	summary.finish(o.now().UTC())

	o.mu.Lock()
	o.lastAt = summary.FinishedAt
	stored := summary
	o.lastSummary = &stored
	o.mu.Unlock()

	logger.InfoContext(ctx, "ingestion finished",
		"status", string(summary.Status),
		"units", summary.Totals.Units,
		"stored", summary.Totals.Stored,
		"unchanged", summary.Totals.Unchanged,
		"skipped", summary.Totals.Skipped,
		"errors", summary.Totals.Errors,
		"duration_ms", summary.FinishedAt.Sub(summary.StartedAt).Milliseconds(),
	)
	return summary
}

type providerResult struct {
	rank     int
	provider string
	batch    ProviderBatch
	err      error
}

// collect fetches from each provider concurrently, archives their payloads and
// reconciles the surviving records together. Results are handled in priority
// order so logs and failures are deterministic.
func (o *IngestionOrchestrator) collect(
	ctx context.Context,
	scope string,
	providers []MatchProvider,
	fetch func(context.Context, MatchProvider) (ProviderBatch, error),
) UnitSummary {
	unit := UnitSummary{Scope: scope}

	p := pool.NewWithResults[providerResult]()
	for idx, provider := range providers {
		idx, provider := idx, provider
		unit.Providers = append(unit.Providers, provider.Source())
		p.Go(func() providerResult {
			batch, err := fetch(ctx, provider)
			return providerResult{rank: idx, provider: provider.Source(), batch: batch, err: err}
		})
	}
	results := p.Wait()
	sort.Slice(results, func(i, j int) bool { return results[i].rank < results[j].rank })

	records := make([]ExternalMatch, 0)
	attempted := 0
	failed := 0
	for _, res := range results {
		if errors.Is(res.err, ErrUnsupportedCompetition) {
			o.logger.DebugContext(ctx, "provider does not cover scope", "provider", res.provider, "scope", scope)
			continue
		}
		attempted++
		if res.err != nil {
			failed++
			unit.Errors++
			unit.ProviderErrors = append(unit.ProviderErrors, ProviderFailure{
				Provider: res.provider,
				Reason:   FailureReason(res.err),
				Message:  res.err.Error(),
			})
			o.logger.WarnContext(ctx, "provider fetch failed",
				"provider", res.provider,
				"scope", scope,
				"reason", FailureReason(res.err),
				"error", res.err,
			)
			continue
		}
		o.store.ArchivePayloads(ctx, res.batch.Payloads)
		records = append(records, res.batch.Matches...)
	}

	switch {
	case attempted == 0:
		unit.Failed = true
		unit.ProviderErrors = append(unit.ProviderErrors, ProviderFailure{
			Provider: strings.Join(unit.Providers, ","),
			Reason:   FailureReason(ErrUnsupportedCompetition),
		})
		return unit
	case failed == attempted:
		unit.Failed = true
		return unit
	}

	unit.Fetched = len(records)
	unit.absorb(o.reconciler.Reconcile(ctx, records))
	return unit
}

func (o *IngestionOrchestrator) sources(multi bool) []MatchProvider {
	if multi || len(o.providers) < 2 {
		return o.providers
	}
	return o.providers[:1]
}

// pause waits between units. It returns false and marks the run partial when
// ctx ends first.
func (o *IngestionOrchestrator) pause(ctx context.Context, summary *RunSummary, d time.Duration) bool {
	if err := o.sleep(ctx, d); err != nil {
		summary.Status = RunStatusPartial
		summary.Message = fmt.Sprintf("stopped early: %v", err)
		return false
	}
	return true
}

func (o *IngestionOrchestrator) logUnit(ctx context.Context, summary *RunSummary, unit UnitSummary) {
	o.logger.InfoContext(ctx, "ingestion unit finished",
		"run_id", summary.RunID,
		"trigger", string(summary.Trigger),
		"scope", unit.Scope,
		"fetched", unit.Fetched,
		"stored", unit.Stored,
		"unchanged", unit.Unchanged,
		"skipped", unit.Skipped,
		"errors", unit.Errors,
		"failed", unit.Failed,
	)
}

func (o *IngestionOrchestrator) newSummary(trigger Trigger) RunSummary {
	runID, err := o.ids.NewID()
	if err != nil {
		runID = fmt.Sprintf("run-%d", o.now().UnixNano())
	}
	return RunSummary{
		RunID:     runID,
		Trigger:   trigger,
		StartedAt: o.now().UTC(),
		Units:     []UnitSummary{},
	}
}

func (o *IngestionOrchestrator) setRunning(trigger Trigger, running bool) {
	o.mu.Lock()
	o.running[trigger] = running
	o.mu.Unlock()
}

func providerRank(priorities map[string]int, source string) int {
	if p, ok := priorities[source]; ok {
		return p
	}
	return defaultProviderPriority
}
