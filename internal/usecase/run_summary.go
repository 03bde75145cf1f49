package usecase

import "time"

type Trigger string

const (
	TriggerRun           Trigger = "run"
	TriggerBackfill      Trigger = "backfill"
	TriggerRefreshScores Trigger = "refresh-scores"
	TriggerCompetitions  Trigger = "competitions"
)

func (t Trigger) lockKey() string {
	return "ingestion:" + string(t)
}

type RunStatus string

const (
	RunStatusCompleted RunStatus = "completed"
	RunStatusPartial   RunStatus = "partial"
	RunStatusFailed    RunStatus = "failed"
	RunStatusSkipped   RunStatus = "skipped"
)

// ProviderFailure is a fetch that failed for one provider inside a unit.
type ProviderFailure struct {
	Provider string `json:"provider"`
	Reason   string `json:"reason"`
	Message  string `json:"message,omitempty"`
}

// UnitSummary is the outcome of one competition, day or match refresh.
type UnitSummary struct {
	Scope          string            `json:"scope"`
	Providers      []string          `json:"providers,omitempty"`
	Fetched        int               `json:"fetched"`
	Stored         int               `json:"stored"`
	Unchanged      int               `json:"unchanged"`
	Skipped        int               `json:"skipped"`
	Errors         int               `json:"errors"`
	Failures       []RecordFailure   `json:"failures,omitempty"`
	ProviderErrors []ProviderFailure `json:"provider_errors,omitempty"`
	Failed         bool              `json:"failed"`
}

func (u *UnitSummary) absorb(result ReconcileResult) {
	u.Stored += result.Stored
	u.Unchanged += result.Unchanged
	u.Skipped += result.Skipped
	u.Errors += result.Errors
	u.Failures = append(u.Failures, result.Failures...)
}

type RunTotals struct {
	Units     int `json:"units"`
	Fetched   int `json:"fetched"`
	Stored    int `json:"stored"`
	Unchanged int `json:"unchanged"`
	Skipped   int `json:"skipped"`
	Errors    int `json:"errors"`
}

// RunSummary is what every orchestrator entry point returns instead of an error.
type RunSummary struct {
	RunID      string        `json:"run_id"`
	Trigger    Trigger       `json:"trigger"`
	Status     RunStatus     `json:"status"`
	Message    string        `json:"message,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Totals     RunTotals     `json:"totals"`
	Units      []UnitSummary `json:"units"`
}

// finish computes totals and the final status. A run where every unit failed
// is failed. Any unit error or an early stop makes it partial.
func (s *RunSummary) finish(at time.Time) {
	s.FinishedAt = at
	s.Totals = RunTotals{Units: len(s.Units)}
	failedUnits := 0
	degraded := false
	for _, unit := range s.Units {
		s.Totals.Fetched += unit.Fetched
		s.Totals.Stored += unit.Stored
		s.Totals.Unchanged += unit.Unchanged
		s.Totals.Skipped += unit.Skipped
		s.Totals.Errors += unit.Errors
		if unit.Failed {
			failedUnits++
		}
		if unit.Errors > 0 || len(unit.ProviderErrors) > 0 {
			degraded = true
		}
	}

	switch {
	case s.Status == RunStatusFailed || s.Status == RunStatusSkipped:
	case len(s.Units) > 0 && failedUnits == len(s.Units):
		s.Status = RunStatusFailed
	case degraded || failedUnits > 0 || s.Status == RunStatusPartial:
		s.Status = RunStatusPartial
	default:
		s.Status = RunStatusCompleted
	}
}
