package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/matchsync/internal/domain/competition"
	"github.com/riskibarqy/matchsync/internal/domain/match"
	"github.com/riskibarqy/matchsync/internal/domain/team"
	"github.com/riskibarqy/matchsync/internal/platform/logging"
	"github.com/riskibarqy/matchsync/internal/usecase"
)

const testSecret = "s3cret"

type fakeIngestion struct {
	mu           sync.Mutex
	runInputs    []usecase.RunInput
	backfillDays []int
	refreshes    int
	catalogues   int
	summary      usecase.RunSummary
	status       usecase.ProcessingStatus
}

func (f *fakeIngestion) RunNow(ctx context.Context, input usecase.RunInput) usecase.RunSummary {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runInputs = append(f.runInputs, input)
	if ctx.Err() != nil {
		summary := f.summary
		summary.Status = usecase.RunStatusPartial
		summary.Message = "stopped early"
		return summary
	}
	return f.summary
}

func (f *fakeIngestion) Backfill(_ context.Context, days int) usecase.RunSummary {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.backfillDays = append(f.backfillDays, days)
	return f.summary
}

func (f *fakeIngestion) RefreshScores(context.Context) usecase.RunSummary {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	return f.summary
}

func (f *fakeIngestion) SyncCompetitions(context.Context) usecase.RunSummary {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.catalogues++
	return f.summary
}

func (f *fakeIngestion) Status() usecase.ProcessingStatus {
	return f.status
}

type fakeDispatcher struct {
	err   error
	names []string
	jobs  []func(context.Context)
}

func (f *fakeDispatcher) Dispatch(_ context.Context, name string, job func(context.Context)) error {
	if f.err != nil {
		return f.err
	}
	f.names = append(f.names, name)
	f.jobs = append(f.jobs, job)
	return nil
}

type fakeHighlights struct {
	limits  []int
	items   []match.Match
	listErr error
	marked  []int64
}

func (f *fakeHighlights) ListPendingHighlights(_ context.Context, limit int) ([]match.Match, error) {
	f.limits = append(f.limits, limit)
	return f.items, f.listErr
}

func (f *fakeHighlights) MarkHighlightsProcessed(_ context.Context, ids []int64) (int, error) {
	f.marked = append(f.marked, ids...)
	return len(ids), nil
}

type fakeAudit struct {
	groups []usecase.DuplicateGroup
}

func (f *fakeAudit) FindDuplicateCandidates(context.Context) ([]usecase.DuplicateGroup, error) {
	return f.groups, nil
}

type fakeCatalogue struct {
	items []competition.Competition
	err   error
}

func (f *fakeCatalogue) ListCompetitions(context.Context) ([]competition.Competition, error) {
	return f.items, f.err
}

type routerFixture struct {
	router     http.Handler
	ingestion  *fakeIngestion
	dispatcher *fakeDispatcher
	highlights *fakeHighlights
	audit      *fakeAudit
	catalogue  *fakeCatalogue
}

func newRouterFixture(exposeDetails bool) *routerFixture {
	f := &routerFixture{
		ingestion: &fakeIngestion{summary: usecase.RunSummary{
			RunID:   "run-1",
			Trigger: usecase.TriggerRun,
			Status:  usecase.RunStatusCompleted,
		}},
		dispatcher: &fakeDispatcher{},
		highlights: &fakeHighlights{},
		audit:      &fakeAudit{},
		catalogue:  &fakeCatalogue{},
	}
	handler := NewHandler(HandlerDeps{
		Ingestion:     f.ingestion,
		Dispatcher:    f.dispatcher,
		Highlights:    f.highlights,
		TeamAudit:     f.audit,
		Competitions:  f.catalogue,
		Logger:        logging.NewNop(),
		ExposeDetails: exposeDetails,
	})
	f.router = NewRouter(handler, logging.NewNop(), RouterConfig{CronSecret: testSecret})
	return f
}

func (f *routerFixture) do(t *testing.T, method, path, body string, authorized bool) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if authorized {
		req.Header.Set("Authorization", "Bearer "+testSecret)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var envelope map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response body %q: %v", rec.Body.String(), err)
	}
	return rec, envelope
}

func TestRouter_Healthz(t *testing.T) {
	f := newRouterFixture(false)

	rec, _ := f.do(t, http.MethodGet, "/healthz", "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestRouter_TriggerRequiresCronSecret(t *testing.T) {
	f := newRouterFixture(false)

	rec, _ := f.do(t, http.MethodPost, "/v1/internal/ingestion/run", "", false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without token, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/ingestion/run", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	wrong := httptest.NewRecorder()
	f.router.ServeHTTP(wrong, req)
	if wrong.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 with wrong token, got %d", wrong.Code)
	}

	if len(f.ingestion.runInputs) != 0 {
		t.Fatalf("expected no run to start, got=%d", len(f.ingestion.runInputs))
	}
}

func TestRouter_MissingCronSecretConfigIsUnavailable(t *testing.T) {
	handler := NewHandler(HandlerDeps{Ingestion: &fakeIngestion{}})
	router := NewRouter(handler, nil, RouterConfig{})

	req := httptest.NewRequest(http.MethodGet, "/v1/internal/ingestion/status", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
}

func TestRouter_RunIngestionSync(t *testing.T) {
	f := newRouterFixture(false)

	rec, body := f.do(t, http.MethodPost, "/v1/internal/ingestion/run", `{"multi_source":true,"competitions":["PL","PD"]}`, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	data, _ := body["data"].(map[string]any)
	if got, _ := data["status"].(string); got != "completed" {
		t.Fatalf("expected status completed, got %v", data["status"])
	}
	if len(f.ingestion.runInputs) != 1 {
		t.Fatalf("expected one run, got=%d", len(f.ingestion.runInputs))
	}
	input := f.ingestion.runInputs[0]
	if input.MultiSource == nil || !*input.MultiSource {
		t.Fatalf("expected multi_source=true to be passed through")
	}
	if len(input.Competitions) != 2 || input.Competitions[1] != "PD" {
		t.Fatalf("unexpected competitions: %v", input.Competitions)
	}
}

func TestRouter_RunIngestionSyncOutlivesCaller(t *testing.T) {
	f := newRouterFixture(false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/v1/internal/ingestion/run", strings.NewReader(`{}`)).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer "+testSecret)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body %q: %v", rec.Body.String(), err)
	}
	data, _ := body["data"].(map[string]any)
	if got, _ := data["status"].(string); got != "completed" {
		t.Fatalf("expected run to complete after caller disconnect, got status=%v", data["status"])
	}
	if len(f.ingestion.runInputs) != 1 {
		t.Fatalf("expected one run, got=%d", len(f.ingestion.runInputs))
	}
}

func TestRouter_RunIngestionAsync(t *testing.T) {
	f := newRouterFixture(false)

	rec, body := f.do(t, http.MethodPost, "/v1/internal/ingestion/run", `{"async":true}`, true)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d", rec.Code)
	}
	data, _ := body["data"].(map[string]any)
	if got, _ := data["trigger"].(string); got != "run" {
		t.Fatalf("expected trigger run, got %v", data["trigger"])
	}
	if len(f.dispatcher.names) != 1 || f.dispatcher.names[0] != "http-run" {
		t.Fatalf("unexpected dispatched jobs: %v", f.dispatcher.names)
	}
	if len(f.ingestion.runInputs) != 0 {
		t.Fatalf("expected run to wait for the dispatcher")
	}

	f.dispatcher.jobs[0](context.Background())
	if len(f.ingestion.runInputs) != 1 {
		t.Fatalf("expected dispatched job to start a run, got=%d", len(f.ingestion.runInputs))
	}
}

func TestRouter_AsyncRejectedByDispatcher(t *testing.T) {
	f := newRouterFixture(false)
	f.dispatcher.err = fmt.Errorf("%w: job pool is full", usecase.ErrDependencyUnavailable)

	rec, _ := f.do(t, http.MethodPost, "/v1/internal/ingestion/refresh-scores", `{"async":true}`, true)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
}

func TestRouter_BackfillValidation(t *testing.T) {
	f := newRouterFixture(false)

	for _, payload := range []string{"", `{"days":0}`, `{"days":366}`, `{"days":2,"weeks":1}`, `{"days":`} {
		rec, _ := f.do(t, http.MethodPost, "/v1/internal/ingestion/backfill", payload, true)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400 for %q, got %d", payload, rec.Code)
		}
	}

	rec, _ := f.do(t, http.MethodPost, "/v1/internal/ingestion/backfill", `{"days":3}`, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if len(f.ingestion.backfillDays) != 1 || f.ingestion.backfillDays[0] != 3 {
		t.Fatalf("unexpected backfill calls: %v", f.ingestion.backfillDays)
	}
}

func TestRouter_RefreshScoresEmptyBody(t *testing.T) {
	f := newRouterFixture(false)

	rec, _ := f.do(t, http.MethodPost, "/v1/internal/ingestion/refresh-scores", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if f.ingestion.refreshes != 1 {
		t.Fatalf("expected one refresh, got=%d", f.ingestion.refreshes)
	}
}

func TestRouter_ProviderMessagesOnlyInDev(t *testing.T) {
	summary := usecase.RunSummary{
		RunID:  "run-2",
		Status: usecase.RunStatusPartial,
		Units: []usecase.UnitSummary{{
			Scope: "competition:PL",
			ProviderErrors: []usecase.ProviderFailure{{
				Provider: "football-data",
				Reason:   "upstream_error",
				Message:  "status=500 body=stack trace here",
			}},
		}},
	}

	prod := newRouterFixture(false)
	prod.ingestion.summary = summary
	rec, _ := prod.do(t, http.MethodPost, "/v1/internal/ingestion/run", "", true)
	if strings.Contains(rec.Body.String(), "stack trace") {
		t.Fatalf("expected provider message to be hidden, got %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "upstream_error") {
		t.Fatalf("expected failure reason to stay, got %s", rec.Body.String())
	}
	if summary.Units[0].ProviderErrors[0].Message == "" {
		t.Fatalf("expected redaction to leave the source summary untouched")
	}

	dev := newRouterFixture(true)
	dev.ingestion.summary = summary
	rec, _ = dev.do(t, http.MethodPost, "/v1/internal/ingestion/run", "", true)
	if !strings.Contains(rec.Body.String(), "stack trace") {
		t.Fatalf("expected provider message in dev, got %s", rec.Body.String())
	}
}

func TestRouter_IngestionStatus(t *testing.T) {
	f := newRouterFixture(false)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.ingestion.status = usecase.ProcessingStatus{
		IsProcessing:    map[usecase.Trigger]bool{usecase.TriggerRun: true},
		LastProcessedAt: &at,
		LastSummary:     &usecase.RunSummary{RunID: "run-9", Status: usecase.RunStatusCompleted},
	}

	rec, body := f.do(t, http.MethodGet, "/v1/internal/ingestion/status", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	data, _ := body["data"].(map[string]any)
	processing, _ := data["is_processing"].(map[string]any)
	if running, _ := processing["run"].(bool); !running {
		t.Fatalf("expected run to be processing, got %v", data["is_processing"])
	}
	last, _ := data["last_summary"].(map[string]any)
	if got, _ := last["run_id"].(string); got != "run-9" {
		t.Fatalf("expected last summary run-9, got %v", last["run_id"])
	}
}

func TestRouter_PendingHighlights(t *testing.T) {
	f := newRouterFixture(false)
	home, away := 2, 1
	f.highlights.items = []match.Match{{
		ID:         7,
		ExternalID: "football-data:1",
		Status:     match.StatusFinished,
		HomeScore:  &home,
		AwayScore:  &away,
		MatchDate:  time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC),
	}}

	rec, _ := f.do(t, http.MethodGet, "/v1/matches/pending-highlights?limit=abc", "", false)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for bad limit, got %d", rec.Code)
	}

	rec, body := f.do(t, http.MethodGet, "/v1/matches/pending-highlights?limit=5", "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if len(f.highlights.limits) != 1 || f.highlights.limits[0] != 5 {
		t.Fatalf("unexpected limits: %v", f.highlights.limits)
	}
	items, _ := body["data"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected one match, got=%d", len(items))
	}
	first, _ := items[0].(map[string]any)
	if got, _ := first["home_score"].(float64); got != 2 {
		t.Fatalf("expected home_score 2, got %v", first["home_score"])
	}
	if got, _ := first["status"].(string); got != "finished" {
		t.Fatalf("expected status finished, got %v", first["status"])
	}
}

func TestRouter_PendingHighlightsStoreFailureHidesDetails(t *testing.T) {
	f := newRouterFixture(false)
	f.highlights.listErr = fmt.Errorf("%w: list pending: %v", usecase.ErrPersistenceFailure, errors.New("pq: connection refused"))

	rec, _ := f.do(t, http.MethodGet, "/v1/matches/pending-highlights", "", false)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "connection refused") {
		t.Fatalf("expected driver error to be hidden, got %s", rec.Body.String())
	}
}

func TestRouter_MarkHighlightsProcessed(t *testing.T) {
	f := newRouterFixture(false)

	rec, _ := f.do(t, http.MethodPost, "/v1/matches/highlights/processed", `{"match_ids":[]}`, false)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for empty ids, got %d", rec.Code)
	}

	rec, body := f.do(t, http.MethodPost, "/v1/matches/highlights/processed", `{"match_ids":[4,9]}`, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	data, _ := body["data"].(map[string]any)
	if got, _ := data["updated"].(float64); got != 2 {
		t.Fatalf("expected updated=2, got %v", data["updated"])
	}
	if len(f.highlights.marked) != 2 || f.highlights.marked[1] != 9 {
		t.Fatalf("unexpected marked ids: %v", f.highlights.marked)
	}
}

func TestRouter_ListDuplicateTeams(t *testing.T) {
	f := newRouterFixture(false)
	f.audit.groups = []usecase.DuplicateGroup{{
		Key: "manchester city",
		Teams: []team.Team{
			{ID: 1, Name: "Manchester City FC", Source: "football-data"},
			{ID: 7, Name: "Man City", Source: "api-football"},
		},
	}}

	rec, _ := f.do(t, http.MethodGet, "/v1/internal/teams/duplicates", "", false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without token, got %d", rec.Code)
	}

	rec, body := f.do(t, http.MethodGet, "/v1/internal/teams/duplicates", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	groups, _ := body["data"].([]any)
	if len(groups) != 1 {
		t.Fatalf("expected one group, got=%d", len(groups))
	}
	group, _ := groups[0].(map[string]any)
	if teams, _ := group["teams"].([]any); len(teams) != 2 {
		t.Fatalf("expected two teams in group, got %v", group["teams"])
	}
}

func TestRouter_SyncCompetitions(t *testing.T) {
	f := newRouterFixture(false)

	rec, _ := f.do(t, http.MethodPost, "/v1/internal/ingestion/competitions", "", false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without token, got %d", rec.Code)
	}

	rec, _ = f.do(t, http.MethodPost, "/v1/internal/ingestion/competitions", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if f.ingestion.catalogues != 1 {
		t.Fatalf("expected one catalogue sync, got=%d", f.ingestion.catalogues)
	}

	rec, _ = f.do(t, http.MethodPost, "/v1/internal/ingestion/competitions", `{"async":true}`, true)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d", rec.Code)
	}
	if len(f.dispatcher.names) != 1 || f.dispatcher.names[0] != "http-competitions" {
		t.Fatalf("unexpected dispatched jobs: %v", f.dispatcher.names)
	}
}

func TestRouter_ListCompetitions(t *testing.T) {
	f := newRouterFixture(false)
	matchday := 27
	f.catalogue.items = []competition.Competition{{
		Code:            "PL",
		ExternalID:      "football-data:2021",
		Source:          "football-data",
		Name:            "Premier League",
		Type:            competition.TypeLeague,
		CurrentMatchday: &matchday,
	}}

	rec, body := f.do(t, http.MethodGet, "/v1/competitions", "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	items, _ := body["data"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected one competition, got=%d", len(items))
	}
	first, _ := items[0].(map[string]any)
	if got, _ := first["type"].(string); got != "league" {
		t.Fatalf("expected type league, got %v", first["type"])
	}
	if got, _ := first["current_matchday"].(float64); got != 27 {
		t.Fatalf("expected current_matchday 27, got %v", first["current_matchday"])
	}

	f.catalogue.err = fmt.Errorf("%w: list competitions: %v", usecase.ErrPersistenceFailure, errors.New("pq: connection refused"))
	rec, _ = f.do(t, http.MethodGet, "/v1/competitions", "", false)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
}
