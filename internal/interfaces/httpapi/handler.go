package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/matchsync/internal/domain/competition"
	"github.com/riskibarqy/matchsync/internal/domain/match"
	"github.com/riskibarqy/matchsync/internal/platform/logging"
	"github.com/riskibarqy/matchsync/internal/usecase"
)

const maxRequestBodyBytes = 1 << 20

type ingestionService interface {
	RunNow(ctx context.Context, input usecase.RunInput) usecase.RunSummary
	Backfill(ctx context.Context, days int) usecase.RunSummary
	RefreshScores(ctx context.Context) usecase.RunSummary
	SyncCompetitions(ctx context.Context) usecase.RunSummary
	Status() usecase.ProcessingStatus
}

type jobDispatcher interface {
	Dispatch(ctx context.Context, name string, job func(context.Context)) error
}

type highlightService interface {
	ListPendingHighlights(ctx context.Context, limit int) ([]match.Match, error)
	MarkHighlightsProcessed(ctx context.Context, ids []int64) (int, error)
}

type competitionCatalogue interface {
	ListCompetitions(ctx context.Context) ([]competition.Competition, error)
}

type teamAuditor interface {
	FindDuplicateCandidates(ctx context.Context) ([]usecase.DuplicateGroup, error)
}

type HandlerDeps struct {
	Ingestion    ingestionService
	Dispatcher   jobDispatcher
	Highlights   highlightService
	TeamAudit    teamAuditor
	Competitions competitionCatalogue
	Logger       *logging.Logger
	// ExposeDetails keeps provider bodies in responses. Only set in dev.
	ExposeDetails bool
}

type Handler struct {
	ingestion     ingestionService
	dispatcher    jobDispatcher
	highlights    highlightService
	teamAudit     teamAuditor
	competitions  competitionCatalogue
	logger        *logging.Logger
	validator     *validator.Validate
	exposeDetails bool
}

func NewHandler(deps HandlerDeps) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		ingestion:     deps.Ingestion,
		dispatcher:    deps.Dispatcher,
		highlights:    deps.Highlights,
		teamAudit:     deps.TeamAudit,
		competitions:  deps.Competitions,
		logger:        logger,
		validator:     validator.New(),
		exposeDetails: deps.ExposeDetails,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeOptionalBody fills dst from a JSON body. An empty body leaves dst untouched.
func (h *Handler) decodeOptionalBody(ctx context.Context, r *http.Request, dst any) error {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", usecase.ErrInvalidInput, err)
	}
	if len(bytes.TrimSpace(raw)) > 0 {
		decoder := sonic.ConfigDefault.NewDecoder(bytes.NewReader(raw))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(dst); err != nil {
			return fmt.Errorf("%w: invalid JSON body: %v", usecase.ErrInvalidInput, err)
		}
	}
	return h.validateRequest(ctx, dst)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

// fail writes err, hiding the message of upstream failures outside dev.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, err error) {
	mapped := mapError(ctx, err)
	if mapped.HTTPStatus >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, "request failed", "reason", usecase.FailureReason(err), "error", err)
		if !h.exposeDetails {
			writeErrorMessage(ctx, w, err, http.StatusText(mapped.HTTPStatus))
			return
		}
	}
	writeError(ctx, w, err)
}
