package httpapi

import (
	"context"
	"net/http"

	"github.com/riskibarqy/matchsync/internal/usecase"
)

type runIngestionRequest struct {
	Async        bool     `json:"async"`
	MultiSource  *bool    `json:"multi_source"`
	Competitions []string `json:"competitions" validate:"omitempty,max=32,dive,required,max=16"`
}

type backfillRequest struct {
	Days  int  `json:"days" validate:"required,min=1,max=365"`
	Async bool `json:"async"`
}

type refreshScoresRequest struct {
	Async bool `json:"async"`
}

type syncCompetitionsRequest struct {
	Async bool `json:"async"`
}

type acceptedDTO struct {
	Accepted bool   `json:"accepted"`
	Trigger  string `json:"trigger"`
}

func (h *Handler) RunIngestion(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunIngestion")
	defer span.End()

	var req runIngestionRequest
	if err := h.decodeOptionalBody(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	input := usecase.RunInput{MultiSource: req.MultiSource, Competitions: req.Competitions}
	h.trigger(ctx, w, usecase.TriggerRun, req.Async, func(ctx context.Context) usecase.RunSummary {
		return h.ingestion.RunNow(ctx, input)
	})
}

func (h *Handler) RunBackfill(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunBackfill")
	defer span.End()

	var req backfillRequest
	if err := h.decodeOptionalBody(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	h.trigger(ctx, w, usecase.TriggerBackfill, req.Async, func(ctx context.Context) usecase.RunSummary {
		return h.ingestion.Backfill(ctx, req.Days)
	})
}

func (h *Handler) RefreshScores(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RefreshScores")
	defer span.End()

	var req refreshScoresRequest
	if err := h.decodeOptionalBody(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	h.trigger(ctx, w, usecase.TriggerRefreshScores, req.Async, h.ingestion.RefreshScores)
}

func (h *Handler) SyncCompetitions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SyncCompetitions")
	defer span.End()

	var req syncCompetitionsRequest
	if err := h.decodeOptionalBody(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	h.trigger(ctx, w, usecase.TriggerCompetitions, req.Async, h.ingestion.SyncCompetitions)
}

func (h *Handler) IngestionStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.IngestionStatus")
	defer span.End()

	status := h.ingestion.Status()
	if status.LastSummary != nil {
		summary := h.redact(*status.LastSummary)
		status.LastSummary = &summary
	}
	writeSuccess(ctx, w, http.StatusOK, status)
}

// trigger runs job inline, or hands it to the dispatcher and answers 202.
func (h *Handler) trigger(ctx context.Context, w http.ResponseWriter, trigger usecase.Trigger, async bool, job func(context.Context) usecase.RunSummary) {
	if async {
		err := h.dispatcher.Dispatch(ctx, "http-"+string(trigger), func(jobCtx context.Context) {
			_ = job(jobCtx)
		})
		if err != nil {
			h.fail(ctx, w, err)
			return
		}
		writeSuccess(ctx, w, http.StatusAccepted, acceptedDTO{Accepted: true, Trigger: string(trigger)})
		return
	}

	// A run always finishes its scope, even when the caller hangs up.
	summary := job(context.WithoutCancel(ctx))
	writeSuccess(ctx, w, http.StatusOK, h.redact(summary))
}

// redact drops provider messages from a summary outside dev. Reasons stay.
func (h *Handler) redact(summary usecase.RunSummary) usecase.RunSummary {
	if h.exposeDetails {
		return summary
	}

	units := make([]usecase.UnitSummary, len(summary.Units))
	for i, unit := range summary.Units {
		if len(unit.ProviderErrors) > 0 {
			errs := make([]usecase.ProviderFailure, len(unit.ProviderErrors))
			for j, pe := range unit.ProviderErrors {
				pe.Message = ""
				errs[j] = pe
			}
			unit.ProviderErrors = errs
		}
		units[i] = unit
	}
	summary.Units = units
	return summary
}
