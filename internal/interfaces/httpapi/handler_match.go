package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/riskibarqy/matchsync/internal/usecase"
)

type markProcessedRequest struct {
	MatchIDs []int64 `json:"match_ids" validate:"required,min=1,max=500,dive,gt=0"`
}

type markProcessedDTO struct {
	Updated int `json:"updated"`
}

func (h *Handler) ListPendingHighlights(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPendingHighlights")
	defer span.End()

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: limit must be an integer", usecase.ErrInvalidInput))
			return
		}
		limit = parsed
	}

	items, err := h.highlights.ListPendingHighlights(ctx, limit)
	if err != nil {
		h.fail(ctx, w, err)
		return
	}

	out := make([]matchDTO, 0, len(items))
	for _, item := range items {
		out = append(out, matchToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) MarkHighlightsProcessed(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.MarkHighlightsProcessed")
	defer span.End()

	var req markProcessedRequest
	if err := h.decodeOptionalBody(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	updated, err := h.highlights.MarkHighlightsProcessed(ctx, req.MatchIDs)
	if err != nil {
		h.fail(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, markProcessedDTO{Updated: updated})
}

func (h *Handler) ListCompetitions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListCompetitions")
	defer span.End()

	if h.competitions == nil {
		h.fail(ctx, w, fmt.Errorf("%w: competition catalogue not configured", usecase.ErrDependencyUnavailable))
		return
	}
	items, err := h.competitions.ListCompetitions(ctx)
	if err != nil {
		h.fail(ctx, w, err)
		return
	}

	out := make([]competitionDTO, 0, len(items))
	for _, item := range items {
		out = append(out, competitionToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) ListDuplicateTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListDuplicateTeams")
	defer span.End()

	groups, err := h.teamAudit.FindDuplicateCandidates(ctx)
	if err != nil {
		h.fail(ctx, w, err)
		return
	}

	out := make([]duplicateGroupDTO, 0, len(groups))
	for _, group := range groups {
		teams := make([]teamDTO, 0, len(group.Teams))
		for _, item := range group.Teams {
			teams = append(teams, teamToDTO(item))
		}
		out = append(out, duplicateGroupDTO{Key: group.Key, Teams: teams})
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}
