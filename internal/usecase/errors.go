package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/riskibarqy/matchsync/internal/domain/competition"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	ErrRateLimitExceeded       = errors.New("rate limit exceeded")
	ErrUpstream                = errors.New("upstream provider error")
	ErrInvalidTeamPayload      = errors.New("invalid team payload")
	ErrUnresolvedTeamReference = errors.New("unresolved team reference")
	ErrInvalidMatchPayload     = errors.New("invalid match payload")
	ErrUnsupportedCompetition  = errors.New("unsupported competition")
	ErrPersistenceConflict     = errors.New("persistence conflict")
	ErrPersistenceFailure      = errors.New("persistence failure")
)

// UpstreamError is a non-2xx answer from a provider. Body is already
// abbreviated and scrubbed of credentials.
type UpstreamError struct {
	Provider string
	Status   int
	Body     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: provider=%s status=%d body=%s", ErrUpstream, e.Provider, e.Status, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return ErrUpstream
}

// FailureReason buckets an error into the short reason recorded in run summaries.
func FailureReason(err error) string {
	var upstream *UpstreamError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, ErrRateLimitExceeded):
		return "rate_limit_exceeded"
	case errors.As(err, &upstream), errors.Is(err, ErrUpstream):
		return "upstream_error"
	case errors.Is(err, ErrInvalidTeamPayload):
		return "invalid_team_payload"
	case errors.Is(err, ErrUnresolvedTeamReference):
		return "unresolved_team_reference"
	case errors.Is(err, ErrInvalidMatchPayload):
		return "invalid_match_payload"
	case errors.Is(err, competition.ErrInvalid):
		return "invalid_competition"
	case errors.Is(err, ErrUnsupportedCompetition):
		return "unsupported_competition"
	case errors.Is(err, ErrPersistenceConflict):
		return "persistence_conflict"
	case errors.Is(err, ErrPersistenceFailure):
		return "persistence_failure"
	case errors.Is(err, ErrDependencyUnavailable):
		return "dependency_unavailable"
	default:
		return "unexpected_error"
	}
}
