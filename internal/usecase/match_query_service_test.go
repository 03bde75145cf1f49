package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/matchsync/internal/domain/match"
	matchmock "github.com/riskibarqy/matchsync/internal/mocks/domain/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMatchQueryService_ListPendingHighlightsClampsLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "default", limit: 0, want: 20},
		{name: "negative", limit: -3, want: 20},
		{name: "explicit", limit: 5, want: 5},
		{name: "capped", limit: 500, want: 100},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			repo := matchmock.NewRepository(t)
			repo.On("ListPendingHighlights", mock.Anything, tc.want).
				Return([]match.Match{{ID: 7, Status: match.StatusFinished}}, nil).
				Once()

			items, err := NewMatchQueryService(repo).ListPendingHighlights(context.Background(), tc.limit)
			require.NoError(t, err)
			assert.Len(t, items, 1)
		})
	}
}

func TestMatchQueryService_ListPendingHighlightsStoreFailure(t *testing.T) {
	t.Parallel()

	repo := matchmock.NewRepository(t)
	repo.On("ListPendingHighlights", mock.Anything, 20).Return(nil, errors.New("connection reset")).Once()

	_, err := NewMatchQueryService(repo).ListPendingHighlights(context.Background(), 0)
	assert.ErrorIs(t, err, ErrPersistenceFailure)
}

func TestMatchQueryService_MarkHighlightsProcessed(t *testing.T) {
	t.Parallel()

	repo := matchmock.NewRepository(t)
	repo.On("MarkHighlightsProcessed", mock.Anything, []int64{3, 5}).Return(2, nil).Once()

	n, err := NewMatchQueryService(repo).MarkHighlightsProcessed(context.Background(), []int64{3, 3, 5})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMatchQueryService_MarkHighlightsProcessedRejectsBadIDs(t *testing.T) {
	t.Parallel()

	repo := matchmock.NewRepository(t)
	svc := NewMatchQueryService(repo)

	for _, ids := range [][]int64{nil, {}, {4, 0}, {-1}} {
		if _, err := svc.MarkHighlightsProcessed(context.Background(), ids); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected invalid input for ids=%v, got %v", ids, err)
		}
	}
}
