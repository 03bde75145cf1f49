package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchsync/internal/domain/match"
	qb "github.com/riskibarqy/matchsync/internal/platform/querybuilder"
)

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) GetByExternalID(ctx context.Context, externalID string) (match.Match, bool, error) {
	query, args, err := qb.Select(matchColumns...).From("matches").
		Where(qb.Eq("external_id", externalID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build select match by external id query: %w", err)
	}
	return r.getOne(ctx, query, args, "select match by external id")
}

func (r *MatchRepository) FindByTeamsAndDate(ctx context.Context, homeTeamID, awayTeamID int64, day time.Time) (match.Match, bool, error) {
	start := match.MergeDay(day)
	query, args, err := qb.Select(matchColumns...).From("matches").
		Where(
			qb.Eq("home_team_id", homeTeamID),
			qb.Eq("away_team_id", awayTeamID),
			qb.Gte("match_date", start),
			qb.Lt("match_date", start.Add(24*time.Hour)),
		).
		OrderBy("id").
		Limit(1).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build select match by teams query: %w", err)
	}
	return r.getOne(ctx, query, args, "select match by teams and date")
}

// UpsertMany wraps every row in its own savepoint so one rejected row does not
// abort the rest of the batch.
func (r *MatchRepository) UpsertMany(ctx context.Context, items []match.Match) (match.UpsertResult, error) {
	var result match.UpsertResult
	if len(items) == 0 {
		return result, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("begin tx upsert matches: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for idx, item := range items {
		query, args, err := qb.InsertModel("matches", newMatchInsertModel(item), matchUpsertSuffix)
		if err != nil {
			return match.UpsertResult{}, fmt.Errorf("build upsert match query: %w", err)
		}

		sp := savepointName(idx)
		if _, err := tx.ExecContext(ctx, "SAVEPOINT "+sp); err != nil {
			return match.UpsertResult{}, fmt.Errorf("create savepoint for match external_id=%s: %w", item.ExternalID, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+sp); rbErr != nil {
				return match.UpsertResult{}, fmt.Errorf("rollback savepoint for match external_id=%s: %w", item.ExternalID, rbErr)
			}
			result.Failures = append(result.Failures, match.UpsertFailure{
				ExternalID: item.ExternalID,
				Err:        classifyMatchWriteError(item, err),
			})
			continue
		}
		if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT "+sp); err != nil {
			return match.UpsertResult{}, fmt.Errorf("release savepoint for match external_id=%s: %w", item.ExternalID, err)
		}
		result.Stored++
	}

	if err := tx.Commit(); err != nil {
		return match.UpsertResult{}, fmt.Errorf("commit upsert matches tx: %w", err)
	}
	return result, nil
}

func (r *MatchRepository) ListByStatusBetween(ctx context.Context, statuses []match.Status, from, to time.Time) ([]match.Match, error) {
	conditions := []qb.Condition{
		qb.Gte("match_date", from.UTC()),
		qb.Lt("match_date", to.UTC()),
	}
	if len(statuses) > 0 {
		values := make([]any, 0, len(statuses))
		for _, status := range statuses {
			values = append(values, string(status))
		}
		conditions = append(conditions, qb.In("status", values))
	}

	query, args, err := qb.Select(matchColumns...).From("matches").
		Where(conditions...).
		OrderBy("match_date", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matches by status query: %w", err)
	}
	return r.selectMany(ctx, query, args, "list matches by status")
}

func (r *MatchRepository) ListPendingHighlights(ctx context.Context, limit int) ([]match.Match, error) {
	query, args, err := qb.Select(matchColumns...).From("matches").
		Where(
			qb.Eq("status", string(match.StatusFinished)),
			qb.Eq("highlight_processed", false),
			qb.Expr("home_score IS NOT NULL AND away_score IS NOT NULL"),
		).
		OrderBy("match_date DESC", "id").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list pending highlights query: %w", err)
	}
	return r.selectMany(ctx, query, args, "list pending highlights")
}

func (r *MatchRepository) MarkHighlightsProcessed(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	values := make([]any, 0, len(ids))
	for _, id := range ids {
		values = append(values, id)
	}

	query, args, err := qb.Update("matches").
		Set("highlight_processed", true).
		SetExpr("updated_at", "NOW()").
		Where(qb.In("id", values)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build mark highlights processed query: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("mark highlights processed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read affected rows: %w", err)
	}
	return int(affected), nil
}

func (r *MatchRepository) getOne(ctx context.Context, query string, args []any, op string) (match.Match, bool, error) {
	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("%s: %w", op, err)
	}
	return row.toDomain(), true, nil
}

func (r *MatchRepository) selectMany(ctx context.Context, query string, args []any, op string) ([]match.Match, error) {
	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func classifyMatchWriteError(item match.Match, err error) error {
	switch {
	case isForeignKeyViolation(err):
		return fmt.Errorf("%w: home_team_id=%d away_team_id=%d", match.ErrMissingTeamReference, item.HomeTeamID, item.AwayTeamID)
	case isUniqueViolation(err):
		return fmt.Errorf("%w: external_id=%s", match.ErrConflict, item.ExternalID)
	default:
		return fmt.Errorf("upsert match external_id=%s: %w", item.ExternalID, err)
	}
}
