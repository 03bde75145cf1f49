package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchsync/internal/domain/team"
	qb "github.com/riskibarqy/matchsync/internal/platform/querybuilder"
)

const teamsWithRefs = "teams t JOIN team_external_refs r ON r.team_id = t.id"

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) GetByID(ctx context.Context, id int64) (team.Team, bool, error) {
	query, args, err := qb.Select(teamColumns...).From("teams t").
		Where(qb.Eq("t.id", id)).
		Limit(1).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build select team by id query: %w", err)
	}
	return r.getOne(ctx, query, args, "select team by id")
}

func (r *TeamRepository) GetByExternalRef(ctx context.Context, source, externalID string) (team.Team, bool, error) {
	query, args, err := qb.Select(teamColumns...).From(teamsWithRefs).
		Where(
			qb.Eq("r.source", strings.TrimSpace(source)),
			qb.Eq("r.external_id", strings.TrimSpace(externalID)),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build select team by external ref query: %w", err)
	}
	return r.getOne(ctx, query, args, "select team by external ref")
}

func (r *TeamRepository) FindByNormalizedName(ctx context.Context, normalizedName string) ([]team.Team, error) {
	query, args, err := qb.Select(teamColumns...).From("teams t").
		Where(qb.Eq("t.normalized_name", normalizedName)).
		OrderBy("t.id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select teams by normalized name query: %w", err)
	}
	return r.selectMany(ctx, query, args, "select teams by normalized name")
}

func (r *TeamRepository) SearchByName(ctx context.Context, fragment string, limit int) ([]team.Team, error) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return nil, nil
	}
	query, args, err := qb.Select(teamColumns...).From("teams t").
		Where(qb.Expr("(' ' || t.normalized_name || ' ') LIKE ?", "% "+escapeLike(fragment)+" %")).
		OrderBy("t.id").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build search teams by name query: %w", err)
	}
	return r.selectMany(ctx, query, args, "search teams by name")
}

func (r *TeamRepository) ListAll(ctx context.Context) ([]team.Team, error) {
	query, args, err := qb.Select(teamColumns...).From("teams t").
		OrderBy("t.id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list teams query: %w", err)
	}
	return r.selectMany(ctx, query, args, "list teams")
}

func (r *TeamRepository) Create(ctx context.Context, item team.Team, ref team.ExternalRef) (team.Team, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return team.Team{}, fmt.Errorf("begin tx create team: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query, args, err := qb.InsertModel("teams", newTeamInsertModel(item), "RETURNING id, created_at, updated_at")
	if err != nil {
		return team.Team{}, fmt.Errorf("build insert team query: %w", err)
	}
	if err := tx.QueryRowxContext(ctx, query, args...).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return team.Team{}, fmt.Errorf("%w: external_id=%s", team.ErrConflict, item.ExternalID)
		}
		return team.Team{}, fmt.Errorf("insert team external_id=%s: %w", item.ExternalID, err)
	}

	ref.TeamID = item.ID
	query, args, err = qb.InsertModel("team_external_refs", teamExternalRefInsertModel(ref), "")
	if err != nil {
		return team.Team{}, fmt.Errorf("build insert team ref query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return team.Team{}, fmt.Errorf("%w: ref=%s:%s", team.ErrConflict, ref.Source, ref.ExternalID)
		}
		return team.Team{}, fmt.Errorf("insert team ref %s:%s: %w", ref.Source, ref.ExternalID, err)
	}

	if err := tx.Commit(); err != nil {
		return team.Team{}, fmt.Errorf("commit create team tx: %w", err)
	}
	return item, nil
}

func (r *TeamRepository) LinkExternalRef(ctx context.Context, ref team.ExternalRef) error {
	query, args, err := qb.InsertModel("team_external_refs", teamExternalRefInsertModel(ref), "ON CONFLICT (source, external_id) DO NOTHING")
	if err != nil {
		return fmt.Errorf("build link team ref query: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("link team ref %s:%s: %w", ref.Source, ref.ExternalID, err)
	}
	if affected, _ := res.RowsAffected(); affected > 0 {
		return nil
	}

	existing, found, err := r.GetByExternalRef(ctx, ref.Source, ref.ExternalID)
	if err != nil {
		return err
	}
	if found && existing.ID != ref.TeamID {
		return fmt.Errorf("%w: ref=%s:%s already links team_id=%d", team.ErrConflict, ref.Source, ref.ExternalID, existing.ID)
	}
	return nil
}

// UpdateDetails only fills columns that are still empty.
func (r *TeamRepository) UpdateDetails(ctx context.Context, item team.Team) error {
	query, args, err := qb.Update("teams").
		SetExpr("short_name", "COALESCE(NULLIF(short_name, ''), ?)", nullableString(item.ShortName)).
		SetExpr("code", "COALESCE(NULLIF(code, ''), ?)", nullableString(item.Code)).
		SetExpr("country", "COALESCE(NULLIF(country, ''), ?)", nullableString(item.Country)).
		SetExpr("country_code", "COALESCE(NULLIF(country_code, ''), ?)", nullableString(item.CountryCode)).
		SetExpr("league", "COALESCE(NULLIF(league, ''), ?)", nullableString(item.League)).
		SetExpr("logo_url", "COALESCE(NULLIF(logo_url, ''), ?)", nullableString(item.LogoURL)).
		SetExpr("website", "COALESCE(NULLIF(website, ''), ?)", nullableString(item.Website)).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", item.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update team details query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update team details id=%d: %w", item.ID, err)
	}
	return nil
}

func (r *TeamRepository) getOne(ctx context.Context, query string, args []any, op string) (team.Team, bool, error) {
	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("%s: %w", op, err)
	}
	return row.toDomain(), true, nil
}

func (r *TeamRepository) selectMany(ctx context.Context, query string, args []any, op string) ([]team.Team, error) {
	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
