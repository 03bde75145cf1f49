package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchsync/internal/domain/competition"
	qb "github.com/riskibarqy/matchsync/internal/platform/querybuilder"
)

type CompetitionRepository struct {
	db *sqlx.DB
}

func NewCompetitionRepository(db *sqlx.DB) *CompetitionRepository {
	return &CompetitionRepository{db: db}
}

var competitionColumns = []string{
	"id", "code", "external_id", "source", "name", "type", "area_name", "area_code", "emblem_url",
	"current_season", "current_matchday", "season_start", "season_end", "created_at", "updated_at",
}

// Empty values from a later sync never clear what an earlier one stored.
const competitionUpsertSuffix = `ON CONFLICT (code) DO UPDATE SET
    external_id = EXCLUDED.external_id,
    source = EXCLUDED.source,
    name = EXCLUDED.name,
    type = EXCLUDED.type,
    area_name = COALESCE(EXCLUDED.area_name, competitions.area_name),
    area_code = COALESCE(EXCLUDED.area_code, competitions.area_code),
    emblem_url = COALESCE(EXCLUDED.emblem_url, competitions.emblem_url),
    current_season = COALESCE(EXCLUDED.current_season, competitions.current_season),
    current_matchday = COALESCE(EXCLUDED.current_matchday, competitions.current_matchday),
    season_start = COALESCE(EXCLUDED.season_start, competitions.season_start),
    season_end = COALESCE(EXCLUDED.season_end, competitions.season_end),
    updated_at = NOW()`

// UpsertMany writes the catalogue in one statement. A code repeated in items
// keeps its last entry.
func (r *CompetitionRepository) UpsertMany(ctx context.Context, items []competition.Competition) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	position := make(map[string]int, len(items))
	models := make([]any, 0, len(items))
	for _, item := range items {
		model := newCompetitionInsertModel(item)
		if idx, seen := position[model.Code]; seen {
			models[idx] = model
			continue
		}
		position[model.Code] = len(models)
		models = append(models, model)
	}

	query, args, err := qb.InsertModels("competitions", models, competitionUpsertSuffix)
	if err != nil {
		return 0, fmt.Errorf("build upsert competitions query: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("upsert %d competitions: %w", len(models), err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return len(models), nil
	}
	return int(affected), nil
}

func (r *CompetitionRepository) List(ctx context.Context) ([]competition.Competition, error) {
	query, args, err := qb.Select(competitionColumns...).From("competitions").
		OrderBy("code").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list competitions query: %w", err)
	}

	var rows []competitionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list competitions: %w", err)
	}
	out := make([]competition.Competition, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

type competitionTableModel struct {
	ID              int64         `db:"id"`
	Code            string        `db:"code"`
	ExternalID      string        `db:"external_id"`
	Source          string        `db:"source"`
	Name            string        `db:"name"`
	Type            string        `db:"type"`
	AreaName        *string       `db:"area_name"`
	AreaCode        *string       `db:"area_code"`
	EmblemURL       *string       `db:"emblem_url"`
	CurrentSeason   *string       `db:"current_season"`
	CurrentMatchday sql.NullInt64 `db:"current_matchday"`
	SeasonStart     sql.NullTime  `db:"season_start"`
	SeasonEnd       sql.NullTime  `db:"season_end"`
	CreatedAt       time.Time     `db:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at"`
}

type competitionInsertModel struct {
	Code            string        `db:"code"`
	ExternalID      string        `db:"external_id"`
	Source          string        `db:"source"`
	Name            string        `db:"name"`
	Type            string        `db:"type"`
	AreaName        *string       `db:"area_name"`
	AreaCode        *string       `db:"area_code"`
	EmblemURL       *string       `db:"emblem_url"`
	CurrentSeason   *string       `db:"current_season"`
	CurrentMatchday sql.NullInt64 `db:"current_matchday"`
	SeasonStart     sql.NullTime  `db:"season_start"`
	SeasonEnd       sql.NullTime  `db:"season_end"`
}

func newCompetitionInsertModel(item competition.Competition) competitionInsertModel {
	compType := item.Type
	if compType == "" {
		compType = competition.TypeOther
	}
	return competitionInsertModel{
		Code:            competition.NormalizeCode(item.Code),
		ExternalID:      item.ExternalID,
		Source:          item.Source,
		Name:            item.Name,
		Type:            string(compType),
		AreaName:        nullableString(item.AreaName),
		AreaCode:        nullableString(item.AreaCode),
		EmblemURL:       nullableString(item.EmblemURL),
		CurrentSeason:   nullableString(item.CurrentSeason),
		CurrentMatchday: intPtrToNullInt64(item.CurrentMatchday),
		SeasonStart:     timePtrToNullTime(item.SeasonStart),
		SeasonEnd:       timePtrToNullTime(item.SeasonEnd),
	}
}

func (m competitionTableModel) toDomain() competition.Competition {
	return competition.Competition{
		ID:              m.ID,
		Code:            m.Code,
		ExternalID:      m.ExternalID,
		Source:          m.Source,
		Name:            m.Name,
		Type:            competition.Type(m.Type),
		AreaName:        stringValue(m.AreaName),
		AreaCode:        stringValue(m.AreaCode),
		EmblemURL:       stringValue(m.EmblemURL),
		CurrentSeason:   stringValue(m.CurrentSeason),
		CurrentMatchday: nullInt64ToIntPtr(m.CurrentMatchday),
		SeasonStart:     nullTimeToPtr(m.SeasonStart),
		SeasonEnd:       nullTimeToPtr(m.SeasonEnd),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
