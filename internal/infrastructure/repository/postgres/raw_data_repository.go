package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchsync/internal/domain/rawdata"
	qb "github.com/riskibarqy/matchsync/internal/platform/querybuilder"
)

type RawDataRepository struct {
	db *sqlx.DB
}

func NewRawDataRepository(db *sqlx.DB) *RawDataRepository {
	return &RawDataRepository{db: db}
}

const rawPayloadUpsertSuffix = `ON CONFLICT (source, entity_type, entity_key)
DO UPDATE SET
    payload = EXCLUDED.payload,
    payload_hash = EXCLUDED.payload_hash,
    fetched_at = EXCLUDED.fetched_at,
    ingested_at = NOW()
WHERE raw_payloads.payload_hash IS DISTINCT FROM EXCLUDED.payload_hash`

// UpsertMany archives payloads in one statement. Rows whose hash did not
// change are left untouched. A key repeated in items keeps its last payload,
// since postgres refuses to touch the same row twice in one upsert.
func (r *RawDataRepository) UpsertMany(ctx context.Context, items []rawdata.Payload) error {
	if len(items) == 0 {
		return nil
	}

	type key struct{ source, entityType, entityKey string }
	position := make(map[key]int, len(items))
	models := make([]any, 0, len(items))
	for _, item := range items {
		insertModel := rawPayloadInsertModel{
			Source:      item.Source,
			EntityType:  item.EntityType,
			EntityKey:   item.EntityKey,
			Payload:     item.PayloadJSON,
			PayloadHash: item.PayloadHash,
			FetchedAt:   item.FetchedAt,
		}
		k := key{item.Source, item.EntityType, item.EntityKey}
		if idx, seen := position[k]; seen {
			models[idx] = insertModel
			continue
		}
		position[k] = len(models)
		models = append(models, insertModel)
	}

	query, args, err := qb.InsertModels("raw_payloads", models, rawPayloadUpsertSuffix)
	if err != nil {
		return fmt.Errorf("build upsert raw payloads query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert %d raw payloads: %w", len(models), err)
	}
	return nil
}

type rawPayloadInsertModel struct {
	Source      string    `db:"source"`
	EntityType  string    `db:"entity_type"`
	EntityKey   string    `db:"entity_key"`
	Payload     string    `db:"payload"`
	PayloadHash string    `db:"payload_hash"`
	FetchedAt   time.Time `db:"fetched_at"`
}
