package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/openregatta/timing-sync/internal/domain/snapshot"
	qb "github.com/openregatta/timing-sync/internal/platform/querybuilder"
)

type SnapshotRepository struct {
	db *sqlx.DB
}

func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Upsert keeps one audit row per (source, event_key); each changed fetch
// overwrites it in place.
func (r *SnapshotRepository) Upsert(ctx context.Context, item snapshot.Snapshot) error {
	query, args, err := qb.InsertModel("ingest_snapshots", snapshotInsertModel{
		Source:      item.Source,
		EventKey:    item.EventKey,
		Payload:     item.Payload,
		PayloadHash: item.PayloadHash,
		FetchedAt:   item.FetchedAt,
	}, `ON CONFLICT (source, event_key)
DO UPDATE SET
    payload = EXCLUDED.payload,
    payload_hash = EXCLUDED.payload_hash,
    fetched_at = EXCLUDED.fetched_at`)
	if err != nil {
		return fmt.Errorf("build upsert snapshot query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert snapshot source=%s key=%s: %w", item.Source, item.EventKey, err)
	}

	return nil
}

type snapshotInsertModel struct {
	Source      string    `db:"source"`
	EventKey    string    `db:"event_key"`
	Payload     string    `db:"payload"`
	PayloadHash string    `db:"payload_hash"`
	FetchedAt   time.Time `db:"fetched_at"`
}
