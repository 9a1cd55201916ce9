package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/openregatta/timing-sync/internal/domain/event"
	qb "github.com/openregatta/timing-sync/internal/platform/querybuilder"
)

type EventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Upsert resolves the event by its (name, start_date) natural key: the
// existing row is overwritten with the full payload, or a new row inserted.
func (r *EventRepository) Upsert(ctx context.Context, item event.Event) (int64, error) {
	query, args, err := qb.Select("id").From("events").
		Where(
			qb.Eq("name", item.Name),
			qb.Eq("start_date", item.StartDate),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build select event by natural key query: %w", err)
	}

	var id int64
	err = r.db.GetContext(ctx, &id, query, args...)
	if err != nil && !isNotFound(err) {
		return 0, fmt.Errorf("select event by natural key: %w", err)
	}

	if err == nil {
		query, args, err := qb.Update("events").
			Set("name", item.Name).
			Set("start_date", item.StartDate).
			Set("end_date", item.EndDate).
			Set("location", item.Location).
			Set("provider_id", item.ProviderID).
			SetExpr("updated_at", "NOW()").
			Where(qb.Eq("id", id)).
			ToSQL()
		if err != nil {
			return 0, fmt.Errorf("build update event query: %w", err)
		}
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("update event id=%d: %w", id, err)
		}
		return id, nil
	}

	query, args, err = qb.InsertModel("events", eventInsertModel{
		Name:       item.Name,
		StartDate:  item.StartDate,
		EndDate:    item.EndDate,
		Location:   item.Location,
		ProviderID: item.ProviderID,
	}, "RETURNING id")
	if err != nil {
		return 0, fmt.Errorf("build insert event query: %w", err)
	}
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		return 0, fmt.Errorf("insert event name=%q: %w", item.Name, err)
	}

	return id, nil
}

type eventInsertModel struct {
	Name       string `db:"name"`
	StartDate  string `db:"start_date"`
	EndDate    string `db:"end_date"`
	Location   string `db:"location"`
	ProviderID int64  `db:"provider_id"`
}
