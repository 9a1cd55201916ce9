package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/openregatta/timing-sync/internal/domain/schedule"
	qb "github.com/openregatta/timing-sync/internal/platform/querybuilder"
)

type ScheduleRepository struct {
	db *sqlx.DB
}

func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// ResolveOrCreate returns the row for the (event, race, category) triple,
// inserting it on first encounter. The triple carries no mutable attributes,
// so an existing row is returned as-is.
func (r *ScheduleRepository) ResolveOrCreate(ctx context.Context, item schedule.Entry) (int64, error) {
	query, args, err := qb.Select("id").From("schedules").
		Where(
			qb.Eq("event_id", item.EventID),
			qb.Eq("race_id", item.RaceID),
			qb.Eq("category_id", item.CategoryID),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build select schedule by triple query: %w", err)
	}

	var id int64
	err = r.db.GetContext(ctx, &id, query, args...)
	if err != nil && !isNotFound(err) {
		return 0, fmt.Errorf("select schedule by triple: %w", err)
	}
	if err == nil {
		return id, nil
	}

	query, args, err = qb.InsertModel("schedules", scheduleInsertModel{
		EventID:    item.EventID,
		RaceID:     item.RaceID,
		CategoryID: item.CategoryID,
	}, "RETURNING id")
	if err != nil {
		return 0, fmt.Errorf("build insert schedule query: %w", err)
	}
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		return 0, fmt.Errorf("insert schedule event=%d race=%d category=%d: %w",
			item.EventID, item.RaceID, item.CategoryID, err)
	}

	return id, nil
}

type scheduleInsertModel struct {
	EventID    int64 `db:"event_id"`
	RaceID     int64 `db:"race_id"`
	CategoryID int64 `db:"category_id"`
}
