package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/openregatta/timing-sync/internal/domain/result"
	qb "github.com/openregatta/timing-sync/internal/platform/querybuilder"
)

type ResultRepository struct {
	db *sqlx.DB
}

func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Upsert resolves by (schedule_id, lane_boat_number) and overwrites the full
// row: last write wins, including explicit NULLs for fields that stopped
// parsing.
func (r *ResultRepository) Upsert(ctx context.Context, item result.Result) (int64, error) {
	query, args, err := qb.Select("id").From("results").
		Where(
			qb.Eq("schedule_id", item.ScheduleID),
			qb.Eq("lane_boat_number", item.LaneBoatNumber),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build select result by natural key query: %w", err)
	}

	var id int64
	err = r.db.GetContext(ctx, &id, query, args...)
	if err != nil && !isNotFound(err) {
		return 0, fmt.Errorf("select result by natural key: %w", err)
	}

	if err == nil {
		query, args, err := qb.Update("results").
			Set("competitor_id", item.CompetitorID).
			Set("placement", item.Placement).
			Set("start_time", item.StartTime).
			Set("finish_time", item.FinishTime).
			Set("raw_time", item.RawTime).
			Set("total_time_ms", item.TotalTimeMillis).
			Set("adjustment", item.Adjustment).
			Set("handicap", item.Handicap).
			Set("remark", item.Remark).
			Set("notes", item.Notes).
			SetExpr("updated_at", "NOW()").
			Where(qb.Eq("id", id)).
			ToSQL()
		if err != nil {
			return 0, fmt.Errorf("build update result query: %w", err)
		}
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("update result id=%d: %w", id, err)
		}
		return id, nil
	}

	query, args, err = qb.InsertModel("results", resultInsertModel{
		ScheduleID:      item.ScheduleID,
		CompetitorID:    item.CompetitorID,
		LaneBoatNumber:  item.LaneBoatNumber,
		Placement:       item.Placement,
		StartTime:       item.StartTime,
		FinishTime:      item.FinishTime,
		RawTime:         item.RawTime,
		TotalTimeMillis: item.TotalTimeMillis,
		Adjustment:      item.Adjustment,
		Handicap:        item.Handicap,
		Remark:          item.Remark,
		Notes:           item.Notes,
	}, "RETURNING id")
	if err != nil {
		return 0, fmt.Errorf("build insert result query: %w", err)
	}
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		return 0, fmt.Errorf("insert result schedule=%d lane=%s: %w", item.ScheduleID, item.LaneBoatNumber, err)
	}

	return id, nil
}

type resultInsertModel struct {
	ScheduleID      int64    `db:"schedule_id"`
	CompetitorID    int64    `db:"competitor_id"`
	LaneBoatNumber  string   `db:"lane_boat_number"`
	Placement       *int64   `db:"placement"`
	StartTime       *string  `db:"start_time"`
	FinishTime      *string  `db:"finish_time"`
	RawTime         *string  `db:"raw_time"`
	TotalTimeMillis *int64   `db:"total_time_ms"`
	Adjustment      *float64 `db:"adjustment"`
	Handicap        *float64 `db:"handicap"`
	Remark          *string  `db:"remark"`
	Notes           *string  `db:"notes"`
}
