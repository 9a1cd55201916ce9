package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/openregatta/timing-sync/internal/domain/race"
	qb "github.com/openregatta/timing-sync/internal/platform/querybuilder"
)

type RaceRepository struct {
	db *sqlx.DB
}

func NewRaceRepository(db *sqlx.DB) *RaceRepository {
	return &RaceRepository{db: db}
}

// Upsert resolves the race by fingerprint, the derived natural key, and
// overwrites the stored attributes with the incoming payload.
func (r *RaceRepository) Upsert(ctx context.Context, item race.Race) (int64, error) {
	query, args, err := qb.Select("id").From("races").
		Where(qb.Eq("fingerprint", item.Fingerprint)).
		Limit(1).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build select race by fingerprint query: %w", err)
	}

	var id int64
	err = r.db.GetContext(ctx, &id, query, args...)
	if err != nil && !isNotFound(err) {
		return 0, fmt.Errorf("select race by fingerprint: %w", err)
	}

	if err == nil {
		query, args, err := qb.Update("races").
			Set("race_num", item.RaceNum).
			Set("race_day", item.RaceDay).
			Set("race_time", item.RaceTime).
			Set("sub_type", item.SubType).
			SetExpr("updated_at", "NOW()").
			Where(qb.Eq("id", id)).
			ToSQL()
		if err != nil {
			return 0, fmt.Errorf("build update race query: %w", err)
		}
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("update race id=%d: %w", id, err)
		}
		return id, nil
	}

	query, args, err = qb.InsertModel("races", raceInsertModel{
		RaceNum:     item.RaceNum,
		RaceDay:     item.RaceDay,
		RaceTime:    item.RaceTime,
		SubType:     item.SubType,
		Fingerprint: item.Fingerprint,
	}, "RETURNING id")
	if err != nil {
		return 0, fmt.Errorf("build insert race query: %w", err)
	}
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		return 0, fmt.Errorf("insert race num=%s: %w", item.RaceNum, err)
	}

	return id, nil
}

type raceInsertModel struct {
	RaceNum     string  `db:"race_num"`
	RaceDay     *string `db:"race_day"`
	RaceTime    *string `db:"race_time"`
	SubType     *string `db:"sub_type"`
	Fingerprint string  `db:"fingerprint"`
}
