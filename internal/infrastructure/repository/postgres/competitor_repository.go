package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/openregatta/timing-sync/internal/domain/competitor"
	qb "github.com/openregatta/timing-sync/internal/platform/querybuilder"
)

type CompetitorRepository struct {
	db *sqlx.DB
}

func NewCompetitorRepository(db *sqlx.DB) *CompetitorRepository {
	return &CompetitorRepository{db: db}
}

// ResolveOrCreate matches on (name_long, designation). A nil designation
// matches IS NULL only: the predicate is never dropped, so a crew without a
// designation can never collide with one that has any.
func (r *CompetitorRepository) ResolveOrCreate(ctx context.Context, item competitor.Competitor) (int64, error) {
	where := []qb.Condition{qb.Eq("name_long", item.NameLong)}
	if item.Designation != nil {
		where = append(where, qb.Eq("designation", *item.Designation))
	} else {
		where = append(where, qb.IsNull("designation"))
	}

	query, args, err := qb.Select("id").From("competitors").
		Where(where...).
		Limit(1).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build select competitor by natural key query: %w", err)
	}

	var id int64
	err = r.db.GetContext(ctx, &id, query, args...)
	if err != nil && !isNotFound(err) {
		return 0, fmt.Errorf("select competitor by natural key: %w", err)
	}
	if err == nil {
		return id, nil
	}

	query, args, err = qb.InsertModel("competitors", competitorInsertModel{
		NameLong:    item.NameLong,
		NameShort:   item.NameShort,
		Designation: item.Designation,
		ExternalID:  item.ExternalID,
	}, "RETURNING id")
	if err != nil {
		return 0, fmt.Errorf("build insert competitor query: %w", err)
	}
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		return 0, fmt.Errorf("insert competitor name_long=%q: %w", item.NameLong, err)
	}

	return id, nil
}

type competitorInsertModel struct {
	NameLong    string  `db:"name_long"`
	NameShort   *string `db:"name_short"`
	Designation *string `db:"designation"`
	ExternalID  *string `db:"external_id"`
}
