package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/openregatta/timing-sync/internal/domain/category"
	qb "github.com/openregatta/timing-sync/internal/platform/querybuilder"
)

type CategoryRepository struct {
	db *sqlx.DB
}

func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// ResolveOrCreate is get-or-create only: a category that already exists keeps
// its stored attributes untouched.
func (r *CategoryRepository) ResolveOrCreate(ctx context.Context, item category.Category) (int64, error) {
	query, args, err := qb.Select("id").From("categories").
		Where(qb.Eq("name", item.Name)).
		Limit(1).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build select category by name query: %w", err)
	}

	var id int64
	err = r.db.GetContext(ctx, &id, query, args...)
	if err != nil && !isNotFound(err) {
		return 0, fmt.Errorf("select category by name: %w", err)
	}
	if err == nil {
		return id, nil
	}

	query, args, err = qb.InsertModel("categories", categoryInsertModel{
		Name:         item.Name,
		Title:        item.Title,
		CourseLength: item.CourseLength,
		Abbreviation: item.Abbreviation,
	}, "RETURNING id")
	if err != nil {
		return 0, fmt.Errorf("build insert category query: %w", err)
	}
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		return 0, fmt.Errorf("insert category name=%q: %w", item.Name, err)
	}

	return id, nil
}

type categoryInsertModel struct {
	Name         string  `db:"name"`
	Title        *string `db:"title"`
	CourseLength *int64  `db:"course_length"`
	Abbreviation *string `db:"abbreviation"`
}
