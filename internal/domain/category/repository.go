package category

import "context"

type Repository interface {
	// ResolveOrCreate returns the id of the category with the same name, or
	// inserts the given record. An existing category is never overwritten.
	ResolveOrCreate(ctx context.Context, item Category) (int64, error)
}
