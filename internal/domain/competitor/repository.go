package competitor

import "context"

type Repository interface {
	// ResolveOrCreate returns the id of the competitor matching
	// (name_long, designation), inserting the record when absent.
	ResolveOrCreate(ctx context.Context, item Competitor) (int64, error)
}
