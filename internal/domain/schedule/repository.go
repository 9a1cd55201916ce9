package schedule

import "context"

type Repository interface {
	// ResolveOrCreate returns the id of the entry matching the
	// (event, race, category) triple, inserting it when absent.
	ResolveOrCreate(ctx context.Context, item Entry) (int64, error)
}
