package result

import "context"

type Repository interface {
	// Upsert overwrites the row matching (schedule_id, lane_boat_number) with
	// the full payload, or inserts it, and returns the row id either way.
	Upsert(ctx context.Context, item Result) (int64, error)
}
