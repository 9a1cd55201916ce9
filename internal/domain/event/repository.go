package event

import "context"

// Repository persists events keyed by the (name, start_date) natural key.
type Repository interface {
	// Upsert updates the row matching the natural key with the full payload,
	// or inserts it, and returns the row id either way.
	Upsert(ctx context.Context, item Event) (int64, error)
}
