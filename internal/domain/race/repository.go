package race

import "context"

type Repository interface {
	// Upsert updates the row with the same fingerprint with the full payload,
	// or inserts it, and returns the row id either way.
	Upsert(ctx context.Context, item Race) (int64, error)
}
