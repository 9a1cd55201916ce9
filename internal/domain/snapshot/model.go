package snapshot

import "time"

// Snapshot is a durable copy of one fetched payload, kept for audit and
// replay. One row per (source, event_key); re-fetches overwrite in place.
type Snapshot struct {
	ID          int64
	Source      string
	EventKey    string
	Payload     string
	PayloadHash string
	FetchedAt   time.Time
}
