package schedule

// Entry links one race of one event to the category it is run under. The
// triple is unique: re-ingestion resolves to the same row.
type Entry struct {
	ID         int64
	EventID    int64
	RaceID     int64
	CategoryID int64
}
