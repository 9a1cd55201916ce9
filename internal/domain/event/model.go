package event

// Event is one timed regatta. Dates are ISO YYYY-MM-DD strings because the
// sources only ever carry calendar precision.
type Event struct {
	ID         int64
	Name       string
	StartDate  string
	EndDate    string
	Location   string
	ProviderID int64
}
