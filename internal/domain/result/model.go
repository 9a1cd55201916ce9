package result

// Result is one lane/boat's outcome within a schedule entry. Time-of-day
// fields are normalized HH:MM:SS strings; the elapsed total is milliseconds.
// Every optional field is a pointer so an unparseable source value persists
// as NULL rather than a zero.
type Result struct {
	ID              int64
	ScheduleID      int64
	CompetitorID    int64
	LaneBoatNumber  string
	Placement       *int64
	StartTime       *string
	FinishTime      *string
	RawTime         *string
	TotalTimeMillis *int64
	Adjustment      *float64
	Handicap        *float64
	Remark          *string
	Notes           *string
}
