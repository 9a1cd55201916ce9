package usecase

// Payload is the intermediate record tree shared by both sources: the HTML
// extractor produces it and the eventDump API already arrives in this shape.
// Optional fields are pointers so "absent" survives decode/encode untouched.
type Payload struct {
	Info     EventInfo      `json:"info"`
	Schedule []ScheduleItem `json:"schedule"`
}

type EventInfo struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date,omitempty"`
	Location  string `json:"location,omitempty"`
}

type ScheduleItem struct {
	CatAbbrev  string       `json:"cat_abrev"`
	RaceAbbrev string       `json:"race_abrev,omitempty"`
	Category   CategoryData `json:"category"`
	Race       RaceData     `json:"race"`
	Results    []ResultRow  `json:"results,omitempty"`
}

type CategoryData struct {
	Name         string  `json:"name"`
	Title        *string `json:"title,omitempty"`
	CourseLength *int64  `json:"course_length,omitempty"`
}

type RaceData struct {
	RaceNum  string  `json:"race_num"`
	RaceDay  *string `json:"race_day,omitempty"`
	RaceTime *string `json:"race_time,omitempty"`
	SubType  *string `json:"sub_type,omitempty"`

	// StartArmed is operational state from the timing console. It is decoded
	// so API payloads round-trip losslessly but never reaches storage.
	StartArmed *bool `json:"start_armed,omitempty"`
}

type ResultRow struct {
	LaneBoatNumber string         `json:"lane_boat_number"`
	Competitor     CompetitorData `json:"competitor"`
	Placement      *string        `json:"placement,omitempty"`
	StartTime      *string        `json:"start_time,omitempty"`
	FinishTime     *string        `json:"finish_time,omitempty"`
	RawTime        *string        `json:"raw_time,omitempty"`
	TotalTime      *string        `json:"total_time,omitempty"`
	Adjustment     *float64       `json:"adjustment,omitempty"`
	Handicap       *float64       `json:"handicap,omitempty"`
	Remark         *string        `json:"remark,omitempty"`
	Notes          *string        `json:"notes,omitempty"`
}

type CompetitorData struct {
	NameShort   *string `json:"name_short,omitempty"`
	NameLong    string  `json:"name_long"`
	Designation *string `json:"designation,omitempty"`
	ExternalID  *string `json:"external_id,omitempty"`
}
