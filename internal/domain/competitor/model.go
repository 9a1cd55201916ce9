package competitor

// Competitor identity is the pair (name_long, designation). A nil designation
// is a distinct identity from every non-nil value, so it stays a pointer all
// the way down: matching must compare against NULL, never drop the predicate.
type Competitor struct {
	ID          int64
	NameLong    string
	NameShort   *string
	Designation *string
	ExternalID  *string
}
