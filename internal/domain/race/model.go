package race

// Race is one start on the water. The fingerprint is the natural key: races
// carry no stable identifier across fetches, so identity is derived from
// attributes instead.
type Race struct {
	ID          int64
	RaceNum     string
	RaceDay     *string
	RaceTime    *string
	SubType     *string
	Fingerprint string
}
