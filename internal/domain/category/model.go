package category

// Category is a racing class, e.g. "Mens Varsity 8". Optional attributes are
// pointers so absence survives the round trip to storage.
type Category struct {
	ID           int64
	Name         string
	Title        *string
	CourseLength *int64
	Abbreviation *string
}
