package domain

// Category groups subcategories; log entries reference subcategories.
type Category struct {
	ID      string
	OwnerID string
	Name    string
}

// Subcategory is the level log entries actually tag.
type Subcategory struct {
	ID         string
	CategoryID string
	Name       string
}

// CategorySlice is one slice of the category breakdown pie: total minutes
// logged against a category (or subcategory, in the drilldown).
type CategorySlice struct {
	Name        string
	DurationMin int
}
