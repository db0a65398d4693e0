package db

// TagFilter matches a TAG field against one or more values (OR semantics
// within the value list).
type TagFilter struct {
	Field  string
	Values []string
}

// RangeFilter bounds a NUMERIC field. Either bound may be nil.
type RangeFilter struct {
	Field string
	Min   *float64
	Max   *float64
}

// FilterSpec is a conjunction of tag and range filters plus optional free
// text matched against the index's TEXT fields. The driver escapes values
// and text; callers pass raw strings.
type FilterSpec struct {
	Tags   []TagFilter
	Ranges []RangeFilter
	Text   string
}

// IsEmpty reports whether the spec matches everything.
func (f FilterSpec) IsEmpty() bool {
	return len(f.Tags) == 0 && len(f.Ranges) == 0 && f.Text == ""
}

// SortedQuery is a paginated search ordered by a single sortable field.
type SortedQuery struct {
	IndexName string
	Filter    FilterSpec
	SortBy    string
	SortDesc  bool
	Offset    int
	Limit     int
}

// RankedQuery is a paginated search ordered by descending text-relevance
// score with a sortable numeric field as descending tie-break.
type RankedQuery struct {
	IndexName string
	Filter    FilterSpec
	TieBreak  string
	Offset    int
	Limit     int
}

// GroupCountRequest is one grouped-count aggregation branch: count matching
// documents per distinct value of GroupBy, ordered by descending count.
type GroupCountRequest struct {
	IndexName string
	Filter    FilterSpec
	GroupBy   string
	Limit     int
}

// Group is a single (value, count) bucket of a grouped count.
type Group struct {
	Value string
	Count int
}

// GroupCountResult holds the buckets of one aggregation branch. Buckets
// whose group value is absent in the underlying documents are dropped by
// the driver.
type GroupCountResult struct {
	Groups []Group
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
