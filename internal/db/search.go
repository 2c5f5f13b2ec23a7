package db

// FilterQuery is the input for a predicate search over an FT index.
// Empty Predicates matches everything.
type FilterQuery struct {
	IndexName    string
	Predicates   []Predicate
	Offset       int
	Limit        int
	SortBy       string // optional; field must be SORTABLE in the index
	SortDesc     bool
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search. For JSON indexes
// without ReturnFields the document body is under the "$" field.
type SearchEntry struct {
	Key    string
	Fields map[string]string
}

// Document returns the raw JSON body of a JSON-index hit.
func (e SearchEntry) Document() ([]byte, bool) {
	doc, ok := e.Fields["$"]
	return []byte(doc), ok
}
