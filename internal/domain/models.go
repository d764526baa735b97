package domain

import "time"

// Domain contains core models shared by the aggregator and the renderer.

const (
	DefaultTitle   = "No Title"
	DefaultSummary = "No description available."
	DefaultLink    = "#"
)

// Item is a single news entry mapped from a source record.
type Item struct {
	Title   string
	Summary string
	Link    string
	Date    *time.Time
}

// Section is a labeled group of items produced by one source.
// A section whose source failed has no items and a non-empty Placeholder.
type Section struct {
	SourceID    string
	Header      string
	Items       []Item
	Placeholder string
}

// Failed reports whether the section stands in for a failed source.
func (s Section) Failed() bool {
	return s.Placeholder != ""
}

// Page is one rendered document: main column, sidebar and the run timestamp.
type Page struct {
	ID          string
	Title       string
	NavLabel    string
	Output      string
	Main        []Section
	Sidebar     []Section
	GeneratedAt time.Time
}
