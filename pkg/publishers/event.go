package publishers

import (
	"time"
)

// PageEvent announces one written page to downstream sinks.
type PageEvent struct {
	RunID         string    `json:"run_id"`
	PageID        string    `json:"page_id"`
	Title         string    `json:"title"`
	OutputPath    string    `json:"output_path"`
	Sections      []string  `json:"sections"`
	FailedSources []string  `json:"failed_sources"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// attributes are the routing keys carried next to the payload by queue and topic sinks.
func (e PageEvent) attributes() map[string]string {
	return map[string]string{
		"run_id":  e.RunID,
		"page_id": e.PageID,
	}
}
