package aggregator

import (
	"time"

	"github.com/samvad-hq/daily-brief/internal/domain"
	"github.com/samvad-hq/daily-brief/pkg/sources"
)

// Result is the outcome of one source fetch. Err is nil on success; on failure Section is the
// placeholder section for the source and carries no items.
type Result struct {
	Source  sources.Source
	Section domain.Section
	Err     error
	Elapsed time.Duration
}

// OK reports whether the source produced its items.
func (r Result) OK() bool {
	return r.Err == nil
}

// Aggregation holds one Result per requested source, in request order.
type Aggregation struct {
	results []Result
	byID    map[string]int
}

func newAggregation(results []Result) *Aggregation {
	idx := make(map[string]int, len(results))
	for i, r := range results {
		idx[r.Source.ID] = i
	}
	return &Aggregation{results: results, byID: idx}
}

// Results returns a copy of all results in request order.
func (a *Aggregation) Results() []Result {
	if a == nil {
		return nil
	}
	out := make([]Result, len(a.results))
	copy(out, a.results)
	return out
}

// Section returns the section produced for the source id.
func (a *Aggregation) Section(id string) (domain.Section, bool) {
	if a == nil {
		return domain.Section{}, false
	}
	i, ok := a.byID[id]
	if !ok {
		return domain.Section{}, false
	}
	return a.results[i].Section, true
}

// Sections returns the sections for ids in the order given, skipping ids that were not fetched.
func (a *Aggregation) Sections(ids []string) []domain.Section {
	out := make([]domain.Section, 0, len(ids))
	for _, id := range ids {
		if sec, ok := a.Section(id); ok {
			out = append(out, sec)
		}
	}
	return out
}

// Failed returns the results whose source failed.
func (a *Aggregation) Failed() []Result {
	if a == nil {
		return nil
	}
	var out []Result
	for _, r := range a.results {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}
