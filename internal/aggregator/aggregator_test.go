package aggregator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/samvad-hq/daily-brief/internal/domain"
	"github.com/samvad-hq/daily-brief/pkg/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher returns preset records, an error, blocks until the context ends, or panics.
type fakeFetcher struct {
	records []sources.Record
	err     error
	block   bool
	delay   time.Duration
	panics  bool
}

func (f *fakeFetcher) ID() string { return "fake" }

func (f *fakeFetcher) Fetch(ctx context.Context, _ sources.Source) ([]sources.Record, error) {
	if f.panics {
		panic("boom")
	}
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

// fakeRegistry maps source ids to fetchers.
type fakeRegistry map[string]sources.Fetcher

func (f fakeRegistry) FetcherFor(src sources.Source) (sources.Fetcher, error) {
	fetcher, ok := f[src.ID]
	if !ok {
		return nil, errors.New("missing fetcher")
	}
	return fetcher, nil
}

type fakeObserver struct {
	mu       sync.Mutex
	outcomes map[string]string
	items    map[string]int
}

func (o *fakeObserver) ObserveFetch(id, outcome string, _ time.Duration, items int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.outcomes == nil {
		o.outcomes = map[string]string{}
		o.items = map[string]int{}
	}
	o.outcomes[id] = outcome
	o.items[id] = items
}

func src(id string) sources.Source {
	return sources.Source{
		ID:     id,
		Name:   strings.ToUpper(id),
		Type:   sources.TypeJSON,
		Limit:  3,
		Fields: sources.Fields{Title: "title", Summary: "summary", Link: "link", Date: "date"},
	}
}

func recs(n int) []sources.Record {
	out := make([]sources.Record, n)
	for i := range out {
		out[i] = sources.MapRecord{
			"title":   fmt.Sprintf("Story %d", i+1),
			"summary": "Summary",
			"link":    fmt.Sprintf("https://news.example/%d", i+1),
		}
	}
	return out
}

func TestRunIsolatesTimedOutSource(t *testing.T) {
	obs := &fakeObserver{}
	svc := NewService(fakeRegistry{
		"a": &fakeFetcher{records: recs(3)},
		"b": &fakeFetcher{block: true},
	}, nil, Options{Timeout: 20 * time.Millisecond, Observer: obs})

	agg, err := svc.Run(context.Background(), []sources.Source{src("a"), src("b")})
	require.NoError(t, err)

	results := agg.Results()
	require.Len(t, results, 2)

	assert.True(t, results[0].OK())
	assert.Len(t, results[0].Section.Items, 3)
	assert.False(t, results[0].Section.Failed())

	assert.False(t, results[1].OK())
	assert.True(t, IsTimeout(results[1].Err))
	assert.Empty(t, results[1].Section.Items)
	assert.Equal(t, "Unable to load B right now.", results[1].Section.Placeholder)

	failed := agg.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "b", failed[0].Source.ID)

	assert.Equal(t, OutcomeSuccess, obs.outcomes["a"])
	assert.Equal(t, 3, obs.items["a"])
	assert.Equal(t, OutcomeFailure, obs.outcomes["b"])
}

func TestRunTurnsEveryFailureIntoPlaceholder(t *testing.T) {
	svc := NewService(fakeRegistry{
		"err":   &fakeFetcher{err: errors.New("status 500")},
		"panic": &fakeFetcher{panics: true},
	}, nil, Options{})

	agg, err := svc.Run(context.Background(), []sources.Source{src("err"), src("panic"), src("unregistered")})
	require.NoError(t, err)

	for _, r := range agg.Results() {
		assert.Error(t, r.Err, r.Source.ID)
		assert.True(t, r.Section.Failed(), r.Source.ID)
		assert.Empty(t, r.Section.Items, r.Source.ID)
		assert.Equal(t, r.Source.Name, r.Section.Header)
	}
}

func TestRunPreservesConfigurationOrderWhenParallel(t *testing.T) {
	reg := fakeRegistry{}
	var srcs []sources.Source
	for i := 0; i < 6; i++ {
		id := fmt.Sprintf("s%d", i)
		// earlier sources finish last
		reg[id] = &fakeFetcher{records: recs(1), delay: time.Duration(6-i) * 5 * time.Millisecond}
		srcs = append(srcs, src(id))
	}

	svc := NewService(reg, nil, Options{Concurrency: 6})
	agg, err := svc.Run(context.Background(), srcs)
	require.NoError(t, err)

	var got []string
	for _, r := range agg.Results() {
		got = append(got, r.Section.SourceID)
	}
	assert.Equal(t, []string{"s0", "s1", "s2", "s3", "s4", "s5"}, got)
}

func TestRunAppliesLimitAndDefaults(t *testing.T) {
	long := strings.Repeat("word ", 100)
	records := []sources.Record{
		sources.MapRecord{"summary": long},
		sources.MapRecord{"title": "Has title", "link": "javascript:alert(1)"},
		sources.MapRecord{"title": "<b>Bold</b> &amp; bright", "summary": "<p>Short</p>", "link": "https://x.example/a", "date": "2025-01-02"},
		sources.MapRecord{"title": "Beyond the limit"},
	}
	svc := NewService(fakeRegistry{"a": &fakeFetcher{records: records}}, nil, Options{SummaryLength: 50})

	agg, err := svc.Run(context.Background(), []sources.Source{src("a")})
	require.NoError(t, err)

	sec, ok := agg.Section("a")
	require.True(t, ok)
	require.Len(t, sec.Items, 3)

	first := sec.Items[0]
	assert.Equal(t, domain.DefaultTitle, first.Title)
	assert.Equal(t, domain.DefaultLink, first.Link)
	assert.LessOrEqual(t, len([]rune(first.Summary)), 50)

	second := sec.Items[1]
	assert.Equal(t, "Has title", second.Title)
	assert.Equal(t, domain.DefaultSummary, second.Summary)
	assert.Equal(t, domain.DefaultLink, second.Link)

	third := sec.Items[2]
	assert.Equal(t, "Bold & bright", third.Title)
	assert.Equal(t, "Short", third.Summary)
	assert.Equal(t, "https://x.example/a", third.Link)
	require.NotNil(t, third.Date)
	assert.Equal(t, 2025, third.Date.Year())
}

func TestRunRejectsEmptyInput(t *testing.T) {
	svc := NewService(fakeRegistry{}, nil, Options{})
	_, err := svc.Run(context.Background(), nil)
	assert.Error(t, err)

	var nilSvc *Service
	_, err = nilSvc.Run(context.Background(), []sources.Source{src("a")})
	assert.Error(t, err)
}

func TestRunWithCancelledContextFailsSources(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewService(fakeRegistry{"a": &fakeFetcher{block: true}}, nil, Options{})
	agg, err := svc.Run(ctx, []sources.Source{src("a")})
	require.NoError(t, err)
	assert.Len(t, agg.Failed(), 1)
}

func TestSectionsFollowRequestedOrder(t *testing.T) {
	svc := NewService(fakeRegistry{
		"a": &fakeFetcher{records: recs(1)},
		"b": &fakeFetcher{records: recs(2)},
	}, nil, Options{})
	agg, err := svc.Run(context.Background(), []sources.Source{src("a"), src("b")})
	require.NoError(t, err)

	secs := agg.Sections([]string{"b", "missing", "a"})
	require.Len(t, secs, 2)
	assert.Equal(t, "b", secs[0].SourceID)
	assert.Equal(t, "a", secs[1].SourceID)
}

func TestSourceTimeoutCanExceedDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
			return
		case <-time.After(300 * time.Millisecond):
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"title":"Slow but fine"}]`))
	}))
	defer srv.Close()

	fields := sources.Fields{Title: "title", Summary: "summary", Link: "link"}
	patient := sources.Source{ID: "patient", Name: "Patient", Type: sources.TypeJSON, SourceURL: srv.URL, TimeoutMs: 2000, Fields: fields}
	hasty := sources.Source{ID: "hasty", Name: "Hasty", Type: sources.TypeJSON, SourceURL: srv.URL, Fields: fields}

	reg := sources.DefaultFetcherRegistry(sources.DefaultHTTPClient(), nil)
	svc := NewService(reg, nil, Options{Timeout: 100 * time.Millisecond})

	agg, err := svc.Run(context.Background(), []sources.Source{patient, hasty})
	require.NoError(t, err)

	results := agg.Results()
	require.Len(t, results, 2)
	require.True(t, results[0].OK(), "patient source failed: %v", results[0].Err)
	require.Len(t, results[0].Section.Items, 1)
	assert.Equal(t, "Slow but fine", results[0].Section.Items[0].Title)

	assert.False(t, results[1].OK())
	assert.True(t, IsTimeout(results[1].Err), "expected deadline error, got %v", results[1].Err)
	assert.True(t, results[1].Section.Failed())
}
