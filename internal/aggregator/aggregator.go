package aggregator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/daily-brief/internal/domain"
	"github.com/samvad-hq/daily-brief/internal/logger"
	"github.com/samvad-hq/daily-brief/pkg/sources"
	"golang.org/x/sync/errgroup"
)

// Fetch outcomes reported to the Observer.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Observer receives one observation per source fetch.
type Observer interface {
	ObserveFetch(sourceID, outcome string, elapsed time.Duration, items int)
}

// Options tunes the aggregation pass.
type Options struct {
	SummaryLength int
	Timeout       time.Duration
	Concurrency   int
	// Location anchors dates that arrive without a zone. Defaults to UTC.
	Location *time.Location
	Observer Observer
}

const defaultSummaryLength = 200

// Service performs all source fetches for one run and isolates their failures.
type Service struct {
	registry sources.FetcherRegistry
	log      logger.Logger
	opts     Options
	now      func() time.Time
}

// NewService wires an aggregator with the source fetcher registry.
func NewService(reg sources.FetcherRegistry, log logger.Logger, opts Options) *Service {
	if opts.SummaryLength <= 0 {
		opts.SummaryLength = defaultSummaryLength
	}
	if opts.Timeout <= 0 {
		opts.Timeout = sources.DefaultTimeout
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Service{
		registry: reg,
		log:      logger.Ensure(log),
		opts:     opts,
		now:      time.Now,
	}
}

// Run fetches every source once and returns their results in the order given. A failing source never
// fails the run; only a misconfigured service or an empty source list does.
func (s *Service) Run(ctx context.Context, srcs []sources.Source) (*Aggregation, error) {
	if s == nil || s.registry == nil {
		return nil, fmt.Errorf("aggregator service is not initialized")
	}
	if len(srcs) == 0 {
		return nil, fmt.Errorf("no sources configured for aggregation")
	}

	results := make([]Result, len(srcs))
	if s.opts.Concurrency == 1 {
		for i, src := range srcs {
			results[i] = s.runSource(ctx, src)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(s.opts.Concurrency)
		for i, src := range srcs {
			g.Go(func() error {
				results[i] = s.runSource(ctx, src)
				return nil
			})
		}
		_ = g.Wait()
	}

	agg := newAggregation(results)
	s.log.InfoObj("aggregation completed", "aggregation_result", map[string]any{
		"sources_count": len(results),
		"failed_count":  len(agg.Failed()),
	})
	return agg, nil
}

func (s *Service) runSource(ctx context.Context, src sources.Source) Result {
	start := s.now()

	fctx, cancel := context.WithTimeout(ctx, src.Timeout(s.opts.Timeout))
	defer cancel()

	items, err := s.fetchItems(fctx, src)
	elapsed := s.now().Sub(start)

	if err != nil {
		s.log.WarnObj("source fetch failed", "source_error", map[string]any{
			"source_id":  src.ID,
			"error":      err.Error(),
			"elapsed_ms": elapsed.Milliseconds(),
		})
		s.observe(src.ID, OutcomeFailure, elapsed, 0)
		return Result{
			Source:  src,
			Section: PlaceholderSection(src),
			Err:     err,
			Elapsed: elapsed,
		}
	}

	s.log.InfoObj("source fetch completed", "source_result", map[string]any{
		"source_id":       src.ID,
		"items_collected": len(items),
		"elapsed_ms":      elapsed.Milliseconds(),
	})
	s.observe(src.ID, OutcomeSuccess, elapsed, len(items))
	return Result{
		Source: src,
		Section: domain.Section{
			SourceID: src.ID,
			Header:   src.Name,
			Items:    items,
		},
		Elapsed: elapsed,
	}
}

// fetchItems is the failure boundary for a single source: it either returns every mapped item or an error.
func (s *Service) fetchItems(ctx context.Context, src sources.Source) (items []domain.Item, err error) {
	defer func() {
		if r := recover(); r != nil {
			items = nil
			err = fmt.Errorf("source %s panicked: %v", src.ID, r)
		}
	}()

	fetcher, err := s.registry.FetcherFor(src)
	if err != nil {
		return nil, fmt.Errorf("resolve fetcher for source %s: %w", src.ID, err)
	}

	records, err := fetcher.Fetch(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("fetch source %s: %w", src.ID, err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("fetch source %s: %w", src.ID, ctxErr)
	}

	limit := src.Limit
	if limit <= 0 {
		limit = sources.DefaultLimit
	}
	if len(records) > limit {
		records = records[:limit]
	}

	items = make([]domain.Item, 0, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}
		items = append(items, MapItem(rec, src.Fields, s.opts.SummaryLength, s.opts.Location))
	}
	return items, nil
}

func (s *Service) observe(sourceID, outcome string, elapsed time.Duration, items int) {
	if s.opts.Observer == nil {
		return
	}
	s.opts.Observer.ObserveFetch(sourceID, outcome, elapsed, items)
}

// PlaceholderSection is the section rendered for a source that failed.
func PlaceholderSection(src sources.Source) domain.Section {
	return domain.Section{
		SourceID:    src.ID,
		Header:      src.Name,
		Placeholder: fmt.Sprintf("Unable to load %s right now.", src.Name),
	}
}

// IsTimeout reports whether a source failed because its time budget ran out.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
