package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/daily-brief/internal/aggregator"
	"github.com/samvad-hq/daily-brief/internal/config"
	"github.com/samvad-hq/daily-brief/internal/domain"
	"github.com/samvad-hq/daily-brief/internal/logger"
	"github.com/samvad-hq/daily-brief/internal/metrics"
	"github.com/samvad-hq/daily-brief/internal/render"
	"github.com/samvad-hq/daily-brief/pkg/publishers"
	"github.com/samvad-hq/daily-brief/pkg/sources"
	"github.com/spf13/afero"
)

// Briefing is the one-shot runtime: fetch every referenced source once, render each page of the layout and
// write it under the output directory.
type Briefing struct {
	cfg        *config.Config
	sourceReg  *sources.Registry
	aggregator *aggregator.Service
	renderer   *render.Renderer
	writer     *render.Writer
	fanout     *publishers.Fanout
	metrics    *metrics.Recorder
	log        logger.Logger
	now        func() time.Time
}

// Option overrides a collaborator, mostly for tests.
type Option func(*options)

type options struct {
	fetchers   sources.FetcherRegistry
	fs         afero.Fs
	publishers []publishers.Publisher
	now        func() time.Time
}

// WithFetcherRegistry replaces the HTTP-backed fetchers.
func WithFetcherRegistry(reg sources.FetcherRegistry) Option {
	return func(o *options) { o.fetchers = reg }
}

// WithFs writes pages to fs instead of the OS filesystem.
func WithFs(afs afero.Fs) Option {
	return func(o *options) { o.fs = afs }
}

// WithPublishers uses pubs instead of the publishers file.
func WithPublishers(pubs ...publishers.Publisher) Option {
	return func(o *options) { o.publishers = pubs }
}

// WithClock sets the clock used for the page timestamp.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// NewBriefing builds a briefing runtime from config files.
func NewBriefing(ctx context.Context, cfg *config.Config, log logger.Logger, opts ...Option) (*Briefing, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)
	if ctx == nil {
		ctx = context.Background()
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	sourceReg, err := sources.LoadRegistry(cfg.SourcesFile)
	if err != nil {
		return nil, fmt.Errorf("load sources registry: %w", err)
	}
	layout := sourceReg.Layout()
	pageIDs := make([]string, 0, len(layout.Pages))
	for _, p := range layout.Pages {
		pageIDs = append(pageIDs, p.ID)
	}
	log.InfoObj("sources registry loaded", "sources_meta", map[string]any{
		"count":   len(sourceReg.All()),
		"pages":   pageIDs,
		"sidebar": layout.Sidebar,
	})

	fetchers := o.fetchers
	if fetchers == nil {
		fetchers = sources.DefaultFetcherRegistry(sources.DefaultHTTPClient(), cfg.APIKeys())
	}

	pubs := o.publishers
	if pubs == nil {
		pubs, err = loadPublishers(ctx, cfg.PublishersFile, log)
		if err != nil {
			return nil, err
		}
	}

	recorder := metrics.NewRecorder()
	agg := aggregator.NewService(fetchers, log, aggregator.Options{
		SummaryLength: cfg.SummaryLength,
		Timeout:       cfg.FetchTimeout,
		Concurrency:   cfg.FetchConcurrency,
		Location:      cfg.Location,
		Observer:      recorder,
	})

	now := o.now
	if now == nil {
		now = time.Now
	}

	return &Briefing{
		cfg:        cfg,
		sourceReg:  sourceReg,
		aggregator: agg,
		renderer: render.NewRenderer(render.Options{
			SiteTitle:  cfg.SiteTitle,
			FooterNote: cfg.FooterNote,
			Location:   cfg.Location,
		}),
		writer:  render.NewWriter(o.fs, cfg.OutputDir),
		fanout:  publishers.NewFanout(pubs),
		metrics: recorder,
		log:     log,
		now:     now,
	}, nil
}

// loadPublishers builds the enabled notification sinks. No file, or a file that does not exist, disables
// notifications.
func loadPublishers(ctx context.Context, path string, log logger.Logger) ([]publishers.Publisher, error) {
	log = logger.Ensure(log)
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}

	catalog, err := publishers.LoadCatalog(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.WarnObj("publishers file not found; notifications disabled", "publishers_file", path)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	enabled := catalog.Enabled()
	pubs, err := publishers.DefaultBuilders().BuildAll(ctx, enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	summaries := make([]map[string]string, 0, len(enabled))
	for _, c := range enabled {
		summaries = append(summaries, map[string]string{"id": c.ID, "type": c.Type})
	}
	log.InfoObj("publishers loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return pubs, nil
}

// Run performs one full pass. Source failures only degrade their section; the returned error joins every
// page that could not be rendered or written.
func (b *Briefing) Run(ctx context.Context) error {
	if b == nil || b.aggregator == nil {
		return fmt.Errorf("briefing is not initialized")
	}
	runID := uuid.NewString()
	start := b.now()
	b.log.InfoObj("briefing run started", "run_meta", map[string]any{
		"run_id":     runID,
		"started_at": start.UTC(),
	})

	agg, err := b.aggregator.Run(ctx, b.sourceReg.Referenced())
	if err != nil {
		return fmt.Errorf("aggregate sources: %w", err)
	}

	pages := b.pages(agg, b.now())

	var errs []error
	for _, page := range pages {
		path, err := b.writePage(page, pages)
		b.metrics.ObservePageWrite(page.ID, err)
		if err != nil {
			b.log.ErrorObj("page write failed", "page_error", map[string]any{
				"page_id": page.ID,
				"output":  page.Output,
				"error":   err.Error(),
			})
			errs = append(errs, err)
			continue
		}
		b.log.InfoObj("page written", "page_result", map[string]any{
			"page_id":  page.ID,
			"path":     path,
			"sections": len(page.Main) + len(page.Sidebar),
		})
		b.notify(ctx, newPageEvent(runID, page, path))
	}

	b.metrics.MarkRun(b.now())
	if err := b.metrics.WriteTextfile(b.cfg.MetricsFile); err != nil {
		b.log.WarnObj("metrics export failed", "metrics_error", err.Error())
	}

	b.log.InfoObj("briefing run completed", "run_meta", map[string]any{
		"run_id":         runID,
		"pages":          len(pages),
		"failed_pages":   len(errs),
		"failed_sources": len(agg.Failed()),
		"elapsed_ms":     b.now().Sub(start).Milliseconds(),
	})
	return errors.Join(errs...)
}

// Close releases publisher connections.
func (b *Briefing) Close() error {
	if b == nil {
		return nil
	}
	return b.fanout.Close()
}

// pages assembles one document per layout page; every page carries the same sidebar sections.
func (b *Briefing) pages(agg *aggregator.Aggregation, generated time.Time) []domain.Page {
	layout := b.sourceReg.Layout()
	sidebar := agg.Sections(layout.Sidebar)

	out := make([]domain.Page, 0, len(layout.Pages))
	for _, ps := range layout.Pages {
		out = append(out, domain.Page{
			ID:          ps.ID,
			Title:       ps.Title,
			NavLabel:    ps.NavLabel,
			Output:      ps.Output,
			Main:        agg.Sections(ps.Sections),
			Sidebar:     sidebar,
			GeneratedAt: generated,
		})
	}
	return out
}

func (b *Briefing) writePage(page domain.Page, pages []domain.Page) (string, error) {
	doc, err := b.renderer.Render(page, pages)
	if err != nil {
		return "", err
	}
	path, err := b.writer.Write(page.Output, doc)
	if err != nil {
		return "", fmt.Errorf("write page %s: %w", page.ID, err)
	}
	return path, nil
}

func (b *Briefing) notify(ctx context.Context, evt publishers.PageEvent) {
	if b.fanout.Size() == 0 {
		return
	}
	delivered, err := b.fanout.Publish(ctx, evt)
	if err != nil {
		b.log.WarnObj("page notification failed", "publish_error", map[string]any{
			"page_id":   evt.PageID,
			"delivered": delivered,
			"error":     err.Error(),
		})
		return
	}
	b.log.DebugObj("page notification delivered", "publish_result", map[string]any{
		"page_id":   evt.PageID,
		"delivered": delivered,
	})
}

func newPageEvent(runID string, page domain.Page, path string) publishers.PageEvent {
	evt := publishers.PageEvent{
		RunID:       runID,
		PageID:      page.ID,
		Title:       page.Title,
		OutputPath:  path,
		GeneratedAt: page.GeneratedAt.UTC(),
	}
	for _, group := range [][]domain.Section{page.Main, page.Sidebar} {
		for _, sec := range group {
			evt.Sections = append(evt.Sections, sec.SourceID)
			if sec.Failed() {
				evt.FailedSources = append(evt.FailedSources, sec.SourceID)
			}
		}
	}
	return evt
}
