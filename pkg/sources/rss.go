package sources

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// rssFetcher implements Fetcher for RSS and Atom feeds.
type rssFetcher struct {
	client HTTPClient
	creds  Credentials
	parser *gofeed.Parser
}

// NewRSSFetcher builds a fetcher for RSS/Atom feeds (e.g. BBC World).
func NewRSSFetcher(client HTTPClient, creds Credentials) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &rssFetcher{
		client: client,
		creds:  creds,
		parser: gofeed.NewParser(),
	}
}

func (f *rssFetcher) ID() string {
	return TypeRSS
}

func (f *rssFetcher) Fetch(ctx context.Context, src Source) ([]Record, error) {
	raw, err := download(ctx, f.client, src, f.creds)
	if err != nil {
		return nil, err
	}

	feed, err := f.parser.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse %s feed: %w", src.ID, err)
	}

	records := make([]Record, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		records = append(records, normalizeFeedItem(item))
	}
	return records, nil
}

// normalizeFeedItem maps a gofeed item onto the fixed record keys. Missing values are left out so the
// item mapping falls back to its defaults.
func normalizeFeedItem(item *gofeed.Item) MapRecord {
	rec := MapRecord{}
	if item.Title != "" {
		rec[FieldTitle] = item.Title
	}
	if summary := coalesce(item.Description, item.Content); summary != "" {
		rec[FieldSummary] = summary
	}
	if link := coalesce(item.Link, linkFromGUID(item.GUID)); link != "" {
		rec[FieldLink] = link
	}
	if ts := coalesceTime(item.PublishedParsed, item.UpdatedParsed); ts != nil {
		rec[FieldDate] = ts.UTC().Format(time.RFC3339)
	}
	return rec
}

func linkFromGUID(guid string) string {
	if strings.HasPrefix(guid, "http://") || strings.HasPrefix(guid, "https://") {
		return guid
	}
	return ""
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func coalesceTime(values ...*time.Time) *time.Time {
	for _, v := range values {
		if v != nil && !v.IsZero() {
			return v
		}
	}
	return nil
}
