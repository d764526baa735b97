package sources

import (
	"context"

	"github.com/samvad-hq/daily-brief/pkg/httpclient"
)

// Fetcher retrieves the raw records for a source. Concrete implementations live in type-specific files
// (json.go, rss.go, ...). A fetcher either returns records or an error, never both.
type Fetcher interface {
	ID() string
	Fetch(ctx context.Context, src Source) ([]Record, error)
}

// FetcherRegistry resolves the fetcher implementation for a given source.
type FetcherRegistry interface {
	FetcherFor(src Source) (Fetcher, error)
}

// HTTPClient aliases the shared httpclient.Client interface for clarity within sources.
type HTTPClient = httpclient.Client
