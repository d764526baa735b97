package sources

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/daily-brief/pkg/httpclient"
)

// DefaultTimeout bounds a source fetch unless the source or config says otherwise.
const DefaultTimeout = 10 * time.Second

// resolver picks a fetcher by source id first, then by source type. It is built once and never mutated.
type resolver struct {
	byID   map[string]Fetcher
	byType map[string]Fetcher
}

func lookupKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NewFetcherRegistry resolves sources by id only.
func NewFetcherRegistry(fetchers ...Fetcher) FetcherRegistry {
	return NewTypeFetcherRegistry(nil, fetchers...)
}

// NewTypeFetcherRegistry resolves sources by type, with overrides taking precedence for the source id
// each override reports.
func NewTypeFetcherRegistry(typeFetchers map[string]Fetcher, overrides ...Fetcher) FetcherRegistry {
	r := resolver{
		byID:   make(map[string]Fetcher, len(overrides)),
		byType: make(map[string]Fetcher, len(typeFetchers)),
	}
	for _, f := range overrides {
		if f == nil {
			continue
		}
		if k := lookupKey(f.ID()); k != "" {
			r.byID[k] = f
		}
	}
	for typ, f := range typeFetchers {
		if k := lookupKey(typ); k != "" && f != nil {
			r.byType[k] = f
		}
	}
	return r
}

// FetcherFor implements FetcherRegistry.
func (r resolver) FetcherFor(src Source) (Fetcher, error) {
	id := lookupKey(src.ID)
	if id == "" {
		return nil, errors.New("source id is empty")
	}
	if f, ok := r.byID[id]; ok {
		return f, nil
	}
	if f, ok := r.byType[lookupKey(src.Type)]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("no fetcher registered for source %q (type %q)", src.ID, src.Type)
}

// DefaultHTTPClient returns the resty-backed client shared by the fetchers. It carries no client-wide
// timeout; each fetch is bounded by its context, which holds the source's own limit.
func DefaultHTTPClient() HTTPClient {
	return httpclient.NewRestyClient(0)
}

// DefaultFetcherRegistry wires up the built-in fetchers for every source type.
func DefaultFetcherRegistry(client HTTPClient, creds Credentials) FetcherRegistry {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return NewTypeFetcherRegistry(map[string]Fetcher{
		TypeJSON:    NewJSONFetcher(client, creds),
		TypeRSS:     NewRSSFetcher(client, creds),
		TypeWeather: NewWeatherFetcher(client, creds),
		TypeScores:  NewScoresFetcher(client, creds),
	})
}
