package sources

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"
)

// jsonFetcher implements Fetcher for JSON APIs whose records are located with a gjson path.
type jsonFetcher struct {
	client HTTPClient
	creds  Credentials
}

// NewJSONFetcher builds a fetcher for generic JSON article APIs (NYT, Finnhub, ...).
func NewJSONFetcher(client HTTPClient, creds Credentials) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &jsonFetcher{client: client, creds: creds}
}

func (f *jsonFetcher) ID() string {
	return TypeJSON
}

func (f *jsonFetcher) Fetch(ctx context.Context, src Source) ([]Record, error) {
	raw, err := download(ctx, f.client, src, f.creds)
	if err != nil {
		return nil, err
	}
	records, err := extractRecords(raw, src.ItemsPath)
	if err != nil {
		return nil, fmt.Errorf("decode %s response: %w", src.ID, err)
	}
	return records, nil
}

// extractRecords walks path (empty = document root). An array yields one record per object element;
// a single object yields one record.
func extractRecords(raw []byte, path string) ([]Record, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("invalid json: %s", responseSnippet(raw))
	}

	node := gjson.ParseBytes(raw)
	if path != "" {
		node = node.Get(path)
		if !node.Exists() {
			return nil, fmt.Errorf("items path %q not found", path)
		}
	}

	switch {
	case node.IsArray():
		elems := node.Array()
		records := make([]Record, 0, len(elems))
		for _, el := range elems {
			if el.IsObject() {
				records = append(records, jsonRecord{res: el})
			}
		}
		return records, nil
	case node.IsObject():
		return []Record{jsonRecord{res: node}}, nil
	default:
		return nil, fmt.Errorf("items path %q is neither an array nor an object", path)
	}
}
