package sources

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// scoresFetcher implements Fetcher for TheSportsDB style event lists.
type scoresFetcher struct {
	client HTTPClient
	creds  Credentials
}

// NewScoresFetcher builds a fetcher for recent match results.
func NewScoresFetcher(client HTTPClient, creds Credentials) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &scoresFetcher{client: client, creds: creds}
}

func (f *scoresFetcher) ID() string {
	return TypeScores
}

// ConfigEventURLKey is a format string for event links, receiving the event id.
const ConfigEventURLKey = "event_url"

const defaultEventURL = "https://www.thesportsdb.com/event/%s"

func (f *scoresFetcher) Fetch(ctx context.Context, src Source) ([]Record, error) {
	raw, err := download(ctx, f.client, src, f.creds)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("decode %s response: invalid json: %s", src.ID, responseSnippet(raw))
	}

	path := src.ItemsPath
	if path == "" {
		path = "events"
	}
	events := gjson.GetBytes(raw, path)
	if !events.IsArray() {
		return nil, fmt.Errorf("decode %s response: %q is not a list", src.ID, path)
	}

	eventURL := ConfigString(src, ConfigEventURLKey, defaultEventURL)
	records := make([]Record, 0, len(events.Array()))
	for _, ev := range events.Array() {
		if !ev.IsObject() {
			continue
		}
		records = append(records, scoreRecord(ev, eventURL))
	}
	return records, nil
}

func scoreRecord(ev gjson.Result, eventURL string) MapRecord {
	home := strings.TrimSpace(ev.Get("strHomeTeam").String())
	away := strings.TrimSpace(ev.Get("strAwayTeam").String())

	rec := MapRecord{}
	title := strings.TrimSpace(ev.Get("strEvent").String())
	if title == "" && home != "" && away != "" {
		title = home + " vs " + away
	}
	if title != "" {
		rec[FieldTitle] = title
	}

	hs, as := ev.Get("intHomeScore"), ev.Get("intAwayScore")
	switch {
	case home == "" || away == "":
	case hs.Exists() && hs.Type != gjson.Null && as.Exists() && as.Type != gjson.Null:
		rec[FieldSummary] = fmt.Sprintf("%s %s – %s %s", home, hs.String(), as.String(), away)
	default:
		if status := strings.TrimSpace(ev.Get("strStatus").String()); status != "" {
			rec[FieldSummary] = fmt.Sprintf("%s vs %s (%s)", home, away, status)
		} else {
			rec[FieldSummary] = fmt.Sprintf("%s vs %s, not started", home, away)
		}
	}

	if id := strings.TrimSpace(ev.Get("idEvent").String()); id != "" {
		rec[FieldLink] = fmt.Sprintf(eventURL, id)
	}
	if date := strings.TrimSpace(ev.Get("dateEvent").String()); date != "" {
		rec[FieldDate] = date
	}
	return rec
}
