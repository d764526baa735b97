package aggregator

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/samvad-hq/daily-brief/internal/domain"
	"github.com/samvad-hq/daily-brief/pkg/sources"
)

// MapItem maps a raw record through the source's field keys. Absent or blank fields take the
// domain defaults; the summary is cleaned and truncated to summaryLen runes. Dates without a zone
// are read as wall time in loc.
func MapItem(rec sources.Record, fields sources.Fields, summaryLen int, loc *time.Location) domain.Item {
	item := domain.Item{
		Title:   domain.DefaultTitle,
		Summary: domain.DefaultSummary,
		Link:    domain.DefaultLink,
	}

	if v, ok := rec.Value(fields.Title); ok {
		if title := CleanText(v); title != "" {
			item.Title = title
		}
	}
	if v, ok := rec.Value(fields.Summary); ok {
		if summary := CleanText(v); summary != "" {
			item.Summary = summary
		}
	}
	item.Summary = Truncate(item.Summary, summaryLen)

	if v, ok := rec.Value(fields.Link); ok {
		if link, ok := safeLink(v); ok {
			item.Link = link
		}
	}
	if v, ok := rec.Value(fields.Date); ok {
		item.Date = parseDate(v, loc)
	}
	return item
}

// safeLink accepts absolute http(s) URLs only.
func safeLink(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return raw, true
	default:
		return "", false
	}
}

// Layouts that carry their own offset or zone name.
var zonedLayouts = []string{
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
}

// Layouts without zone information, such as Open-Meteo times and TheSportsDB event dates.
var wallLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseDate understands the date shapes the configured APIs emit, including unix seconds.
func parseDate(raw string, loc *time.Location) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}
	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil && secs > 0 {
		t := time.Unix(secs, 0).UTC()
		return &t
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	for _, layout := range wallLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return &t
		}
	}
	return nil
}
