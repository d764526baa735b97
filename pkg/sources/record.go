package sources

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Keys used by fetchers that build their own records (rss, weather, scores).
const (
	FieldTitle   = "title"
	FieldSummary = "summary"
	FieldLink    = "link"
	FieldDate    = "date"
)

// Record is one raw entry returned by a source before it is mapped to a news item.
// Value reports false when the key is absent or holds no usable text.
type Record interface {
	Value(key string) (string, bool)
}

// MapRecord is a Record backed by a plain map.
type MapRecord map[string]string

// Value implements Record.
func (m MapRecord) Value(key string) (string, bool) {
	v, ok := m[key]
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// jsonRecord resolves keys as gjson paths against a single JSON object.
type jsonRecord struct {
	res gjson.Result
}

func (r jsonRecord) Value(key string) (string, bool) {
	if key == "" {
		return "", false
	}
	v := r.res.Get(key)
	if !v.Exists() || v.Type == gjson.Null {
		return "", false
	}
	s := v.String()
	if strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}
