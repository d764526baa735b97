package sources

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/samvad-hq/daily-brief/pkg/configfile"
)

// Package sources contains the source descriptors (YAML/JSON), the page layout they feed, and the fetchers
// that turn a descriptor into raw records.

const (
	TypeJSON    = "json"
	TypeRSS     = "rss"
	TypeWeather = "weather"
	TypeScores  = "scores"

	DefaultLimit     = 3
	defaultAuthParam = "api-key"
)

// Fields names the record keys a source maps onto a news item.
type Fields struct {
	Title   string `json:"title" yaml:"title"`
	Summary string `json:"summary" yaml:"summary"`
	Link    string `json:"link" yaml:"link"`
	Date    string `json:"date" yaml:"date"`
}

// Source describes one external feed or API and how its records map to news items.
type Source struct {
	ID        string         `json:"id" yaml:"id"`
	Name      string         `json:"name" yaml:"name"`
	Type      string         `json:"type" yaml:"type"`
	SourceURL string         `json:"source_url" yaml:"source_url"`
	Auth      string         `json:"auth" yaml:"auth"`
	AuthParam string         `json:"auth_param" yaml:"auth_param"`
	ItemsPath string         `json:"items_path" yaml:"items_path"`
	Fields    Fields         `json:"fields" yaml:"fields"`
	Limit     int            `json:"limit" yaml:"limit"`
	TimeoutMs int            `json:"timeout_ms" yaml:"timeout_ms"`
	Config    map[string]any `json:"config" yaml:"config"`
}

// PageSpec declares one output document and the sources feeding its main column.
type PageSpec struct {
	ID       string   `json:"id" yaml:"id"`
	Title    string   `json:"title" yaml:"title"`
	NavLabel string   `json:"nav_label" yaml:"nav_label"`
	Output   string   `json:"output" yaml:"output"`
	Sections []string `json:"sections" yaml:"sections"`
}

// Layout is the ordered page list plus the sidebar shared by every page.
type Layout struct {
	Pages   []PageSpec
	Sidebar []string
}

type fileFormat struct {
	Sources []Source   `json:"sources" yaml:"sources"`
	Pages   []PageSpec `json:"pages" yaml:"pages"`
	Sidebar []string   `json:"sidebar" yaml:"sidebar"`
}

// Registry is the immutable set of sources and the layout loaded for one run.
type Registry struct {
	sources []Source
	idx     map[string]Source
	layout  Layout
}

// LoadRegistry loads the sources registry from a YAML or JSON file.
func LoadRegistry(path string) (*Registry, error) {
	var parsed fileFormat
	if err := configfile.Decode(path, &parsed); err != nil {
		return nil, fmt.Errorf("load sources file: %w", err)
	}
	return NewRegistry(parsed.Sources, Layout{Pages: parsed.Pages, Sidebar: parsed.Sidebar})
}

// NewRegistry validates sources and layout and builds a Registry.
// An empty page list yields a single "index" page holding every non-sidebar source in order.
func NewRegistry(srcs []Source, layout Layout) (*Registry, error) {
	if len(srcs) == 0 {
		return nil, errors.New("sources file contains no sources entries")
	}

	reg := &Registry{
		sources: make([]Source, len(srcs)),
		idx:     make(map[string]Source, len(srcs)),
	}
	for i := range srcs {
		s := sanitizeSource(srcs[i])
		if err := validateSource(s); err != nil {
			return nil, fmt.Errorf("sources[%d]: %w", i, err)
		}
		if _, exists := reg.idx[s.ID]; exists {
			return nil, fmt.Errorf("duplicate source id %q", s.ID)
		}
		reg.sources[i] = s
		reg.idx[s.ID] = s
	}

	l, err := reg.buildLayout(layout)
	if err != nil {
		return nil, err
	}
	reg.layout = l
	return reg, nil
}

func sanitizeSource(s Source) Source {
	s.ID = strings.TrimSpace(s.ID)
	s.Name = strings.TrimSpace(s.Name)
	s.Type = strings.ToLower(strings.TrimSpace(s.Type))
	s.SourceURL = strings.TrimSpace(s.SourceURL)
	s.Auth = strings.ToLower(strings.TrimSpace(s.Auth))
	s.AuthParam = strings.TrimSpace(s.AuthParam)
	s.ItemsPath = strings.TrimSpace(s.ItemsPath)

	if s.Auth != "" && s.AuthParam == "" {
		s.AuthParam = defaultAuthParam
	}
	if s.Limit <= 0 {
		s.Limit = DefaultLimit
	}
	if s.TimeoutMs < 0 {
		s.TimeoutMs = 0
	}
	if s.Config == nil {
		s.Config = map[string]any{}
	}
	s.Fields = withDefaultFields(s.Type, s.Fields)
	return s
}

func withDefaultFields(typ string, f Fields) Fields {
	f.Title = strings.TrimSpace(f.Title)
	f.Summary = strings.TrimSpace(f.Summary)
	f.Link = strings.TrimSpace(f.Link)
	f.Date = strings.TrimSpace(f.Date)

	if f.Title == "" {
		f.Title = FieldTitle
	}
	if f.Summary == "" {
		f.Summary = FieldSummary
	}
	if f.Link == "" {
		f.Link = FieldLink
	}
	// fetchers that build their own records always expose the date under FieldDate
	if f.Date == "" && typ != TypeJSON {
		f.Date = FieldDate
	}
	return f
}

func validateSource(s Source) error {
	if s.ID == "" {
		return errors.New("id is required")
	}
	if s.Name == "" {
		return fmt.Errorf("name is required for source %q", s.ID)
	}
	if s.Type == "" {
		return fmt.Errorf("type is required for source %q", s.ID)
	}
	if s.SourceURL == "" {
		return fmt.Errorf("source_url is required for source %q", s.ID)
	}
	return nil
}

func (r *Registry) buildLayout(in Layout) (Layout, error) {
	out := Layout{Sidebar: make([]string, 0, len(in.Sidebar))}

	inSidebar := make(map[string]bool, len(in.Sidebar))
	for _, id := range in.Sidebar {
		id = strings.TrimSpace(id)
		if _, ok := r.idx[id]; !ok {
			return Layout{}, fmt.Errorf("sidebar references unknown source %q", id)
		}
		inSidebar[id] = true
		out.Sidebar = append(out.Sidebar, id)
	}

	if len(in.Pages) == 0 {
		page := PageSpec{ID: "index", NavLabel: "Today", Output: "index.html"}
		for _, s := range r.sources {
			if !inSidebar[s.ID] {
				page.Sections = append(page.Sections, s.ID)
			}
		}
		out.Pages = []PageSpec{page}
		return out, nil
	}

	seenID := make(map[string]bool, len(in.Pages))
	seenOutput := make(map[string]bool, len(in.Pages))
	for i, p := range in.Pages {
		p.ID = strings.TrimSpace(p.ID)
		p.Title = strings.TrimSpace(p.Title)
		p.NavLabel = strings.TrimSpace(p.NavLabel)
		p.Output = strings.TrimSpace(p.Output)
		if p.ID == "" {
			return Layout{}, fmt.Errorf("pages[%d]: id is required", i)
		}
		if seenID[p.ID] {
			return Layout{}, fmt.Errorf("duplicate page id %q", p.ID)
		}
		if p.Output == "" {
			p.Output = p.ID + ".html"
		}
		if filepath.IsAbs(p.Output) || strings.Contains(filepath.ToSlash(p.Output), "..") {
			return Layout{}, fmt.Errorf("page %q output must be a relative path inside the output dir", p.ID)
		}
		if seenOutput[p.Output] {
			return Layout{}, fmt.Errorf("page %q reuses output %q", p.ID, p.Output)
		}
		if p.NavLabel == "" {
			p.NavLabel = p.ID
		}
		sections := make([]string, 0, len(p.Sections))
		for _, id := range p.Sections {
			id = strings.TrimSpace(id)
			if _, ok := r.idx[id]; !ok {
				return Layout{}, fmt.Errorf("page %q references unknown source %q", p.ID, id)
			}
			sections = append(sections, id)
		}
		p.Sections = sections
		seenID[p.ID] = true
		seenOutput[p.Output] = true
		out.Pages = append(out.Pages, p)
	}
	return out, nil
}

// All returns a copy of the sources in file order.
func (r *Registry) All() []Source {
	if r == nil {
		return nil
	}
	out := make([]Source, len(r.sources))
	copy(out, r.sources)
	return out
}

// ByID returns the source with the given id, if loaded.
func (r *Registry) ByID(id string) (Source, bool) {
	if r == nil {
		return Source{}, false
	}
	s, ok := r.idx[strings.TrimSpace(id)]
	return s, ok
}

// Layout returns the validated page layout.
func (r *Registry) Layout() Layout {
	if r == nil {
		return Layout{}
	}
	out := Layout{
		Pages:   make([]PageSpec, len(r.layout.Pages)),
		Sidebar: append([]string(nil), r.layout.Sidebar...),
	}
	for i, p := range r.layout.Pages {
		p.Sections = append([]string(nil), p.Sections...)
		out.Pages[i] = p
	}
	return out
}

// Referenced returns the sources used by at least one page or the sidebar, in file order.
func (r *Registry) Referenced() []Source {
	if r == nil {
		return nil
	}
	used := make(map[string]bool)
	for _, id := range r.layout.Sidebar {
		used[id] = true
	}
	for _, p := range r.layout.Pages {
		for _, id := range p.Sections {
			used[id] = true
		}
	}
	out := make([]Source, 0, len(used))
	for _, s := range r.sources {
		if used[s.ID] {
			out = append(out, s)
		}
	}
	return out
}

// Timeout returns the per-source request bound, falling back to def.
func (s Source) Timeout(def time.Duration) time.Duration {
	if s.TimeoutMs <= 0 {
		return def
	}
	return time.Duration(s.TimeoutMs) * time.Millisecond
}
