package render

import (
	"bytes"
	"fmt"
	"html/template"
	"path"
	"path/filepath"
	"time"

	"github.com/samvad-hq/daily-brief/internal/domain"
)

const (
	// Ellipsis is appended to every rendered summary.
	Ellipsis = "..."

	DateLayout      = "Monday, January 02, 2006"
	TimestampLayout = "2006-01-02 15:04 MST"
	itemDateLayout  = "Jan 2, 2006"
)

// NavLink is one entry of the page navigation.
type NavLink struct {
	Label  string
	Href   string
	Active bool
}

// Options configures the fixed parts of every document.
type Options struct {
	SiteTitle  string
	FooterNote string
	Location   *time.Location
}

// Renderer turns pages into complete HTML documents.
type Renderer struct {
	tmpl *template.Template
	opts Options
}

// NewRenderer builds a renderer on the embedded page template.
func NewRenderer(opts Options) *Renderer {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.SiteTitle == "" {
		opts.SiteTitle = "The Daily Brief"
	}
	return &Renderer{tmpl: PageTemplate, opts: opts}
}

type itemView struct {
	Title   string
	Summary string
	Link    string
	Date    string
}

type sectionView struct {
	ID          string
	Header      string
	Placeholder string
	Items       []itemView
	Ellipsis    string
}

type pageView struct {
	DocumentTitle string
	Heading       string
	DateString    string
	Timestamp     string
	FooterNote    string
	Nav           []NavLink
	Main          []template.HTML
	Sidebar       []template.HTML
}

// Render produces the full document for page. pages is the complete page list, used for navigation with
// page marked active.
func (r *Renderer) Render(page domain.Page, pages []domain.Page) ([]byte, error) {
	main, err := r.fragments("section", page.Main)
	if err != nil {
		return nil, err
	}
	sidebar, err := r.fragments("sidebar", page.Sidebar)
	if err != nil {
		return nil, err
	}

	generated := page.GeneratedAt.In(r.opts.Location)
	view := pageView{
		DocumentTitle: r.documentTitle(page),
		Heading:       r.heading(page),
		DateString:    generated.Format(DateLayout),
		Timestamp:     generated.Format(TimestampLayout),
		FooterNote:    r.opts.FooterNote,
		Nav:           Navigation(page, pages),
		Main:          main,
		Sidebar:       sidebar,
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "page", view); err != nil {
		return nil, fmt.Errorf("render page %s: %w", page.ID, err)
	}
	return buf.Bytes(), nil
}

// RenderSection renders the main-column fragment for one section.
func (r *Renderer) RenderSection(sec domain.Section) (template.HTML, error) {
	return r.fragment("section", sec)
}

// RenderSidebarSection renders the compact sidebar fragment for one section.
func (r *Renderer) RenderSidebarSection(sec domain.Section) (template.HTML, error) {
	return r.fragment("sidebar", sec)
}

func (r *Renderer) fragments(name string, secs []domain.Section) ([]template.HTML, error) {
	out := make([]template.HTML, 0, len(secs))
	for _, sec := range secs {
		frag, err := r.fragment(name, sec)
		if err != nil {
			return nil, err
		}
		out = append(out, frag)
	}
	return out, nil
}

func (r *Renderer) fragment(name string, sec domain.Section) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, r.sectionView(sec)); err != nil {
		return "", fmt.Errorf("render section %s: %w", sec.SourceID, err)
	}
	// the buffer holds output of html/template, so it is already escaped
	return template.HTML(buf.String()), nil
}

func (r *Renderer) sectionView(sec domain.Section) sectionView {
	view := sectionView{
		ID:          sec.SourceID,
		Header:      sec.Header,
		Placeholder: sec.Placeholder,
		Ellipsis:    Ellipsis,
	}
	if sec.Failed() {
		return view
	}
	view.Items = make([]itemView, 0, len(sec.Items))
	for _, it := range sec.Items {
		iv := itemView{Title: it.Title, Summary: it.Summary, Link: it.Link}
		if it.Date != nil {
			iv.Date = it.Date.In(r.opts.Location).Format(itemDateLayout)
		}
		view.Items = append(view.Items, iv)
	}
	return view
}

func (r *Renderer) heading(page domain.Page) string {
	if page.Title != "" {
		return page.Title
	}
	return r.opts.SiteTitle
}

func (r *Renderer) documentTitle(page domain.Page) string {
	if page.Title == "" || page.Title == r.opts.SiteTitle {
		return r.opts.SiteTitle
	}
	return page.Title + " · " + r.opts.SiteTitle
}

// Navigation builds the nav entries for current, with hrefs relative to current's output file.
func Navigation(current domain.Page, pages []domain.Page) []NavLink {
	base := path.Dir(filepath.ToSlash(current.Output))
	links := make([]NavLink, 0, len(pages))
	for _, p := range pages {
		label := p.NavLabel
		if label == "" {
			label = p.ID
		}
		links = append(links, NavLink{
			Label:  label,
			Href:   relativeHref(base, filepath.ToSlash(p.Output)),
			Active: p.ID == current.ID,
		})
	}
	return links
}

func relativeHref(base, target string) string {
	if base == "." || base == "" {
		return target
	}
	// walk up from base to the output root, then down to target
	up := ""
	for dir := base; dir != "." && dir != "/" && dir != ""; dir = path.Dir(dir) {
		up += "../"
	}
	return up + target
}
