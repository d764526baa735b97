package render

import (
	_ "embed"
	"html/template"
)

//go:embed page.html
var pageTemplateSource string

// PageTemplate holds the "page", "section" and "sidebar" templates.
var PageTemplate = template.Must(template.New("brief").Parse(pageTemplateSource))
