// Package web holds the embedded HTML templates and the renderer used
// by the page handlers.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

// pages lists every renderable template file.
var pages = []string{
	"index",
	"login",
	"signup",
	"all-blogs",
	"blog-details",
}

// Renderer renders the embedded page templates.
type Renderer struct {
	templates map[string]*template.Template
}

// NewRenderer parses all embedded templates. Parsing happens once at
// startup so a broken template fails the boot, not a request.
func NewRenderer() (*Renderer, error) {
	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		t, err := template.ParseFS(templateFS, "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		templates[page] = t
	}
	return &Renderer{templates: templates}, nil
}

// Render writes the named page with the given data.
func (r *Renderer) Render(w io.Writer, name string, data any) error {
	t, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("unknown template: %s", name)
	}
	if err := t.Execute(w, data); err != nil {
		return fmt.Errorf("render template %s: %w", name, err)
	}
	return nil
}
