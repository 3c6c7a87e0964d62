package handler

import (
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin/render"
)

// templateRenderer implements gin's render.HTMLRender over a map of
// layout+page template pairs. Every page template is parsed together
// with layout.html and rendered through the "layout" root so the shared
// chrome wraps each page.
type templateRenderer struct {
	templates map[string]*template.Template
}

func newTemplateRenderer(templateDir string) (*templateRenderer, error) {
	layout := filepath.Join(templateDir, "layout.html")
	pages, err := filepath.Glob(filepath.Join(templateDir, "*.html"))
	if err != nil {
		return nil, err
	}

	templates := map[string]*template.Template{}
	for _, page := range pages {
		if filepath.Base(page) == "layout.html" {
			continue
		}
		t, err := template.ParseFiles(layout, page)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(page), ".html")
		templates[name] = t
	}

	return &templateRenderer{templates: templates}, nil
}

func (r *templateRenderer) Instance(name string, data any) render.Render {
	t, ok := r.templates[name]
	if !ok {
		return &htmlPage{err: fmt.Errorf("template %q not found", name)}
	}
	return &htmlPage{tmpl: t, data: data}
}

type htmlPage struct {
	tmpl *template.Template
	data any
	err  error
}

func (p *htmlPage) Render(w http.ResponseWriter) error {
	if p.err != nil {
		return p.err
	}
	p.WriteContentType(w)
	return p.tmpl.ExecuteTemplate(w, "layout", p.data)
}

func (p *htmlPage) WriteContentType(w http.ResponseWriter) {
	header := w.Header()
	if len(header["Content-Type"]) == 0 {
		header["Content-Type"] = []string{"text/html; charset=utf-8"}
	}
}
