// Package web holds the page templates and static assets of the public
// site and exposes them to fiber as a Views engine.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"
	"sync"
	"time"

	"legalpub/internal/catalog"
	"legalpub/internal/model"
	"legalpub/internal/site"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page names accepted by Engine.Render.
const (
	PageHome     = "home"
	PageArchive  = "archive"
	PageDocument = "document"
	PageAbout    = "about"
	PageTerms    = "terms"
	PageNotFound = "not_found"
)

var pages = []string{PageHome, PageArchive, PageDocument, PageAbout, PageTerms, PageNotFound}

// Head is the metadata every page carries into the layout.
type Head struct {
	SiteName    string
	Title       string
	Description string
	Canonical   string
	// OG is set on document pages only.
	OG     *site.Meta
	JSONLD template.JS
	// Markdown is the alternate representation link, if any.
	Markdown string
}

// HomeData feeds the home page.
type HomeData struct {
	Head
	Documents []model.DocumentSummary
}

// ArchiveData feeds the archive page.
type ArchiveData struct {
	Head
	Documents []model.DocumentSummary
	Types     []model.DocumentType
	Query     catalog.Query
	Total     int
}

// Filtered reports whether the listing is narrowed by search or type.
func (d ArchiveData) Filtered() bool {
	return d.Query.Text != "" || d.Query.Type != ""
}

// DocumentData feeds the document page.
type DocumentData struct {
	Head
	Document *model.LegalDocument
	// Article is the materialized document body.
	Article      template.HTML
	ShowDownload bool
	Filename     string
	PDFURL       string
}

// StaticData feeds the about, terms and not-found pages.
type StaticData struct {
	Head
}

var funcs = template.FuncMap{
	"shortDate": func(t time.Time) string { return t.UTC().Format("Jan 2, 2006") },
	"longDate":  func(t time.Time) string { return t.UTC().Format("January 2, 2006") },
	"isoDate":   func(t time.Time) string { return t.UTC().Format("2006-01-02") },
	"firstLine": func(s string) string {
		first, _, _ := strings.Cut(s, "\n")
		return first
	},
	"headTags": func(tags []string) []string {
		if len(tags) > 3 {
			return tags[:3]
		}
		return tags
	},
	"moreTags": func(tags []string) int {
		if len(tags) > 3 {
			return len(tags) - 3
		}
		return 0
	},
	"plural": func(n int) string {
		if n == 1 {
			return ""
		}
		return "s"
	},
	"sortOptions": func() []sortOption {
		return []sortOption{
			{catalog.SortDateDesc, "Newest First"},
			{catalog.SortDateAsc, "Oldest First"},
			{catalog.SortTitleAsc, "Title A-Z"},
		}
	},
}

type sortOption struct {
	Value catalog.Sort
	Label string
}

// Engine implements fiber.Views over the embedded templates. Each page is
// parsed together with the shared layout into its own template set.
type Engine struct {
	mu   sync.RWMutex
	sets map[string]*template.Template
}

// NewEngine returns an engine; templates are parsed on Load.
func NewEngine() *Engine {
	return &Engine{}
}

// Load parses every page template.
func (e *Engine) Load() error {
	sets := make(map[string]*template.Template, len(pages))
	for _, name := range pages {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		sets[name] = t
	}
	e.mu.Lock()
	e.sets = sets
	e.mu.Unlock()
	return nil
}

// Render writes page name wrapped in the site layout. The layout argument
// is accepted for fiber compatibility and ignored.
func (e *Engine) Render(w io.Writer, name string, binding interface{}, _ ...string) error {
	e.mu.RLock()
	loaded := e.sets != nil
	e.mu.RUnlock()
	if !loaded {
		if err := e.Load(); err != nil {
			return err
		}
	}

	e.mu.RLock()
	t, ok := e.sets[name]
	e.mu.RUnlock()
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return t.ExecuteTemplate(w, "layout", binding)
}

// Static returns the asset tree served under /static.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
