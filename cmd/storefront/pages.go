package main

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"time"

	"go.uber.org/zap"

	"lumierespirituelle.fr/storefront/internal/dom"
	"lumierespirituelle.fr/storefront/internal/nav"
	"lumierespirituelle.fr/storefront/internal/seo"
)

// Page shells. Each is parsed together with the layout and the modal.
const (
	pageHome      = "home.tmpl"
	pageCatalogue = "catalogue.tmpl"
	pageProduct   = "product.tmpl"
	// pageModal renders only the modal, for event responses.
	pageModal = "modal_page.tmpl"

	layoutFile = "layout.tmpl"
	modalFile  = "modal.tmpl"
)

var allPages = []string{pageHome, pageCatalogue, pageProduct, pageModal}

// pageData is the view model shared by every shell.
type pageData struct {
	Lang        string
	SiteName    string
	SEO         seo.Meta
	CSRFToken   string
	Nav         []nav.RenderedItem
	Breadcrumbs []nav.Crumb
	Year        int
	ProductID   int
}

type translator interface {
	T(key string, args ...any) string
}

// pageSet parses page shells once, or on every render in dev mode.
type pageSet struct {
	fsys  fs.FS
	funcs template.FuncMap
	dev   bool
	cache map[string]*template.Template
}

func newPageSet(fsys fs.FS, msgs translator, dev bool) (*pageSet, error) {
	ps := &pageSet{
		fsys: fsys,
		funcs: template.FuncMap{
			"t": msgs.T,
		},
		dev:   dev,
		cache: make(map[string]*template.Template, len(allPages)),
	}
	for _, name := range allPages {
		t, err := ps.parse(name)
		if err != nil {
			return nil, err
		}
		ps.cache[name] = t
	}
	return ps, nil
}

func (ps *pageSet) parse(name string) (*template.Template, error) {
	files := []string{layoutFile, modalFile, name}
	if name == pageModal {
		files = []string{modalFile, name}
	}
	t, err := template.New(name).Funcs(ps.funcs).ParseFS(ps.fsys, files...)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return t, nil
}

func (ps *pageSet) get(name string) (*template.Template, error) {
	if ps.dev {
		return ps.parse(name)
	}
	t, ok := ps.cache[name]
	if !ok {
		return nil, fmt.Errorf("unknown page %q", name)
	}
	return t, nil
}

// document executes the shell and parses the result into a Document whose
// containers the renderers fill.
func (ps *pageSet) document(name string, data pageData, logger *zap.Logger) (*dom.Document, error) {
	t, err := ps.get(name)
	if err != nil {
		return nil, err
	}
	if data.Year == 0 {
		data.Year = time.Now().Year()
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		return nil, fmt.Errorf("execute %s: %w", name, err)
	}
	return dom.Parse(&buf, logger)
}
