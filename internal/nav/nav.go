// Package nav builds the storefront navigation bar and breadcrumbs.
package nav

import (
	"path"
	"strings"
)

// Item represents a top-level navigation item.
type Item struct {
	Path     string // e.g. "/catalogue"
	LabelKey string // i18n key, e.g. "nav.catalogue"
}

// RenderedItem is a view model for templates.
type RenderedItem struct {
	Href     string
	LabelKey string
	Active   bool
}

// Crumb represents a breadcrumb entry. If LabelKey is empty, use Label.
type Crumb struct {
	Href     string
	LabelKey string
	Label    string
	Active   bool
}

// Page paths.
const (
	HomePath      = "/"
	CataloguePath = "/catalogue"
	ProductPath   = "/produit"
)

// Main is the primary navigation definition.
var Main = []Item{
	{Path: HomePath, LabelKey: "nav.home"},
	{Path: CataloguePath, LabelKey: "nav.catalogue"},
}

// Canonical maps the legacy static file names onto page paths:
// "/index.html" is "/", "/catalogue.html" is "/catalogue" and so on.
func Canonical(p string) string {
	if p == "" {
		return HomePath
	}
	p = path.Clean("/" + p)
	switch p {
	case "/index.html":
		return HomePath
	}
	return strings.TrimSuffix(p, ".html")
}

// Build renders navigation items with active state given the current path.
// Product pages highlight the catalogue entry.
func Build(currentPath string) []RenderedItem {
	current := Canonical(currentPath)
	if current == ProductPath || strings.HasPrefix(current, ProductPath+"/") {
		current = CataloguePath
	}
	items := make([]RenderedItem, 0, len(Main))
	for _, it := range Main {
		items = append(items, RenderedItem{
			Href:     it.Path,
			LabelKey: it.LabelKey,
			Active:   isActive(it.Path, current),
		})
	}
	return items
}

func isActive(itemPath, currentPath string) bool {
	if itemPath == HomePath {
		return currentPath == HomePath
	}
	return currentPath == itemPath || strings.HasPrefix(currentPath, itemPath+"/")
}

// ProductBreadcrumbs returns Accueil / Catalogue / <title>, the product being
// the active leaf.
func ProductBreadcrumbs(title string) []Crumb {
	return []Crumb{
		{Href: HomePath, LabelKey: "nav.home"},
		{Href: CataloguePath, LabelKey: "nav.catalogue"},
		{Label: title, Active: true},
	}
}
