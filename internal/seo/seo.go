// Package seo holds page metadata and schema.org payloads.
package seo

import (
	"html/template"
	"strings"
)

// Meta is the head metadata of one page.
type Meta struct {
	Title       string
	Description string
	Canonical   string
	Image       string
	JSONLD      []template.JS
}

// Title joins a page title and the site name as "<page> - <site>".
func Title(page, site string) string {
	switch {
	case page == "":
		return site
	case site == "":
		return page
	}
	return page + " - " + site
}

// Absolute resolves p against baseURL. An empty baseURL leaves p unchanged.
func Absolute(baseURL, p string) string {
	if baseURL == "" || strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return p
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(p, "/")
}
