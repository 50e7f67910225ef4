// Package storefront bundles the page shells, message catalogs and static assets
// served by the storefront binary.
package storefront

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl locales/*.json public/assets
var assets embed.FS

// TemplatesFS exposes the page shell templates.
func TemplatesFS() (fs.FS, error) {
	return fs.Sub(assets, "templates")
}

// LocalesFS exposes the message catalogs keyed by language.
func LocalesFS() (fs.FS, error) {
	return fs.Sub(assets, "locales")
}

// PublicFS exposes static assets rooted at public/.
func PublicFS() (fs.FS, error) {
	return fs.Sub(assets, "public")
}
