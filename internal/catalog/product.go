// Package catalog holds the product catalog: the Product model, the fail-soft
// loader for the catalog document and the read-only Store queried by renderers.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// DefaultCurrency applies when a product does not name one.
	DefaultCurrency = "EUR"
	// MissingDescription is shown when a product carries no description at all.
	MissingDescription = "Description non disponible"
)

// Product is one catalog entry. Products are immutable once loaded; callers
// must treat slices as read-only.
type Product struct {
	ID               int             `json:"id"`
	Slug             string          `json:"slug"`
	Title            string          `json:"title"`
	Subtitle         string          `json:"subtitle"`
	Category         string          `json:"category"`
	SKU              string          `json:"sku"`
	Author           string          `json:"author"`
	Language         string          `json:"language"`
	Delivery         string          `json:"delivery"`
	FileSize         string          `json:"file_size"`
	Price            decimal.Decimal `json:"price"`
	Currency         string          `json:"currency,omitempty"`
	ShortDescription string          `json:"short_description,omitempty"`
	LongDescription  string          `json:"long_description,omitempty"`
	Description      string          `json:"description,omitempty"`
	Formats          []string        `json:"formats"`
	Images           []string        `json:"images"`
	Includes         []string        `json:"includes"`
	Featured         bool            `json:"featured"`
	Pages            int             `json:"pages"`
	ReleaseDate      string          `json:"release_date"`
}

// CurrencyCode returns the ISO currency code, defaulting to EUR.
func (p Product) CurrencyCode() string {
	if c := strings.TrimSpace(p.Currency); c != "" {
		return strings.ToUpper(c)
	}
	return DefaultCurrency
}

// Summary returns the first non-empty of the short, long and plain
// descriptions, or MissingDescription. Whitespace counts as content.
func (p Product) Summary() string {
	for _, d := range []string{p.ShortDescription, p.LongDescription, p.Description} {
		if d != "" {
			return d
		}
	}
	return MissingDescription
}

// Body returns the long description used on the detail page, falling back to
// Summary when it is empty.
func (p Product) Body() string {
	if p.LongDescription != "" {
		return p.LongDescription
	}
	return p.Summary()
}

// MainImage returns the first image, or "" when the product has none.
func (p Product) MainImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

var (
	errMissingSlug   = errors.New("missing slug")
	errNoImages      = errors.New("images must not be empty")
	errNegativePrice = errors.New("price must not be negative")
)

// Validate checks the per-product invariants.
func (p Product) Validate() error {
	var errs []error
	if strings.TrimSpace(p.Slug) == "" {
		errs = append(errs, errMissingSlug)
	}
	if len(p.Images) == 0 {
		errs = append(errs, errNoImages)
	}
	if p.Price.IsNegative() {
		errs = append(errs, errNegativePrice)
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("product %d: %w", p.ID, errors.Join(errs...))
}
