package render

import (
	"fmt"
	"html/template"
	"strconv"

	"go.uber.org/zap"

	"lumierespirituelle.fr/storefront/internal/catalog"
	"lumierespirituelle.fr/storefront/internal/dom"
)

// Container ids used by the page shells.
const (
	FeaturedContainer  = "featuredProducts"
	CatalogueContainer = "catalogueProducts"
	RelatedContainer   = "relatedProducts"
)

// Stagger delays between card entrance animations.
const (
	FeaturedStaggerMillis  = 150
	CatalogueStaggerMillis = 100
)

// Catalog is the read side of the catalog store used by page renderers.
type Catalog interface {
	Products() []catalog.Product
	Featured() []catalog.Product
	Related(p catalog.Product, limit int) []catalog.Product
}

// RenderFeatured writes the featured cards into container, or the empty-state
// placeholder when no product is featured.
func (r *Renderer) RenderFeatured(doc *dom.Document, cat Catalog, container string) error {
	if !doc.Has(container) {
		r.logger.Debug("featured container missing", zap.String("id", container))
		return nil
	}
	featured := cat.Featured()
	if len(featured) == 0 {
		r.logger.Warn("no featured products")
		markup, err := r.Empty(r.T("featured.empty"))
		if err != nil {
			return err
		}
		doc.SetHTML(container, markup)
		return nil
	}
	return r.writeCards(doc, container, featured, FeaturedStaggerMillis)
}

// RenderCatalogue writes every product card into container.
func (r *Renderer) RenderCatalogue(doc *dom.Document, cat Catalog, container string) error {
	if !doc.Has(container) {
		r.logger.Debug("catalogue container missing", zap.String("id", container))
		return nil
	}
	return r.writeCards(doc, container, cat.Products(), CatalogueStaggerMillis)
}

func (r *Renderer) writeCards(doc *dom.Document, container string, products []catalog.Product, staggerMillis int) error {
	markup, err := r.Cards(products)
	if err != nil {
		return err
	}
	doc.SetHTML(container, markup)
	doc.EachAttr(container, ".product-card", "style", func(i int) string {
		return fmt.Sprintf("--stagger: %dms", i*staggerMillis)
	})
	return nil
}

// DetailTargets names the elements of the product detail page.
type DetailTargets struct {
	PageTitle   string
	Breadcrumb  string
	MainImage   string
	Thumbnails  string
	Title       string
	Subtitle    string
	Price       string
	Formats     string
	Category    string
	SKU         string
	ReleaseDate string
	Description string
	Includes    string
	Language    string
	Pages       string
	FileSize    string
	Delivery    string
	Author      string
	Related     string
}

// DefaultDetailTargets matches templates/product.tmpl.
var DefaultDetailTargets = DetailTargets{
	PageTitle:   "productPageTitle",
	Breadcrumb:  "breadcrumbProduct",
	MainImage:   "mainProductImage",
	Thumbnails:  "thumbnailImages",
	Title:       "productTitle",
	Subtitle:    "productSubtitle",
	Price:       "productPrice",
	Formats:     "productFormats",
	Category:    "productCategory",
	SKU:         "productSku",
	ReleaseDate: "productReleaseDate",
	Description: "productDescription",
	Includes:    "productIncludes",
	Language:    "productLanguage",
	Pages:       "productPages",
	FileSize:    "productFileSize",
	Delivery:    "productDelivery",
	Author:      "productAuthor",
	Related:     RelatedContainer,
}

// PageTitle returns "<product title> - <site name>".
func (r *Renderer) PageTitle(p catalog.Product) string {
	if r.siteName == "" {
		return p.Title
	}
	return p.Title + " - " + r.siteName
}

// RenderProductDetail fills every descriptive element of the detail page and
// renders up to relatedLimit related products.
func (r *Renderer) RenderProductDetail(doc *dom.Document, cat Catalog, p catalog.Product, t DetailTargets, relatedLimit int) error {
	title := r.PageTitle(p)
	doc.SetTitle(title)
	doc.SetText(t.PageTitle, title)
	doc.SetText(t.Breadcrumb, p.Title)

	doc.SetAttr(t.MainImage, "src", p.MainImage())
	doc.SetAttr(t.MainImage, "alt", p.Title)

	fragments := []struct {
		id     string
		render func() (template.HTML, error)
	}{
		{t.Thumbnails, func() (template.HTML, error) { return r.Thumbnails(p, 0) }},
		{t.Formats, func() (template.HTML, error) { return r.Formats(p) }},
		{t.Includes, func() (template.HTML, error) { return r.Includes(p) }},
	}
	for _, f := range fragments {
		if !doc.Has(f.id) {
			continue
		}
		markup, err := f.render()
		if err != nil {
			return err
		}
		doc.SetHTML(f.id, markup)
	}

	doc.SetText(t.Title, p.Title)
	doc.SetText(t.Subtitle, p.Subtitle)
	doc.SetText(t.Price, r.Price(p))
	doc.SetText(t.Category, p.Category)
	doc.SetText(t.SKU, p.SKU)
	doc.SetText(t.ReleaseDate, r.Date(p.ReleaseDate))
	doc.SetHTML(t.Description, r.Paragraphs(p.Body()))

	doc.SetText(t.Language, p.Language)
	doc.SetText(t.Pages, r.T("product.pages", strconv.Itoa(p.Pages)))
	doc.SetText(t.FileSize, p.FileSize)
	doc.SetText(t.Delivery, p.Delivery)
	doc.SetText(t.Author, p.Author)

	if !doc.Has(t.Related) {
		return nil
	}
	markup, err := r.Cards(cat.Related(p, relatedLimit))
	if err != nil {
		return err
	}
	doc.SetHTML(t.Related, markup)
	return nil
}

// SelectThumbnail swaps the main image to image index and marks exactly that
// thumbnail active. Out-of-range indexes are ignored.
func (r *Renderer) SelectThumbnail(doc *dom.Document, p catalog.Product, index int, t DetailTargets) bool {
	if index < 0 || index >= len(p.Images) {
		return false
	}
	doc.SetAttr(t.MainImage, "src", p.Images[index])
	doc.EachClass(t.Thumbnails, ".thumbnail", "active", func(i int) bool { return i == index })
	return true
}
