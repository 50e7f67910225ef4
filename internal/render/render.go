// Package render turns catalog products into markup: the product card, the
// carousel and detail-page fragments, and the page renderers that write them
// into a page's named containers.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/url"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/util"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"lumierespirituelle.fr/storefront/internal/catalog"
	"lumierespirituelle.fr/storefront/internal/format"
)

const fragmentsFile = "fragments.tmpl"

// Messages resolves user-facing copy.
type Messages interface {
	T(key string, args ...any) string
}

type keyMessages struct{}

func (keyMessages) T(key string, args ...any) string {
	if len(args) == 0 {
		return key
	}
	return fmt.Sprintf(key, args...)
}

// Options configures a Renderer.
type Options struct {
	Lang     language.Tag
	Messages Messages
	Logger   *zap.Logger
	SiteName string
	// Currency applies to products that do not name one.
	Currency string
	// ProductHref builds the detail page link for a slug.
	ProductHref func(slug string) string
	// GalleryHref builds the link that selects thumbnail index of a product.
	GalleryHref func(slug string, index int) string
	// Static renders plain links in place of controls that call the server:
	// the card preview opens the detail page and thumbnails open their image.
	Static bool
}

// Renderer produces markup for products. It holds no per-request state and is
// safe for concurrent use.
type Renderer struct {
	tmpl        *template.Template
	lang        language.Tag
	msgs        Messages
	logger      *zap.Logger
	siteName    string
	currency    string
	md          goldmark.Markdown
	policy      *bluemonday.Policy
	productHref func(string) string
	galleryHref func(string, int) string
	static      bool
}

// New parses the fragment templates from fsys.
func New(fsys fs.FS, opts Options) (*Renderer, error) {
	tmpl, err := template.ParseFS(fsys, fragmentsFile)
	if err != nil {
		return nil, fmt.Errorf("parse fragments: %w", err)
	}
	r := &Renderer{
		tmpl:        tmpl,
		lang:        opts.Lang,
		msgs:        opts.Messages,
		logger:      opts.Logger,
		siteName:    opts.SiteName,
		currency:    strings.ToUpper(strings.TrimSpace(opts.Currency)),
		md:          inlineMarkdown(),
		policy:      bluemonday.UGCPolicy(),
		productHref: opts.ProductHref,
		galleryHref: opts.GalleryHref,
		static:      opts.Static,
	}
	if r.lang == language.Und {
		r.lang = language.French
	}
	if r.msgs == nil {
		r.msgs = keyMessages{}
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.currency == "" {
		r.currency = catalog.DefaultCurrency
	}
	if r.productHref == nil {
		r.productHref = DefaultProductHref
	}
	if r.galleryHref == nil {
		r.galleryHref = DefaultGalleryHref
	}
	return r, nil
}

// DefaultProductHref links to the detail page by slug query parameter.
func DefaultProductHref(slug string) string {
	return "/produit?slug=" + url.QueryEscape(slug)
}

// DefaultGalleryHref links to the gallery fragment for thumbnail index.
func DefaultGalleryHref(slug string, index int) string {
	q := url.Values{}
	q.Set("slug", slug)
	q.Set("i", strconv.Itoa(index))
	return "/produit/gallery?" + q.Encode()
}

// ProductHref returns the detail page link for p.
func (r *Renderer) ProductHref(p catalog.Product) string {
	return r.productHref(p.Slug)
}

// T resolves user-facing copy.
func (r *Renderer) T(key string, args ...any) string {
	return r.msgs.T(key, args...)
}

// Currency returns the ISO code the price of p is expressed in.
func (r *Renderer) Currency(p catalog.Product) string {
	if strings.TrimSpace(p.Currency) == "" {
		return r.currency
	}
	return p.CurrencyCode()
}

// Price formats the product price for the renderer locale.
func (r *Renderer) Price(p catalog.Product) string {
	return format.Price(p.Price, r.Currency(p), r.lang)
}

// Date formats a release date for the renderer locale.
func (r *Renderer) Date(s string) string {
	out := format.Date(s, r.lang)
	if out == format.InvalidDate {
		r.logger.Debug("unparsable date", zap.String("value", s))
	}
	return out
}

// Description resolves the card/modal description, translating the
// placeholder used when a product has none.
func (r *Renderer) Description(p catalog.Product) string {
	d := p.Summary()
	if d == catalog.MissingDescription {
		return r.T("product.description.missing")
	}
	return d
}

func (r *Renderer) exec(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

type cardData struct {
	ID           int
	Image        string
	Title        string
	Subtitle     string
	Price        string
	Formats      []string
	Description  string
	PreviewLabel string
	Href         string
	Static       bool
}

// Card renders the compact summary of one product. The output depends only
// on p and the renderer configuration.
func (r *Renderer) Card(p catalog.Product) (template.HTML, error) {
	return r.exec("card", cardData{
		ID:           p.ID,
		Image:        p.MainImage(),
		Title:        p.Title,
		Subtitle:     p.Subtitle,
		Price:        r.Price(p),
		Formats:      p.Formats,
		Description:  r.Description(p),
		PreviewLabel: r.T("card.preview"),
		Href:         r.productHref(p.Slug),
		Static:       r.static,
	})
}

// Cards renders and concatenates the cards of products.
func (r *Renderer) Cards(products []catalog.Product) (template.HTML, error) {
	var b strings.Builder
	for _, p := range products {
		card, err := r.Card(p)
		if err != nil {
			return "", err
		}
		b.WriteString(string(card))
	}
	return template.HTML(b.String()), nil
}

// Formats renders one tag per format.
func (r *Renderer) Formats(p catalog.Product) (template.HTML, error) {
	return r.exec("formats", p.Formats)
}

// Includes renders one list item per included item.
func (r *Renderer) Includes(p catalog.Product) (template.HTML, error) {
	return r.exec("includes", p.Includes)
}

// Slides renders one carousel slide per image.
func (r *Renderer) Slides(p catalog.Product) (template.HTML, error) {
	return r.exec("slides", struct {
		Images []string
		Alt    string
	}{p.Images, r.T("carousel.image_alt")})
}

type indicator struct {
	Index  int
	Active bool
}

// Indicators renders count carousel indicators with active highlighted.
func (r *Renderer) Indicators(count, active int) (template.HTML, error) {
	items := make([]indicator, count)
	for i := range items {
		items[i] = indicator{Index: i, Active: i == active}
	}
	return r.exec("indicators", items)
}

type thumbnail struct {
	Index  int
	Image  string
	Href   string
	Active bool
}

// Thumbnails renders the detail-page thumbnail strip with active highlighted.
func (r *Renderer) Thumbnails(p catalog.Product, active int) (template.HTML, error) {
	items := make([]thumbnail, len(p.Images))
	for i, img := range p.Images {
		items[i] = thumbnail{Index: i, Image: img, Href: r.galleryHref(p.Slug, i), Active: i == active}
	}
	return r.exec("thumbnails", struct {
		Items  []thumbnail
		Alt    string
		Static bool
	}{items, p.Title, r.static})
}

// Empty renders the empty-state placeholder with msg.
func (r *Renderer) Empty(msg string) (template.HTML, error) {
	return r.exec("empty", msg)
}

// Notice renders a status paragraph with the given element id.
func (r *Renderer) Notice(id, msg string) (template.HTML, error) {
	return r.exec("notice", struct{ ID, Message string }{id, msg})
}

// inlineMarkdown parses every input as a single paragraph: list, heading,
// quote and code block markers stay literal text, only inline emphasis, code
// spans and links are interpreted.
func inlineMarkdown() goldmark.Markdown {
	return goldmark.New(goldmark.WithParser(parser.NewParser(
		parser.WithBlockParsers(util.Prioritized(parser.NewParagraphParser(), 1000)),
		parser.WithInlineParsers(parser.DefaultInlineParsers()...),
	)))
}

// Paragraphs renders text as one <p> per line. Each line is read as inline
// markdown and the result is sanitized; blank lines become empty paragraphs.
func (r *Renderer) Paragraphs(text string) template.HTML {
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimRight(line, "\r"))
		if line == "" {
			b.WriteString("<p></p>")
			continue
		}
		var buf bytes.Buffer
		if err := r.md.Convert([]byte(line), &buf); err != nil {
			r.logger.Debug("markdown conversion failed", zap.Error(err))
			buf.Reset()
		}
		out := strings.TrimSpace(r.policy.Sanitize(buf.String()))
		if !strings.HasPrefix(out, "<p>") || !strings.HasSuffix(out, "</p>") || strings.Count(out, "<p>") != 1 {
			out = "<p>" + template.HTMLEscapeString(line) + "</p>"
		}
		b.WriteString(out)
	}
	return template.HTML(b.String())
}
