// Package dom wraps a parsed HTML page so renderers can write into named
// containers. Pages differ in which containers they carry, so every write
// checks for its target and skips silently when it is absent.
package dom

import (
	"bytes"
	"html/template"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Document is a mutable HTML page addressed by element id.
type Document struct {
	doc    *goquery.Document
	logger *zap.Logger
}

// Parse reads an HTML page.
func Parse(r io.Reader, logger *zap.Logger) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Document{doc: doc, logger: logger}, nil
}

// ParseString is Parse for in-memory markup.
func ParseString(s string, logger *zap.Logger) (*Document, error) {
	return Parse(strings.NewReader(s), logger)
}

func (d *Document) byID(id string) (*goquery.Selection, bool) {
	sel := d.doc.Find(`[id="` + id + `"]`).First()
	if sel.Length() == 0 {
		d.logger.Debug("dom target missing", zap.String("id", id))
		return sel, false
	}
	return sel, true
}

// Has reports whether an element with id exists.
func (d *Document) Has(id string) bool {
	return d.doc.Find(`[id="`+id+`"]`).Length() > 0
}

// Find exposes a raw selection for read-only inspection.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// SetHTML replaces the children of container id with markup. Repeated calls
// replace rather than append.
func (d *Document) SetHTML(id string, markup template.HTML) bool {
	sel, ok := d.byID(id)
	if !ok {
		return false
	}
	sel.SetHtml(string(markup))
	return true
}

// SetText replaces the children of id with escaped text.
func (d *Document) SetText(id, text string) bool {
	sel, ok := d.byID(id)
	if !ok {
		return false
	}
	sel.SetText(text)
	return true
}

// SetAttr sets attribute name on element id.
func (d *Document) SetAttr(id, name, value string) bool {
	sel, ok := d.byID(id)
	if !ok {
		return false
	}
	sel.SetAttr(name, value)
	return true
}

// RemoveAttr removes attribute name from element id.
func (d *Document) RemoveAttr(id, name string) bool {
	sel, ok := d.byID(id)
	if !ok {
		return false
	}
	sel.RemoveAttr(name)
	return true
}

// SetClass adds or removes class on element id.
func (d *Document) SetClass(id, class string, on bool) bool {
	sel, ok := d.byID(id)
	if !ok {
		return false
	}
	if on {
		sel.AddClass(class)
	} else {
		sel.RemoveClass(class)
	}
	return true
}

// EachClass toggles class on every element matching selector inside
// container id, based on its position. It returns the number of elements.
func (d *Document) EachClass(id, selector, class string, on func(i int) bool) int {
	sel, ok := d.byID(id)
	if !ok {
		return 0
	}
	items := sel.Find(selector)
	items.Each(func(i int, s *goquery.Selection) {
		if on(i) {
			s.AddClass(class)
		} else {
			s.RemoveClass(class)
		}
	})
	return items.Length()
}

// EachAttr sets attribute name on every element matching selector inside
// container id to value(i).
func (d *Document) EachAttr(id, selector, name string, value func(i int) string) int {
	sel, ok := d.byID(id)
	if !ok {
		return 0
	}
	items := sel.Find(selector)
	items.Each(func(i int, s *goquery.Selection) {
		s.SetAttr(name, value(i))
	})
	return items.Length()
}

// Remove deletes element id and its subtree.
func (d *Document) Remove(id string) bool {
	sel, ok := d.byID(id)
	if !ok {
		return false
	}
	sel.Remove()
	return true
}

// StripAttrs removes every attribute whose name starts with prefix from the
// whole page and returns how many were dropped.
func (d *Document) StripAttrs(prefix string) int {
	n := 0
	d.doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		for _, node := range s.Nodes {
			kept := node.Attr[:0]
			for _, a := range node.Attr {
				if strings.HasPrefix(a.Key, prefix) {
					n++
					continue
				}
				kept = append(kept, a)
			}
			node.Attr = kept
		}
	})
	return n
}

// SetTitle sets the document <title>.
func (d *Document) SetTitle(title string) {
	d.doc.Find("head title").First().SetText(title)
}

// Title returns the document <title> text.
func (d *Document) Title() string {
	return d.doc.Find("head title").First().Text()
}

// OuterHTML returns the markup of element id including the element itself.
func (d *Document) OuterHTML(id string) (template.HTML, bool) {
	sel, ok := d.byID(id)
	if !ok {
		return "", false
	}
	out, err := goquery.OuterHtml(sel)
	if err != nil {
		d.logger.Warn("dom serialize failed", zap.String("id", id), zap.Error(err))
		return "", false
	}
	return template.HTML(out), true
}

// Render serializes the whole page.
func (d *Document) Render(w io.Writer) error {
	for _, n := range d.doc.Nodes {
		if err := html.Render(w, n); err != nil {
			return err
		}
	}
	return nil
}

// String serializes the whole page, returning "" on error.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}
