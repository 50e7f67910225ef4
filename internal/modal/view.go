package modal

import (
	"fmt"
	"html/template"

	"lumierespirituelle.fr/storefront/internal/catalog"
	"lumierespirituelle.fr/storefront/internal/dom"
	"lumierespirituelle.fr/storefront/internal/render"
)

// Targets names the modal elements inside a page document.
type Targets struct {
	Modal       string
	Track       string
	Indicators  string
	Title       string
	Subtitle    string
	Price       string
	Formats     string
	Description string
	Includes    string
	ViewMore    string
	Body        string
}

// DefaultTargets matches templates/modal.tmpl and the layout body.
var DefaultTargets = Targets{
	Modal:       "productModal",
	Track:       "carouselTrack",
	Indicators:  "carouselIndicators",
	Title:       "modalTitle",
	Subtitle:    "modalSubtitle",
	Price:       "modalPrice",
	Formats:     "modalFormats",
	Description: "modalDescription",
	Includes:    "modalIncludesList",
	ViewMore:    "modalViewMore",
	Body:        "page",
}

// ActiveClass marks the visible modal and the current indicator.
const ActiveClass = "active"

// DOMView writes controller transitions into a document.
type DOMView struct {
	doc      *dom.Document
	renderer *render.Renderer
	targets  Targets
	locked   bool
}

func NewDOMView(doc *dom.Document, renderer *render.Renderer, targets Targets) *DOMView {
	return &DOMView{doc: doc, renderer: renderer, targets: targets}
}

func (v *DOMView) Document() *dom.Document { return v.doc }

// ScrollLocked reports whether the last scroll transition was a lock.
func (v *DOMView) ScrollLocked() bool { return v.locked }

func (v *DOMView) Populate(p catalog.Product) error {
	t := v.targets
	v.doc.SetText(t.Title, p.Title)
	v.doc.SetText(t.Subtitle, p.Subtitle)
	v.doc.SetText(t.Price, v.renderer.Price(p))
	v.doc.SetText(t.Description, v.renderer.Description(p))
	v.doc.SetAttr(t.ViewMore, "href", v.renderer.ProductHref(p))

	fragments := []struct {
		id     string
		render func() (template.HTML, error)
	}{
		{t.Formats, func() (template.HTML, error) { return v.renderer.Formats(p) }},
		{t.Includes, func() (template.HTML, error) { return v.renderer.Includes(p) }},
		{t.Track, func() (template.HTML, error) { return v.renderer.Slides(p) }},
		{t.Indicators, func() (template.HTML, error) { return v.renderer.Indicators(len(p.Images), 0) }},
	}
	for _, f := range fragments {
		if !v.doc.Has(f.id) {
			continue
		}
		markup, err := f.render()
		if err != nil {
			return err
		}
		v.doc.SetHTML(f.id, markup)
	}
	return nil
}

// ShowSlide offsets the track by index widths and highlights one indicator.
func (v *DOMView) ShowSlide(index, count int) {
	v.doc.SetAttr(v.targets.Track, "style", fmt.Sprintf("transform: translateX(-%d%%)", index*100))
	v.doc.EachClass(v.targets.Indicators, ".indicator", ActiveClass, func(i int) bool { return i == index })
}

func (v *DOMView) Show() { v.doc.SetClass(v.targets.Modal, ActiveClass, true) }

func (v *DOMView) Hide() { v.doc.SetClass(v.targets.Modal, ActiveClass, false) }

func (v *DOMView) LockScroll() {
	v.doc.SetAttr(v.targets.Body, "style", "overflow: hidden")
	v.locked = true
}

func (v *DOMView) UnlockScroll() {
	v.doc.RemoveAttr(v.targets.Body, "style")
	v.locked = false
}
