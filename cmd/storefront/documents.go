package main

import (
	"context"

	"lumierespirituelle.fr/storefront/internal/catalog"
	"lumierespirituelle.fr/storefront/internal/dom"
	"lumierespirituelle.fr/storefront/internal/logging"
	"lumierespirituelle.fr/storefront/internal/nav"
	"lumierespirituelle.fr/storefront/internal/render"
	"lumierespirituelle.fr/storefront/internal/seo"
)

// pageContext carries the request-specific parts of a page.
type pageContext struct {
	path      string
	csrfToken string
}

func (a *app) baseData(pc pageContext, title string) pageData {
	return pageData{
		Lang:      a.msgs.Tag().String(),
		SiteName:  a.cfg.Site.Name,
		CSRFToken: pc.csrfToken,
		Nav:       nav.Build(pc.path),
		SEO: seo.Meta{
			Title:     seo.Title(title, a.cfg.Site.Name),
			Canonical: seo.Absolute(a.cfg.Site.BaseURL, nav.Canonical(pc.path)),
		},
	}
}

func (a *app) homeDocument(ctx context.Context, pc pageContext) (*dom.Document, error) {
	data := a.baseData(pc, "")
	data.SEO.Description = a.msgs.T("home.lead")
	data.SEO.JSONLD = append(data.SEO.JSONLD, seo.JSON(seo.WebSite(a.cfg.Site.Name, a.cfg.Site.BaseURL)))
	doc, err := a.pages.document(pageHome, data, logging.FromContext(ctx))
	if err != nil {
		return nil, err
	}
	if err := a.renderer.RenderFeatured(doc, a.store, render.FeaturedContainer); err != nil {
		return nil, err
	}
	return doc, nil
}

func (a *app) catalogueDocument(ctx context.Context, pc pageContext) (*dom.Document, error) {
	data := a.baseData(pc, a.msgs.T("nav.catalogue"))
	data.SEO.Description = a.msgs.T("catalogue.title")
	doc, err := a.pages.document(pageCatalogue, data, logging.FromContext(ctx))
	if err != nil {
		return nil, err
	}
	if err := a.renderer.RenderCatalogue(doc, a.store, render.CatalogueContainer); err != nil {
		return nil, err
	}
	return doc, nil
}

func (a *app) productDocument(ctx context.Context, pc pageContext, p catalog.Product) (*dom.Document, error) {
	data := a.baseData(pc, p.Title)
	href := seo.Absolute(a.cfg.Site.BaseURL, a.renderer.ProductHref(p))
	data.SEO.Description = p.Summary()
	data.SEO.Canonical = href
	data.SEO.Image = p.MainImage()
	data.Breadcrumbs = nav.ProductBreadcrumbs(p.Title)
	data.ProductID = p.ID
	data.SEO.JSONLD = append(data.SEO.JSONLD,
		seo.JSON(seo.Product(seo.ProductInfo{
			Name:        p.Title,
			Description: p.Summary(),
			URL:         href,
			Images:      p.Images,
			SKU:         p.SKU,
			Category:    p.Category,
			Author:      p.Author,
			Price:       p.Price.StringFixed(2),
			Currency:    a.renderer.Currency(p),
		})),
		seo.JSON(seo.BreadcrumbList([]seo.BreadcrumbItem{
			{Name: a.msgs.T("nav.home"), Item: seo.Absolute(a.cfg.Site.BaseURL, nav.HomePath)},
			{Name: a.msgs.T("nav.catalogue"), Item: seo.Absolute(a.cfg.Site.BaseURL, nav.CataloguePath)},
			{Name: p.Title},
		})),
	)

	doc, err := a.pages.document(pageProduct, data, logging.FromContext(ctx))
	if err != nil {
		return nil, err
	}
	if err := a.renderer.RenderProductDetail(doc, a.store, p, render.DefaultDetailTargets, a.cfg.Catalog.RelatedLimit); err != nil {
		return nil, err
	}
	return doc, nil
}
