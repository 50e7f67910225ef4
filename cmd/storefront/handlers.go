package main

import (
	"context"
	"errors"
	"html/template"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"lumierespirituelle.fr/storefront/internal/catalog"
	"lumierespirituelle.fr/storefront/internal/dom"
	"lumierespirituelle.fr/storefront/internal/events"
	"lumierespirituelle.fr/storefront/internal/logging"
	mw "lumierespirituelle.fr/storefront/internal/middleware"
	"lumierespirituelle.fr/storefront/internal/modal"
	"lumierespirituelle.fr/storefront/internal/nav"
	"lumierespirituelle.fr/storefront/internal/render"
)

// Client events announced through HX-Trigger after modal transitions.
const (
	triggerScrollLock   = "scroll-lock"
	triggerScrollUnlock = "scroll-unlock"
)

// Notice elements receiving the download acknowledgment.
const (
	modalDownloadNotice = "modalDownloadNotice"
	pageDownloadNotice  = "downloadNotice"
)

func requestPage(r *http.Request) pageContext {
	return pageContext{path: r.URL.Path, csrfToken: mw.CSRFToken(r)}
}

// startPage loads the catalog if needed and resets the modal: a full page
// load always starts Closed.
func (a *app) startPage(r *http.Request) {
	a.store.Ensure(r.Context())
	mw.GetSession(r).SetModal(modal.Session{})
}

func (a *app) handleHome(w http.ResponseWriter, r *http.Request) {
	a.startPage(r)
	doc, err := a.homeDocument(r.Context(), requestPage(r))
	a.writeDocument(w, r, doc, err)
}

func (a *app) handleCatalogue(w http.ResponseWriter, r *http.Request) {
	a.startPage(r)
	doc, err := a.catalogueDocument(r.Context(), requestPage(r))
	a.writeDocument(w, r, doc, err)
}

// lookupSlug resolves the slug query parameter.
func (a *app) lookupSlug(r *http.Request) (catalog.Product, bool) {
	slug := r.URL.Query().Get("slug")
	if slug == "" {
		logging.FromContext(r.Context()).Warn("product page without slug")
		return catalog.Product{}, false
	}
	p, ok := a.store.FindBySlug(slug)
	if !ok {
		logging.FromContext(r.Context()).Warn("unknown product slug", zap.String("slug", slug))
	}
	return p, ok
}

func (a *app) handleProduct(w http.ResponseWriter, r *http.Request) {
	a.startPage(r)
	p, ok := a.lookupSlug(r)
	if !ok {
		http.Redirect(w, r, nav.CataloguePath, http.StatusSeeOther)
		return
	}
	doc, err := a.productDocument(r.Context(), requestPage(r), p)
	a.writeDocument(w, r, doc, err)
}

// handleGallery answers a thumbnail click with the refreshed gallery.
func (a *app) handleGallery(w http.ResponseWriter, r *http.Request) {
	a.store.Ensure(r.Context())
	p, ok := a.lookupSlug(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if !mw.IsHTMX(r.Context()) {
		http.Redirect(w, r, a.renderer.ProductHref(p), http.StatusSeeOther)
		return
	}
	doc, err := a.productDocument(r.Context(), requestPage(r), p)
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	index, err := strconv.Atoi(r.URL.Query().Get("i"))
	if err != nil || !a.renderer.SelectThumbnail(doc, p, index, render.DefaultDetailTargets) {
		logging.FromContext(r.Context()).Debug("thumbnail ignored", zap.String("i", r.URL.Query().Get("i")))
	}
	a.writeFragment(w, r, doc, "productGallery")
}

// handleEvent restores the modal from the session, applies one event and
// answers with the modal (or a download notice) for htmx to swap in.
func (a *app) handleEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	if err := r.ParseForm(); err != nil {
		mw.WriteError(w, r, http.StatusBadRequest, "invalid form")
		return
	}
	e, err := events.Parse(r.PostForm)
	if err != nil {
		logger.Debug("rejected event", zap.Error(err))
		mw.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	a.store.Ensure(ctx)

	doc, err := a.pages.document(pageModal, a.baseData(requestPage(r), ""), logger)
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	view := modal.NewDOMView(doc, a.renderer, modal.DefaultTargets)
	ctrl := modal.NewController(a.store, view, logger)
	session := mw.GetSession(r)
	if err := ctrl.Restore(session.Modal); err != nil && !errors.Is(err, modal.ErrProductNotFound) {
		a.serverError(w, r, err)
		return
	}

	var notice template.HTML
	registry := events.NewRegistry()
	events.BindModal(registry, ctrl)
	events.BindDownload(registry, ctrl, func(_ context.Context, target string, p catalog.Product) error {
		id := modalDownloadNotice
		if target == events.TargetPageDownload {
			id = pageDownloadNotice
		}
		markup, err := a.renderer.Notice(id, a.msgs.T("download.ack"))
		notice = markup
		return err
	})
	if _, err := registry.Dispatch(ctx, e); err != nil {
		a.serverError(w, r, err)
		return
	}
	session.SetModal(ctrl.Snapshot())

	if notice != "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, string(notice))
		return
	}
	if view.ScrollLocked() {
		mw.Trigger(w, triggerScrollLock)
	} else {
		mw.Trigger(w, triggerScrollUnlock)
	}
	a.writeFragment(w, r, doc, modal.DefaultTargets.Modal)
}

func (a *app) writeDocument(w http.ResponseWriter, r *http.Request, doc *dom.Document, err error) {
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := doc.Render(w); err != nil {
		logging.FromContext(r.Context()).Error("write page", zap.Error(err))
	}
}

func (a *app) writeFragment(w http.ResponseWriter, r *http.Request, doc *dom.Document, id string) {
	markup, ok := doc.OuterHTML(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, string(markup))
}

func (a *app) serverError(w http.ResponseWriter, r *http.Request, err error) {
	logging.FromContext(r.Context()).Error("request failed", zap.Error(err))
	mw.WriteError(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}
