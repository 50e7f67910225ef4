package main

import (
	"io"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	mw "lumierespirituelle.fr/storefront/internal/middleware"
)

func (a *app) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	// If deployed behind a trusted reverse proxy/load balancer, RealIP will use
	// X-Forwarded-For to determine the client IP.
	r.Use(chimw.RealIP)
	r.Use(mw.Logger(a.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok")
	})

	if assets, err := fs.Sub(a.public, "assets"); err == nil {
		r.Handle("/assets/*", http.StripPrefix("/assets", mw.AssetsWithCache(assets)))
	}

	r.Group(func(r chi.Router) {
		r.Use(mw.HTMX)
		r.Use(a.sessions.Middleware)
		r.Use(mw.CSRF(a.cfg.Session.SecureCookie))
		r.Use(mw.ContentLanguage(a.msgs.Tag()))

		r.Get("/", a.handleHome)
		r.Get("/index.html", a.handleHome)
		r.Get("/catalogue", a.handleCatalogue)
		r.Get("/catalogue.html", a.handleCatalogue)
		r.Get("/produit", a.handleProduct)
		r.Get("/produit.html", a.handleProduct)
		r.Get("/produit/gallery", a.handleGallery)
		r.Post("/events", a.handleEvent)
	})
	return r
}
