package main

import (
	"fmt"
	"io/fs"
	"net/http"

	"go.uber.org/zap"

	storefront "lumierespirituelle.fr/storefront"
	"lumierespirituelle.fr/storefront/internal/catalog"
	"lumierespirituelle.fr/storefront/internal/config"
	"lumierespirituelle.fr/storefront/internal/i18n"
	mw "lumierespirituelle.fr/storefront/internal/middleware"
	"lumierespirituelle.fr/storefront/internal/render"
)

// bundle groups the file trees the storefront reads.
type bundle struct {
	templates fs.FS
	locales   fs.FS
	public    fs.FS
}

func embeddedBundle() (bundle, error) {
	templates, err := storefront.TemplatesFS()
	if err != nil {
		return bundle{}, err
	}
	locales, err := storefront.LocalesFS()
	if err != nil {
		return bundle{}, err
	}
	public, err := storefront.PublicFS()
	if err != nil {
		return bundle{}, err
	}
	return bundle{templates: templates, locales: locales, public: public}, nil
}

type app struct {
	cfg      config.Config
	logger   *zap.Logger
	store    *catalog.Store
	msgs     *i18n.Catalog
	renderer *render.Renderer
	pages    *pageSet
	sessions *mw.Sessions
	public   fs.FS
}

// newApp wires the catalog store, message catalog, renderer and page shells.
// A static app renders for the exported site: detail links point at the
// produit-<slug>.html files and no control calls back to the server.
func newApp(cfg config.Config, logger *zap.Logger, b bundle, static bool) (*app, error) {
	msgs, err := i18n.Load(b.locales, cfg.Site.Locale)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	opts := render.Options{
		Lang:     msgs.Tag(),
		Messages: msgs,
		Logger:   logger.Named("render"),
		SiteName: cfg.Site.Name,
		Currency: cfg.Site.Currency,
	}
	if static {
		opts.ProductHref = exportProductHref
		opts.Static = true
	}
	renderer, err := render.New(b.templates, opts)
	if err != nil {
		return nil, err
	}
	pages, err := newPageSet(b.templates, msgs, cfg.Server.DevMode)
	if err != nil {
		return nil, err
	}

	source := catalog.NewSource(cfg.Catalog.Source, &http.Client{Timeout: cfg.Catalog.FetchTimeout})
	store := catalog.NewStore(source,
		catalog.WithLogger(logger.Named("catalog")),
		catalog.WithTimeout(cfg.Catalog.FetchTimeout),
		catalog.WithRefreshTTL(cfg.Catalog.RefreshTTL),
	)

	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		msgs:     msgs,
		renderer: renderer,
		pages:    pages,
		sessions: mw.NewSessions(cfg.Session.SigningKey, cfg.Session.SecureCookie, logger),
		public:   b.public,
	}, nil
}
