package main

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"lumierespirituelle.fr/storefront/internal/dom"
	"lumierespirituelle.fr/storefront/internal/logging"
)

const exportConcurrency = 4

func newExportCmd(root *rootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the storefront pages as static HTML",
		Long: `Export renders index.html, catalogue.html and one produit-<slug>.html
per product into the output directory, and copies the static assets.
The exported pages carry no server-backed controls: there is no preview
modal, card previews link to the product pages and the download button is
left out.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := root.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			b, err := embeddedBundle()
			if err != nil {
				return err
			}
			a, err := newApp(cfg, logger, b, true)
			if err != nil {
				return err
			}
			ctx := logging.WithLogger(cmd.Context(), logger)
			return exportSite(ctx, a, out)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "dist", "output directory")
	return cmd
}

// exportProductHref names the static file of a product page.
func exportProductHref(slug string) string {
	return "produit-" + url.PathEscape(slug) + ".html"
}

// exportSite writes every page into out. Pages are rendered concurrently.
func exportSite(ctx context.Context, a *app, out string) error {
	logger := logging.FromContext(ctx)
	if err := os.MkdirAll(out, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	products := a.store.Load(ctx)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(exportConcurrency)
	g.Go(func() error {
		doc, err := a.homeDocument(ctx, pageContext{path: "/index.html"})
		return writeExport(out, "index.html", doc, err)
	})
	g.Go(func() error {
		doc, err := a.catalogueDocument(ctx, pageContext{path: "/catalogue.html"})
		return writeExport(out, "catalogue.html", doc, err)
	})
	for _, p := range products {
		g.Go(func() error {
			doc, err := a.productDocument(ctx, pageContext{path: "/produit.html"}, p)
			return writeExport(out, exportProductHref(p.Slug), doc, err)
		})
	}
	g.Go(func() error {
		return copyTree(a.public, out)
	})
	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("export complete", zap.String("out", out), zap.Int("products", len(products)))
	return nil
}

// staticIDs are the page elements that only work against the server.
var staticIDs = []string{"productModal", "downloadBtn", "downloadNotice"}

func writeExport(out, name string, doc *dom.Document, err error) error {
	if err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	for _, id := range staticIDs {
		doc.Remove(id)
	}
	doc.StripAttrs("hx-")
	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return os.WriteFile(filepath.Join(out, name), buf.Bytes(), 0o644)
}

// copyTree copies every file of fsys under dir, keeping relative paths.
func copyTree(fsys fs.FS, dir string) error {
	return fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		target := filepath.Join(dir, filepath.FromSlash(path))
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		b, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, b, 0o644)
	})
}
