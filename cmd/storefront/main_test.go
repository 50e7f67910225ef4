package main

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lumierespirituelle.fr/storefront/internal/config"
)

const testCatalog = "../../internal/catalog/testdata/products.json"

func testBundle() bundle {
	return bundle{
		templates: os.DirFS("../../templates"),
		locales:   os.DirFS("../../locales"),
		public:    os.DirFS("../../public"),
	}
}

func newTestApp(t *testing.T, source string, static bool) *app {
	t.Helper()
	cfg := config.Default()
	cfg.Catalog.Source = source
	cfg.Session.SigningKey = "test-signing-key"
	a, err := newApp(cfg, zap.NewNop(), testBundle(), static)
	require.NoError(t, err)
	return a
}

// testClient keeps cookies between requests and does not follow redirects.
type testClient struct {
	t      *testing.T
	srv    *httptest.Server
	client *http.Client
}

func newTestClient(t *testing.T, source string) *testClient {
	t.Helper()
	srv := httptest.NewServer(newTestApp(t, source, false).routes())
	t.Cleanup(srv.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := srv.Client()
	client.Jar = jar
	client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	return &testClient{t: t, srv: srv, client: client}
}

func (c *testClient) get(path string, htmx bool) (*http.Response, *goquery.Document) {
	c.t.Helper()
	req, err := http.NewRequest(http.MethodGet, c.srv.URL+path, nil)
	require.NoError(c.t, err)
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	return c.do(req)
}

func (c *testClient) do(req *http.Request) (*http.Response, *goquery.Document) {
	c.t.Helper()
	res, err := c.client.Do(req)
	require.NoError(c.t, err)
	defer res.Body.Close()
	doc, err := goquery.NewDocumentFromReader(res.Body)
	require.NoError(c.t, err)
	return res, doc
}

func (c *testClient) csrfToken() string {
	c.t.Helper()
	u, _ := url.Parse(c.srv.URL)
	for _, ck := range c.client.Jar.Cookies(u) {
		if ck.Name == "csrf_token" {
			return ck.Value
		}
	}
	c.t.Fatal("no csrf cookie")
	return ""
}

func (c *testClient) event(form url.Values) (*http.Response, *goquery.Document) {
	c.t.Helper()
	req, err := http.NewRequest(http.MethodPost, c.srv.URL+"/events", strings.NewReader(form.Encode()))
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	req.Header.Set("X-CSRF-Token", c.csrfToken())
	return c.do(req)
}

func click(target string, extra ...string) url.Values {
	v := url.Values{"type": {"click"}, "target": {target}}
	for i := 0; i+1 < len(extra); i += 2 {
		v.Set(extra[i], extra[i+1])
	}
	return v
}

func key(k string) url.Values {
	return url.Values{"type": {"keydown"}, "target": {"document"}, "key": {k}}
}

func cardIDs(doc *goquery.Document, container string) []string {
	var ids []string
	doc.Find("#" + container + " .product-card").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("data-id")
		ids = append(ids, id)
	})
	return ids
}

func TestHealthzOK(t *testing.T) {
	c := newTestClient(t, testCatalog)
	res, doc := c.get("/healthz", false)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "ok", strings.TrimSpace(doc.Text()))
}

func TestHomeRendersFeatured(t *testing.T) {
	c := newTestClient(t, testCatalog)
	for _, path := range []string{"/", "/index.html"} {
		res, doc := c.get(path, false)
		require.Equal(t, http.StatusOK, res.StatusCode, path)
		assert.Equal(t, "fr-FR", res.Header.Get("Content-Language"))
		assert.Equal(t, []string{"1"}, cardIDs(doc, "featuredProducts"))
		assert.Equal(t, "Lumière Spirituelle", doc.Find("title").Text())
		assert.Equal(t, "Accueil", doc.Find(".nav-link.active").Text())
		assert.False(t, doc.Find("#productModal").HasClass("active"))
	}
}

func TestHomeFailSoftOnMissingCatalog(t *testing.T) {
	c := newTestClient(t, filepath.Join(t.TempDir(), "missing.json"))
	res, doc := c.get("/", false)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Empty(t, cardIDs(doc, "featuredProducts"))
	assert.Equal(t, "Aucun produit phare disponible pour le moment.", doc.Find("#featuredProducts .empty-state").Text())
}

func TestCatalogueRendersAllProducts(t *testing.T) {
	c := newTestClient(t, testCatalog)
	res, doc := c.get("/catalogue.html", false)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, []string{"1", "2", "3"}, cardIDs(doc, "catalogueProducts"))
	style, _ := doc.Find("#catalogueProducts .product-card").Eq(2).Attr("style")
	assert.Equal(t, "--stagger: 200ms", style)
	assert.Equal(t, "Catalogue", doc.Find(".nav-link.active").Text())
}

func TestProductPage(t *testing.T) {
	c := newTestClient(t, testCatalog)
	res, doc := c.get("/produit?slug=guide-des-chakras", false)
	require.Equal(t, http.StatusOK, res.StatusCode)

	assert.Equal(t, "Guide des Chakras - Lumière Spirituelle", doc.Find("title").Text())
	assert.Equal(t, "Guide des Chakras", doc.Find("#breadcrumbProduct").Text())
	assert.Equal(t, "Guide des Chakras", doc.Find("#productTitle").Text())
	src, _ := doc.Find("#mainProductImage").Attr("src")
	assert.Equal(t, "/img/chakras-1.jpg", src)
	assert.Equal(t, 2, doc.Find("#thumbnailImages .thumbnail").Length())
	assert.Equal(t, "12 mars 2024", doc.Find("#productReleaseDate").Text())
	assert.Equal(t, "120 pages", doc.Find("#productPages").Text())
	assert.Equal(t, 2, doc.Find("#productDescription p").Length())
	assert.Equal(t, []string{"3"}, cardIDs(doc, "relatedProducts"))

	var jsonld []string
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		jsonld = append(jsonld, s.Text())
	})
	require.Len(t, jsonld, 2)
	assert.Contains(t, jsonld[0], `"sku":"LS-001"`)
	assert.Contains(t, jsonld[0], `"priceCurrency":"EUR"`)
}

func TestProductPageRedirects(t *testing.T) {
	c := newTestClient(t, testCatalog)
	for _, path := range []string{"/produit", "/produit.html?slug=", "/produit?slug=inconnu"} {
		res, _ := c.get(path, false)
		assert.Equal(t, http.StatusSeeOther, res.StatusCode, path)
		assert.Equal(t, "/catalogue", res.Header.Get("Location"), path)
	}
}

func TestGalleryThumbnailSwap(t *testing.T) {
	c := newTestClient(t, testCatalog)
	res, doc := c.get("/produit/gallery?slug=rituels-de-pleine-lune&i=2", true)
	require.Equal(t, http.StatusOK, res.StatusCode)

	src, _ := doc.Find("#mainProductImage").Attr("src")
	assert.Equal(t, "/img/lune-3.jpg", src)
	active := doc.Find("#thumbnailImages .thumbnail.active")
	require.Equal(t, 1, active.Length())
	idx, _ := active.Attr("data-index")
	assert.Equal(t, "2", idx)
	assert.Equal(t, 0, doc.Find("#relatedProducts").Length(), "only the gallery is returned")

	res, doc = c.get("/produit/gallery?slug=rituels-de-pleine-lune&i=9", true)
	require.Equal(t, http.StatusOK, res.StatusCode)
	src, _ = doc.Find("#mainProductImage").Attr("src")
	assert.Equal(t, "/img/lune-1.jpg", src)
}

func modalIndex(t *testing.T, doc *goquery.Document) string {
	t.Helper()
	style, _ := doc.Find("#carouselTrack").Attr("style")
	return style
}

func TestModalEventFlow(t *testing.T) {
	c := newTestClient(t, testCatalog)
	c.get("/catalogue", false)

	res, doc := c.event(click("preview", "id", "3"))
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "scroll-lock", res.Header.Get("HX-Trigger"))
	assert.True(t, doc.Find("#productModal").HasClass("active"))
	assert.Equal(t, "Rituels de pleine lune", doc.Find("#modalTitle").Text())
	assert.Equal(t, 3, doc.Find("#carouselIndicators .indicator").Length())
	href, _ := doc.Find("#modalViewMore").Attr("href")
	assert.Equal(t, "/produit?slug=rituels-de-pleine-lune", href)
	assert.Equal(t, "transform: translateX(-0%)", modalIndex(t, doc))

	_, doc = c.event(click("nextBtn"))
	assert.Equal(t, "transform: translateX(-100%)", modalIndex(t, doc))

	_, doc = c.event(key("ArrowLeft"))
	assert.Equal(t, "transform: translateX(-0%)", modalIndex(t, doc))
	_, doc = c.event(key("ArrowLeft"))
	assert.Equal(t, "transform: translateX(-200%)", modalIndex(t, doc))

	_, doc = c.event(click("indicator", "index", "1"))
	assert.Equal(t, "transform: translateX(-100%)", modalIndex(t, doc))
	idx, _ := doc.Find("#carouselIndicators .indicator.active").Attr("data-index")
	assert.Equal(t, "1", idx)

	_, doc = c.event(click("indicator", "index", "7"))
	assert.Equal(t, "transform: translateX(-100%)", modalIndex(t, doc))

	_, doc = c.event(click("modalContent"))
	assert.True(t, doc.Find("#productModal").HasClass("active"))

	res, doc = c.event(key("Escape"))
	assert.Equal(t, "scroll-unlock", res.Header.Get("HX-Trigger"))
	assert.False(t, doc.Find("#productModal").HasClass("active"))

	// keys are ignored while closed
	_, doc = c.event(key("ArrowRight"))
	assert.False(t, doc.Find("#productModal").HasClass("active"))
}

func TestModalTwoImageScenario(t *testing.T) {
	c := newTestClient(t, testCatalog)
	c.get("/", false)

	var seq []string
	_, doc := c.event(click("preview", "id", "1"))
	seq = append(seq, modalIndex(t, doc))
	_, doc = c.event(click("nextBtn"))
	seq = append(seq, modalIndex(t, doc))
	_, doc = c.event(click("nextBtn"))
	seq = append(seq, modalIndex(t, doc))

	assert.Equal(t, []string{
		"transform: translateX(-0%)",
		"transform: translateX(-100%)",
		"transform: translateX(-0%)",
	}, seq)
}

func TestModalBackdropAndCloseButton(t *testing.T) {
	c := newTestClient(t, testCatalog)
	c.get("/", false)

	for _, target := range []string{"productModal", "modalClose"} {
		_, doc := c.event(click("preview", "id", "2"))
		require.True(t, doc.Find("#productModal").HasClass("active"))
		res, doc := c.event(click(target))
		assert.False(t, doc.Find("#productModal").HasClass("active"), target)
		assert.Equal(t, "scroll-unlock", res.Header.Get("HX-Trigger"))
	}
}

func TestModalUnknownProductStaysClosed(t *testing.T) {
	c := newTestClient(t, testCatalog)
	c.get("/", false)

	res, doc := c.event(click("preview", "id", "99"))
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.False(t, doc.Find("#productModal").HasClass("active"))
}

func TestPageLoadResetsModal(t *testing.T) {
	c := newTestClient(t, testCatalog)
	c.get("/", false)
	c.event(click("preview", "id", "3"))

	c.get("/catalogue", false)
	_, doc := c.event(click("nextBtn"))
	assert.False(t, doc.Find("#productModal").HasClass("active"))
}

func TestDownloadStub(t *testing.T) {
	c := newTestClient(t, testCatalog)
	c.get("/", false)

	c.event(click("preview", "id", "2"))
	res, doc := c.event(click("modalDownload"))
	require.Equal(t, http.StatusOK, res.StatusCode)
	notice := doc.Find("#modalDownloadNotice")
	require.Equal(t, 1, notice.Length())
	assert.Equal(t, "Téléchargement démarré ! (Fonctionnalité de démonstration)", notice.Text())

	_, doc = c.event(click("downloadBtn", "id", "1"))
	assert.Equal(t, 1, doc.Find("#downloadNotice").Length())
}

func TestEventsRequireCSRFToken(t *testing.T) {
	c := newTestClient(t, testCatalog)
	c.get("/", false)

	req, err := http.NewRequest(http.MethodPost, c.srv.URL+"/events", strings.NewReader(click("nextBtn").Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	res, _ := c.do(req)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestMalformedEventRejected(t *testing.T) {
	c := newTestClient(t, testCatalog)
	c.get("/", false)

	res, _ := c.event(url.Values{"type": {"click"}})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestAssetsServed(t *testing.T) {
	c := newTestClient(t, testCatalog)
	res, _ := c.get("/assets/css/style.css", false)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotEmpty(t, res.Header.Get("ETag"))
}

func TestExportSite(t *testing.T) {
	a := newTestApp(t, testCatalog, true)
	out := t.TempDir()

	require.NoError(t, exportSite(context.Background(), a, out))

	for _, name := range []string{
		"index.html",
		"catalogue.html",
		"produit-guide-des-chakras.html",
		"produit-meditations-guidees.html",
		"produit-rituels-de-pleine-lune.html",
		filepath.Join("assets", "css", "style.css"),
	} {
		_, err := os.Stat(filepath.Join(out, name))
		assert.NoError(t, err, name)
	}

	b, err := os.ReadFile(filepath.Join(out, "produit-guide-des-chakras.html"))
	require.NoError(t, err)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(b)))
	require.NoError(t, err)
	assert.Equal(t, "Guide des Chakras", doc.Find("#productTitle").Text())
	canonical, _ := doc.Find(`link[rel="canonical"]`).Attr("href")
	assert.Equal(t, "produit-guide-des-chakras.html", canonical)
	assert.Zero(t, doc.Find("#productModal, #downloadBtn").Length())
	assert.Equal(t, 2, doc.Find("#thumbnailImages a.thumbnail").Length())

	for _, name := range []string{"index.html", "catalogue.html", "produit-guide-des-chakras.html"} {
		b, err := os.ReadFile(filepath.Join(out, name))
		require.NoError(t, err)
		assert.NotContains(t, string(b), "hx-", name)
		assert.NotContains(t, string(b), "/events", name)
	}

	b, err = os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	doc, err = goquery.NewDocumentFromReader(strings.NewReader(string(b)))
	require.NoError(t, err)
	href, ok := doc.Find(`#featuredProducts .product-card[data-id="1"] a.btn-preview`).Attr("href")
	require.True(t, ok)
	assert.Equal(t, "produit-guide-des-chakras.html", href)
}
