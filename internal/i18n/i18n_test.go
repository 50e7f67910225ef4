package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"fr.json": {Data: []byte(`{"card.preview": "Aperçu rapide", "product.pages": "%d pages", "only.fr": "seulement"}`)},
		"en.json": {Data: []byte(`{"card.preview": "Quick view"}`)},
	}
}

func TestCatalogTranslates(t *testing.T) {
	c, err := Load(testFS(), "fr-FR")
	require.NoError(t, err)

	assert.Equal(t, "Aperçu rapide", c.T("card.preview"))
	assert.Equal(t, "120 pages", c.T("product.pages", 120))
	assert.Equal(t, "missing.key", c.T("missing.key"))
}

func TestCatalogFallsBackToFrench(t *testing.T) {
	c, err := Load(testFS(), "en-GB")
	require.NoError(t, err)

	assert.Equal(t, "Quick view", c.T("card.preview"))
	assert.Equal(t, "seulement", c.T("only.fr"))

	c, err = Load(testFS(), "de")
	require.NoError(t, err)
	assert.Equal(t, "Aperçu rapide", c.T("card.preview"))
}

func TestLoadRequiresFallbackCatalog(t *testing.T) {
	_, err := Load(fstest.MapFS{}, "fr")
	require.Error(t, err)
}
