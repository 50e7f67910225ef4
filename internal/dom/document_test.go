package dom

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<!DOCTYPE html><html><head><title>Old</title></head><body id="page">
<div id="grid"><p>stale</p></div>
<ul id="dots"><li class="dot"></li><li class="dot active"></li><li class="dot"></li></ul>
<img id="hero" src="a.jpg">
</body></html>`

func parse(t *testing.T) *Document {
	t.Helper()
	d, err := ParseString(page, nil)
	require.NoError(t, err)
	return d
}

func TestSetHTMLReplacesContents(t *testing.T) {
	d := parse(t)

	require.True(t, d.SetHTML("grid", `<span class="card">1</span>`))
	require.True(t, d.SetHTML("grid", `<span class="card">1</span>`))

	assert.Equal(t, 1, d.Find("#grid .card").Length())
	assert.Equal(t, 0, d.Find("#grid p").Length())
}

func TestMissingTargetsAreSkipped(t *testing.T) {
	d := parse(t)
	before := d.String()

	assert.False(t, d.SetHTML("nope", "<b>x</b>"))
	assert.False(t, d.SetText("nope", "x"))
	assert.False(t, d.SetAttr("nope", "src", "x"))
	assert.False(t, d.SetClass("nope", "active", true))
	assert.Equal(t, 0, d.EachClass("nope", ".dot", "active", func(int) bool { return true }))
	_, ok := d.OuterHTML("nope")
	assert.False(t, ok)

	assert.Equal(t, before, d.String())
}

func TestSetTextEscapes(t *testing.T) {
	d := parse(t)
	require.True(t, d.SetText("grid", "<script>alert(1)</script>"))

	assert.Equal(t, 0, d.Find("#grid script").Length())
	assert.Contains(t, d.String(), "&lt;script&gt;")
}

func TestEachClassMarksExactlyOne(t *testing.T) {
	d := parse(t)
	n := d.EachClass("dots", ".dot", "active", func(i int) bool { return i == 2 })

	assert.Equal(t, 3, n)
	assert.Equal(t, 1, d.Find("#dots .active").Length())
	assert.Equal(t, 2, d.Find("#dots .active").Index())
}

func TestAttributesTitleAndOuterHTML(t *testing.T) {
	d := parse(t)

	require.True(t, d.SetAttr("hero", "src", "b.jpg"))
	src, _ := d.Find("#hero").Attr("src")
	assert.Equal(t, "b.jpg", src)

	d.SetTitle("Nouveau")
	assert.Equal(t, "Nouveau", d.Title())

	out, ok := d.OuterHTML("dots")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(string(out), `<ul id="dots">`))

	var b strings.Builder
	require.NoError(t, d.Render(&b))
	assert.True(t, strings.HasPrefix(b.String(), "<!DOCTYPE html>"))
}

func TestRemoveAndStripAttrs(t *testing.T) {
	d, err := ParseString(`<html><body><div id="modal" hx-post="/events">x</div><button id="go" hx-post="/events" hx-vals='{"a":1}' class="btn">go</button></body></html>`, nil)
	require.NoError(t, err)

	assert.True(t, d.Remove("modal"))
	assert.False(t, d.Remove("modal"))
	assert.False(t, d.Has("modal"))

	assert.Equal(t, 2, d.StripAttrs("hx-"))
	assert.Zero(t, d.Find("[hx-post], [hx-vals]").Length())
	class, _ := d.Find("#go").Attr("class")
	assert.Equal(t, "btn", class)
}
