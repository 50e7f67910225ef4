package modal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumierespirituelle.fr/storefront/internal/catalog"
)

type recordingView struct {
	calls  []string
	slide  int
	locked bool
	shown  bool
	fail   error
}

func (v *recordingView) Populate(p catalog.Product) error {
	v.calls = append(v.calls, "populate")
	return v.fail
}

func (v *recordingView) ShowSlide(index, _ int) {
	v.calls = append(v.calls, "slide")
	v.slide = index
}

func (v *recordingView) Show()         { v.calls = append(v.calls, "show"); v.shown = true }
func (v *recordingView) Hide()         { v.calls = append(v.calls, "hide"); v.shown = false }
func (v *recordingView) LockScroll()   { v.calls = append(v.calls, "lock"); v.locked = true }
func (v *recordingView) UnlockScroll() { v.calls = append(v.calls, "unlock"); v.locked = false }

func testCatalog() *catalog.Store {
	return catalog.NewStaticStore([]catalog.Product{
		{ID: 1, Slug: "a", Title: "A", Featured: true, Images: []string{"x.jpg"}},
		{ID: 2, Slug: "b", Title: "B", Images: []string{"y1.jpg", "y2.jpg"}},
		{ID: 3, Slug: "c", Title: "C", Images: []string{"c1.jpg", "c2.jpg", "c3.jpg", "c4.jpg"}},
	})
}

func newController(t *testing.T) (*Controller, *recordingView) {
	t.Helper()
	v := &recordingView{}
	return NewController(testCatalog(), v, nil), v
}

func TestOpenThenNextWraps(t *testing.T) {
	c, v := newController(t)

	require.NoError(t, c.Open(2))
	seq := []int{c.Index()}
	c.Next()
	seq = append(seq, c.Index())
	c.Next()
	seq = append(seq, c.Index())

	assert.Equal(t, []int{0, 1, 0}, seq)
	assert.Equal(t, 0, v.slide)
	assert.True(t, v.shown)
	assert.True(t, v.locked)
}

func TestNextClosure(t *testing.T) {
	c, _ := newController(t)
	require.NoError(t, c.Open(3))

	for start := 0; start < 4; start++ {
		require.True(t, c.GoToSlide(start))
		for i := 0; i < 4; i++ {
			c.Next()
		}
		assert.Equal(t, start, c.Index())
	}
}

func TestPreviousWrapsToLast(t *testing.T) {
	c, _ := newController(t)
	require.NoError(t, c.Open(3))

	c.Previous()
	assert.Equal(t, 3, c.Index())
	c.Previous()
	assert.Equal(t, 2, c.Index())
}

func TestGoToSlideIgnoresOutOfRange(t *testing.T) {
	c, v := newController(t)
	require.NoError(t, c.Open(3))
	require.True(t, c.GoToSlide(2))
	calls := len(v.calls)

	for _, i := range []int{-1, 4, 100} {
		assert.False(t, c.GoToSlide(i))
		assert.Equal(t, 2, c.Index())
	}
	assert.Len(t, v.calls, calls)
}

func TestOpenUnknownProductStaysClosed(t *testing.T) {
	c, v := newController(t)

	err := c.Open(99)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProductNotFound))
	assert.Equal(t, Closed, c.State())
	assert.Empty(t, v.calls)
}

func TestOpenPopulateFailureStaysClosed(t *testing.T) {
	c, v := newController(t)
	v.fail = errors.New("boom")

	require.Error(t, c.Open(1))
	assert.Equal(t, Closed, c.State())
	assert.False(t, v.locked)
}

func TestCloseIsIdempotent(t *testing.T) {
	c, v := newController(t)

	c.Close()
	c.Close()
	assert.Equal(t, Closed, c.State())
	assert.Equal(t, 0, c.Index())
	assert.Equal(t, []string{"hide", "unlock", "hide", "unlock"}, v.calls)

	require.NoError(t, c.Open(2))
	c.Next()
	c.Close()
	_, active := c.Product()
	assert.False(t, active)
	assert.Equal(t, 0, c.Index())
	assert.False(t, v.locked)
}

func TestClosedNavigationIsNoop(t *testing.T) {
	c, v := newController(t)

	assert.False(t, c.Next())
	assert.False(t, c.Previous())
	assert.False(t, c.GoToSlide(0))
	for _, key := range []string{KeyEscape, KeyArrowLeft, KeyArrowRight} {
		assert.False(t, c.HandleKey(key))
	}
	assert.Empty(t, v.calls)
}

func TestHandleKeyWhileOpen(t *testing.T) {
	c, _ := newController(t)
	require.NoError(t, c.Open(3))

	assert.True(t, c.HandleKey(KeyArrowRight))
	assert.Equal(t, 1, c.Index())
	assert.True(t, c.HandleKey(KeyArrowLeft))
	assert.True(t, c.HandleKey(KeyArrowLeft))
	assert.Equal(t, 3, c.Index())
	assert.False(t, c.HandleKey("Enter"))
	assert.True(t, c.HandleKey(KeyEscape))
	assert.Equal(t, Closed, c.State())
}

func TestSnapshotRestore(t *testing.T) {
	c, _ := newController(t)
	require.NoError(t, c.Open(3))
	c.GoToSlide(2)
	s := c.Snapshot()
	assert.Equal(t, Session{Open: true, ProductID: 3, Index: 2}, s)

	restored, v := newController(t)
	require.NoError(t, restored.Restore(s))
	assert.Equal(t, Open, restored.State())
	assert.Equal(t, 2, restored.Index())
	assert.Equal(t, 2, v.slide)

	restored.Close()
	assert.Equal(t, Session{}, restored.Snapshot())
}

func TestRestoreUnknownProduct(t *testing.T) {
	c, v := newController(t)

	err := c.Restore(Session{Open: true, ProductID: 42, Index: 1})
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Equal(t, Closed, c.State())
	assert.False(t, v.locked)
}

func TestRestoreStaleIndexFallsBackToFirstImage(t *testing.T) {
	c, _ := newController(t)

	require.NoError(t, c.Restore(Session{Open: true, ProductID: 2, Index: 7}))
	assert.Equal(t, 0, c.Index())
}

func TestDownload(t *testing.T) {
	c, _ := newController(t)

	_, err := c.Download(0)
	assert.ErrorIs(t, err, ErrProductNotFound)

	p, err := c.Download(1)
	require.NoError(t, err)
	assert.Equal(t, "a", p.Slug)

	require.NoError(t, c.Open(2))
	p, err = c.Download(0)
	require.NoError(t, err)
	assert.Equal(t, "b", p.Slug)
	assert.Equal(t, Open, c.State())
}
