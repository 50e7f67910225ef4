// Package modal implements the product preview modal and its image carousel.
package modal

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"lumierespirituelle.fr/storefront/internal/catalog"
	"lumierespirituelle.fr/storefront/internal/logging"
)

// ErrProductNotFound is returned when an operation names an unknown product.
var ErrProductNotFound = errors.New("modal: product not found")

// State is the controller state.
type State int

const (
	Closed State = iota
	Open
)

func (s State) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}

// Keys handled while the modal is open.
const (
	KeyEscape     = "Escape"
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
)

// Finder looks products up by id.
type Finder interface {
	FindByID(id int) (catalog.Product, bool)
}

// View receives the visual side effects of controller transitions.
type View interface {
	Populate(p catalog.Product) error
	ShowSlide(index, count int)
	Show()
	Hide()
	LockScroll()
	UnlockScroll()
}

// Session is the persisted form of the controller state.
type Session struct {
	Open      bool `json:"open"`
	ProductID int  `json:"product_id,omitempty"`
	Index     int  `json:"index,omitempty"`
}

// Controller is the modal/carousel state machine. It is not safe for
// concurrent use; each request drives its own controller.
type Controller struct {
	finder Finder
	view   View
	logger *zap.Logger

	state   State
	product catalog.Product
	index   int
}

// NewController returns a Closed controller. A nil view discards side effects.
func NewController(finder Finder, view View, logger *zap.Logger) *Controller {
	if view == nil {
		view = nopView{}
	}
	return &Controller{finder: finder, view: view, logger: logging.OrNop(logger)}
}

func (c *Controller) State() State { return c.state }

func (c *Controller) Index() int { return c.index }

// Product returns the active product, if any.
func (c *Controller) Product() (catalog.Product, bool) {
	return c.product, c.state == Open
}

// Open activates product id at image 0. An unknown id leaves the controller
// and the view untouched.
func (c *Controller) Open(id int) error {
	p, ok := c.finder.FindByID(id)
	if !ok {
		c.logger.Warn("modal open: unknown product", zap.Int("product_id", id))
		return fmt.Errorf("%w: %d", ErrProductNotFound, id)
	}
	if err := c.view.Populate(p); err != nil {
		return fmt.Errorf("populate modal: %w", err)
	}
	c.state = Open
	c.product = p
	c.index = 0
	c.view.ShowSlide(0, len(p.Images))
	c.view.Show()
	c.view.LockScroll()
	return nil
}

// Close returns to Closed. The scroll lock is always released.
func (c *Controller) Close() {
	c.state = Closed
	c.product = catalog.Product{}
	c.index = 0
	c.view.Hide()
	c.view.UnlockScroll()
}

// GoToSlide moves the carousel to index. Out-of-range indexes and calls while
// Closed are ignored.
func (c *Controller) GoToSlide(index int) bool {
	if c.state != Open || index < 0 || index >= len(c.product.Images) {
		return false
	}
	c.index = index
	c.view.ShowSlide(index, len(c.product.Images))
	return true
}

// Next advances one image, wrapping from the last to the first.
func (c *Controller) Next() bool {
	n := len(c.product.Images)
	if n == 0 {
		return false
	}
	return c.GoToSlide((c.index + 1) % n)
}

// Previous steps back one image, wrapping from the first to the last.
func (c *Controller) Previous() bool {
	n := len(c.product.Images)
	if n == 0 {
		return false
	}
	return c.GoToSlide((c.index - 1 + n) % n)
}

// HandleKey applies a keyboard binding. Keys are ignored while Closed.
func (c *Controller) HandleKey(key string) bool {
	if c.state != Open {
		return false
	}
	switch key {
	case KeyEscape:
		c.Close()
		return true
	case KeyArrowLeft:
		return c.Previous()
	case KeyArrowRight:
		return c.Next()
	}
	return false
}

// Snapshot captures the state for persistence between requests.
func (c *Controller) Snapshot() Session {
	if c.state != Open {
		return Session{}
	}
	return Session{Open: true, ProductID: c.product.ID, Index: c.index}
}

// Restore replays a persisted session onto a fresh view. A session naming a
// product that no longer exists restores to Closed.
func (c *Controller) Restore(s Session) error {
	if !s.Open {
		c.Close()
		return nil
	}
	if err := c.Open(s.ProductID); err != nil {
		c.Close()
		return err
	}
	if s.Index != 0 && !c.GoToSlide(s.Index) {
		c.logger.Debug("stale carousel index", zap.Int("index", s.Index))
	}
	return nil
}

// Download resolves the product a download control refers to: id when
// positive, otherwise the active product. No transfer takes place.
func (c *Controller) Download(id int) (catalog.Product, error) {
	p, ok := c.product, c.state == Open
	if id > 0 {
		p, ok = c.finder.FindByID(id)
	}
	if !ok {
		c.logger.Warn("download: no product", zap.Int("product_id", id))
		return catalog.Product{}, ErrProductNotFound
	}
	c.logger.Info("download requested", zap.Int("product_id", p.ID), zap.String("slug", p.Slug))
	return p, nil
}

type nopView struct{}

func (nopView) Populate(catalog.Product) error { return nil }
func (nopView) ShowSlide(int, int)             {}
func (nopView) Show()                          {}
func (nopView) Hide()                          {}
func (nopView) LockScroll()                    {}
func (nopView) UnlockScroll()                  {}
