// Package events maps browser events posted by the page to modal controller
// operations. Bindings are registered explicitly; unbound events are ignored.
package events

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"lumierespirituelle.fr/storefront/internal/catalog"
	"lumierespirituelle.fr/storefront/internal/logging"
	"lumierespirituelle.fr/storefront/internal/modal"
)

// Event types.
const (
	Click   = "click"
	Keydown = "keydown"
)

// Element ids and pseudo-targets events can be bound to.
const (
	TargetPreview       = "preview"
	TargetModal         = "productModal"
	TargetModalContent  = "modalContent"
	TargetModalClose    = "modalClose"
	TargetPrev          = "prevBtn"
	TargetNext          = "nextBtn"
	TargetIndicator     = "indicator"
	TargetDocument      = "document"
	TargetModalDownload = "modalDownload"
	TargetPageDownload  = "downloadBtn"
)

// ErrInvalidEvent is returned by Parse for malformed event forms.
var ErrInvalidEvent = errors.New("events: invalid event")

// Event is one user interaction as posted by the page.
type Event struct {
	Type   string
	Target string
	Key    string
	// Index is -1 when the event carries no index.
	Index int
	ID    int
}

// Parse reads an event from form values.
func Parse(form url.Values) (Event, error) {
	e := Event{
		Type:   strings.ToLower(strings.TrimSpace(form.Get("type"))),
		Target: strings.TrimSpace(form.Get("target")),
		Key:    form.Get("key"),
		Index:  -1,
	}
	if e.Type == "" || e.Target == "" {
		return Event{}, fmt.Errorf("%w: type and target are required", ErrInvalidEvent)
	}
	if raw := form.Get("index"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Event{}, fmt.Errorf("%w: index %q", ErrInvalidEvent, raw)
		}
		e.Index = n
	}
	if raw := form.Get("id"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Event{}, fmt.Errorf("%w: id %q", ErrInvalidEvent, raw)
		}
		e.ID = n
	}
	return e, nil
}

// Handler applies an event.
type Handler func(ctx context.Context, e Event) error

type binding struct {
	typ    string
	target string
}

// Registry holds explicit event bindings.
type Registry struct {
	handlers map[binding][]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[binding][]Handler)}
}

// On binds h to events of type typ on target. Handlers run in registration order.
func (r *Registry) On(typ, target string, h Handler) {
	k := binding{typ, target}
	r.handlers[k] = append(r.handlers[k], h)
}

// Dispatch runs the handlers bound to e and reports whether any were bound.
func (r *Registry) Dispatch(ctx context.Context, e Event) (bool, error) {
	hs := r.handlers[binding{e.Type, e.Target}]
	if len(hs) == 0 {
		logging.FromContext(ctx).Debug("unbound event",
			zap.String("type", e.Type), zap.String("target", e.Target))
		return false, nil
	}
	for _, h := range hs {
		if err := h(ctx, e); err != nil {
			return true, err
		}
	}
	return true, nil
}

// BindModal registers the modal open/close, carousel and keyboard bindings.
func BindModal(r *Registry, c *modal.Controller) {
	r.On(Click, TargetPreview, func(ctx context.Context, e Event) error {
		err := c.Open(e.ID)
		if errors.Is(err, modal.ErrProductNotFound) {
			return nil
		}
		return err
	})
	closeModal := func(context.Context, Event) error {
		c.Close()
		return nil
	}
	r.On(Click, TargetModalClose, closeModal)
	r.On(Click, TargetModal, closeModal)
	r.On(Click, TargetModalContent, func(context.Context, Event) error { return nil })
	r.On(Click, TargetPrev, func(context.Context, Event) error {
		c.Previous()
		return nil
	})
	r.On(Click, TargetNext, func(context.Context, Event) error {
		c.Next()
		return nil
	})
	r.On(Click, TargetIndicator, func(ctx context.Context, e Event) error {
		if !c.GoToSlide(e.Index) {
			logging.FromContext(ctx).Debug("indicator ignored", zap.Int("index", e.Index))
		}
		return nil
	})
	r.On(Keydown, TargetDocument, func(_ context.Context, e Event) error {
		c.HandleKey(e.Key)
		return nil
	})
}

// Acknowledger shows the download acknowledgment for p next to the control
// that fired.
type Acknowledger func(ctx context.Context, target string, p catalog.Product) error

// BindDownload registers the stub download controls.
func BindDownload(r *Registry, c *modal.Controller, ack Acknowledger) {
	h := func(ctx context.Context, e Event) error {
		p, err := c.Download(e.ID)
		if err != nil {
			// already logged; nothing to acknowledge
			return nil
		}
		return ack(ctx, e.Target, p)
	}
	r.On(Click, TargetModalDownload, h)
	r.On(Click, TargetPageDownload, h)
}
