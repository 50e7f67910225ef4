package catalog

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrNotFound is returned by lookups that match no product.
var ErrNotFound = errors.New("catalog: product not found")

// Store holds the loaded catalog. A successful load swaps the whole collection
// at once, so readers never observe a partially loaded catalog.
type Store struct {
	source  Source
	logger  *zap.Logger
	timeout time.Duration
	ttl     time.Duration
	now     func() time.Time

	group singleflight.Group

	mu          sync.RWMutex
	products    []Product
	attempted   bool
	attemptedAt time.Time
}

// StoreOption customises a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for load diagnostics.
func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTimeout bounds each fetch of the catalog source.
func WithTimeout(d time.Duration) StoreOption {
	return func(s *Store) { s.timeout = d }
}

// WithRefreshTTL makes Ensure reload the catalog once d has elapsed since the
// previous attempt. Zero disables refreshing.
func WithRefreshTTL(d time.Duration) StoreOption {
	return func(s *Store) { s.ttl = d }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// NewStore builds an empty store reading from source.
func NewStore(source Source, opts ...StoreOption) *Store {
	s := &Store{
		source: source,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewStaticStore builds a store already holding products. It never fetches.
func NewStaticStore(products []Product) *Store {
	s := NewStore(nil)
	s.products = sanitize(products, s.logger)
	s.attempted = true
	return s
}

// Load fetches and decodes the catalog once and returns what that fetch
// produced. On success the held collection is replaced by the result. Any
// failure (transport, status, malformed JSON) is logged and Load returns an
// empty collection, but the store keeps the collection it already held: after
// a failed reload the return value of Load and Products can differ.
func (s *Store) Load(ctx context.Context) []Product {
	v, _, _ := s.group.Do("load", func() (any, error) {
		return s.load(ctx), nil
	})
	return v.([]Product)
}

func (s *Store) load(ctx context.Context) []Product {
	s.mu.Lock()
	s.attempted = true
	s.attemptedAt = s.now()
	s.mu.Unlock()

	if s.source == nil {
		return s.Products()
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	log := s.logger.With(zap.String("source", s.source.String()))
	rc, err := s.source.Open(ctx)
	if err != nil {
		log.Warn("catalog load failed", zap.Error(err))
		return []Product{}
	}
	defer rc.Close()

	products, err := Decode(rc)
	if err != nil {
		log.Warn("catalog decode failed", zap.Error(err))
		return []Product{}
	}
	products = sanitize(products, log)

	s.mu.Lock()
	s.products = products
	s.mu.Unlock()
	log.Info("catalog loaded", zap.Int("products", len(products)))
	return clone(products)
}

// Ensure loads the catalog if it was never attempted or the refresh TTL has
// elapsed. Concurrent callers share a single fetch.
func (s *Store) Ensure(ctx context.Context) {
	if !s.stale() {
		return
	}
	s.group.Do("load", func() (any, error) {
		if !s.stale() {
			return s.Products(), nil
		}
		// the shared fetch must outlive the request that triggered it
		return s.load(context.WithoutCancel(ctx)), nil
	})
}

func (s *Store) stale() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.attempted || (s.ttl > 0 && s.now().Sub(s.attemptedAt) >= s.ttl)
}

// Products returns the held collection in catalog order.
func (s *Store) Products() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.products)
}

// FindByID returns the first product with the given id.
func (s *Store) FindByID(id int) (Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// FindBySlug returns the first product with the given slug.
func (s *Store) FindBySlug(slug string) (Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.Slug == slug {
			return p, true
		}
	}
	return Product{}, false
}

// Featured returns every featured product in catalog order.
func (s *Store) Featured() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FilterFeatured(s.products)
}

// Related returns up to limit products related to p. See FilterRelated.
func (s *Store) Related(p Product, limit int) []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FilterRelated(s.products, p, limit)
}

// FilterFeatured returns the featured subset of products, order preserved.
func FilterFeatured(products []Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out
}

// FilterRelated returns products other than p that share its category or are
// featured, in catalog order, truncated to limit.
func FilterRelated(products []Product, p Product, limit int) []Product {
	if limit <= 0 {
		return []Product{}
	}
	out := make([]Product, 0, limit)
	for _, candidate := range products {
		if len(out) == limit {
			break
		}
		if candidate.ID == p.ID {
			continue
		}
		if candidate.Category == p.Category || candidate.Featured {
			out = append(out, candidate)
		}
	}
	return out
}

// sanitize drops products violating the catalog invariants: invalid fields,
// and ids or slugs already seen earlier in the document.
func sanitize(products []Product, logger *zap.Logger) []Product {
	out := make([]Product, 0, len(products))
	ids := make(map[int]struct{}, len(products))
	slugs := make(map[string]struct{}, len(products))
	for _, p := range products {
		if err := p.Validate(); err != nil {
			logger.Warn("catalog product skipped", zap.Int("id", p.ID), zap.Error(err))
			continue
		}
		if _, dup := ids[p.ID]; dup {
			logger.Warn("catalog product skipped: duplicate id", zap.Int("id", p.ID))
			continue
		}
		if _, dup := slugs[p.Slug]; dup {
			logger.Warn("catalog product skipped: duplicate slug", zap.Int("id", p.ID), zap.String("slug", p.Slug))
			continue
		}
		ids[p.ID] = struct{}{}
		slugs[p.Slug] = struct{}{}
		out = append(out, p)
	}
	return out
}

func clone(products []Product) []Product {
	out := make([]Product, len(products))
	copy(out, products)
	return out
}
