package cart

import (
	"context"
	"errors"
	"hash/fnv"
	"log/slog"
	"sync"

	"farmshop/internal/catalog/models"
	"farmshop/internal/platform/metrics"
	id "farmshop/pkg/domain"
	dErrors "farmshop/pkg/domain-errors"
	"farmshop/pkg/platform/sentinel"
	"farmshop/pkg/requestcontext"
)

const lockStripes = 64

// SnapshotStore persists serialized cart snapshots by key.
type SnapshotStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// ProductReader looks up live catalog products.
type ProductReader interface {
	Product(ctx context.Context, productID id.ProductID) (*models.Product, error)
}

// Service wraps the pure cart transitions with load and save. Mutations of
// one session are serialized within the process; across processes the last
// write wins.
type Service struct {
	store     SnapshotStore
	products  ProductReader
	namespace string
	locks     [lockStripes]sync.Mutex
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

type Option func(*Service)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func NewService(store SnapshotStore, products ProductReader, namespace string, opts ...Option) *Service {
	s := &Service{
		store:     store,
		products:  products,
		namespace: namespace,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key is the storage key of a cart session.
func (s *Service) Key(session string) string {
	return s.namespace + ":" + session
}

// Load restores the cart of a session. A missing snapshot is an empty cart;
// a malformed one is deleted and also yields an empty cart.
func (s *Service) Load(ctx context.Context, session string) (State, error) {
	mu := s.lock(session)
	mu.Lock()
	defer mu.Unlock()
	return s.load(ctx, session)
}

// AddProduct adds qty of a live, enabled product.
func (s *Service) AddProduct(ctx context.Context, session string, productID id.ProductID, qty int) (State, error) {
	if qty < 1 {
		return State{}, dErrors.Validation([]dErrors.FieldError{{Field: "quantity", Message: "quantity must be at least 1"}})
	}
	p, err := s.products.Product(ctx, productID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return State{}, dErrors.New(dErrors.CodeNotFound, "product not available")
		}
		return State{}, err
	}
	if p.Disabled {
		return State{}, dErrors.New(dErrors.CodeNotFound, "product not available")
	}
	snapshot := Product{ID: p.ID, Name: p.Name, Price: p.Price, Unit: p.Unit, ImageURL: p.ImageURL}
	return s.mutate(ctx, session, "add", func(st State) State {
		return AddToCart(st, snapshot, qty)
	})
}

// UpdateQuantity sets the quantity of a line. A quantity below one would
// store a snapshot that no longer loads, so it is rejected here.
func (s *Service) UpdateQuantity(ctx context.Context, session string, productID id.ProductID, qty int) (State, error) {
	if qty < 1 {
		return State{}, dErrors.Validation([]dErrors.FieldError{{Field: "quantity", Message: "quantity must be at least 1"}})
	}
	return s.mutate(ctx, session, "update", func(st State) State {
		return UpdateQuantity(st, productID, qty)
	})
}

func (s *Service) Remove(ctx context.Context, session string, productID id.ProductID) (State, error) {
	return s.mutate(ctx, session, "remove", func(st State) State {
		return RemoveFromCart(st, productID)
	})
}

func (s *Service) Clear(ctx context.Context, session string) error {
	_, err := s.mutate(ctx, session, "clear", func(State) State {
		return ClearCart()
	})
	return err
}

// mutate runs load, transition and save under the session's stripe lock so
// the stored snapshot matches the returned state.
func (s *Service) mutate(ctx context.Context, session, op string, fn func(State) State) (State, error) {
	mu := s.lock(session)
	mu.Lock()
	defer mu.Unlock()

	current, err := s.load(ctx, session)
	if err != nil {
		return State{}, err
	}
	next := fn(current)
	data, err := EncodeSnapshot(next)
	if err != nil {
		return State{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode cart")
	}
	if err := s.store.Set(ctx, s.Key(session), data); err != nil {
		return State{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to save cart")
	}
	s.metrics.IncrementCartMutation(op)
	return next, nil
}

func (s *Service) load(ctx context.Context, session string) (State, error) {
	key := s.Key(session)
	data, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Empty(), nil
		}
		return State{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load cart")
	}
	st, err := DecodeSnapshot(data)
	if err != nil {
		s.logger.WarnContext(ctx, "discarding malformed cart snapshot",
			"request_id", requestcontext.RequestID(ctx),
			"key", key,
			"error", err,
		)
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return State{}, dErrors.Wrap(delErr, dErrors.CodeUnavailable, "failed to discard malformed cart")
		}
		return Empty(), nil
	}
	return st, nil
}

func (s *Service) lock(session string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(session))
	return &s.locks[h.Sum32()%lockStripes]
}
