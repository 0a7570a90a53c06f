// Package checkout runs the two-step checkout wizard and turns a reviewed
// cart into an order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"farmshop/internal/audit"
	"farmshop/internal/cart"
	catalogmodels "farmshop/internal/catalog/models"
	identitymodels "farmshop/internal/identity/models"
	"farmshop/internal/notify"
	"farmshop/internal/orders/models"
	"farmshop/internal/platform/metrics"
	id "farmshop/pkg/domain"
	dErrors "farmshop/pkg/domain-errors"
	"farmshop/pkg/email"
	"farmshop/pkg/platform/sentinel"
	"farmshop/pkg/requestcontext"
)

const (
	lockStripes   = 64
	sessionPrefix = "checkout:"
)

// DefaultDeliveryCost is the flat shipping rate in CZK.
var DefaultDeliveryCost = decimal.NewFromInt(99)

// ErrCartEmpty is returned when the wizard is entered with nothing to buy.
var ErrCartEmpty = dErrors.New(dErrors.CodeConflict, "cart is empty")

type SessionStore interface {
	Get(ctx context.Context, key string) (*Session, error)
	Save(ctx context.Context, key string, sess *Session) error
	Delete(ctx context.Context, key string) error
}

type CartService interface {
	Load(ctx context.Context, session string) (cart.State, error)
	Clear(ctx context.Context, session string) error
}

type ProductReader interface {
	Product(ctx context.Context, productID id.ProductID) (*catalogmodels.Product, error)
}

type StockAdjuster interface {
	AdjustStock(ctx context.Context, productID id.ProductID, delta int) error
}

type OrderStore interface {
	Create(ctx context.Context, o *models.Order) error
	UpdateStatus(ctx context.Context, orderID id.OrderID, status models.Status, at time.Time) error
}

// ProfileReader prefills shipping details from the customer's profile.
type ProfileReader interface {
	GetProfile(ctx context.Context, userID id.UserID) (*identitymodels.User, error)
}

type Notifier interface {
	OrderConfirmation(ctx context.Context, data notify.OrderConfirmation) error
}

// Service drives the wizard. Sessions are keyed by the cart session so a
// guest cart and its checkout share one identity.
type Service struct {
	sessions     SessionStore
	carts        CartService
	orders       OrderStore
	products     ProductReader
	stock        StockAdjuster
	profiles     ProfileReader
	notifier     Notifier
	deliveryCost decimal.Decimal
	locks        [lockStripes]sync.Mutex
	audit        *audit.Publisher
	metrics      *metrics.Metrics
	tracer       trace.Tracer
	logger       *slog.Logger
}

type Option func(*Service)

func WithProfiles(p ProfileReader) Option {
	return func(s *Service) { s.profiles = p }
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithDeliveryCost(cost decimal.Decimal) Option {
	return func(s *Service) { s.deliveryCost = cost }
}

func WithAuditPublisher(p *audit.Publisher) Option {
	return func(s *Service) { s.audit = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(
	sessions SessionStore,
	carts CartService,
	orders OrderStore,
	products ProductReader,
	stock StockAdjuster,
	opts ...Option,
) (*Service, error) {
	if sessions == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart service is required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order store is required")
	}
	if products == nil || stock == nil {
		return nil, fmt.Errorf("catalog ports are required")
	}

	s := &Service{
		sessions:     sessions,
		carts:        carts,
		orders:       orders,
		products:     products,
		stock:        stock,
		deliveryCost: DefaultDeliveryCost,
		tracer:       otel.Tracer("farmshop/checkout"),
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Enter opens the wizard. A just-completed order is reported exactly once,
// and only while the cart is still empty; once something new is in the cart
// the marker is dropped. Otherwise the cart must hold something and the
// shipping step is shown, prefilled from the profile on first entry.
func (s *Service) Enter(ctx context.Context, cartSession string, userID id.UserID) (*View, error) {
	mu := s.lock(cartSession)
	mu.Lock()
	defer mu.Unlock()

	key := sessionPrefix + cartSession
	sess, err := s.loadSession(ctx, key)
	if err != nil {
		return nil, err
	}
	c, err := s.carts.Load(ctx, cartSession)
	if err != nil {
		return nil, err
	}

	if done := sess.JustCompleted; done != nil {
		if c.IsEmpty() {
			if err := s.sessions.Delete(ctx, key); err != nil {
				return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to reset checkout")
			}
			return &View{Step: StepCollectingShipping, Completed: done}, nil
		}
		sess.JustCompleted = nil
	}
	if c.IsEmpty() {
		return nil, ErrCartEmpty
	}

	view := &View{}
	if !sess.Prefilled && !userID.IsNil() {
		if err := s.prefill(ctx, sess, userID); err != nil {
			s.logger.WarnContext(ctx, "failed to prefill shipping details",
				"user_id", userID.String(),
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
			view.Warning = "profile could not be loaded"
		}
	}
	sess.Step = StepCollectingShipping
	if err := s.saveSession(ctx, key, sess); err != nil {
		return nil, err
	}

	view.Step = sess.Step
	view.Shipping = sess.Shipping
	return view, nil
}

func (s *Service) prefill(ctx context.Context, sess *Session, userID id.UserID) error {
	if s.profiles == nil {
		return nil
	}
	p, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return err
	}
	sess.Shipping = ShippingDetails{
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Email:          p.Email,
		Phone:          p.Phone,
		Address:        p.Address,
		City:           p.City,
		State:          p.State,
		ZipCode:        p.ZipCode,
		DeliveryMethod: sess.Shipping.DeliveryMethod,
	}
	if p.FirstName == "" && p.LastName == "" {
		sess.Shipping.FirstName, sess.Shipping.LastName = email.DeriveNameFromEmail(p.Email)
	}
	sess.Prefilled = true
	return nil
}

// SubmitShipping validates the details and advances to the review step.
// An invalid submission leaves the session as it was.
func (s *Service) SubmitShipping(ctx context.Context, cartSession string, details ShippingDetails) (*Summary, error) {
	details.Normalize()
	if err := details.Validate(); err != nil {
		return nil, err
	}

	mu := s.lock(cartSession)
	mu.Lock()
	defer mu.Unlock()

	key := sessionPrefix + cartSession
	sess, err := s.loadSession(ctx, key)
	if err != nil {
		return nil, err
	}
	c, err := s.carts.Load(ctx, cartSession)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, ErrCartEmpty
	}

	sess.JustCompleted = nil
	sess.Shipping = details
	sess.Step = StepReviewingSummary
	if err := s.saveSession(ctx, key, sess); err != nil {
		return nil, err
	}
	return s.summarize(c, details), nil
}

// Back returns from the review step to the shipping form, keeping the
// details.
func (s *Service) Back(ctx context.Context, cartSession string) (*View, error) {
	mu := s.lock(cartSession)
	mu.Lock()
	defer mu.Unlock()

	key := sessionPrefix + cartSession
	sess, err := s.loadSession(ctx, key)
	if err != nil {
		return nil, err
	}
	if sess.Step != StepReviewingSummary {
		return nil, dErrors.New(dErrors.CodeConflict, "no previous step")
	}
	sess.Step = StepCollectingShipping
	if err := s.saveSession(ctx, key, sess); err != nil {
		return nil, err
	}
	return &View{Step: sess.Step, Shipping: sess.Shipping}, nil
}

// Summary renders the review step from the live cart.
func (s *Service) Summary(ctx context.Context, cartSession string) (*Summary, error) {
	sess, c, err := s.reviewing(ctx, cartSession)
	if err != nil {
		return nil, err
	}
	return s.summarize(c, sess.Shipping), nil
}

// Confirm places the order. Step changes of one cart session are serialized
// within the process, so a confirmation never interleaves with another
// transition of the same session.
func (s *Service) Confirm(ctx context.Context, cartSession string, userID id.UserID) (*Result, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "sign in required")
	}
	mu := s.lock(cartSession)
	mu.Lock()
	defer mu.Unlock()

	sess, c, err := s.reviewing(ctx, cartSession)
	if err != nil {
		return nil, err
	}
	return s.placeOrder(ctx, cartSession, userID, sess, c)
}

func (s *Service) reviewing(ctx context.Context, cartSession string) (*Session, cart.State, error) {
	sess, err := s.loadSession(ctx, sessionPrefix+cartSession)
	if err != nil {
		return nil, cart.State{}, err
	}
	if sess.Step != StepReviewingSummary {
		return nil, cart.State{}, dErrors.New(dErrors.CodeConflict, "shipping details are required first")
	}
	c, err := s.carts.Load(ctx, cartSession)
	if err != nil {
		return nil, cart.State{}, err
	}
	if c.IsEmpty() {
		return nil, cart.State{}, ErrCartEmpty
	}
	return sess, c, nil
}

func (s *Service) summarize(c cart.State, details ShippingDetails) *Summary {
	cost := decimal.Zero
	if details.DeliveryMethod.Ships() {
		cost = s.deliveryCost
	}
	return &Summary{
		Items:             c.Items,
		ItemsTotal:        c.Total,
		DeliveryMethod:    details.DeliveryMethod,
		DeliveryCost:      cost,
		TotalWithDelivery: TotalWithDelivery(c.Total, details.DeliveryMethod, s.deliveryCost),
		Shipping:          details,
	}
}

func (s *Service) loadSession(ctx context.Context, key string) (*Session, error) {
	sess, err := s.sessions.Get(ctx, key)
	if errors.Is(err, sentinel.ErrNotFound) {
		return newSession(), nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load checkout")
	}
	return sess, nil
}

func (s *Service) saveSession(ctx context.Context, key string, sess *Session) error {
	if err := s.sessions.Save(ctx, key, sess); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to save checkout")
	}
	return nil
}

func (s *Service) lock(session string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(session))
	return &s.locks[h.Sum32()%lockStripes]
}
