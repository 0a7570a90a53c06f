// Package service implements order history, the admin status workflow and
// order document export.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"farmshop/internal/audit"
	"farmshop/internal/notify"
	"farmshop/internal/orders/models"
	"farmshop/internal/platform/metrics"
	id "farmshop/pkg/domain"
	dErrors "farmshop/pkg/domain-errors"
	"farmshop/pkg/platform/sentinel"
	"farmshop/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, orderID id.OrderID) (*models.Order, error)
	ListByUser(ctx context.Context, userID id.UserID) ([]*models.Order, error)
	ListAdmin(ctx context.Context, filter models.AdminFilter) ([]*models.Order, error)
	UpdateStatus(ctx context.Context, orderID id.OrderID, status models.Status, at time.Time) error
	Delete(ctx context.Context, orderID id.OrderID) error
	CountByUser(ctx context.Context, userID id.UserID) (int, error)
}

// Notifier sends the status-changed mail.
type Notifier interface {
	OrderStatusChanged(ctx context.Context, data notify.StatusChanged) error
}

// EmailLookup resolves the mail address of an order's owner.
type EmailLookup interface {
	Email(ctx context.Context, userID id.UserID) (string, error)
}

// Exporter renders an order document.
type Exporter interface {
	Render(w io.Writer, o *models.Order) error
}

// StatusResult carries the updated order and a warning when the customer
// could not be notified.
type StatusResult struct {
	Order   *models.Order
	Warning string
}

// Service owns orders after they are placed.
type Service struct {
	store    Store
	notifier Notifier
	emails   EmailLookup
	exporter Exporter
	audit    *audit.Publisher
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

type Option func(*Service)

func WithAuditPublisher(p *audit.Publisher) Option {
	return func(s *Service) { s.audit = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(store Store, notifier Notifier, emails EmailLookup, exporter Exporter, opts ...Option) *Service {
	s := &Service{
		store:    store,
		notifier: notifier,
		emails:   emails,
		exporter: exporter,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListForUser returns the caller's orders, newest first.
func (s *Service) ListForUser(ctx context.Context, userID id.UserID) ([]*models.Order, error) {
	orders, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list orders")
	}
	return orders, nil
}

func (s *Service) ListAdmin(ctx context.Context, filter models.AdminFilter) ([]*models.Order, error) {
	orders, err := s.store.ListAdmin(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list orders")
	}
	return orders, nil
}

func (s *Service) Get(ctx context.Context, orderID id.OrderID) (*models.Order, error) {
	o, err := s.store.FindByID(ctx, orderID)
	if err != nil {
		return nil, wrapOrderErr(err)
	}
	return o, nil
}

// SetStatus moves an order to any status. The new status is persisted
// before the customer is notified; a failed notification is reported as a
// warning and the status stays.
func (s *Service) SetStatus(ctx context.Context, orderID id.OrderID, status models.Status) (*StatusResult, error) {
	if !requestcontext.IsAdmin(ctx) {
		return nil, dErrors.New(dErrors.CodeForbidden, "admin access required")
	}
	if !status.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown order status")
	}

	if err := s.store.UpdateStatus(ctx, orderID, status, requestcontext.Now(ctx)); err != nil {
		return nil, wrapOrderErr(err)
	}
	o, err := s.store.FindByID(ctx, orderID)
	if err != nil {
		return nil, wrapOrderErr(err)
	}

	s.metrics.IncrementStatusChange(string(status))
	s.audit.Record(ctx, audit.EventOrderStatusChanged, requestcontext.UserID(ctx), o.ID.String(),
		"order_number", o.Number,
		"status", string(status),
	)

	result := &StatusResult{Order: o}
	if err := s.notifyOwner(ctx, o); err != nil {
		result.Warning = "status updated but the customer could not be notified"
	}
	return result, nil
}

func (s *Service) notifyOwner(ctx context.Context, o *models.Order) error {
	email, err := s.emails.Email(ctx, o.UserID)
	if err != nil {
		s.logger.WarnContext(ctx, "order owner email lookup failed",
			"order_id", o.ID,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return err
	}
	return s.notifier.OrderStatusChanged(ctx, notify.StatusChanged{
		OrderNumber: o.Number,
		Email:       email,
		StatusLabel: o.Status.Label(),
	})
}

// Delete removes an order and its lines.
func (s *Service) Delete(ctx context.Context, orderID id.OrderID) error {
	if err := s.store.Delete(ctx, orderID); err != nil {
		return wrapOrderErr(err)
	}
	s.audit.Record(ctx, audit.EventOrderDeleted, requestcontext.UserID(ctx), orderID.String())
	return nil
}

// Export renders the order document and names the attachment after the
// order number.
func (s *Service) Export(ctx context.Context, orderID id.OrderID) ([]byte, string, error) {
	o, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, "", err
	}
	var buf bytes.Buffer
	if err := s.exporter.Render(&buf, o); err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to render order document")
	}
	return buf.Bytes(), fmt.Sprintf("objednavka_%d.pdf", o.Number), nil
}

func wrapOrderErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "order not found")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "order store failed")
	}
}
