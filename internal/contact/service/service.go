// Package service receives contact form messages and manages them in the
// back office.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"farmshop/internal/audit"
	"farmshop/internal/contact/models"
	"farmshop/internal/notify"
	id "farmshop/pkg/domain"
	dErrors "farmshop/pkg/domain-errors"
	"farmshop/pkg/platform/sentinel"
	"farmshop/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, m *models.Message) error
	List(ctx context.Context, limit int) ([]*models.Message, error)
	SetRead(ctx context.Context, messageID id.MessageID, read bool, at time.Time) error
	Delete(ctx context.Context, messageID id.MessageID) error
}

type Notifier interface {
	NewContactMessage(ctx context.Context, msg notify.ContactMessage) error
}

// SubmitResult carries the stored message and a warning when the admin
// could not be notified.
type SubmitResult struct {
	Message *models.Message
	Warning string
}

type Service struct {
	store    Store
	notifier Notifier
	audit    *audit.Publisher
	logger   *slog.Logger
}

type Option func(*Service)

func WithAuditPublisher(p *audit.Publisher) Option {
	return func(s *Service) { s.audit = p }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(store Store, notifier Notifier, opts ...Option) *Service {
	s := &Service{store: store, notifier: notifier, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit stores a message as unread and notifies the shop admin
// best-effort.
func (s *Service) Submit(ctx context.Context, in models.Submission) (*SubmitResult, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	m := &models.Message{
		ID:        id.NewMessageID(),
		Name:      in.Name,
		Email:     in.Email,
		Subject:   in.Subject,
		Message:   in.Message,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, m); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save message")
	}
	s.audit.Record(ctx, audit.EventContactReceived, requestcontext.UserID(ctx), m.ID.String(),
		"email", m.Email,
		"subject", m.Subject,
	)

	res := &SubmitResult{Message: m}
	if err := s.notifier.NewContactMessage(ctx, notify.ContactMessage{
		Name:    m.Name,
		Email:   m.Email,
		Subject: m.Subject,
		Content: m.Message,
	}); err != nil {
		s.logger.WarnContext(ctx, "contact notification failed",
			"message_id", m.ID.String(),
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		res.Warning = "message saved but the shop could not be notified"
	}
	return res, nil
}

// List returns messages newest first.
func (s *Service) List(ctx context.Context) ([]*models.Message, error) {
	msgs, err := s.store.List(ctx, 0)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list messages")
	}
	return msgs, nil
}

func (s *Service) SetRead(ctx context.Context, messageID id.MessageID, read bool) error {
	if err := s.store.SetRead(ctx, messageID, read, requestcontext.Now(ctx)); err != nil {
		return wrapMessageErr(err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, messageID id.MessageID) error {
	if err := s.store.Delete(ctx, messageID); err != nil {
		return wrapMessageErr(err)
	}
	return nil
}

func wrapMessageErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "message not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "message store failed")
}
