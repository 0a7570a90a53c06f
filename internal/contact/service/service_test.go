package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Notifier

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"farmshop/internal/audit"
	"farmshop/internal/contact/models"
	"farmshop/internal/contact/service/mocks"
	"farmshop/internal/contact/store"
	"farmshop/internal/notify"
	id "farmshop/pkg/domain"
	dErrors "farmshop/pkg/domain-errors"
	"farmshop/pkg/requestcontext"
)

type ContactServiceSuite struct {
	suite.Suite
	ctx      context.Context
	ctrl     *gomock.Controller
	store    *store.InMemoryStore
	notifier *mocks.MockNotifier
	events   *audit.InMemoryStore
	svc      *Service
}

func TestContactServiceSuite(t *testing.T) {
	suite.Run(t, new(ContactServiceSuite))
}

func (s *ContactServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = store.NewInMemory()
	s.notifier = mocks.NewMockNotifier(s.ctrl)
	s.events = audit.NewInMemoryStore()
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	s.svc = New(s.store, s.notifier,
		WithAuditPublisher(audit.NewPublisher(s.events)),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func (s *ContactServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func submission() models.Submission {
	return models.Submission{Name: " Jana ", Email: "Jana@Example.cz", Subject: "Vejce", Message: "Máte vejce?"}
}

func (s *ContactServiceSuite) TestSubmit() {
	s.Run("stores unread and notifies the admin", func() {
		s.notifier.EXPECT().NewContactMessage(gomock.Any(), notify.ContactMessage{
			Name:    "Jana",
			Email:   "jana@example.cz",
			Subject: "Vejce",
			Content: "Máte vejce?",
		}).Return(nil)

		res, err := s.svc.Submit(s.ctx, submission())
		s.Require().NoError(err)
		s.Empty(res.Warning)
		s.False(res.Message.Read)

		n, err := s.store.CountUnread(s.ctx)
		s.Require().NoError(err)
		s.Equal(1, n)

		events, err := s.events.ListByType(s.ctx, audit.EventContactReceived)
		s.Require().NoError(err)
		s.Len(events, 1)
	})

	s.Run("notification failure is a warning", func() {
		s.notifier.EXPECT().NewContactMessage(gomock.Any(), gomock.Any()).Return(errors.New("smtp down"))

		res, err := s.svc.Submit(s.ctx, submission())
		s.Require().NoError(err)
		s.NotEmpty(res.Warning)

		msgs, err := s.svc.List(s.ctx)
		s.Require().NoError(err)
		s.Len(msgs, 2)
	})

	s.Run("invalid submission is not stored", func() {
		in := submission()
		in.Email = "nope"
		_, err := s.svc.Submit(s.ctx, in)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		msgs, err := s.svc.List(s.ctx)
		s.Require().NoError(err)
		s.Len(msgs, 2)
	})
}

func (s *ContactServiceSuite) TestAdmin() {
	s.notifier.EXPECT().NewContactMessage(gomock.Any(), gomock.Any()).Return(nil)
	res, err := s.svc.Submit(s.ctx, submission())
	s.Require().NoError(err)

	s.Run("mark read", func() {
		s.Require().NoError(s.svc.SetRead(s.ctx, res.Message.ID, true))
		msgs, err := s.svc.List(s.ctx)
		s.Require().NoError(err)
		s.True(msgs[0].Read)
	})

	s.Run("unknown message", func() {
		err := s.svc.SetRead(s.ctx, id.NewMessageID(), true)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("delete", func() {
		s.Require().NoError(s.svc.Delete(s.ctx, res.Message.ID))
		err := s.svc.Delete(s.ctx, res.Message.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
