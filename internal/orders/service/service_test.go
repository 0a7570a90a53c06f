package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Notifier EmailLookup Exporter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"farmshop/internal/audit"
	"farmshop/internal/notify"
	"farmshop/internal/orders/models"
	"farmshop/internal/orders/service/mocks"
	"farmshop/internal/orders/store"
	"farmshop/internal/platform/metrics"
	id "farmshop/pkg/domain"
	dErrors "farmshop/pkg/domain-errors"
	"farmshop/pkg/requestcontext"
)

type OrderServiceSuite struct {
	suite.Suite
	ctx      context.Context
	ctrl     *gomock.Controller
	store    *store.InMemoryStore
	notifier *mocks.MockNotifier
	emails   *mocks.MockEmailLookup
	exporter *mocks.MockExporter
	events   *audit.InMemoryStore
	metrics  *metrics.Metrics
	svc      *Service
	owner    id.UserID
}

func TestOrderServiceSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceSuite))
}

func (s *OrderServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = store.NewInMemory()
	s.notifier = mocks.NewMockNotifier(s.ctrl)
	s.emails = mocks.NewMockEmailLookup(s.ctrl)
	s.exporter = mocks.NewMockExporter(s.ctrl)
	s.events = audit.NewInMemoryStore()
	s.metrics = metrics.NewWithRegisterer(prometheus.NewRegistry())
	s.owner = id.NewUserID()
	s.ctx = requestcontext.WithAuth(context.Background(), id.NewUserID(), true, "jti-admin")
	s.svc = New(s.store, s.notifier, s.emails, s.exporter,
		WithAuditPublisher(audit.NewPublisher(s.events)),
		WithMetrics(s.metrics),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func (s *OrderServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *OrderServiceSuite) placeOrder(customer string) *models.Order {
	o := &models.Order{
		ID:             id.NewOrderID(),
		UserID:         s.owner,
		Status:         models.StatusPending,
		TotalAmount:    decimal.NewFromInt(200),
		DeliveryMethod: models.DeliveryPickup,
		CustomerName:   customer,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
		Items: []models.Item{
			{ID: uuid.New(), ProductID: id.NewProductID(), Quantity: 2, UnitPrice: decimal.NewFromInt(100)},
		},
	}
	s.Require().NoError(s.store.Create(context.Background(), o))
	return o
}

func (s *OrderServiceSuite) TestSetStatusPersistsAndNotifiesOwner() {
	o := s.placeOrder("Jana Nováková")

	s.emails.EXPECT().Email(gomock.Any(), s.owner).Return("jana@farma.cz", nil)
	s.notifier.EXPECT().OrderStatusChanged(gomock.Any(), notify.StatusChanged{
		OrderNumber: o.Number,
		Email:       "jana@farma.cz",
		StatusLabel: "Odesláno",
	}).Return(nil)

	res, err := s.svc.SetStatus(s.ctx, o.ID, models.StatusShipped)
	s.Require().NoError(err)
	s.Empty(res.Warning)
	s.Equal(models.StatusShipped, res.Order.Status)
	s.Len(res.Order.Items, 1)

	stored, err := s.store.FindByID(context.Background(), o.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusShipped, stored.Status)

	s.Equal(1.0, testutil.ToFloat64(s.metrics.OrderStatusChanges.WithLabelValues("shipped")))
	events, err := s.events.ListByType(context.Background(), audit.EventOrderStatusChanged)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal("shipped", events[0].Attributes["status"])
}

func (s *OrderServiceSuite) TestSetStatusNotificationFailureKeepsStatus() {
	o := s.placeOrder("Jana")

	s.emails.EXPECT().Email(gomock.Any(), s.owner).Return("jana@farma.cz", nil)
	s.notifier.EXPECT().OrderStatusChanged(gomock.Any(), gomock.Any()).Return(errors.New("smtp down"))

	res, err := s.svc.SetStatus(s.ctx, o.ID, models.StatusPaid)
	s.Require().NoError(err)
	s.NotEmpty(res.Warning)

	stored, err := s.store.FindByID(context.Background(), o.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPaid, stored.Status)
}

func (s *OrderServiceSuite) TestSetStatusOwnerLookupFailureIsWarning() {
	o := s.placeOrder("Jana")

	s.emails.EXPECT().Email(gomock.Any(), s.owner).Return("", errors.New("profile gone"))

	res, err := s.svc.SetStatus(s.ctx, o.ID, models.StatusPaid)
	s.Require().NoError(err)
	s.NotEmpty(res.Warning)
}

func (s *OrderServiceSuite) TestAnyTransitionAllowed() {
	o := s.placeOrder("Jana")
	s.emails.EXPECT().Email(gomock.Any(), gomock.Any()).Return("jana@farma.cz", nil).Times(3)
	s.notifier.EXPECT().OrderStatusChanged(gomock.Any(), gomock.Any()).Return(nil).Times(3)

	for _, st := range []models.Status{models.StatusShipped, models.StatusPending, models.StatusCancelled} {
		res, err := s.svc.SetStatus(s.ctx, o.ID, st)
		s.Require().NoError(err)
		s.Equal(st, res.Order.Status)
	}
}

func (s *OrderServiceSuite) TestSetStatusRequiresAdmin() {
	o := s.placeOrder("Jana")
	ctx := requestcontext.WithAuth(context.Background(), s.owner, false, "jti")

	_, err := s.svc.SetStatus(ctx, o.ID, models.StatusPaid)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *OrderServiceSuite) TestSetStatusRejectsUnknownStatus() {
	o := s.placeOrder("Jana")
	_, err := s.svc.SetStatus(s.ctx, o.ID, models.Status("lost"))
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *OrderServiceSuite) TestSetStatusUnknownOrder() {
	_, err := s.svc.SetStatus(s.ctx, id.NewOrderID(), models.StatusPaid)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *OrderServiceSuite) TestListForUserNewestFirst() {
	first := s.placeOrder("Jana")
	second := s.placeOrder("Jana")
	s.placeOrderFor(id.NewUserID())

	orders, err := s.svc.ListForUser(s.ctx, s.owner)
	s.Require().NoError(err)
	s.Require().Len(orders, 2)
	s.Equal(second.ID, orders[0].ID)
	s.Equal(first.ID, orders[1].ID)
}

func (s *OrderServiceSuite) placeOrderFor(userID id.UserID) {
	o := &models.Order{
		ID:             id.NewOrderID(),
		UserID:         userID,
		Status:         models.StatusPending,
		TotalAmount:    decimal.NewFromInt(10),
		DeliveryMethod: models.DeliveryPickup,
		CustomerName:   "Petr",
		CreatedAt:      time.Now(),
	}
	s.Require().NoError(s.store.Create(context.Background(), o))
}

func (s *OrderServiceSuite) TestDeleteRecordsEvent() {
	o := s.placeOrder("Jana")

	s.Require().NoError(s.svc.Delete(s.ctx, o.ID))
	_, err := s.svc.Get(s.ctx, o.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	events, err := s.events.ListByType(context.Background(), audit.EventOrderDeleted)
	s.Require().NoError(err)
	s.Len(events, 1)

	s.True(dErrors.HasCode(s.svc.Delete(s.ctx, o.ID), dErrors.CodeNotFound))
}

func (s *OrderServiceSuite) TestExportNamesFileAfterNumber() {
	o := s.placeOrder("Jana")
	s.exporter.EXPECT().Render(gomock.Any(), gomock.Any()).DoAndReturn(func(w io.Writer, got *models.Order) error {
		s.Equal(o.ID, got.ID)
		_, err := w.Write([]byte("%PDF-1.3"))
		return err
	})

	body, name, err := s.svc.Export(s.ctx, o.ID)
	s.Require().NoError(err)
	s.Equal("%PDF-1.3", string(body))
	s.Equal("objednavka_1.pdf", name)
}
