package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"farmshop/internal/platform/metrics"
)

type NotifierSuite struct {
	suite.Suite
	sender   *RecordingSender
	metrics  *metrics.Metrics
	notifier *Notifier
}

func TestNotifierSuite(t *testing.T) {
	suite.Run(t, new(NotifierSuite))
}

func (s *NotifierSuite) SetupTest() {
	s.sender = &RecordingSender{}
	s.metrics = metrics.NewWithRegisterer(prometheus.NewRegistry())
	s.notifier = New(s.sender, "shop@farma.cz", []string{"admin@farma.cz"},
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(s.metrics),
	)
}

func (s *NotifierSuite) TestContactMessageEscapesInput() {
	err := s.notifier.NewContactMessage(context.Background(), ContactMessage{
		Name:    "Jana",
		Email:   "jana@farma.cz",
		Subject: "Vejce",
		Content: "<script>alert(1)</script>",
	})
	s.Require().NoError(err)

	msgs := s.sender.Messages()
	s.Require().Len(msgs, 1)
	s.Equal("Nová zpráva v systému", msgs[0].Subject)
	s.Equal([]string{"admin@farma.cz"}, msgs[0].To)
	s.NotContains(msgs[0].HTML, "<script>")
	s.Contains(msgs[0].HTML, "&lt;script&gt;")
}

func (s *NotifierSuite) TestOrderConfirmationShip() {
	err := s.notifier.OrderConfirmation(context.Background(), OrderConfirmation{
		OrderNumber:  42,
		CustomerName: "Jana Nováková",
		Email:        "jana@farma.cz",
		Ship:         true,
		DeliveryCost: decimal.NewFromInt(99),
		Address:      "Polní 1",
		City:         "Brno",
		State:        "CZ",
		Zip:          "60200",
		Items: []OrderLine{
			{Name: "Vejce", Unit: "ks", Quantity: 2, LineTotal: decimal.NewFromInt(100)},
			{Name: "Med", Unit: "sklenice", Quantity: 1, LineTotal: decimal.NewFromInt(100)},
		},
		Total: decimal.NewFromInt(299),
	})
	s.Require().NoError(err)

	msg := s.sender.Messages()[0]
	s.Equal("Potvrzení objednávky č. 42", msg.Subject)
	s.Equal([]string{"jana@farma.cz"}, msg.To)
	s.Contains(msg.HTML, "Vejce (2 ks) - 100 Kč")
	s.Contains(msg.HTML, "Doprava (99 Kč)")
	s.Contains(msg.HTML, "Město: Brno")
	s.Contains(msg.HTML, "299 Kč")
}

func (s *NotifierSuite) TestOrderConfirmationPickupOmitsAddress() {
	err := s.notifier.OrderConfirmation(context.Background(), OrderConfirmation{
		OrderNumber: 7,
		Email:       "petr@farma.cz",
		Address:     "should not appear",
		Total:       decimal.RequireFromString("12.50"),
	})
	s.Require().NoError(err)

	msg := s.sender.Messages()[0]
	s.Contains(msg.HTML, "Osobní odběr")
	s.NotContains(msg.HTML, "should not appear")
	s.Contains(msg.HTML, "12.50 Kč")
}

func (s *NotifierSuite) TestStatusChanged() {
	err := s.notifier.OrderStatusChanged(context.Background(), StatusChanged{
		OrderNumber: 3, Email: "jana@farma.cz", StatusLabel: "Odesláno",
	})
	s.Require().NoError(err)
	msg := s.sender.Messages()[0]
	s.Equal("Objednávka č. 3 byla aktualizována", msg.Subject)
	s.Contains(msg.HTML, "Odesláno")
}

func (s *NotifierSuite) TestFailureIsReturnedAndCounted() {
	s.sender.Err = errors.New("resend down")

	err := s.notifier.OrderStatusChanged(context.Background(), StatusChanged{OrderNumber: 1, Email: "a@b.cz"})
	s.Require().Error(err)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.NotificationsFailed.WithLabelValues(TemplateStatusChanged)))
}

func (s *NotifierSuite) TestMissingRecipient() {
	err := s.notifier.OrderConfirmation(context.Background(), OrderConfirmation{OrderNumber: 1})
	s.Require().Error(err)
	s.Empty(s.sender.Messages())
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "599", formatMoney(decimal.NewFromInt(599)))
	assert.Equal(t, "10.50", formatMoney(decimal.RequireFromString("10.5")))
	_, err := render("missing", nil)
	require.Error(t, err)
}
