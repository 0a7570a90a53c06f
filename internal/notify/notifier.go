package notify

import (
	"context"
	"fmt"
	"log/slog"

	"farmshop/internal/platform/metrics"
	"farmshop/pkg/requestcontext"
)

// Notifier renders the fixed templates and hands them to a Sender. Every
// method returns the send error so callers can surface it as a warning;
// none of them is allowed to fail a business operation.
type Notifier struct {
	sender  Sender
	from    string
	adminTo []string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Notifier.
type Option func(*Notifier)

func WithLogger(logger *slog.Logger) Option {
	return func(n *Notifier) { n.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(n *Notifier) { n.metrics = m }
}

func New(sender Sender, from string, adminTo []string, opts ...Option) *Notifier {
	n := &Notifier{
		sender:  sender,
		from:    from,
		adminTo: adminTo,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NewContactMessage alerts the shop admins about a contact form submission.
func (n *Notifier) NewContactMessage(ctx context.Context, msg ContactMessage) error {
	return n.send(ctx, TemplateContactMessage, n.adminTo, "Nová zpráva v systému", msg)
}

// OrderConfirmation sends the customer their order summary.
func (n *Notifier) OrderConfirmation(ctx context.Context, data OrderConfirmation) error {
	subject := fmt.Sprintf("Potvrzení objednávky č. %d", data.OrderNumber)
	return n.send(ctx, TemplateOrderConfirmation, []string{data.Email}, subject, data)
}

// OrderStatusChanged tells the customer their order moved to a new status.
func (n *Notifier) OrderStatusChanged(ctx context.Context, data StatusChanged) error {
	subject := fmt.Sprintf("Objednávka č. %d byla aktualizována", data.OrderNumber)
	return n.send(ctx, TemplateStatusChanged, []string{data.Email}, subject, data)
}

func (n *Notifier) send(ctx context.Context, name string, to []string, subject string, data any) error {
	err := n.deliver(ctx, name, to, subject, data)
	if err != nil {
		n.metrics.IncrementNotificationFailed(name)
		n.logger.WarnContext(ctx, "notification not sent",
			"template", name,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
	return err
}

func (n *Notifier) deliver(ctx context.Context, name string, to []string, subject string, data any) error {
	if len(to) == 0 || to[0] == "" {
		return fmt.Errorf("%s: no recipient", name)
	}
	html, err := render(name, data)
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, Message{
		From:    n.from,
		To:      to,
		Subject: subject,
		HTML:    html,
	})
}
