package admin

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"farmshop/internal/audit"
	catalogmodels "farmshop/internal/catalog/models"
	contactmodels "farmshop/internal/contact/models"
	ordermodels "farmshop/internal/orders/models"
	dErrors "farmshop/pkg/domain-errors"
	"farmshop/pkg/requestcontext"
)

const (
	recentOrdersLimit   = 10
	unreadMessagesLimit = 10
	activityLimit       = 20
)

type OrderReader interface {
	ListAdmin(ctx context.Context, filter ordermodels.AdminFilter) ([]*ordermodels.Order, error)
}

type CatalogReader interface {
	ListAllProducts(ctx context.Context) ([]*catalogmodels.Product, error)
	ListCategories(ctx context.Context) ([]*catalogmodels.Category, error)
}

type UserReader interface {
	ListUsers(ctx context.Context) ([]*DashboardUser, error)
}

type MessageReader interface {
	ListUnread(ctx context.Context, limit int) ([]*contactmodels.Message, error)
	CountUnread(ctx context.Context) (int, error)
}

// ActivityReader lists recent audit events from a local store.
type ActivityReader interface {
	ListRecent(ctx context.Context, limit int) ([]audit.Event, error)
}

type Service struct {
	orders   OrderReader
	catalog  CatalogReader
	users    UserReader
	messages MessageReader
	activity ActivityReader
	logger   *slog.Logger
}

func NewService(orders OrderReader, catalog CatalogReader, users UserReader, messages MessageReader, logger *slog.Logger) *Service {
	return &Service{orders: orders, catalog: catalog, users: users, messages: messages, logger: logger}
}

// WithActivity adds the recent activity section. It is best effort: a
// failing reader leaves the section empty.
func (s *Service) WithActivity(r ActivityReader) *Service {
	s.activity = r
	return s
}

// Dashboard loads every section concurrently. The first failure cancels
// the remaining loads.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	d := &Dashboard{}
	var orders []*ordermodels.Order

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = s.orders.ListAdmin(gctx, ordermodels.AdminFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		d.Products, err = s.catalog.ListAllProducts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		d.Categories, err = s.catalog.ListCategories(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		d.Users, err = s.users.ListUsers(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		d.UnreadMessages, err = s.messages.ListUnread(gctx, unreadMessagesLimit)
		return err
	})
	g.Go(func() error {
		var err error
		d.Counts.UnreadMessages, err = s.messages.CountUnread(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "failed to load dashboard",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		if dErrors.CodeOf(err) != dErrors.CodeInternal {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load dashboard")
	}

	d.Counts.Orders = len(orders)
	for _, o := range orders {
		if o.Status == ordermodels.StatusPending {
			d.Counts.PendingOrders++
		}
	}
	d.RecentOrders = orders[:min(len(orders), recentOrdersLimit)]
	d.Counts.Products = len(d.Products)
	d.Counts.Categories = len(d.Categories)
	d.Counts.Users = len(d.Users)
	d.Activity = s.recentActivity(ctx)
	return d, nil
}

func (s *Service) recentActivity(ctx context.Context) []audit.Event {
	if s.activity == nil {
		return nil
	}
	events, err := s.activity.ListRecent(ctx, activityLimit)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to load recent activity",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return nil
	}
	return events
}
