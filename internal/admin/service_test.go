package admin_test

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks OrderReader CatalogReader UserReader MessageReader

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"farmshop/internal/admin"
	"farmshop/internal/admin/mocks"
	"farmshop/internal/audit"
	catalogmodels "farmshop/internal/catalog/models"
	contactmodels "farmshop/internal/contact/models"
	ordermodels "farmshop/internal/orders/models"
	id "farmshop/pkg/domain"
	dErrors "farmshop/pkg/domain-errors"
	"farmshop/pkg/testutil"
)

type DashboardSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	orders   *mocks.MockOrderReader
	catalog  *mocks.MockCatalogReader
	users    *mocks.MockUserReader
	messages *mocks.MockMessageReader
	svc      *admin.Service
}

func TestDashboardSuite(t *testing.T) {
	suite.Run(t, new(DashboardSuite))
}

func (s *DashboardSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.orders = mocks.NewMockOrderReader(s.ctrl)
	s.catalog = mocks.NewMockCatalogReader(s.ctrl)
	s.users = mocks.NewMockUserReader(s.ctrl)
	s.messages = mocks.NewMockMessageReader(s.ctrl)
	s.svc = admin.NewService(s.orders, s.catalog, s.users, s.messages, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (s *DashboardSuite) TearDownTest() {
	s.ctrl.Finish()
}

func orders(n int) []*ordermodels.Order {
	out := make([]*ordermodels.Order, n)
	for i := range out {
		status := ordermodels.StatusShipped
		if i%2 == 0 {
			status = ordermodels.StatusPending
		}
		out[i] = &ordermodels.Order{ID: id.NewOrderID(), Number: int64(n - i), Status: status}
	}
	return out
}

func (s *DashboardSuite) expectAll(orderCount int) {
	s.orders.EXPECT().ListAdmin(gomock.Any(), ordermodels.AdminFilter{}).Return(orders(orderCount), nil)
	s.catalog.EXPECT().ListAllProducts(gomock.Any()).Return([]*catalogmodels.Product{{Name: "Vejce"}, {Name: "Med"}}, nil)
	s.catalog.EXPECT().ListCategories(gomock.Any()).Return([]*catalogmodels.Category{{Name: "Mléčné"}}, nil)
	s.users.EXPECT().ListUsers(gomock.Any()).Return([]*admin.DashboardUser{{Email: "jana@example.cz"}}, nil)
	s.messages.EXPECT().ListUnread(gomock.Any(), 10).Return([]*contactmodels.Message{{Subject: "Vejce"}}, nil)
	s.messages.EXPECT().CountUnread(gomock.Any()).Return(3, nil)
}

func (s *DashboardSuite) TestDashboard() {
	s.Run("loads every section with counts", func() {
		s.expectAll(12)

		d, err := s.svc.Dashboard(context.Background())
		s.Require().NoError(err)
		s.Len(d.RecentOrders, 10)
		s.Equal(admin.Counts{
			Orders:         12,
			PendingOrders:  6,
			Products:       2,
			Categories:     1,
			Users:          1,
			UnreadMessages: 3,
		}, d.Counts)
		s.Len(d.UnreadMessages, 1)
	})

	s.Run("first failure aborts the load", func() {
		s.orders.EXPECT().ListAdmin(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))
		s.catalog.EXPECT().ListAllProducts(gomock.Any()).Return(nil, nil).AnyTimes()
		s.catalog.EXPECT().ListCategories(gomock.Any()).Return(nil, nil).AnyTimes()
		s.users.EXPECT().ListUsers(gomock.Any()).Return(nil, nil).AnyTimes()
		s.messages.EXPECT().ListUnread(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
		s.messages.EXPECT().CountUnread(gomock.Any()).Return(0, nil).AnyTimes()

		d, err := s.svc.Dashboard(context.Background())
		s.Nil(d)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

type failingActivity struct{}

func (failingActivity) ListRecent(context.Context, int) ([]audit.Event, error) {
	return nil, errors.New("audit store down")
}

func (s *DashboardSuite) TestActivity() {
	s.Run("recent events are included newest first", func() {
		store := audit.NewInMemoryStore()
		for _, subject := range []string{"first", "second"} {
			s.Require().NoError(store.Append(context.Background(), audit.Event{Type: audit.EventOrderPlaced, Subject: subject}))
		}
		s.svc.WithActivity(store)
		s.expectAll(1)

		d, err := s.svc.Dashboard(context.Background())
		s.Require().NoError(err)
		s.Require().Len(d.Activity, 2)
		s.Equal("second", d.Activity[0].Subject)
	})

	s.Run("a failing reader leaves the section empty", func() {
		s.svc.WithActivity(failingActivity{})
		s.expectAll(1)

		d, err := s.svc.Dashboard(context.Background())
		s.Require().NoError(err)
		s.Empty(d.Activity)
	})
}

func (s *DashboardSuite) TestHandler() {
	s.expectAll(1)
	r := chi.NewRouter()
	admin.NewHandler(s.svc, slog.New(slog.NewTextHandler(io.Discard, nil))).RegisterAdmin(r)

	rr := testutil.DoRequest(r, testutil.NewRequest(s.T(), http.MethodGet, "/admin/dashboard"))
	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONHasKey(s.T(), rr, "counts")
}
