package cart

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks SnapshotStore,ProductReader

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"farmshop/internal/cart/mocks"
	"farmshop/internal/cart/store"
	"farmshop/internal/catalog/models"
	"farmshop/internal/platform/metrics"
	id "farmshop/pkg/domain"
	dErrors "farmshop/pkg/domain-errors"
)

const session = "0b5c2f5e-8f3d-4f44-9d61-3a5a3b1c7e10"

type CartServiceSuite struct {
	suite.Suite
	ctx      context.Context
	ctrl     *gomock.Controller
	products *mocks.MockProductReader
	store    *store.InMemoryStore
	metrics  *metrics.Metrics
	svc      *Service
}

func TestCartServiceSuite(t *testing.T) {
	suite.Run(t, new(CartServiceSuite))
}

func (s *CartServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.products = mocks.NewMockProductReader(s.ctrl)
	s.store = store.NewInMemory()
	s.metrics = metrics.NewWithRegisterer(prometheus.NewRegistry())
	s.svc = NewService(s.store, s.products, "farm-shop-cart",
		WithMetrics(s.metrics),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func (s *CartServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *CartServiceSuite) stock(name string, price int64) *models.Product {
	p := &models.Product{ID: id.NewProductID(), Name: name, Price: decimal.NewFromInt(price), Unit: "ks", StockQuantity: 10}
	s.products.EXPECT().Product(gomock.Any(), p.ID).Return(p, nil).AnyTimes()
	return p
}

func (s *CartServiceSuite) TestKey() {
	s.Equal("farm-shop-cart:"+session, s.svc.Key(session))
}

func (s *CartServiceSuite) TestLoadMissingIsEmpty() {
	st, err := s.svc.Load(s.ctx, session)
	s.Require().NoError(err)
	s.True(st.IsEmpty())
}

func (s *CartServiceSuite) TestMutationsPersistBeforeReturning() {
	eggs := s.stock("Vejce", 5)
	honey := s.stock("Med", 180)

	_, err := s.svc.AddProduct(s.ctx, session, eggs.ID, 2)
	s.Require().NoError(err)
	returned, err := s.svc.AddProduct(s.ctx, session, honey.ID, 1)
	s.Require().NoError(err)

	stored, err := s.store.Get(s.ctx, s.svc.Key(session))
	s.Require().NoError(err)
	decoded, err := DecodeSnapshot(stored)
	s.Require().NoError(err)
	s.Equal(returned.Items, decoded.Items)
	s.True(decimal.NewFromInt(190).Equal(decoded.Total))

	updated, err := s.svc.UpdateQuantity(s.ctx, session, eggs.ID, 4)
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(200).Equal(updated.Total))

	removed, err := s.svc.Remove(s.ctx, session, honey.ID)
	s.Require().NoError(err)
	s.Len(removed.Items, 1)

	s.Require().NoError(s.svc.Clear(s.ctx, session))
	st, err := s.svc.Load(s.ctx, session)
	s.Require().NoError(err)
	s.True(st.IsEmpty())

	s.Equal(2.0, testutil.ToFloat64(s.metrics.CartMutations.WithLabelValues("add")))
}

func (s *CartServiceSuite) TestAddProductRejectsUnavailable() {
	s.Run("disabled product", func() {
		p := &models.Product{ID: id.NewProductID(), Name: "Cibule", Price: decimal.NewFromInt(20), Disabled: true}
		s.products.EXPECT().Product(gomock.Any(), p.ID).Return(p, nil)

		_, err := s.svc.AddProduct(s.ctx, session, p.ID, 1)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("unknown product", func() {
		missing := id.NewProductID()
		s.products.EXPECT().Product(gomock.Any(), missing).Return(nil, dErrors.New(dErrors.CodeNotFound, "product not found"))

		_, err := s.svc.AddProduct(s.ctx, session, missing, 1)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("quantity below one", func() {
		_, err := s.svc.AddProduct(s.ctx, session, id.NewProductID(), 0)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *CartServiceSuite) TestCorruptSnapshotIsDiscarded() {
	key := s.svc.Key(session)
	s.Require().NoError(s.store.Set(s.ctx, key, []byte(`{"items":[{"id":`)))

	st, err := s.svc.Load(s.ctx, session)
	s.Require().NoError(err)
	s.True(st.IsEmpty())

	_, err = s.store.Get(s.ctx, key)
	s.Error(err, "corrupt entry must be removed")
}

func (s *CartServiceSuite) TestZeroQuantityLineIsDiscarded() {
	key := s.svc.Key(session)
	raw := `{"items":[{"id":"7f1c6d8e-2a3b-4c5d-8e9f-0a1b2c3d4e5f","name":"Vejce","price":"5","quantity":0}],"total":"0"}`
	s.Require().NoError(s.store.Set(s.ctx, key, []byte(raw)))

	st, err := s.svc.Load(s.ctx, session)
	s.Require().NoError(err)
	s.True(st.IsEmpty())

	_, err = s.store.Get(s.ctx, key)
	s.Error(err, "line without quantity must be scrubbed")
}

func (s *CartServiceSuite) TestUpdateQuantityBelowOneIsRejected() {
	eggs := s.stock("Vejce", 5)
	_, err := s.svc.AddProduct(s.ctx, session, eggs.ID, 2)
	s.Require().NoError(err)

	_, err = s.svc.UpdateQuantity(s.ctx, session, eggs.ID, 0)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	st, err := s.svc.Load(s.ctx, session)
	s.Require().NoError(err)
	s.Require().Len(st.Items, 1)
	s.Equal(2, st.Items[0].Quantity)
}

func (s *CartServiceSuite) TestStoreFailures() {
	snapshots := mocks.NewMockSnapshotStore(s.ctrl)
	svc := NewService(snapshots, s.products, "farm-shop-cart")
	eggs := s.stock("Vejce", 5)

	s.Run("load failure is unavailable", func() {
		snapshots.EXPECT().Get(gomock.Any(), "farm-shop-cart:"+session).Return(nil, errors.New("connection refused"))
		_, err := svc.Load(s.ctx, session)
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})

	s.Run("save failure returns no state", func() {
		snapshots.EXPECT().Get(gomock.Any(), gomock.Any()).Return([]byte(`{"items":[],"total":"0"}`), nil)
		snapshots.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("read only replica"))
		_, err := svc.AddProduct(s.ctx, session, eggs.ID, 1)
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})
}
