package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"farmshop/internal/cart"
	"farmshop/internal/cart/handler/mocks"
	id "farmshop/pkg/domain"
	"farmshop/pkg/testutil"
)

type CartHandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  chi.Router
}

func TestCartHandlerSuite(t *testing.T) {
	suite.Run(t, new(CartHandlerSuite))
}

func (s *CartHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	s.router = chi.NewRouter()
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(s.router)
}

func (s *CartHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *CartHandlerSuite) TestSessionCookie() {
	s.Run("issues cookie on first visit", func() {
		s.service.EXPECT().Load(gomock.Any(), gomock.Any()).Return(cart.Empty(), nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/cart"))

		testutil.AssertStatusOK(s.T(), rr)
		cookies := rr.Result().Cookies()
		s.Require().Len(cookies, 1)
		s.Equal(CookieName, cookies[0].Name)
		s.True(cookies[0].HttpOnly)
		s.Equal(cookies[0].Value, rr.Header().Get(HeaderSession))
	})

	s.Run("reuses existing cookie", func() {
		session := uuid.NewString()
		s.service.EXPECT().Load(gomock.Any(), session).Return(cart.Empty(), nil)

		req := testutil.NewRequest(s.T(), http.MethodGet, "/cart")
		req.AddCookie(&http.Cookie{Name: CookieName, Value: session})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusOK(s.T(), rr)
		s.Empty(rr.Result().Cookies())
	})

	s.Run("header wins over cookie", func() {
		header := uuid.NewString()
		s.service.EXPECT().Load(gomock.Any(), header).Return(cart.Empty(), nil)

		req := testutil.NewRequest(s.T(), http.MethodGet, "/cart")
		req.Header.Set(HeaderSession, header)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: uuid.NewString()})
		testutil.AssertStatusOK(s.T(), testutil.DoRequest(s.router, req))
	})

	s.Run("malformed cookie is replaced", func() {
		s.service.EXPECT().Load(gomock.Any(), gomock.Not("../etc")).Return(cart.Empty(), nil)

		req := testutil.NewRequest(s.T(), http.MethodGet, "/cart")
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "../etc"})
		rr := testutil.DoRequest(s.router, req)

		s.Len(rr.Result().Cookies(), 1)
	})
}

func (s *CartHandlerSuite) TestAdd() {
	session := uuid.NewString()
	productID := id.NewProductID()

	s.Run("clamps quantity to one", func() {
		st := cart.AddToCart(cart.Empty(), cart.Product{ID: productID, Name: "Vejce", Price: decimal.NewFromInt(5)}, 1)
		s.service.EXPECT().AddProduct(gomock.Any(), session, productID, 1).Return(st, nil)

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/cart/items", map[string]any{
			"product_id": productID.String(),
			"quantity":   0,
		})
		req.Header.Set(HeaderSession, session)
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[CartResponse](s.T(), rr)
		s.Equal(1, resp.ItemCount)
		s.True(decimal.NewFromInt(5).Equal(resp.Total))
	})

	s.Run("rejects malformed product id", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/cart/items", map[string]any{"product_id": "eggs"})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})
}

func (s *CartHandlerSuite) TestUpdate() {
	productID := id.NewProductID()

	s.Run("quantity below one is rejected", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPatch, "/cart/items/"+productID.String(), map[string]any{"quantity": 0})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusUnprocessableEntity)
	})

	s.Run("forwards quantity", func() {
		s.service.EXPECT().UpdateQuantity(gomock.Any(), gomock.Any(), productID, 3).Return(cart.Empty(), nil)
		req := testutil.NewJSONRequest(s.T(), http.MethodPatch, "/cart/items/"+productID.String(), map[string]any{"quantity": 3})
		testutil.AssertStatusOK(s.T(), testutil.DoRequest(s.router, req))
	})
}

func (s *CartHandlerSuite) TestRemoveAndClear() {
	productID := id.NewProductID()
	s.service.EXPECT().Remove(gomock.Any(), gomock.Any(), productID).Return(cart.Empty(), nil)
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodDelete, "/cart/items/"+productID.String()))
	testutil.AssertStatusOK(s.T(), rr)

	s.service.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil)
	rr = testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodDelete, "/cart"))
	testutil.AssertStatus(s.T(), rr, http.StatusNoContent)
}
