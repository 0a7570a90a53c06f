package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"farmshop/internal/catalog/handler/mocks"
	"farmshop/internal/catalog/models"
	id "farmshop/pkg/domain"
	dErrors "farmshop/pkg/domain-errors"
	"farmshop/pkg/testutil"
)

type CatalogHandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  chi.Router
}

func TestCatalogHandlerSuite(t *testing.T) {
	suite.Run(t, new(CatalogHandlerSuite))
}

func (s *CatalogHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	h := New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.router = chi.NewRouter()
	h.Register(s.router)
	h.RegisterAdmin(s.router)
}

func (s *CatalogHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *CatalogHandlerSuite) TestListProducts() {
	s.Run("passes category filter and derives in_stock", func() {
		categoryID := id.NewCategoryID()
		s.service.EXPECT().ListProducts(gomock.Any(), &categoryID).Return([]*models.Product{
			{ID: id.NewProductID(), Name: "Eggs", Price: decimal.NewFromInt(5), Unit: "ks", StockQuantity: 3},
			{ID: id.NewProductID(), Name: "Honey", Price: decimal.NewFromInt(180), Unit: "jar"},
		}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/products?category_id="+categoryID.String()))

		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[ProductListResponse](s.T(), rr)
		s.Equal(2, resp.Count)
		s.True(resp.Products[0].InStock)
		s.False(resp.Products[1].InStock)
	})

	s.Run("rejects malformed category id", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/products?category_id=nope"))
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})
}

func (s *CatalogHandlerSuite) TestGetProduct() {
	s.Run("disabled product is not found", func() {
		productID := id.NewProductID()
		s.service.EXPECT().GetProduct(gomock.Any(), productID).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "product not found"))

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/products/"+productID.String()))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, string(dErrors.CodeNotFound))
	})
}

func (s *CatalogHandlerSuite) TestCreateProduct() {
	s.Run("creates product with category", func() {
		categoryID := id.NewCategoryID()
		s.service.EXPECT().CreateProduct(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, in models.ProductInput) (*models.Product, error) {
				s.Equal("Eggs", in.Name)
				s.Require().NotNil(in.CategoryID)
				s.Equal(categoryID, *in.CategoryID)
				s.True(in.Price.Equal(decimal.RequireFromString("4.5")))
				return &models.Product{ID: id.NewProductID(), Name: in.Name, Price: in.Price, Unit: in.Unit, CategoryID: in.CategoryID}, nil
			})

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/admin/products", map[string]any{
			"name":           "Eggs",
			"price":          "4.5",
			"unit":           "ks",
			"stock_quantity": 10,
			"category_id":    categoryID.String(),
		})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		testutil.AssertJSONContains(s.T(), rr, "category_id", categoryID.String())
	})

	s.Run("validation errors list fields", func() {
		s.service.EXPECT().CreateProduct(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.Validation([]dErrors.FieldError{
				{Field: "name", Message: "name is required"},
				{Field: "unit", Message: "unit is required"},
			}))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/admin/products", map[string]any{"price": 1}))

		testutil.AssertStatus(s.T(), rr, http.StatusUnprocessableEntity)
		body := testutil.UnmarshalErrorResponse(s.T(), rr)
		s.Len(body["fields"], 2)
	})
}

func (s *CatalogHandlerSuite) TestSetDisabled() {
	s.Run("requires disabled flag", func() {
		productID := id.NewProductID()
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPatch, "/admin/products/"+productID.String()+"/disabled", map[string]any{}))
		testutil.AssertStatus(s.T(), rr, http.StatusUnprocessableEntity)
	})

	s.Run("toggles product", func() {
		productID := id.NewProductID()
		s.service.EXPECT().SetProductDisabled(gomock.Any(), productID, true).
			Return(&models.Product{ID: productID, Name: "Eggs", Disabled: true}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPatch, "/admin/products/"+productID.String()+"/disabled", map[string]any{"disabled": true}))

		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONContains(s.T(), rr, "disabled", true)
	})
}

func (s *CatalogHandlerSuite) TestUploadImage() {
	s.Run("forwards multipart image", func() {
		productID := id.NewProductID()
		s.service.EXPECT().UploadProductImage(gomock.Any(), productID, "eggs.JPG", "image/jpeg", gomock.Any(), int64(4)).
			Return(&models.Product{ID: productID, ImageURL: "http://media/product-images/products/x.jpg"}, nil)

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Disposition": {`form-data; name="image"; filename="eggs.JPG"`},
			"Content-Type":        {"image/jpeg"},
		})
		s.Require().NoError(err)
		_, _ = part.Write([]byte("jpeg"))
		s.Require().NoError(mw.Close())

		req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/admin/products/"+productID.String()+"/image", buf.String())
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusOK(s.T(), rr)
	})

	s.Run("missing file is a bad request", func() {
		productID := id.NewProductID()
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		s.Require().NoError(mw.WriteField("title", "x"))
		s.Require().NoError(mw.Close())

		req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/admin/products/"+productID.String()+"/image", buf.String())
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})
}

func (s *CatalogHandlerSuite) TestDeleteCategory() {
	s.Run("conflict surfaces as 409", func() {
		categoryID := id.NewCategoryID()
		s.service.EXPECT().DeleteCategory(gomock.Any(), categoryID).
			Return(dErrors.New(dErrors.CodeConflict, "category still has products"))

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodDelete, "/admin/categories/"+categoryID.String()))

		testutil.AssertStatus(s.T(), rr, http.StatusConflict)
	})

	s.Run("deleted category returns no content", func() {
		categoryID := id.NewCategoryID()
		s.service.EXPECT().DeleteCategory(gomock.Any(), categoryID).Return(nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodDelete, "/admin/categories/"+categoryID.String()))

		testutil.AssertStatus(s.T(), rr, http.StatusNoContent)
	})
}
