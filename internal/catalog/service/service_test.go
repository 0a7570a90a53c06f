package service

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"farmshop/internal/audit"
	"farmshop/internal/catalog/models"
	"farmshop/internal/catalog/store"
	"farmshop/internal/platform/objectstore"
	id "farmshop/pkg/domain"
	dErrors "farmshop/pkg/domain-errors"
)

type CatalogServiceSuite struct {
	suite.Suite
	ctx    context.Context
	store  *store.InMemoryStore
	images *objectstore.MemoryStore
	events *audit.InMemoryStore
	svc    *Service
}

func TestCatalogServiceSuite(t *testing.T) {
	suite.Run(t, new(CatalogServiceSuite))
}

func (s *CatalogServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = store.NewInMemory()
	s.images = objectstore.NewMemory("http://media.test")
	s.events = audit.NewInMemoryStore()
	s.svc = New(s.store, s.store, s.images,
		WithAuditPublisher(audit.NewPublisher(s.events)),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func (s *CatalogServiceSuite) createProduct(name string, disabled bool) *models.Product {
	p, err := s.svc.CreateProduct(s.ctx, models.ProductInput{
		Name:          name,
		Price:         decimal.NewFromInt(50),
		Unit:          "kg",
		StockQuantity: 10,
	})
	s.Require().NoError(err)
	if disabled {
		p, err = s.svc.SetProductDisabled(s.ctx, p.ID, true)
		s.Require().NoError(err)
	}
	return p
}

func (s *CatalogServiceSuite) TestCreateProduct() {
	s.Run("reports every invalid field", func() {
		_, err := s.svc.CreateProduct(s.ctx, models.ProductInput{
			Name:          "  ",
			Price:         decimal.NewFromInt(-1),
			StockQuantity: -1,
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Len(dErrors.FieldsOf(err), 4)
	})

	s.Run("unknown category is a bad request", func() {
		missing := id.NewCategoryID()
		_, err := s.svc.CreateProduct(s.ctx, models.ProductInput{Name: "Med", Unit: "jar", CategoryID: &missing})
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("records audit event", func() {
		p := s.createProduct("Med", false)
		events, err := s.events.ListByType(s.ctx, audit.EventProductSaved)
		s.Require().NoError(err)
		s.Require().NotEmpty(events)
		s.Equal(p.ID.String(), events[len(events)-1].Subject)
	})
}

func (s *CatalogServiceSuite) TestPublicVisibility() {
	visible := s.createProduct("Brambory", false)
	hidden := s.createProduct("Cibule", true)

	s.Run("listing hides disabled", func() {
		products, err := s.svc.ListProducts(s.ctx, nil)
		s.Require().NoError(err)
		s.Require().Len(products, 1)
		s.Equal(visible.ID, products[0].ID)
	})

	s.Run("disabled product is not found publicly", func() {
		_, err := s.svc.GetProduct(s.ctx, hidden.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("internal reader still sees disabled product", func() {
		p, err := s.svc.Product(s.ctx, hidden.ID)
		s.Require().NoError(err)
		s.True(p.Disabled)
	})

	s.Run("admin listing includes disabled", func() {
		products, err := s.svc.ListAllProducts(s.ctx)
		s.Require().NoError(err)
		s.Len(products, 2)
	})
}

func (s *CatalogServiceSuite) TestUpdateProductKeepsImage() {
	p := s.createProduct("Mrkev", false)
	withImage, err := s.svc.UploadProductImage(s.ctx, p.ID, "carrot.png", "image/png", strings.NewReader("png"), 3)
	s.Require().NoError(err)

	updated, err := s.svc.UpdateProduct(s.ctx, p.ID, models.ProductInput{
		Name:  "Mrkev karotka",
		Price: decimal.NewFromInt(35),
		Unit:  "kg",
	})
	s.Require().NoError(err)
	s.Equal(withImage.ImageURL, updated.ImageURL)
	s.Equal("Mrkev karotka", updated.Name)
}

func (s *CatalogServiceSuite) TestUploadProductImage() {
	p := s.createProduct("Vejce", false)

	s.Run("stores under products prefix and replaces the previous object", func() {
		first, err := s.svc.UploadProductImage(s.ctx, p.ID, "a.JPG", "image/jpeg", strings.NewReader("one"), 3)
		s.Require().NoError(err)
		s.Contains(first.ImageURL, "/product-images/products/")
		s.True(strings.HasSuffix(first.ImageURL, ".jpg"))

		second, err := s.svc.UploadProductImage(s.ctx, p.ID, "b.png", "image/png", strings.NewReader("two"), 3)
		s.Require().NoError(err)
		s.NotEqual(first.ImageURL, second.ImageURL)
		s.Equal(1, s.images.Len())
	})

	s.Run("rejects non-image content", func() {
		_, err := s.svc.UploadProductImage(s.ctx, p.ID, "a.txt", "text/plain", strings.NewReader("x"), 1)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *CatalogServiceSuite) TestCategories() {
	s.Run("name is required", func() {
		_, err := s.svc.CreateCategory(s.ctx, " ")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("duplicate name conflicts", func() {
		_, err := s.svc.CreateCategory(s.ctx, "Mléčné")
		s.Require().NoError(err)
		_, err = s.svc.CreateCategory(s.ctx, "Mléčné")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("delete detaches products first", func() {
		c, err := s.svc.CreateCategory(s.ctx, "Sýry")
		s.Require().NoError(err)
		p, err := s.svc.CreateProduct(s.ctx, models.ProductInput{Name: "Eidam", Unit: "kg", CategoryID: &c.ID})
		s.Require().NoError(err)

		s.Require().NoError(s.svc.DeleteCategory(s.ctx, c.ID))

		got, err := s.svc.Product(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Nil(got.CategoryID)
		_, err = s.svc.UpdateCategory(s.ctx, c.ID, "Sýry 2")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *CatalogServiceSuite) TestAdjustStock() {
	p := s.createProduct("Jablka", false)
	s.Require().NoError(s.svc.AdjustStock(s.ctx, p.ID, -4))
	got, err := s.svc.Product(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(6, got.StockQuantity)

	err = s.svc.AdjustStock(s.ctx, id.NewProductID(), 1)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
