// Package service implements the catalog use cases for the storefront and
// the back office.
package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"farmshop/internal/audit"
	"farmshop/internal/catalog/models"
	"farmshop/internal/platform/objectstore"
	id "farmshop/pkg/domain"
	dErrors "farmshop/pkg/domain-errors"
	"farmshop/pkg/platform/sentinel"
	"farmshop/pkg/platform/tx"
	"farmshop/pkg/requestcontext"
)

type ProductStore interface {
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error)
	FindProduct(ctx context.Context, productID id.ProductID) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, p *models.Product) error
	AdjustStock(ctx context.Context, productID id.ProductID, delta int) error
	DetachCategory(ctx context.Context, categoryID id.CategoryID) error
}

type CategoryStore interface {
	ListCategories(ctx context.Context) ([]*models.Category, error)
	FindCategory(ctx context.Context, categoryID id.CategoryID) (*models.Category, error)
	CreateCategory(ctx context.Context, c *models.Category) error
	UpdateCategory(ctx context.Context, c *models.Category) error
	DeleteCategory(ctx context.Context, categoryID id.CategoryID) error
}

// Service owns products and categories.
type Service struct {
	products   ProductStore
	categories CategoryStore
	images     objectstore.Store
	tx         tx.Runner
	audit      *audit.Publisher
	logger     *slog.Logger
}

type Option func(*Service)

func WithTx(r tx.Runner) Option {
	return func(s *Service) { s.tx = r }
}

func WithAuditPublisher(p *audit.Publisher) Option {
	return func(s *Service) { s.audit = p }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(products ProductStore, categories CategoryStore, images objectstore.Store, opts ...Option) *Service {
	s := &Service{
		products:   products,
		categories: categories,
		images:     images,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = tx.NewMemoryRunner()
	}
	return s
}

// ListProducts returns enabled products, optionally within one category,
// ordered by name.
func (s *Service) ListProducts(ctx context.Context, categoryID *id.CategoryID) ([]*models.Product, error) {
	products, err := s.products.ListProducts(ctx, models.ProductFilter{CategoryID: categoryID})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list products")
	}
	return products, nil
}

// GetProduct returns an enabled product. Disabled products do not exist for
// the public.
func (s *Service) GetProduct(ctx context.Context, productID id.ProductID) (*models.Product, error) {
	p, err := s.Product(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.Disabled {
		return nil, dErrors.New(dErrors.CodeNotFound, "product not found")
	}
	return p, nil
}

// Product returns a product regardless of its disabled flag. Cart and
// checkout use it to read live prices.
func (s *Service) Product(ctx context.Context, productID id.ProductID) (*models.Product, error) {
	p, err := s.products.FindProduct(ctx, productID)
	if err != nil {
		return nil, wrapProductErr(err)
	}
	return p, nil
}

// AdjustStock changes the stock level by delta (negative to decrement).
func (s *Service) AdjustStock(ctx context.Context, productID id.ProductID, delta int) error {
	if err := s.products.AdjustStock(ctx, productID, delta); err != nil {
		return wrapProductErr(err)
	}
	return nil
}

func (s *Service) ListCategories(ctx context.Context) ([]*models.Category, error) {
	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list categories")
	}
	return categories, nil
}

// ListAllProducts is the admin listing and includes disabled products.
func (s *Service) ListAllProducts(ctx context.Context) ([]*models.Product, error) {
	products, err := s.products.ListProducts(ctx, models.ProductFilter{IncludeDisabled: true})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list products")
	}
	return products, nil
}

func (s *Service) CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	p := &models.Product{
		ID:        id.NewProductID(),
		CreatedAt: now,
	}
	applyInput(p, in, now)
	if err := s.products.CreateProduct(ctx, p); err != nil {
		return nil, wrapProductErr(err)
	}
	s.audit.Record(ctx, audit.EventProductSaved, requestcontext.UserID(ctx), p.ID.String(), "name", p.Name)
	return p, nil
}

func (s *Service) UpdateProduct(ctx context.Context, productID id.ProductID, in models.ProductInput) (*models.Product, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var updated *models.Product
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		p, err := s.products.FindProduct(ctx, productID)
		if err != nil {
			return err
		}
		if in.ImageURL == "" {
			in.ImageURL = p.ImageURL
		}
		applyInput(p, in, requestcontext.Now(ctx))
		if err := s.products.UpdateProduct(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, wrapProductErr(err)
	}
	s.audit.Record(ctx, audit.EventProductSaved, requestcontext.UserID(ctx), updated.ID.String(), "name", updated.Name)
	return updated, nil
}

// SetProductDisabled hides or shows a product on the storefront.
func (s *Service) SetProductDisabled(ctx context.Context, productID id.ProductID, disabled bool) (*models.Product, error) {
	var updated *models.Product
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		p, err := s.products.FindProduct(ctx, productID)
		if err != nil {
			return err
		}
		p.Disabled = disabled
		p.UpdatedAt = requestcontext.Now(ctx)
		if err := s.products.UpdateProduct(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, wrapProductErr(err)
	}
	return updated, nil
}

// UploadProductImage stores the image under products/<uuid><ext> and points
// the product at it. The previous image is removed best-effort.
func (s *Service) UploadProductImage(ctx context.Context, productID id.ProductID, filename, contentType string, r io.Reader, size int64) (*models.Product, error) {
	p, err := s.products.FindProduct(ctx, productID)
	if err != nil {
		return nil, wrapProductErr(err)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, dErrors.New(dErrors.CodeBadRequest, "file must be an image")
	}

	key := objectstore.NewKey("products", filename)
	url, err := s.images.Put(ctx, objectstore.BucketProductImages, key, contentType, r, size)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to upload image")
	}

	previous := p.ImageURL
	p.ImageURL = url
	p.UpdatedAt = requestcontext.Now(ctx)
	if err := s.products.UpdateProduct(ctx, p); err != nil {
		return nil, wrapProductErr(err)
	}

	if oldKey := objectstore.KeyFromURL(previous, objectstore.BucketProductImages); oldKey != "" {
		if err := s.images.Delete(ctx, objectstore.BucketProductImages, oldKey); err != nil {
			s.logger.WarnContext(ctx, "failed to delete previous product image",
				"product_id", productID.String(),
				"key", oldKey,
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
		}
	}
	return p, nil
}

func (s *Service) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	name, err := requireCategoryName(name)
	if err != nil {
		return nil, err
	}
	c := &models.Category{ID: id.NewCategoryID(), Name: name, CreatedAt: requestcontext.Now(ctx)}
	if err := s.categories.CreateCategory(ctx, c); err != nil {
		return nil, wrapCategoryErr(err)
	}
	return c, nil
}

func (s *Service) UpdateCategory(ctx context.Context, categoryID id.CategoryID, name string) (*models.Category, error) {
	name, err := requireCategoryName(name)
	if err != nil {
		return nil, err
	}
	var updated *models.Category
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		c, err := s.categories.FindCategory(ctx, categoryID)
		if err != nil {
			return err
		}
		c.Name = name
		if err := s.categories.UpdateCategory(ctx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, wrapCategoryErr(err)
	}
	return updated, nil
}

// DeleteCategory detaches the category's products, then deletes it, in one
// unit of work.
func (s *Service) DeleteCategory(ctx context.Context, categoryID id.CategoryID) error {
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.products.DetachCategory(ctx, categoryID); err != nil {
			return err
		}
		return s.categories.DeleteCategory(ctx, categoryID)
	})
	if err != nil {
		return wrapCategoryErr(err)
	}
	s.audit.Record(ctx, audit.EventCategoryDeleted, requestcontext.UserID(ctx), categoryID.String())
	return nil
}

func applyInput(p *models.Product, in models.ProductInput, now time.Time) {
	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price
	p.Unit = in.Unit
	p.StockQuantity = in.StockQuantity
	p.CategoryID = in.CategoryID
	p.ImageURL = in.ImageURL
	p.UpdatedAt = now
}

func requireCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", dErrors.Validation([]dErrors.FieldError{{Field: "name", Message: "name is required"}})
	}
	return name, nil
}

func wrapProductErr(err error) error {
	var de *dErrors.Error
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "product not found")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.New(dErrors.CodeBadRequest, "category does not exist")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "catalog operation failed")
	}
}

func wrapCategoryErr(err error) error {
	var de *dErrors.Error
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "category not found")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.New(dErrors.CodeConflict, "category name must be unique")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "category still has products")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "catalog operation failed")
	}
}
