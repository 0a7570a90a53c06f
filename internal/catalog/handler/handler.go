package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"farmshop/internal/catalog/models"
	id "farmshop/pkg/domain"
	dErrors "farmshop/pkg/domain-errors"
	"farmshop/pkg/platform/httputil"
	"farmshop/pkg/requestcontext"
)

const maxImageSize = 10 << 20

// Service defines the catalog operations exposed over HTTP.
type Service interface {
	ListProducts(ctx context.Context, categoryID *id.CategoryID) ([]*models.Product, error)
	GetProduct(ctx context.Context, productID id.ProductID) (*models.Product, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)
	ListAllProducts(ctx context.Context) ([]*models.Product, error)
	CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, productID id.ProductID, in models.ProductInput) (*models.Product, error)
	SetProductDisabled(ctx context.Context, productID id.ProductID, disabled bool) (*models.Product, error)
	UploadProductImage(ctx context.Context, productID id.ProductID, filename, contentType string, r io.Reader, size int64) (*models.Product, error)
	CreateCategory(ctx context.Context, name string) (*models.Category, error)
	UpdateCategory(ctx context.Context, categoryID id.CategoryID, name string) (*models.Category, error)
	DeleteCategory(ctx context.Context, categoryID id.CategoryID) error
}

// Handler serves the storefront catalog and its admin editor.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the public catalog routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/products", h.HandleListProducts)
	r.Get("/products/{id}", h.HandleGetProduct)
	r.Get("/categories", h.HandleListCategories)
}

// RegisterAdmin mounts the admin routes. The caller applies the admin
// middleware.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/products", h.HandleAdminListProducts)
	r.Post("/admin/products", h.HandleCreateProduct)
	r.Put("/admin/products/{id}", h.HandleUpdateProduct)
	r.Patch("/admin/products/{id}/disabled", h.HandleSetDisabled)
	r.Post("/admin/products/{id}/image", h.HandleUploadImage)
	r.Get("/admin/categories", h.HandleListCategories)
	r.Post("/admin/categories", h.HandleCreateCategory)
	r.Put("/admin/categories/{id}", h.HandleUpdateCategory)
	r.Delete("/admin/categories/{id}", h.HandleDeleteCategory)
}

// HandleListProducts handles GET /products?category_id=.
func (h *Handler) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var categoryID *id.CategoryID
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		parsed, err := id.ParseCategoryID(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		categoryID = &parsed
	}
	products, err := h.service.ListProducts(ctx, categoryID)
	if err != nil {
		h.fail(ctx, w, "failed to list products", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toProductList(products))
}

func (h *Handler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID, err := id.ParseProductID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := h.service.GetProduct(ctx, productID)
	if err != nil {
		h.fail(ctx, w, "failed to get product", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *Handler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	categories, err := h.service.ListCategories(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to list categories", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CategoryListResponse{Categories: categories, Count: len(categories)})
}

func (h *Handler) HandleAdminListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	products, err := h.service.ListAllProducts(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to list products", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toProductList(products))
}

func (h *Handler) HandleCreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[ProductRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	p, err := h.service.CreateProduct(ctx, req.Input())
	if err != nil {
		h.fail(ctx, w, "failed to create product", err)
		return
	}
	h.logger.InfoContext(ctx, "product created",
		"request_id", requestcontext.RequestID(ctx),
		"product_id", p.ID.String(),
	)
	httputil.WriteJSON(w, http.StatusCreated, toProductResponse(p))
}

func (h *Handler) HandleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID, err := id.ParseProductID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[ProductRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	p, err := h.service.UpdateProduct(ctx, productID, req.Input())
	if err != nil {
		h.fail(ctx, w, "failed to update product", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *Handler) HandleSetDisabled(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID, err := id.ParseProductID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[DisabledRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	p, err := h.service.SetProductDisabled(ctx, productID, *req.Disabled)
	if err != nil {
		h.fail(ctx, w, "failed to toggle product", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toProductResponse(p))
}

// HandleUploadImage handles POST /admin/products/{id}/image with a multipart
// "image" field.
func (h *Handler) HandleUploadImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID, err := id.ParseProductID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize+1<<20)
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid multipart form"))
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "image file is required"))
		return
	}
	defer file.Close()

	p, err := h.service.UploadProductImage(ctx, productID, header.Filename, header.Header.Get("Content-Type"), file, header.Size)
	if err != nil {
		h.fail(ctx, w, "failed to upload product image", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *Handler) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[CategoryRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	c, err := h.service.CreateCategory(ctx, req.Name)
	if err != nil {
		h.fail(ctx, w, "failed to create category", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) HandleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	categoryID, err := id.ParseCategoryID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[CategoryRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	c, err := h.service.UpdateCategory(ctx, categoryID, req.Name)
	if err != nil {
		h.fail(ctx, w, "failed to update category", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) HandleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	categoryID, err := id.ParseCategoryID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.DeleteCategory(ctx, categoryID); err != nil {
		h.fail(ctx, w, "failed to delete category", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInternal, dErrors.CodeUnavailable:
		h.logger.ErrorContext(ctx, msg, "request_id", requestcontext.RequestID(ctx), "error", err)
	default:
		h.logger.WarnContext(ctx, msg, "request_id", requestcontext.RequestID(ctx), "error", err)
	}
	httputil.WriteError(w, err)
}
