package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"farmshop/internal/cart"
	id "farmshop/pkg/domain"
	dErrors "farmshop/pkg/domain-errors"
	"farmshop/pkg/platform/httputil"
	"farmshop/pkg/requestcontext"
)

// Service defines the cart operations exposed over HTTP.
type Service interface {
	Load(ctx context.Context, session string) (cart.State, error)
	AddProduct(ctx context.Context, session string, productID id.ProductID, qty int) (cart.State, error)
	UpdateQuantity(ctx context.Context, session string, productID id.ProductID, qty int) (cart.State, error)
	Remove(ctx context.Context, session string, productID id.ProductID) (cart.State, error)
	Clear(ctx context.Context, session string) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the cart routes behind the cart session middleware.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(Session)
		r.Get("/cart", h.HandleGet)
		r.Delete("/cart", h.HandleClear)
		r.Post("/cart/items", h.HandleAdd)
		r.Patch("/cart/items/{productID}", h.HandleUpdate)
		r.Delete("/cart/items/{productID}", h.HandleRemove)
	})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	st, err := h.service.Load(ctx, requestcontext.CartSession(ctx))
	if err != nil {
		h.fail(ctx, w, "failed to load cart", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCartResponse(st))
}

func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[AddItemRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	st, err := h.service.AddProduct(ctx, requestcontext.CartSession(ctx), req.productID, req.Quantity)
	if err != nil {
		h.fail(ctx, w, "failed to add to cart", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCartResponse(st))
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID, err := id.ParseProductID(chi.URLParam(r, "productID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateQuantityRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	st, err := h.service.UpdateQuantity(ctx, requestcontext.CartSession(ctx), productID, *req.Quantity)
	if err != nil {
		h.fail(ctx, w, "failed to update cart", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCartResponse(st))
}

func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID, err := id.ParseProductID(chi.URLParam(r, "productID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	st, err := h.service.Remove(ctx, requestcontext.CartSession(ctx), productID)
	if err != nil {
		h.fail(ctx, w, "failed to remove from cart", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCartResponse(st))
}

func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.service.Clear(ctx, requestcontext.CartSession(ctx)); err != nil {
		h.fail(ctx, w, "failed to clear cart", err)
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
