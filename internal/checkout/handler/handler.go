package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	carthandler "farmshop/internal/cart/handler"
	"farmshop/internal/checkout"
	id "farmshop/pkg/domain"
	dErrors "farmshop/pkg/domain-errors"
	"farmshop/pkg/platform/httputil"
	"farmshop/pkg/requestcontext"
)

type Service interface {
	Enter(ctx context.Context, cartSession string, userID id.UserID) (*checkout.View, error)
	SubmitShipping(ctx context.Context, cartSession string, details checkout.ShippingDetails) (*checkout.Summary, error)
	Back(ctx context.Context, cartSession string) (*checkout.View, error)
	Summary(ctx context.Context, cartSession string) (*checkout.Summary, error)
	Confirm(ctx context.Context, cartSession string, userID id.UserID) (*checkout.Result, error)
}

// CartEmptyResponse tells the client to go back to the cart.
type CartEmptyResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Redirect         string `json:"redirect"`
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the wizard. The caller applies RequireAuth; the cart
// session is resolved here.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(carthandler.Session)
		r.Get("/checkout", h.HandleEnter)
		r.Put("/checkout/shipping", h.HandleShipping)
		r.Post("/checkout/back", h.HandleBack)
		r.Get("/checkout/summary", h.HandleSummary)
		r.Post("/checkout/confirm", h.HandleConfirm)
	})
}

func (h *Handler) HandleEnter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view, err := h.service.Enter(ctx, requestcontext.CartSession(ctx), requestcontext.UserID(ctx))
	if err != nil {
		h.fail(ctx, w, "failed to enter checkout", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) HandleShipping(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[ShippingRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	summary, err := h.service.SubmitShipping(ctx, requestcontext.CartSession(ctx), req.Details())
	if err != nil {
		h.fail(ctx, w, "failed to submit shipping details", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) HandleBack(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view, err := h.service.Back(ctx, requestcontext.CartSession(ctx))
	if err != nil {
		h.fail(ctx, w, "failed to go back", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	summary, err := h.service.Summary(ctx, requestcontext.CartSession(ctx))
	if err != nil {
		h.fail(ctx, w, "failed to load summary", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res, err := h.service.Confirm(ctx, requestcontext.CartSession(ctx), requestcontext.UserID(ctx))
	if err != nil {
		h.fail(ctx, w, "failed to confirm order", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if errors.Is(err, checkout.ErrCartEmpty) {
		httputil.WriteJSON(w, http.StatusConflict, CartEmptyResponse{
			Error:            string(dErrors.CodeConflict),
			ErrorDescription: "cart is empty",
			Redirect:         "/cart",
		})
		return
	}
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInternal, dErrors.CodeUnavailable:
		h.logger.ErrorContext(ctx, msg, "request_id", requestcontext.RequestID(ctx), "error", err)
	default:
		h.logger.WarnContext(ctx, msg, "request_id", requestcontext.RequestID(ctx), "error", err)
	}
	httputil.WriteError(w, err)
}
