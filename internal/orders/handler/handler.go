package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"farmshop/internal/orders/models"
	"farmshop/internal/orders/service"
	id "farmshop/pkg/domain"
	dErrors "farmshop/pkg/domain-errors"
	"farmshop/pkg/platform/httputil"
	"farmshop/pkg/requestcontext"
)

// Service defines the order operations exposed over HTTP.
type Service interface {
	ListForUser(ctx context.Context, userID id.UserID) ([]*models.Order, error)
	ListAdmin(ctx context.Context, filter models.AdminFilter) ([]*models.Order, error)
	Get(ctx context.Context, orderID id.OrderID) (*models.Order, error)
	SetStatus(ctx context.Context, orderID id.OrderID, status models.Status) (*service.StatusResult, error)
	Delete(ctx context.Context, orderID id.OrderID) error
	Export(ctx context.Context, orderID id.OrderID) ([]byte, string, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the customer routes. The caller applies RequireAuth.
func (h *Handler) Register(r chi.Router) {
	r.Get("/orders", h.HandleListOwn)
}

// RegisterAdmin mounts the back office routes behind RequireAdmin.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/orders", h.HandleAdminList)
	r.Get("/admin/orders/statuses", h.HandleStatuses)
	r.Get("/admin/orders/{id}", h.HandleGet)
	r.Patch("/admin/orders/{id}/status", h.HandleSetStatus)
	r.Get("/admin/orders/{id}/pdf", h.HandleExport)
	r.Delete("/admin/orders/{id}", h.HandleDelete)
}

// HandleListOwn handles GET /orders.
func (h *Handler) HandleListOwn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "sign in required"))
		return
	}
	orders, err := h.service.ListForUser(ctx, userID)
	if err != nil {
		h.fail(ctx, w, "failed to list orders", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toOrderList(orders))
}

// HandleAdminList handles GET /admin/orders?status=&q=&limit=.
func (h *Handler) HandleAdminList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter, err := parseAdminFilter(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	orders, err := h.service.ListAdmin(ctx, filter)
	if err != nil {
		h.fail(ctx, w, "failed to list orders", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toOrderList(orders))
}

func (h *Handler) HandleStatuses(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, statusOptions())
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID, err := id.ParseOrderID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	o, err := h.service.Get(ctx, orderID)
	if err != nil {
		h.fail(ctx, w, "failed to get order", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	orderID, err := id.ParseOrderID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[StatusRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.service.SetStatus(ctx, orderID, req.status)
	if err != nil {
		h.fail(ctx, w, "failed to update order status", err)
		return
	}
	h.logger.InfoContext(ctx, "order status updated",
		"request_id", requestID,
		"order_id", orderID.String(),
		"status", string(req.status),
	)
	httputil.WriteJSON(w, http.StatusOK, StatusResponse{
		Order:   toOrderResponse(res.Order),
		Warning: res.Warning,
	})
}

// HandleExport handles GET /admin/orders/{id}/pdf.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID, err := id.ParseOrderID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	body, filename, err := h.service.Export(ctx, orderID)
	if err != nil {
		h.fail(ctx, w, "failed to export order", err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.logger.WarnContext(ctx, "failed to write order document",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID, err := id.ParseOrderID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Delete(ctx, orderID); err != nil {
		h.fail(ctx, w, "failed to delete order", err)
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
