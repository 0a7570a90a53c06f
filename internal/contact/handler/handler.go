package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"farmshop/internal/contact/models"
	"farmshop/internal/contact/service"
	id "farmshop/pkg/domain"
	dErrors "farmshop/pkg/domain-errors"
	"farmshop/pkg/platform/httputil"
	"farmshop/pkg/requestcontext"
)

type Service interface {
	Submit(ctx context.Context, in models.Submission) (*service.SubmitResult, error)
	List(ctx context.Context) ([]*models.Message, error)
	SetRead(ctx context.Context, messageID id.MessageID, read bool) error
	Delete(ctx context.Context, messageID id.MessageID) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts POST /contact behind the given middleware (rate limit).
func (h *Handler) Register(r chi.Router, middlewares ...func(http.Handler) http.Handler) {
	r.With(middlewares...).Post("/contact", h.HandleSubmit)
}

func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/messages", h.HandleList)
	r.Patch("/admin/messages/{id}/read", h.HandleSetRead)
	r.Delete("/admin/messages/{id}", h.HandleDelete)
}

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[ContactRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.service.Submit(ctx, req.submission())
	if err != nil {
		h.fail(ctx, w, "failed to submit contact message", err)
		return
	}
	h.logger.InfoContext(ctx, "contact message received",
		"request_id", requestID,
		"message_id", res.Message.ID.String(),
	)
	httputil.WriteJSON(w, http.StatusCreated, SubmitResponse{Message: res.Message, Warning: res.Warning})
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	msgs, err := h.service.List(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to list messages", err)
		return
	}
	if msgs == nil {
		msgs = []*models.Message{}
	}
	httputil.WriteJSON(w, http.StatusOK, MessageListResponse{Messages: msgs, Count: len(msgs)})
}

func (h *Handler) HandleSetRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	messageID, err := id.ParseMessageID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[ReadRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.service.SetRead(ctx, messageID, *req.Read); err != nil {
		h.fail(ctx, w, "failed to update message", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	messageID, err := id.ParseMessageID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Delete(ctx, messageID); err != nil {
		h.fail(ctx, w, "failed to delete message", err)
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
