package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"farmshop/internal/gallery/models"
	id "farmshop/pkg/domain"
	dErrors "farmshop/pkg/domain-errors"
	"farmshop/pkg/platform/httputil"
	"farmshop/pkg/requestcontext"
)

const maxImageSize = 10 << 20

type Service interface {
	List(ctx context.Context) ([]*models.Image, error)
	Upload(ctx context.Context, in models.Upload, r io.Reader) (*models.Image, error)
	Update(ctx context.Context, imageID id.ImageID, in models.Update) (*models.Image, error)
	Delete(ctx context.Context, imageID id.ImageID) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/gallery", h.HandleList)
}

func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/admin/gallery", h.HandleUpload)
	r.Put("/admin/gallery/{id}", h.HandleUpdate)
	r.Delete("/admin/gallery/{id}", h.HandleDelete)
}

// UpdateRequest is the body of PUT /admin/gallery/{id}.
type UpdateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Position    *int   `json:"position"`
}

func (r *UpdateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return nil
}

type ImageListResponse struct {
	Images []*models.Image `json:"images"`
	Count  int             `json:"count"`
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	images, err := h.service.List(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to list gallery", err)
		return
	}
	if images == nil {
		images = []*models.Image{}
	}
	httputil.WriteJSON(w, http.StatusOK, ImageListResponse{Images: images, Count: len(images)})
}

// HandleUpload handles POST /admin/gallery with multipart fields image,
// title and description.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
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

	img, err := h.service.Upload(ctx, models.Upload{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}, file)
	if err != nil {
		h.fail(ctx, w, "failed to upload gallery image", err)
		return
	}
	h.logger.InfoContext(ctx, "gallery image uploaded",
		"request_id", requestcontext.RequestID(ctx),
		"image_id", img.ID.String(),
	)
	httputil.WriteJSON(w, http.StatusCreated, img)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	imageID, err := id.ParseImageID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	img, err := h.service.Update(ctx, imageID, models.Update{
		Title:       req.Title,
		Description: req.Description,
		Position:    req.Position,
	})
	if err != nil {
		h.fail(ctx, w, "failed to update gallery image", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, img)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	imageID, err := id.ParseImageID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Delete(ctx, imageID); err != nil {
		h.fail(ctx, w, "failed to delete gallery image", err)
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
