package admin

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"farmshop/pkg/platform/httputil"
)

type DashboardLoader interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
}

type Handler struct {
	loader DashboardLoader
	logger *slog.Logger
}

func NewHandler(loader DashboardLoader, logger *slog.Logger) *Handler {
	return &Handler{loader: loader, logger: logger}
}

func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/dashboard", h.HandleDashboard)
}

func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.loader.Dashboard(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, d)
}
