package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"farmshop/internal/identity/models"
	id "farmshop/pkg/domain"
	dErrors "farmshop/pkg/domain-errors"
	"farmshop/pkg/platform/httputil"
	"farmshop/pkg/requestcontext"
)

// Service defines the identity operations exposed over HTTP.
type Service interface {
	SignUp(ctx context.Context, email, password string) (*models.User, error)
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	SignOut(ctx context.Context) error
	CurrentSession(ctx context.Context) (*models.User, error)
	GetProfile(ctx context.Context, userID id.UserID) (*models.User, error)
	UpdateProfile(ctx context.Context, userID id.UserID, in models.ProfileInput) (*models.User, error)
	ListUsers(ctx context.Context, filter models.UserFilter) ([]*models.User, error)
	UpdateUser(ctx context.Context, userID id.UserID, in models.ProfileInput) (*models.User, error)
	SetAdmin(ctx context.Context, userID id.UserID, isAdmin bool) (*models.User, error)
	DeleteUser(ctx context.Context, userID id.UserID) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the routes that do not need a token.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/auth/signup", h.HandleSignUp)
	r.Post("/auth/signin", h.HandleSignIn)
}

// Register mounts the routes for signed in users. The caller applies
// RequireAuth.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/signout", h.HandleSignOut)
	r.Get("/auth/session", h.HandleSession)
	r.Get("/me/profile", h.HandleGetProfile)
	r.Put("/me/profile", h.HandleUpdateProfile)
}

func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/users", h.HandleListUsers)
	r.Get("/admin/users/{id}", h.HandleGetUser)
	r.Put("/admin/users/{id}", h.HandleUpdateUser)
	r.Patch("/admin/users/{id}/admin", h.HandleSetAdmin)
	r.Delete("/admin/users/{id}", h.HandleDeleteUser)
}

func (h *Handler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[CredentialsRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	u, err := h.service.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		h.fail(ctx, w, "sign up failed", err)
		return
	}
	h.logger.InfoContext(ctx, "user signed up",
		"request_id", requestID,
		"user_id", u.ID.String(),
	)
	httputil.WriteJSON(w, http.StatusCreated, u)
}

func (h *Handler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[CredentialsRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	session, err := h.service.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		h.fail(ctx, w, "sign in failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, session)
}

func (h *Handler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.service.SignOut(ctx); err != nil {
		h.fail(ctx, w, "sign out failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u, err := h.service.CurrentSession(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to load session", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SessionResponse{User: u, IsAdmin: u.IsAdmin})
}

func (h *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	u, err := h.service.GetProfile(ctx, userID)
	if err != nil {
		h.fail(ctx, w, "failed to load profile", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ProfileRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	u, err := h.service.UpdateProfile(ctx, userID, req.input())
	if err != nil {
		h.fail(ctx, w, "failed to update profile", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, u)
}

// HandleListUsers handles GET /admin/users?q=&limit=.
func (h *Handler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter, err := parseUserFilter(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	users, err := h.service.ListUsers(ctx, filter)
	if err != nil {
		h.fail(ctx, w, "failed to list users", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toUserList(users))
}

func (h *Handler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := id.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	u, err := h.service.GetProfile(ctx, userID)
	if err != nil {
		h.fail(ctx, w, "failed to get user", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := id.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[ProfileRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	u, err := h.service.UpdateUser(ctx, userID, req.input())
	if err != nil {
		h.fail(ctx, w, "failed to update user", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) HandleSetAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID, err := id.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[AdminFlagRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	u, err := h.service.SetAdmin(ctx, userID, *req.IsAdmin)
	if err != nil {
		h.fail(ctx, w, "failed to change admin flag", err)
		return
	}
	h.logger.InfoContext(ctx, "admin flag changed",
		"request_id", requestID,
		"user_id", userID.String(),
		"is_admin", u.IsAdmin,
	)
	httputil.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := id.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.DeleteUser(ctx, userID); err != nil {
		h.fail(ctx, w, "failed to delete user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request) (id.UserID, bool) {
	userID := requestcontext.UserID(r.Context())
	if userID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "sign in required"))
		return userID, false
	}
	return userID, true
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
