package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"farmshop/internal/contact/handler/mocks"
	"farmshop/internal/contact/models"
	"farmshop/internal/contact/service"
	"farmshop/internal/ratelimit/middleware"
	"farmshop/internal/ratelimit/store/bucket"
	id "farmshop/pkg/domain"
	dErrors "farmshop/pkg/domain-errors"
	"farmshop/pkg/testutil"
)

type ContactHandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  chi.Router
}

func TestContactHandlerSuite(t *testing.T) {
	suite.Run(t, new(ContactHandlerSuite))
}

func (s *ContactHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(s.service, logger)
	limiter := middleware.New(bucket.New(), logger)
	s.router = chi.NewRouter()
	h.Register(s.router, limiter.RateLimit("contact", 2, time.Hour))
	h.RegisterAdmin(s.router)
}

func (s *ContactHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func contactBody() map[string]string {
	return map[string]string{
		"name":    "Jana",
		"email":   "jana@example.cz",
		"subject": "Vejce",
		"message": "Máte vejce?",
	}
}

func (s *ContactHandlerSuite) TestSubmit() {
	s.Run("created with warning", func() {
		s.service.EXPECT().Submit(gomock.Any(), models.Submission{
			Name: "Jana", Email: "jana@example.cz", Subject: "Vejce", Message: "Máte vejce?",
		}).Return(&service.SubmitResult{
			Message: &models.Message{ID: id.NewMessageID()},
			Warning: "message saved but the shop could not be notified",
		}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/contact", contactBody()))
		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		testutil.AssertJSONHasKey(s.T(), rr, "warning")
	})

	s.Run("validation errors pass through", func() {
		s.service.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(nil, dErrors.Validation([]dErrors.FieldError{
			{Field: "email", Message: "Neplatný e-mail"},
		}))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/contact", contactBody()))
		testutil.AssertStatus(s.T(), rr, http.StatusUnprocessableEntity)
	})

	s.Run("third request within the hour is refused", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/contact", contactBody()))
		testutil.AssertStatus(s.T(), rr, http.StatusTooManyRequests)
		s.NotEmpty(rr.Header().Get("Retry-After"))
	})
}

func (s *ContactHandlerSuite) TestAdmin() {
	s.Run("list", func() {
		s.service.EXPECT().List(gomock.Any()).Return(nil, nil)
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/admin/messages"))
		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONContains(s.T(), rr, "count", float64(0))
	})

	s.Run("mark read", func() {
		messageID := id.NewMessageID()
		s.service.EXPECT().SetRead(gomock.Any(), messageID, true).Return(nil)
		req := testutil.NewJSONRequest(s.T(), http.MethodPatch, "/admin/messages/"+messageID.String()+"/read", map[string]bool{"read": true})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusNoContent)
	})

	s.Run("read flag is required", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPatch, "/admin/messages/"+id.NewMessageID().String()+"/read", map[string]string{})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})

	s.Run("delete unknown", func() {
		messageID := id.NewMessageID()
		s.service.EXPECT().Delete(gomock.Any(), messageID).Return(dErrors.New(dErrors.CodeNotFound, "message not found"))
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodDelete, "/admin/messages/"+messageID.String()))
		testutil.AssertStatus(s.T(), rr, http.StatusNotFound)
	})
}
