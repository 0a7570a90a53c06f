package handler

import (
	"farmshop/internal/contact/models"
	dErrors "farmshop/pkg/domain-errors"
)

// ContactRequest is the body of POST /contact.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Validate is left to the service so that every field error is reported
// together.
func (r *ContactRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return nil
}

func (r *ContactRequest) submission() models.Submission {
	return models.Submission{Name: r.Name, Email: r.Email, Subject: r.Subject, Message: r.Message}
}

// ReadRequest is the body of PATCH /admin/messages/{id}/read.
type ReadRequest struct {
	Read *bool `json:"read"`
}

func (r *ReadRequest) Validate() error {
	if r == nil || r.Read == nil {
		return dErrors.New(dErrors.CodeBadRequest, "read is required")
	}
	return nil
}

type SubmitResponse struct {
	Message *models.Message `json:"message"`
	Warning string          `json:"warning,omitempty"`
}

type MessageListResponse struct {
	Messages []*models.Message `json:"messages"`
	Count    int               `json:"count"`
}
