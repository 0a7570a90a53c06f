// Package models defines contact form messages.
package models

import (
	"strings"
	"time"

	id "farmshop/pkg/domain"
	dErrors "farmshop/pkg/domain-errors"
	"farmshop/pkg/email"
)

const maxMessageLength = 5000

type Message struct {
	ID        id.MessageID `json:"id" db:"id"`
	Name      string       `json:"name" db:"name"`
	Email     string       `json:"email" db:"email"`
	Subject   string       `json:"subject" db:"subject"`
	Message   string       `json:"message" db:"message"`
	Read      bool         `json:"read" db:"read"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"`
}

// Submission is a contact form as sent by a visitor.
type Submission struct {
	Name    string
	Email   string
	Subject string
	Message string
}

func (s *Submission) Normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = email.Normalize(s.Email)
	s.Subject = strings.TrimSpace(s.Subject)
	s.Message = strings.TrimSpace(s.Message)
}

// Validate reports every missing field at once.
func (s Submission) Validate() error {
	var fields []dErrors.FieldError
	if s.Name == "" {
		fields = append(fields, dErrors.FieldError{Field: "name", Message: "Jméno je povinné"})
	}
	switch {
	case s.Email == "":
		fields = append(fields, dErrors.FieldError{Field: "email", Message: "E-mail je povinný"})
	case !email.LooksValid(s.Email):
		fields = append(fields, dErrors.FieldError{Field: "email", Message: "Neplatný e-mail"})
	}
	if s.Subject == "" {
		fields = append(fields, dErrors.FieldError{Field: "subject", Message: "Předmět je povinný"})
	}
	switch {
	case s.Message == "":
		fields = append(fields, dErrors.FieldError{Field: "message", Message: "Zpráva je povinná"})
	case len(s.Message) > maxMessageLength:
		fields = append(fields, dErrors.FieldError{Field: "message", Message: "Zpráva je příliš dlouhá"})
	}
	if len(fields) > 0 {
		return dErrors.Validation(fields)
	}
	return nil
}
