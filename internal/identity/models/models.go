// Package models defines user profiles and the session view.
package models

import (
	"strings"
	"time"

	id "farmshop/pkg/domain"
	"farmshop/pkg/email"
)

// User is the account and its shipping profile. The password hash never
// leaves the service layer.
type User struct {
	ID           id.UserID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Phone        string    `json:"phone" db:"phone"`
	Address      string    `json:"address" db:"address"`
	City         string    `json:"city" db:"city"`
	State        string    `json:"state" db:"state"`
	ZipCode      string    `json:"zip_code" db:"zip_code"`
	IsAdmin      bool      `json:"is_admin" db:"is_admin"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// FullName joins first and last name, skipping empty parts.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// ProfileInput carries the editable profile fields.
type ProfileInput struct {
	FirstName string
	LastName  string
	Phone     string
	Address   string
	City      string
	State     string
	ZipCode   string
}

// Apply copies the input onto u.
func (in ProfileInput) Apply(u *User) {
	u.FirstName = in.FirstName
	u.LastName = in.LastName
	u.Phone = in.Phone
	u.Address = in.Address
	u.City = in.City
	u.State = in.State
	u.ZipCode = in.ZipCode
}

// Session is the result of a successful sign in.
type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        *User     `json:"user"`
}

// UserFilter narrows the admin user list. Query matches email or name.
type UserFilter struct {
	Query string
	Limit int
}

// NormalizeEmail lowercases and trims an address.
func NormalizeEmail(address string) string {
	return email.Normalize(address)
}
