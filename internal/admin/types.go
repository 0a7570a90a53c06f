// Package admin assembles the back office dashboard.
package admin

import (
	"time"

	"farmshop/internal/audit"
	catalogmodels "farmshop/internal/catalog/models"
	contactmodels "farmshop/internal/contact/models"
	ordermodels "farmshop/internal/orders/models"
	id "farmshop/pkg/domain"
)

// DashboardUser is the admin view of an account, without credentials.
type DashboardUser struct {
	ID        id.UserID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

type Counts struct {
	Orders         int `json:"orders"`
	PendingOrders  int `json:"pending_orders"`
	Products       int `json:"products"`
	Categories     int `json:"categories"`
	Users          int `json:"users"`
	UnreadMessages int `json:"unread_messages"`
}

type Dashboard struct {
	RecentOrders   []*ordermodels.Order      `json:"recent_orders"`
	Products       []*catalogmodels.Product  `json:"products"`
	Categories     []*catalogmodels.Category `json:"categories"`
	Users          []*DashboardUser          `json:"users"`
	UnreadMessages []*contactmodels.Message  `json:"unread_messages"`
	Activity       []audit.Event             `json:"activity,omitempty"`
	Counts         Counts                    `json:"counts"`
}
