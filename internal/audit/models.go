package audit

import (
	"time"

	id "farmshop/pkg/domain"
)

// EventType names a domain event. Values are part of the Kafka payload
// contract.
type EventType string

const (
	EventOrderPlaced        EventType = "order_placed"
	EventOrderStatusChanged EventType = "order_status_changed"
	EventOrderDeleted       EventType = "order_deleted"

	EventUserSignedUp     EventType = "user_signed_up"
	EventUserSignedIn     EventType = "user_signed_in"
	EventUserSignedOut    EventType = "user_signed_out"
	EventUserAdminChanged EventType = "user_admin_changed"
	EventUserDeleted      EventType = "user_deleted"

	EventContactReceived EventType = "contact_message_received"

	EventProductSaved    EventType = "product_saved"
	EventCategoryDeleted EventType = "category_deleted"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Type       EventType         `json:"type"`
	Timestamp  time.Time         `json:"timestamp"`
	UserID     id.UserID         `json:"user_id"`
	Subject    string            `json:"subject"`
	Attributes map[string]string `json:"attributes,omitempty"`
	RequestID  string            `json:"request_id,omitempty"`
}
