// Package models defines orders, their lines and the status enum.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	id "farmshop/pkg/domain"
	dErrors "farmshop/pkg/domain-errors"
)

// Status is the order status. Any status may be set from any other.
type Status string

const (
	StatusPending         Status = "pending"
	StatusAwaitingPayment Status = "awaiting_payment"
	StatusReadyForPickup  Status = "ready_for_pickup"
	StatusPaid            Status = "paid"
	StatusProcessing      Status = "processing"
	StatusShipped         Status = "shipped"
	StatusDelivered       Status = "delivered"
	StatusCancelled       Status = "cancelled"
)

var statusLabels = map[Status]string{
	StatusPending:         "Čeká na vyřízení",
	StatusAwaitingPayment: "Čeká na platbu",
	StatusReadyForPickup:  "Připraveno k vyzvednutí",
	StatusPaid:            "Zaplaceno",
	StatusProcessing:      "Zpracovává se",
	StatusShipped:         "Odesláno",
	StatusDelivered:       "Doručeno",
	StatusCancelled:       "Zrušeno",
}

// Statuses lists every status in display order.
func Statuses() []Status {
	return []Status{
		StatusPending, StatusAwaitingPayment, StatusReadyForPickup, StatusPaid,
		StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled,
	}
}

func ParseStatus(raw string) (Status, error) {
	s := Status(strings.TrimSpace(raw))
	if _, ok := statusLabels[s]; !ok {
		return "", dErrors.New(dErrors.CodeValidation, "unknown order status: "+raw)
	}
	return s, nil
}

func (s Status) IsValid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label is the Czech display label.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

type DeliveryMethod string

const (
	DeliveryPickup DeliveryMethod = "pickup"
	DeliveryShip   DeliveryMethod = "ship"
)

// ParseDeliveryMethod accepts "pickup" and "ship". "dpd" is the carrier name
// older clients send and means ship.
func ParseDeliveryMethod(raw string) (DeliveryMethod, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pickup":
		return DeliveryPickup, nil
	case "ship", "dpd":
		return DeliveryShip, nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, "delivery_method must be pickup or ship")
	}
}

func (d DeliveryMethod) Ships() bool {
	return d == DeliveryShip
}

func (d DeliveryMethod) Label() string {
	if d.Ships() {
		return "Doručení na adresu"
	}
	return "Osobní odběr"
}

// Order is a placed order. Number is assigned by the store on creation.
type Order struct {
	ID              id.OrderID      `json:"id" db:"id"`
	Number          int64           `json:"order_number" db:"order_number"`
	UserID          id.UserID       `json:"user_id" db:"user_id"`
	Status          Status          `json:"status" db:"status"`
	TotalAmount     decimal.Decimal `json:"total_amount" db:"total_amount"`
	ShippingAddress string          `json:"shipping_address" db:"shipping_address"`
	ShippingCity    string          `json:"shipping_city" db:"shipping_city"`
	ShippingState   string          `json:"shipping_state" db:"shipping_state"`
	ShippingZip     string          `json:"shipping_zip" db:"shipping_zip"`
	DeliveryMethod  DeliveryMethod  `json:"delivery_method" db:"delivery_method"`
	CustomerName    string          `json:"customer_name" db:"customer_name"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
	Items           []Item          `json:"order_items" db:"-"`
}

// Item is an order line. UnitPrice is captured when the order is placed;
// Name and Unit are read back from the product.
type Item struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	OrderID   id.OrderID      `json:"order_id" db:"order_id"`
	ProductID id.ProductID    `json:"product_id" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price" db:"unit_price"`
	Name      string          `json:"name" db:"name"`
	Unit      string          `json:"unit" db:"unit"`
}

func (i Item) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// AdminFilter narrows the admin order list. Query matches the order number,
// customer name or status.
type AdminFilter struct {
	Status Status
	Query  string
	Limit  int
}
