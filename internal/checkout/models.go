package checkout

import (
	"strings"

	"github.com/shopspring/decimal"

	"farmshop/internal/cart"
	"farmshop/internal/orders/models"
	id "farmshop/pkg/domain"
	dErrors "farmshop/pkg/domain-errors"
)

// Step is the wizard position.
type Step string

const (
	StepCollectingShipping Step = "collecting_shipping"
	StepReviewingSummary   Step = "reviewing_summary"
)

// ShippingDetails is what the customer enters on the first step.
type ShippingDetails struct {
	FirstName      string                `json:"first_name"`
	LastName       string                `json:"last_name"`
	Email          string                `json:"email"`
	Phone          string                `json:"phone"`
	Address        string                `json:"address"`
	City           string                `json:"city"`
	State          string                `json:"state"`
	ZipCode        string                `json:"zip_code"`
	DeliveryMethod models.DeliveryMethod `json:"delivery_method"`
}

// Normalize trims every field.
func (d *ShippingDetails) Normalize() {
	for _, f := range []*string{&d.FirstName, &d.LastName, &d.Email, &d.Phone, &d.Address, &d.City, &d.State, &d.ZipCode} {
		*f = strings.TrimSpace(*f)
	}
}

// Validate reports one field error per missing value. Address fields are
// only required when the order ships.
func (d ShippingDetails) Validate() error {
	var fields []dErrors.FieldError
	require := func(value, field, msg string) {
		if strings.TrimSpace(value) == "" {
			fields = append(fields, dErrors.FieldError{Field: field, Message: msg})
		}
	}
	require(d.FirstName, "first_name", "Jméno je povinné")
	require(d.LastName, "last_name", "Příjmení je povinné")
	require(d.Email, "email", "Email je povinný")
	require(d.Phone, "phone", "Telefon je povinný")
	if d.Email != "" && !strings.Contains(d.Email, "@") {
		fields = append(fields, dErrors.FieldError{Field: "email", Message: "Email není platný"})
	}
	if d.DeliveryMethod.Ships() {
		require(d.Address, "address", "Adresa je povinná")
		require(d.City, "city", "Město je povinné")
		require(d.State, "state", "Stát je povinný")
		require(d.ZipCode, "zip_code", "PSČ je povinné")
	}
	if len(fields) > 0 {
		return dErrors.Validation(fields)
	}
	return nil
}

// CustomerName is the name stored on the order.
func (d ShippingDetails) CustomerName() string {
	return d.FirstName + " " + d.LastName
}

// Completion marks a just-placed order. It is shown once and then cleared.
type Completion struct {
	OrderID     id.OrderID `json:"order_id"`
	OrderNumber int64      `json:"order_number"`
}

// Session is the per-cart wizard state.
type Session struct {
	Step          Step            `json:"step"`
	Shipping      ShippingDetails `json:"shipping"`
	Prefilled     bool            `json:"prefilled"`
	JustCompleted *Completion     `json:"just_completed,omitempty"`
}

func newSession() *Session {
	return &Session{
		Step:     StepCollectingShipping,
		Shipping: ShippingDetails{DeliveryMethod: models.DeliveryShip},
	}
}

// Summary is the review page. Totals are recomputed on every call.
type Summary struct {
	Items             []cart.Item           `json:"items"`
	ItemsTotal        decimal.Decimal       `json:"items_total"`
	DeliveryMethod    models.DeliveryMethod `json:"delivery_method"`
	DeliveryCost      decimal.Decimal       `json:"delivery_cost"`
	TotalWithDelivery decimal.Decimal       `json:"total_with_delivery"`
	Shipping          ShippingDetails       `json:"shipping"`
}

// TotalWithDelivery adds the flat delivery cost when the order ships.
func TotalWithDelivery(itemsTotal decimal.Decimal, method models.DeliveryMethod, deliveryCost decimal.Decimal) decimal.Decimal {
	if method.Ships() {
		return itemsTotal.Add(deliveryCost)
	}
	return itemsTotal
}

// View is what the wizard shows on entry.
type View struct {
	Step      Step            `json:"step"`
	Shipping  ShippingDetails `json:"shipping"`
	Completed *Completion     `json:"completed,omitempty"`
	Warning   string          `json:"warning,omitempty"`
}

// Result is the outcome of a confirmed checkout.
type Result struct {
	Order   *models.Order `json:"order"`
	Warning string        `json:"warning,omitempty"`
}
