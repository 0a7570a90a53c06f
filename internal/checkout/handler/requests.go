package handler

import (
	"farmshop/internal/checkout"
	"farmshop/internal/orders/models"
	dErrors "farmshop/pkg/domain-errors"
)

// ShippingRequest is the body of PUT /checkout/shipping.
type ShippingRequest struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	City           string `json:"city"`
	State          string `json:"state"`
	ZipCode        string `json:"zip_code"`
	DeliveryMethod string `json:"delivery_method"`

	method models.DeliveryMethod
}

func (r *ShippingRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	method, err := models.ParseDeliveryMethod(r.DeliveryMethod)
	if err != nil {
		return dErrors.Validation([]dErrors.FieldError{{Field: "delivery_method", Message: "Vyberte způsob dopravy"}})
	}
	r.method = method
	return nil
}

func (r *ShippingRequest) Details() checkout.ShippingDetails {
	return checkout.ShippingDetails{
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		Email:          r.Email,
		Phone:          r.Phone,
		Address:        r.Address,
		City:           r.City,
		State:          r.State,
		ZipCode:        r.ZipCode,
		DeliveryMethod: r.method,
	}
}
