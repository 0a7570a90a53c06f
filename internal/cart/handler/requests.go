package handler

import (
	"strings"

	id "farmshop/pkg/domain"
	dErrors "farmshop/pkg/domain-errors"
)

// AddItemRequest is the body of POST /cart/items.
type AddItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`

	productID id.ProductID
}

// Validate parses the product id and clamps quantity to at least 1.
func (r *AddItemRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	productID, err := id.ParseProductID(strings.TrimSpace(r.ProductID))
	if err != nil {
		return err
	}
	r.productID = productID
	r.Quantity = max(r.Quantity, 1)
	return nil
}

// UpdateQuantityRequest is the body of PATCH /cart/items/{productID}.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

func (r *UpdateQuantityRequest) Validate() error {
	if r == nil || r.Quantity == nil {
		return dErrors.New(dErrors.CodeValidation, "quantity is required")
	}
	if *r.Quantity < 1 {
		return dErrors.New(dErrors.CodeValidation, "quantity must be at least 1")
	}
	return nil
}
