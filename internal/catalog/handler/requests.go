package handler

import (
	"strings"

	"github.com/shopspring/decimal"

	"farmshop/internal/catalog/models"
	id "farmshop/pkg/domain"
	dErrors "farmshop/pkg/domain-errors"
)

// ProductRequest is the body of POST /admin/products and PUT /admin/products/{id}.
type ProductRequest struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Unit          string          `json:"unit"`
	StockQuantity int             `json:"stock_quantity"`
	CategoryID    string          `json:"category_id"`
	ImageURL      string          `json:"image_url"`

	categoryID *id.CategoryID
}

func (r *ProductRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Name) > 200 || len(r.Description) > 5000 {
		return dErrors.New(dErrors.CodeValidation, "name or description too long")
	}
	r.CategoryID = strings.TrimSpace(r.CategoryID)
	if r.CategoryID != "" {
		categoryID, err := id.ParseCategoryID(r.CategoryID)
		if err != nil {
			return err
		}
		r.categoryID = &categoryID
	}
	return nil
}

// Input converts the request into the service input. Field validation
// happens in the service so every caller gets the same messages.
func (r *ProductRequest) Input() models.ProductInput {
	return models.ProductInput{
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price,
		Unit:          r.Unit,
		StockQuantity: r.StockQuantity,
		CategoryID:    r.categoryID,
		ImageURL:      r.ImageURL,
	}
}

type DisabledRequest struct {
	Disabled *bool `json:"disabled"`
}

func (r *DisabledRequest) Validate() error {
	if r == nil || r.Disabled == nil {
		return dErrors.New(dErrors.CodeValidation, "disabled is required")
	}
	return nil
}

type CategoryRequest struct {
	Name string `json:"name"`
}

func (r *CategoryRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if len(r.Name) > 100 {
		return dErrors.New(dErrors.CodeValidation, "name must be at most 100 characters")
	}
	return nil
}
