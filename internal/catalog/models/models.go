package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	id "farmshop/pkg/domain"
	dErrors "farmshop/pkg/domain-errors"
)

// Product is a sellable item. Disabled products are hidden from the
// storefront but stay referenced by historical order items.
type Product struct {
	ID            id.ProductID    `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	Description   string          `json:"description" db:"description"`
	Price         decimal.Decimal `json:"price" db:"price"`
	Unit          string          `json:"unit" db:"unit"`
	StockQuantity int             `json:"stock_quantity" db:"stock_quantity"`
	CategoryID    *id.CategoryID  `json:"category_id,omitempty" db:"category_id"`
	Disabled      bool            `json:"disabled" db:"disabled"`
	ImageURL      string          `json:"image_url" db:"image_url"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// InStock is derived, never stored.
func (p *Product) InStock() bool {
	return p.StockQuantity > 0
}

// Category groups products.
type Category struct {
	ID        id.CategoryID `json:"id" db:"id"`
	Name      string        `json:"name" db:"name"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
}

// ProductInput carries the editable product fields.
type ProductInput struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	Unit          string
	StockQuantity int
	CategoryID    *id.CategoryID
	ImageURL      string
}

// Normalize trims text fields in place.
func (in *ProductInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Unit = strings.TrimSpace(in.Unit)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
}

// Validate checks required fields and non-negative amounts.
func (in *ProductInput) Validate() error {
	var fields []dErrors.FieldError
	if in.Name == "" {
		fields = append(fields, dErrors.FieldError{Field: "name", Message: "name is required"})
	}
	if in.Unit == "" {
		fields = append(fields, dErrors.FieldError{Field: "unit", Message: "unit is required"})
	}
	if in.Price.IsNegative() {
		fields = append(fields, dErrors.FieldError{Field: "price", Message: "price must not be negative"})
	}
	if in.StockQuantity < 0 {
		fields = append(fields, dErrors.FieldError{Field: "stock_quantity", Message: "stock quantity must not be negative"})
	}
	if len(fields) > 0 {
		return dErrors.Validation(fields)
	}
	return nil
}

// ProductFilter narrows storefront and admin listings.
type ProductFilter struct {
	CategoryID      *id.CategoryID
	IncludeDisabled bool
}
