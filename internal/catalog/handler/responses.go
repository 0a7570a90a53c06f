package handler

import (
	"github.com/shopspring/decimal"

	"farmshop/internal/catalog/models"
)

type ProductResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Unit          string          `json:"unit"`
	StockQuantity int             `json:"stock_quantity"`
	InStock       bool            `json:"in_stock"`
	CategoryID    string          `json:"category_id,omitempty"`
	Disabled      bool            `json:"disabled"`
	ImageURL      string          `json:"image_url,omitempty"`
}

type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Count    int               `json:"count"`
}

type CategoryListResponse struct {
	Categories []*models.Category `json:"categories"`
	Count      int                `json:"count"`
}

func toProductResponse(p *models.Product) ProductResponse {
	resp := ProductResponse{
		ID:            p.ID.String(),
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		Unit:          p.Unit,
		StockQuantity: p.StockQuantity,
		InStock:       p.InStock(),
		Disabled:      p.Disabled,
		ImageURL:      p.ImageURL,
	}
	if p.CategoryID != nil {
		resp.CategoryID = p.CategoryID.String()
	}
	return resp
}

func toProductList(products []*models.Product) ProductListResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return ProductListResponse{Products: out, Count: len(out)}
}
