package handler

import (
	"github.com/shopspring/decimal"

	"farmshop/internal/cart"
)

type CartResponse struct {
	Items     []ItemResponse  `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

type ItemResponse struct {
	ProductID string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Unit      string          `json:"unit"`
	ImageURL  string          `json:"image_url,omitempty"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

func toCartResponse(st cart.State) CartResponse {
	items := make([]ItemResponse, 0, len(st.Items))
	for _, it := range st.Items {
		items = append(items, ItemResponse{
			ProductID: it.ProductID.String(),
			Name:      it.Name,
			Price:     it.Price,
			Unit:      it.Unit,
			ImageURL:  it.ImageURL,
			Quantity:  it.Quantity,
			LineTotal: it.LineTotal(),
		})
	}
	return CartResponse{Items: items, Total: st.Total, ItemCount: st.ItemCount()}
}
