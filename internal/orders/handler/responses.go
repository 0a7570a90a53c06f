package handler

import "farmshop/internal/orders/models"

// OrderResponse adds the display labels to an order.
type OrderResponse struct {
	*models.Order
	StatusLabel   string `json:"status_label"`
	DeliveryLabel string `json:"delivery_label"`
}

type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Count  int             `json:"count"`
}

type StatusResponse struct {
	Order   OrderResponse `json:"order"`
	Warning string        `json:"warning,omitempty"`
}

// StatusOption is one entry of the admin status picker.
type StatusOption struct {
	Value models.Status `json:"value"`
	Label string        `json:"label"`
}

func toOrderResponse(o *models.Order) OrderResponse {
	return OrderResponse{
		Order:         o,
		StatusLabel:   o.Status.Label(),
		DeliveryLabel: o.DeliveryMethod.Label(),
	}
}

func toOrderList(orders []*models.Order) OrderListResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return OrderListResponse{Orders: out, Count: len(out)}
}

func statusOptions() []StatusOption {
	statuses := models.Statuses()
	out := make([]StatusOption, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, StatusOption{Value: s, Label: s.Label()})
	}
	return out
}
