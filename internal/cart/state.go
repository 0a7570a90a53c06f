// Package cart holds the shopping cart. The functions in this file are pure
// transitions: each returns a new State and leaves its input untouched.
// Persistence is layered on top by Service.
package cart

import (
	"slices"

	"github.com/shopspring/decimal"

	id "farmshop/pkg/domain"
)

// Product is the snapshot of a catalog product captured when it is added.
type Product struct {
	ID       id.ProductID
	Name     string
	Price    decimal.Decimal
	Unit     string
	ImageURL string
}

// Item is one cart line.
type Item struct {
	ProductID id.ProductID    `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Unit      string          `json:"unit"`
	ImageURL  string          `json:"image_url,omitempty"`
	Quantity  int             `json:"quantity"`
}

// LineTotal is price times quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// State is the cart. Total is maintained incrementally by every transition
// and always equals the sum of the line totals.
type State struct {
	Items []Item          `json:"items"`
	Total decimal.Decimal `json:"total"`
}

func (s State) IsEmpty() bool {
	return len(s.Items) == 0
}

// ItemCount sums quantities across lines.
func (s State) ItemCount() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

// Find returns the line for productID.
func (s State) Find(productID id.ProductID) (Item, bool) {
	if i := s.index(productID); i >= 0 {
		return s.Items[i], true
	}
	return Item{}, false
}

// ComputedTotal recomputes the total from the lines.
func (s State) ComputedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.Items {
		total = total.Add(it.LineTotal())
	}
	return total
}

func (s State) index(productID id.ProductID) int {
	return slices.IndexFunc(s.Items, func(it Item) bool { return it.ProductID == productID })
}

func (s State) clone() State {
	return State{Items: slices.Clone(s.Items), Total: s.Total}
}

// Empty is the cart with no lines and a zero total.
func Empty() State {
	return State{Items: []Item{}, Total: decimal.Zero}
}

// AddToCart merges qty of p into the cart. An existing line grows, otherwise
// a new line is appended. qty must be at least 1.
func AddToCart(s State, p Product, qty int) State {
	next := s.clone()
	if i := next.index(p.ID); i >= 0 {
		next.Items[i].Quantity += qty
	} else {
		next.Items = append(next.Items, Item{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Unit:      p.Unit,
			ImageURL:  p.ImageURL,
			Quantity:  qty,
		})
	}
	next.Total = s.Total.Add(p.Price.Mul(decimal.NewFromInt(int64(qty))))
	return next
}

// RemoveFromCart drops the line for productID. An unknown id returns s as is.
func RemoveFromCart(s State, productID id.ProductID) State {
	i := s.index(productID)
	if i < 0 {
		return s
	}
	removed := s.Items[i]
	next := s.clone()
	next.Items = slices.Delete(next.Items, i, i+1)
	next.Total = s.Total.Sub(removed.LineTotal())
	return next
}

// UpdateQuantity sets the quantity of an existing line and adjusts the total
// by the difference. Unknown ids are a no-op. qty is not clamped.
func UpdateQuantity(s State, productID id.ProductID, qty int) State {
	i := s.index(productID)
	if i < 0 {
		return s
	}
	next := s.clone()
	diff := qty - next.Items[i].Quantity
	next.Items[i].Quantity = qty
	next.Total = s.Total.Add(next.Items[i].Price.Mul(decimal.NewFromInt(int64(diff))))
	return next
}

func ClearCart() State {
	return Empty()
}

// LoadCart replaces the state wholesale with snapshot.
func LoadCart(snapshot State) State {
	next := snapshot.clone()
	if next.Items == nil {
		next.Items = []Item{}
	}
	return next
}
