package cart

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	id "farmshop/pkg/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrMalformedSnapshot marks a stored snapshot that cannot be applied.
var ErrMalformedSnapshot = errors.New("malformed cart snapshot")

func EncodeSnapshot(s State) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode cart snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses a stored snapshot. Besides invalid JSON, a snapshot
// is malformed when a line has no product id, a negative price or a quantity
// below one, when a product appears on two lines, or when the stored total
// disagrees with its lines.
func DecodeSnapshot(data []byte) (State, error) {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	seen := make(map[id.ProductID]struct{}, len(s.Items))
	for _, it := range s.Items {
		if it.ProductID.IsNil() {
			return State{}, fmt.Errorf("%w: line without product id", ErrMalformedSnapshot)
		}
		if it.Price.IsNegative() {
			return State{}, fmt.Errorf("%w: negative price", ErrMalformedSnapshot)
		}
		if it.Quantity < 1 {
			return State{}, fmt.Errorf("%w: quantity %d", ErrMalformedSnapshot, it.Quantity)
		}
		if _, dup := seen[it.ProductID]; dup {
			return State{}, fmt.Errorf("%w: product %s listed twice", ErrMalformedSnapshot, it.ProductID)
		}
		seen[it.ProductID] = struct{}{}
	}
	if !s.Total.Equal(s.ComputedTotal()) {
		return State{}, fmt.Errorf("%w: total %s does not match lines", ErrMalformedSnapshot, s.Total)
	}
	return LoadCart(s), nil
}
