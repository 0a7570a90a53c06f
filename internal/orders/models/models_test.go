package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "farmshop/pkg/domain-errors"
)

func TestParseStatus(t *testing.T) {
	for _, s := range Statuses() {
		got, err := ParseStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
		assert.NotEqual(t, string(s), got.Label(), "every status has a label")
	}

	_, err := ParseStatus("refunded")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestStatusLabels(t *testing.T) {
	assert.Equal(t, "Odesláno", StatusShipped.Label())
	assert.Equal(t, "Připraveno k vyzvednutí", StatusReadyForPickup.Label())
	assert.Equal(t, "mystery", Status("mystery").Label())
}

func TestParseDeliveryMethod(t *testing.T) {
	tests := map[string]DeliveryMethod{
		"pickup": DeliveryPickup,
		"ship":   DeliveryShip,
		"DPD":    DeliveryShip,
	}
	for raw, want := range tests {
		got, err := ParseDeliveryMethod(raw)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseDeliveryMethod("drone")
	assert.Error(t, err)
}

func TestItemLineTotal(t *testing.T) {
	it := Item{Quantity: 3, UnitPrice: decimal.RequireFromString("12.50")}
	assert.True(t, decimal.RequireFromString("37.5").Equal(it.LineTotal()))
}
