package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmshop/internal/orders/models"
	id "farmshop/pkg/domain"
)

func sampleOrder(method models.DeliveryMethod, total int64) *models.Order {
	at := time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC)
	return &models.Order{
		ID:              id.NewOrderID(),
		Number:          42,
		UserID:          id.NewUserID(),
		Status:          models.StatusShipped,
		TotalAmount:     decimal.NewFromInt(total),
		ShippingAddress: "Polní 12",
		ShippingCity:    "Tábor",
		ShippingState:   "Jihočeský kraj",
		ShippingZip:     "39001",
		DeliveryMethod:  method,
		CustomerName:    "Jana Nováková",
		CreatedAt:       at,
		UpdatedAt:       at,
		Items: []models.Item{
			{ID: uuid.New(), ProductID: id.NewProductID(), Quantity: 2, UnitPrice: decimal.NewFromInt(50), Name: "Kozí sýr", Unit: "ks"},
			{ID: uuid.New(), ProductID: id.NewProductID(), Quantity: 1, UnitPrice: decimal.NewFromInt(100), Name: "Med", Unit: "sklenice"},
		},
	}
}

func TestRenderShippedOrder(t *testing.T) {
	p := NewPDF("Farma U Lípy")
	p.compress = false

	var buf bytes.Buffer
	require.NoError(t, p.Render(&buf, sampleOrder(models.DeliveryShip, 299)))

	out := buf.String()
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Contains(t, out, "Objednavka c. 42")
	assert.Contains(t, out, "Kozi syr")
	assert.Contains(t, out, "Jihocesky kraj")
	assert.Contains(t, out, "(Doprava)")
	assert.Contains(t, out, "99 Kc")
	assert.Contains(t, out, "299 Kc")
}

func TestRenderPickupOmitsAddress(t *testing.T) {
	p := NewPDF("Farma")
	p.compress = false

	var buf bytes.Buffer
	require.NoError(t, p.Render(&buf, sampleOrder(models.DeliveryPickup, 200)))

	out := buf.String()
	assert.NotContains(t, out, "Polni 12")
	assert.NotContains(t, out, "(Doprava)")
	assert.Contains(t, out, "Osobni odber")
}

func TestRenderCompressed(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPDF("Farma").Render(&buf, sampleOrder(models.DeliveryShip, 299)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 500)
}

func TestFold(t *testing.T) {
	assert.Equal(t, "Zlutoucky kun", fold("Žluťoučký kůň"))
	assert.Equal(t, "plain", fold("plain"))
}
