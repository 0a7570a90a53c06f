package store

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmshop/internal/catalog/models"
	id "farmshop/pkg/domain"
	"farmshop/pkg/platform/sentinel"
)

func TestInMemoryStore_Products(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	veg := &models.Category{ID: id.NewCategoryID(), Name: "Zelenina"}
	require.NoError(t, s.CreateCategory(ctx, veg))

	carrots := &models.Product{ID: id.NewProductID(), Name: "Mrkev", Price: decimal.NewFromInt(30), Unit: "kg", StockQuantity: 5, CategoryID: &veg.ID}
	eggs := &models.Product{ID: id.NewProductID(), Name: "Vejce", Price: decimal.NewFromInt(5), Unit: "ks", StockQuantity: 30}
	hidden := &models.Product{ID: id.NewProductID(), Name: "Cibule", Price: decimal.NewFromInt(20), Unit: "kg", Disabled: true}
	for _, p := range []*models.Product{eggs, carrots, hidden} {
		require.NoError(t, s.CreateProduct(ctx, p))
	}

	t.Run("storefront listing hides disabled and sorts by name", func(t *testing.T) {
		got, err := s.ListProducts(ctx, models.ProductFilter{})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Mrkev", got[0].Name)
		assert.Equal(t, "Vejce", got[1].Name)
	})

	t.Run("admin listing includes disabled", func(t *testing.T) {
		got, err := s.ListProducts(ctx, models.ProductFilter{IncludeDisabled: true})
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("category filter", func(t *testing.T) {
		got, err := s.ListProducts(ctx, models.ProductFilter{CategoryID: &veg.ID})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, carrots.ID, got[0].ID)
	})

	t.Run("unknown category is rejected", func(t *testing.T) {
		missing := id.NewCategoryID()
		err := s.CreateProduct(ctx, &models.Product{ID: id.NewProductID(), Name: "X", CategoryID: &missing})
		assert.ErrorIs(t, err, sentinel.ErrInvalidState)
	})

	t.Run("stock may go negative", func(t *testing.T) {
		require.NoError(t, s.AdjustStock(ctx, carrots.ID, -7))
		got, err := s.FindProduct(ctx, carrots.ID)
		require.NoError(t, err)
		assert.Equal(t, -2, got.StockQuantity)
		assert.False(t, got.InStock())
	})

	t.Run("returned products are copies", func(t *testing.T) {
		got, err := s.FindProduct(ctx, eggs.ID)
		require.NoError(t, err)
		got.Name = "changed"
		again, err := s.FindProduct(ctx, eggs.ID)
		require.NoError(t, err)
		assert.Equal(t, "Vejce", again.Name)
	})
}

func TestInMemoryStore_Categories(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	fruit := &models.Category{ID: id.NewCategoryID(), Name: "Ovoce"}
	require.NoError(t, s.CreateCategory(ctx, fruit))

	t.Run("duplicate name", func(t *testing.T) {
		err := s.CreateCategory(ctx, &models.Category{ID: id.NewCategoryID(), Name: "Ovoce"})
		assert.ErrorIs(t, err, sentinel.ErrAlreadyUsed)
	})

	t.Run("delete with products conflicts until detached", func(t *testing.T) {
		apple := &models.Product{ID: id.NewProductID(), Name: "Jablka", Unit: "kg", CategoryID: &fruit.ID}
		require.NoError(t, s.CreateProduct(ctx, apple))

		assert.ErrorIs(t, s.DeleteCategory(ctx, fruit.ID), sentinel.ErrConflict)

		require.NoError(t, s.DetachCategory(ctx, fruit.ID))
		require.NoError(t, s.DeleteCategory(ctx, fruit.ID))

		got, err := s.FindProduct(ctx, apple.ID)
		require.NoError(t, err)
		assert.Nil(t, got.CategoryID)
	})

	t.Run("missing category", func(t *testing.T) {
		_, err := s.FindCategory(ctx, id.NewCategoryID())
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}
