package catalog_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/trazabilidad-api/internal/application/catalog"
	"github.com/jhoicas/trazabilidad-api/internal/domain"
	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/trazabilidad-api/internal/infrastructure/memory"
)

func TestCatalog_Lookups(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	store.PutWarehouse(entity.Warehouse{ID: "w1", Name: "Norte", MaxCapacity: decimal.NewFromInt(1000), State: entity.WarehouseActive})
	store.PutMaterialType(entity.MaterialType{ID: "m1", Name: "PET", ShrinkThreshold: decimal.NewFromInt(8), Active: true})
	store.PutMaterialType(entity.MaterialType{ID: "m2", Name: "Cartón", Active: false})
	store.PutSupplier(entity.Supplier{ID: "s1", FirstName: "Ana", LastName: "Ruiz"})
	c := catalog.New(store.Repositories())

	w, err := c.Warehouse(ctx, "w1")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1000).Equal(w.MaxCapacity))
	assert.True(t, w.IsActive())

	m, err := c.MaterialType(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(8).Equal(m.ShrinkThreshold))

	s, err := c.Supplier(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Ana Ruiz", s.FullName())

	active, err := c.MaterialTypes(ctx, true)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestCatalog_NotFound(t *testing.T) {
	ctx := context.Background()
	c := catalog.New(memory.NewStore().Repositories())

	_, err := c.Warehouse(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = c.MaterialType(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = c.Supplier(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = c.Warehouse(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
