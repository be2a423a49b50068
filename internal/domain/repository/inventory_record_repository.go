package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
)

// InventoryRecordRepository define el puerto para consultar/actualizar el stock por bodega+material.
// Usado dentro de transacciones para garantizar consistencia. Las lecturas devuelven (nil, nil) si no existe.
type InventoryRecordRepository interface {
	// GetOrCreateForUpdate devuelve el registro único del par bloqueado, creándolo con stock cero si no existe.
	// Seguro ante primer uso concurrente.
	GetOrCreateForUpdate(ctx context.Context, warehouseID, materialTypeID string, now time.Time) (*entity.InventoryRecord, error)
	// GetForUpdate bloquea el registro existente del par (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, warehouseID, materialTypeID string) (*entity.InventoryRecord, error)
	Get(ctx context.Context, warehouseID, materialTypeID string) (*entity.InventoryRecord, error)
	GetByID(ctx context.Context, id string) (*entity.InventoryRecord, error)
	UpdateQuantity(ctx context.Context, id string, quantity decimal.Decimal, at time.Time) error
	// SetThresholds fija umbrales mínimo/máximo y ubicación; no altera la cantidad.
	SetThresholds(ctx context.Context, id string, minStock, maxStock decimal.Decimal, location string) error
	// SumByWarehouse stock total almacenado en una bodega.
	SumByWarehouse(ctx context.Context, warehouseID string) (decimal.Decimal, error)
	// SumByMaterialType stock global de un material en todas las bodegas.
	SumByMaterialType(ctx context.Context, materialTypeID string) (decimal.Decimal, error)
	ListByWarehouse(ctx context.Context, warehouseID string) ([]*entity.InventoryRecord, error)
	ListBelowMinimum(ctx context.Context) ([]*entity.InventoryRecord, error)
	ListAboveMaximum(ctx context.Context) ([]*entity.InventoryRecord, error)
}
