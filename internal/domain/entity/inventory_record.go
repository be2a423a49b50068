package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryRecord stock actual de un tipo de material en una bodega.
// Existe exactamente un registro por par (WarehouseID, MaterialTypeID); Quantity nunca es negativa.
type InventoryRecord struct {
	ID             string
	WarehouseID    string
	MaterialTypeID string
	Quantity       decimal.Decimal
	MinStock       decimal.Decimal
	MaxStock       decimal.Decimal
	Location       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// BelowMinimum indica stock por debajo del umbral mínimo.
func (r *InventoryRecord) BelowMinimum() bool {
	return r.Quantity.LessThan(r.MinStock)
}

// AboveMaximum indica stock por encima del umbral máximo (un máximo en cero no aplica).
func (r *InventoryRecord) AboveMaximum() bool {
	return r.MaxStock.GreaterThan(decimal.Zero) && r.Quantity.GreaterThan(r.MaxStock)
}
