package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// WarehouseState estado operativo de una bodega.
type WarehouseState string

const (
	WarehouseActive      WarehouseState = "ACTIVE"
	WarehouseInactive    WarehouseState = "INACTIVE"
	WarehouseMaintenance WarehouseState = "MAINTENANCE"
)

// Valid indica si el valor pertenece a la enumeración.
func (s WarehouseState) Valid() bool {
	switch s {
	case WarehouseActive, WarehouseInactive, WarehouseMaintenance:
		return true
	}
	return false
}

// ParseWarehouseState valida el valor leído desde almacenamiento.
func ParseWarehouseState(s string) (WarehouseState, error) {
	return parseEnum(WarehouseState(s), "estado de bodega")
}

// Warehouse representa una bodega con capacidad máxima en unidades de masa.
// La suma del stock de todos sus registros de inventario nunca supera MaxCapacity.
type Warehouse struct {
	ID          string
	Name        string
	Address     string
	MaxCapacity decimal.Decimal
	State       WarehouseState
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsActive indica si la bodega admite entradas de stock.
func (w *Warehouse) IsActive() bool {
	return w.State == WarehouseActive
}
