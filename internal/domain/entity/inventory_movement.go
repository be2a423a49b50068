package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType dirección de un movimiento de inventario.
type MovementType string

const (
	MovementTypeIN         MovementType = "IN"         // entrada
	MovementTypeOUT        MovementType = "OUT"        // salida
	MovementTypeADJUSTMENT MovementType = "ADJUSTMENT" // ajuste administrativo
)

func (t MovementType) Valid() bool {
	switch t {
	case MovementTypeIN, MovementTypeOUT, MovementTypeADJUSTMENT:
		return true
	}
	return false
}

// ParseMovementType valida el valor leído desde almacenamiento.
func ParseMovementType(s string) (MovementType, error) {
	return parseEnum(MovementType(s), "tipo de movimiento")
}

// InventoryMovement entrada inmutable del kardex: un cambio de stock de un registro.
// Quantity siempre es positiva; la dirección de un ajuste se deduce de QuantityBefore/QuantityAfter.
type InventoryMovement struct {
	ID                string
	InventoryRecordID string
	WarehouseID       string
	MaterialTypeID    string
	Type              MovementType
	Quantity          decimal.Decimal
	QuantityBefore    decimal.Decimal
	QuantityAfter     decimal.Decimal
	LotID             string
	Reason            string
	Reference         string
	CreatedBy         string
	Date              time.Time
}

// Delta variación con signo que produjo el movimiento.
func (m *InventoryMovement) Delta() decimal.Decimal {
	return m.QuantityAfter.Sub(m.QuantityBefore)
}
