package repository

import (
	"context"
	"time"

	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
)

// MovementFilter filtros opcionales del kardex de un registro.
type MovementFilter struct {
	Type   *entity.MovementType
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// InventoryMovementRepository define el puerto de persistencia para movimientos de inventario (solo inserción).
type InventoryMovementRepository interface {
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	// ListByRecord movimientos del registro, más recientes primero.
	ListByRecord(ctx context.Context, recordID string, filter MovementFilter) ([]*entity.InventoryMovement, error)
	// ListByLot movimientos causados por un lote, en orden cronológico.
	ListByLot(ctx context.Context, lotID string) ([]*entity.InventoryMovement, error)
}
