package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
)

// LotRepository puerto de persistencia de lotes.
// Las lecturas devuelven (nil, nil) si el lote no existe.
type LotRepository interface {
	// Create inserta el lote; devuelve domain.ErrDuplicateCode si el código ya existe.
	Create(ctx context.Context, lot *entity.Lot) error
	GetByID(ctx context.Context, id string) (*entity.Lot, error)
	GetByCode(ctx context.Context, code string) (*entity.Lot, error)
	// GetForUpdate bloquea la fila del lote (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Lot, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	// CompareAndSetState cambia el estado solo si el actual es from e incrementa Version.
	// Devuelve false si otro proceso ganó la transición.
	CompareAndSetState(ctx context.Context, id string, from, to entity.LotState, at time.Time) (bool, error)
	UpdateRemainingWeight(ctx context.Context, id string, remaining decimal.Decimal, at time.Time) error
	ListChildren(ctx context.Context, parentID string) ([]*entity.Lot, error)
	// ListAvailable lotes AVAILABLE de un material en una bodega, en orden FIFO (más antiguos primero).
	ListAvailable(ctx context.Context, warehouseID, materialTypeID string) ([]*entity.Lot, error)
}
