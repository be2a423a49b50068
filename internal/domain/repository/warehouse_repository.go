package repository

import (
	"context"

	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
)

// WarehouseRepository puerto de lectura de bodegas. El motor nunca crea ni modifica bodegas.
// GetByID y GetForUpdate devuelven (nil, nil) si la bodega no existe.
type WarehouseRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Warehouse, error)
	// GetForUpdate bloquea la fila de la bodega (SELECT FOR UPDATE) para serializar admisiones de stock.
	GetForUpdate(ctx context.Context, id string) (*entity.Warehouse, error)
	List(ctx context.Context) ([]*entity.Warehouse, error)
}
