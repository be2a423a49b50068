package repository

import (
	"context"

	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
)

// SupplierRepository puerto de lectura de proveedores. (nil, nil) si no existe.
type SupplierRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Supplier, error)
}
