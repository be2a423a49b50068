package repository

import (
	"context"

	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
)

// MaterialTypeRepository puerto de lectura del catálogo de materiales. (nil, nil) si no existe.
type MaterialTypeRepository interface {
	GetByID(ctx context.Context, id string) (*entity.MaterialType, error)
	List(ctx context.Context, onlyActive bool) ([]*entity.MaterialType, error)
}
