// Package catalog expone al motor los datos de referencia (bodegas, materiales, proveedores) en solo lectura.
package catalog

import (
	"context"
	"fmt"

	"github.com/jhoicas/trazabilidad-api/internal/domain"
	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/trazabilidad-api/internal/domain/repository"
)

// Catalog casos de uso de consulta del catálogo.
type Catalog struct {
	repos repository.Repositories
}

// New construye el catálogo sobre repositorios fuera de transacción.
func New(repos repository.Repositories) *Catalog {
	return &Catalog{repos: repos}
}

// Warehouse devuelve la bodega con su capacidad y estado actuales.
func (c *Catalog) Warehouse(ctx context.Context, id string) (*entity.Warehouse, error) {
	return Warehouse(ctx, c.repos.Warehouses, id)
}

// MaterialType devuelve el tipo de material con su bandera de activo y umbral de merma.
func (c *Catalog) MaterialType(ctx context.Context, id string) (*entity.MaterialType, error) {
	return MaterialType(ctx, c.repos.MaterialTypes, id)
}

// Supplier devuelve el proveedor.
func (c *Catalog) Supplier(ctx context.Context, id string) (*entity.Supplier, error) {
	return Supplier(ctx, c.repos.Suppliers, id)
}

func (c *Catalog) Warehouses(ctx context.Context) ([]*entity.Warehouse, error) {
	return c.repos.Warehouses.List(ctx)
}

func (c *Catalog) MaterialTypes(ctx context.Context, onlyActive bool) ([]*entity.MaterialType, error) {
	return c.repos.MaterialTypes.List(ctx, onlyActive)
}

// Warehouse busca una bodega con el repositorio dado (dentro o fuera de una transacción).
func Warehouse(ctx context.Context, repo repository.WarehouseRepository, id string) (*entity.Warehouse, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: warehouse_id requerido", domain.ErrInvalidInput)
	}
	w, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, fmt.Errorf("%w: bodega %s", domain.ErrNotFound, id)
	}
	return w, nil
}

// MaterialType busca un tipo de material con el repositorio dado.
func MaterialType(ctx context.Context, repo repository.MaterialTypeRepository, id string) (*entity.MaterialType, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: material_type_id requerido", domain.ErrInvalidInput)
	}
	m, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: tipo de material %s", domain.ErrNotFound, id)
	}
	return m, nil
}

// Supplier busca un proveedor con el repositorio dado.
func Supplier(ctx context.Context, repo repository.SupplierRepository, id string) (*entity.Supplier, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: supplier_id requerido", domain.ErrInvalidInput)
	}
	s, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, id)
	}
	return s, nil
}
