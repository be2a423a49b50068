package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/trazabilidad-api/internal/domain/repository"
)

var (
	_ repository.WarehouseRepository    = (*WarehouseRepo)(nil)
	_ repository.MaterialTypeRepository = (*MaterialTypeRepo)(nil)
	_ repository.SupplierRepository     = (*SupplierRepo)(nil)
)

// WarehouseRepo implementación del puerto WarehouseRepository sobre PostgreSQL.
type WarehouseRepo struct {
	q Querier
}

// NewWarehouseRepository construye el adaptador de persistencia para bodegas.
func NewWarehouseRepository(q Querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

const warehouseColumns = `id, name, address, max_capacity, state, created_at, updated_at`

func scanWarehouse(row pgx.Row) (*entity.Warehouse, error) {
	var (
		w     entity.Warehouse
		state string
	)
	if err := row.Scan(&w.ID, &w.Name, &w.Address, &w.MaxCapacity, &state, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	s, err := entity.ParseWarehouseState(state)
	if err != nil {
		return nil, err
	}
	w.State = s
	return &w, nil
}

// GetByID obtiene una bodega por ID.
func (r *WarehouseRepo) GetByID(ctx context.Context, id string) (*entity.Warehouse, error) {
	return r.get(ctx, `SELECT `+warehouseColumns+` FROM warehouses WHERE id = $1`, id)
}

// GetForUpdate bloquea la fila de la bodega hasta el fin de la transacción.
func (r *WarehouseRepo) GetForUpdate(ctx context.Context, id string) (*entity.Warehouse, error) {
	return r.get(ctx, `SELECT `+warehouseColumns+` FROM warehouses WHERE id = $1 FOR UPDATE`, id)
}

func (r *WarehouseRepo) get(ctx context.Context, query, id string) (*entity.Warehouse, error) {
	w, err := scanWarehouse(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	return w, nil
}

// List todas las bodegas por nombre.
func (r *WarehouseRepo) List(ctx context.Context) ([]*entity.Warehouse, error) {
	rows, err := r.q.Query(ctx, `SELECT `+warehouseColumns+` FROM warehouses ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	defer rows.Close()
	var list []*entity.Warehouse
	for rows.Next() {
		w, err := scanWarehouse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan warehouse: %w", err)
		}
		list = append(list, w)
	}
	return list, rows.Err()
}

// MaterialTypeRepo catálogo de materiales sobre PostgreSQL.
type MaterialTypeRepo struct {
	q Querier
}

// NewMaterialTypeRepository construye el adaptador del catálogo de materiales.
func NewMaterialTypeRepository(q Querier) *MaterialTypeRepo {
	return &MaterialTypeRepo{q: q}
}

const materialTypeColumns = `id, name, description, category, unit, base_price, quality_factor,
	shrink_threshold, active, created_at, updated_at`

func scanMaterialType(row pgx.Row) (*entity.MaterialType, error) {
	var (
		m              entity.MaterialType
		category, unit string
	)
	if err := row.Scan(&m.ID, &m.Name, &m.Description, &category, &unit, &m.BasePrice, &m.QualityFactor,
		&m.ShrinkThreshold, &m.Active, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	c, err := entity.ParseMaterialCategory(category)
	if err != nil {
		return nil, err
	}
	u, err := entity.ParseUnitOfMeasure(unit)
	if err != nil {
		return nil, err
	}
	m.Category, m.Unit = c, u
	return &m, nil
}

func (r *MaterialTypeRepo) GetByID(ctx context.Context, id string) (*entity.MaterialType, error) {
	m, err := scanMaterialType(r.q.QueryRow(ctx, `SELECT `+materialTypeColumns+` FROM material_types WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get material type: %w", err)
	}
	return m, nil
}

func (r *MaterialTypeRepo) List(ctx context.Context, onlyActive bool) ([]*entity.MaterialType, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+materialTypeColumns+` FROM material_types
		WHERE ($1 = false OR active) ORDER BY name`, onlyActive)
	if err != nil {
		return nil, fmt.Errorf("list material types: %w", err)
	}
	defer rows.Close()
	var list []*entity.MaterialType
	for rows.Next() {
		m, err := scanMaterialType(rows)
		if err != nil {
			return nil, fmt.Errorf("scan material type: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// SupplierRepo proveedores sobre PostgreSQL (solo lectura).
type SupplierRepo struct {
	q Querier
}

func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	var s entity.Supplier
	err := r.q.QueryRow(ctx, `
		SELECT id, first_name, last_name, document_number, phone, email, active, created_at
		FROM suppliers WHERE id = $1`, id).Scan(
		&s.ID, &s.FirstName, &s.LastName, &s.DocumentNumber, &s.Phone, &s.Email, &s.Active, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	return &s, nil
}
