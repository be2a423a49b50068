package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/trazabilidad-api/internal/domain"
	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/trazabilidad-api/internal/domain/repository"
)

var _ repository.InventoryRecordRepository = (*InventoryRecordRepo)(nil)

// InventoryRecordRepo stock por bodega y material sobre PostgreSQL (usable con pool o tx).
// UNIQUE (warehouse_id, material_type_id) garantiza un solo registro por par.
type InventoryRecordRepo struct {
	q Querier
}

// NewInventoryRecordRepository construye el adaptador de registros de inventario.
func NewInventoryRecordRepository(q Querier) *InventoryRecordRepo {
	return &InventoryRecordRepo{q: q}
}

const recordColumns = `id, warehouse_id, material_type_id, quantity, min_stock, max_stock, location, created_at, updated_at`

func scanRecord(row pgx.Row) (*entity.InventoryRecord, error) {
	var r entity.InventoryRecord
	if err := row.Scan(&r.ID, &r.WarehouseID, &r.MaterialTypeID, &r.Quantity, &r.MinStock, &r.MaxStock,
		&r.Location, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

// GetOrCreateForUpdate inserta el registro en cero si falta (ON CONFLICT DO NOTHING) y luego lo bloquea.
// Dos primeras entradas concurrentes terminan sobre la misma fila.
func (r *InventoryRecordRepo) GetOrCreateForUpdate(ctx context.Context, warehouseID, materialTypeID string, now time.Time) (*entity.InventoryRecord, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO inventory_records (id, warehouse_id, material_type_id, quantity, min_stock, max_stock, location, created_at, updated_at)
		VALUES ($1, $2, $3, 0, 0, 0, '', $4, $4)
		ON CONFLICT (warehouse_id, material_type_id) DO NOTHING`,
		uuid.New().String(), warehouseID, materialTypeID, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert inventory record: %w", err)
	}
	rec, err := r.GetForUpdate(ctx, warehouseID, materialTypeID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("get or create inventory record: %w", domain.ErrNotFound)
	}
	return rec, nil
}

func (r *InventoryRecordRepo) GetForUpdate(ctx context.Context, warehouseID, materialTypeID string) (*entity.InventoryRecord, error) {
	return r.one(ctx, `
		SELECT `+recordColumns+` FROM inventory_records
		WHERE warehouse_id = $1 AND material_type_id = $2 FOR UPDATE`, warehouseID, materialTypeID)
}

func (r *InventoryRecordRepo) Get(ctx context.Context, warehouseID, materialTypeID string) (*entity.InventoryRecord, error) {
	return r.one(ctx, `
		SELECT `+recordColumns+` FROM inventory_records
		WHERE warehouse_id = $1 AND material_type_id = $2`, warehouseID, materialTypeID)
}

func (r *InventoryRecordRepo) GetByID(ctx context.Context, id string) (*entity.InventoryRecord, error) {
	return r.one(ctx, `SELECT `+recordColumns+` FROM inventory_records WHERE id = $1`, id)
}

func (r *InventoryRecordRepo) one(ctx context.Context, query string, args ...any) (*entity.InventoryRecord, error) {
	rec, err := scanRecord(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory record: %w", err)
	}
	return rec, nil
}

func (r *InventoryRecordRepo) UpdateQuantity(ctx context.Context, id string, quantity decimal.Decimal, at time.Time) error {
	cmd, err := r.q.Exec(ctx, `UPDATE inventory_records SET quantity = $2, updated_at = $3 WHERE id = $1`, id, quantity, at)
	if err != nil {
		return fmt.Errorf("update inventory record: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("update inventory record: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *InventoryRecordRepo) SetThresholds(ctx context.Context, id string, minStock, maxStock decimal.Decimal, location string) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE inventory_records SET min_stock = $2, max_stock = $3, location = $4
		WHERE id = $1`, id, minStock, maxStock, location)
	if err != nil {
		return fmt.Errorf("set thresholds: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("set thresholds: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *InventoryRecordRepo) SumByWarehouse(ctx context.Context, warehouseID string) (decimal.Decimal, error) {
	return r.sum(ctx, `SELECT COALESCE(SUM(quantity), 0) FROM inventory_records WHERE warehouse_id = $1`, warehouseID)
}

func (r *InventoryRecordRepo) SumByMaterialType(ctx context.Context, materialTypeID string) (decimal.Decimal, error) {
	return r.sum(ctx, `SELECT COALESCE(SUM(quantity), 0) FROM inventory_records WHERE material_type_id = $1`, materialTypeID)
}

func (r *InventoryRecordRepo) sum(ctx context.Context, query, arg string) (decimal.Decimal, error) {
	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, query, arg).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum inventory records: %w", err)
	}
	return total, nil
}

func (r *InventoryRecordRepo) ListByWarehouse(ctx context.Context, warehouseID string) ([]*entity.InventoryRecord, error) {
	return r.list(ctx, `
		SELECT `+recordColumns+` FROM inventory_records
		WHERE warehouse_id = $1 ORDER BY material_type_id`, warehouseID)
}

func (r *InventoryRecordRepo) ListBelowMinimum(ctx context.Context) ([]*entity.InventoryRecord, error) {
	return r.list(ctx, `
		SELECT `+recordColumns+` FROM inventory_records
		WHERE quantity < min_stock ORDER BY warehouse_id, material_type_id`)
}

func (r *InventoryRecordRepo) ListAboveMaximum(ctx context.Context) ([]*entity.InventoryRecord, error) {
	return r.list(ctx, `
		SELECT `+recordColumns+` FROM inventory_records
		WHERE max_stock > 0 AND quantity > max_stock ORDER BY warehouse_id, material_type_id`)
}

func (r *InventoryRecordRepo) list(ctx context.Context, query string, args ...any) ([]*entity.InventoryRecord, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list inventory records: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory record: %w", err)
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}
