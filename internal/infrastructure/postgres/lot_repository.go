package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/trazabilidad-api/internal/domain"
	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/trazabilidad-api/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo implementación de LotRepository sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

const lotColumns = `id, code, gross_weight, tare, net_weight, remaining_weight, quality, state,
	supplier_id, material_type_id, warehouse_id, parent_id, origin, notes, created_by, version,
	created_at, updated_at`

func scanLot(row pgx.Row) (*entity.Lot, error) {
	var (
		l                  entity.Lot
		quality, state     string
		supplier, parentID *string
	)
	err := row.Scan(&l.ID, &l.Code, &l.GrossWeight, &l.Tare, &l.NetWeight, &l.RemainingWeight, &quality, &state,
		&supplier, &l.MaterialTypeID, &l.WarehouseID, &parentID, &l.Origin, &l.Notes, &l.CreatedBy, &l.Version,
		&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if l.Quality, err = entity.ParseQuality(quality); err != nil {
		return nil, err
	}
	if l.State, err = entity.ParseLotState(state); err != nil {
		return nil, err
	}
	l.SupplierID = deref(supplier)
	l.ParentID = deref(parentID)
	return &l, nil
}

// Create inserta el lote. Una colisión de código se reporta como domain.ErrDuplicateCode.
func (r *LotRepo) Create(ctx context.Context, lot *entity.Lot) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO lots (`+lotColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		lot.ID, lot.Code, lot.GrossWeight, lot.Tare, lot.NetWeight, lot.RemainingWeight,
		string(lot.Quality), string(lot.State), nullIfEmpty(lot.SupplierID), lot.MaterialTypeID, lot.WarehouseID,
		nullIfEmpty(lot.ParentID), lot.Origin, lot.Notes, lot.CreatedBy, lot.Version, lot.CreatedAt, lot.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateCode, lot.Code)
		}
		return fmt.Errorf("insert lot: %w", err)
	}
	return nil
}

func (r *LotRepo) GetByID(ctx context.Context, id string) (*entity.Lot, error) {
	return r.one(ctx, `SELECT `+lotColumns+` FROM lots WHERE id = $1`, id)
}

func (r *LotRepo) GetByCode(ctx context.Context, code string) (*entity.Lot, error) {
	return r.one(ctx, `SELECT `+lotColumns+` FROM lots WHERE code = $1`, code)
}

// GetForUpdate obtiene el lote y bloquea la fila (SELECT FOR UPDATE).
func (r *LotRepo) GetForUpdate(ctx context.Context, id string) (*entity.Lot, error) {
	return r.one(ctx, `SELECT `+lotColumns+` FROM lots WHERE id = $1 FOR UPDATE`, id)
}

func (r *LotRepo) one(ctx context.Context, query string, arg string) (*entity.Lot, error) {
	l, err := scanLot(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return l, nil
}

func (r *LotRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM lots WHERE code = $1)`, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists lot code: %w", err)
	}
	return exists, nil
}

// CompareAndSetState transición condicionada al estado actual; cero filas afectadas significa que otro ganó.
func (r *LotRepo) CompareAndSetState(ctx context.Context, id string, from, to entity.LotState, at time.Time) (bool, error) {
	cmd, err := r.q.Exec(ctx, `
		UPDATE lots SET state = $3, version = version + 1, updated_at = $4
		WHERE id = $1 AND state = $2`,
		id, string(from), string(to), at,
	)
	if err != nil {
		return false, fmt.Errorf("update lot state: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *LotRepo) UpdateRemainingWeight(ctx context.Context, id string, remaining decimal.Decimal, at time.Time) error {
	cmd, err := r.q.Exec(ctx, `UPDATE lots SET remaining_weight = $2, updated_at = $3 WHERE id = $1`, id, remaining, at)
	if err != nil {
		return fmt.Errorf("update lot remaining weight: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("update lot remaining weight: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *LotRepo) ListChildren(ctx context.Context, parentID string) ([]*entity.Lot, error) {
	return r.list(ctx, `SELECT `+lotColumns+` FROM lots WHERE parent_id = $1 ORDER BY created_at, code`, parentID)
}

// ListAvailable lotes AVAILABLE del par en orden FIFO.
func (r *LotRepo) ListAvailable(ctx context.Context, warehouseID, materialTypeID string) ([]*entity.Lot, error) {
	return r.list(ctx, `
		SELECT `+lotColumns+` FROM lots
		WHERE warehouse_id = $1 AND material_type_id = $2 AND state = 'AVAILABLE'
		ORDER BY created_at, code`, warehouseID, materialTypeID)
}

func (r *LotRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Lot, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	defer rows.Close()
	var list []*entity.Lot
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}
