package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/trazabilidad-api/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

// InventoryMovementRepo kardex sobre PostgreSQL (usable con pool o tx). Solo inserción.
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

var movementColumns = []string{
	"id", "inventory_record_id", "warehouse_id", "material_type_id", "type", "quantity",
	"quantity_before", "quantity_after", "lot_id", "reason", "reference", "created_by", "date",
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func scanMovement(row pgx.Row) (*entity.InventoryMovement, error) {
	var (
		m     entity.InventoryMovement
		typ   string
		lotID *string
	)
	err := row.Scan(&m.ID, &m.InventoryRecordID, &m.WarehouseID, &m.MaterialTypeID, &typ, &m.Quantity,
		&m.QuantityBefore, &m.QuantityAfter, &lotID, &m.Reason, &m.Reference, &m.CreatedBy, &m.Date)
	if err != nil {
		return nil, err
	}
	if m.Type, err = entity.ParseMovementType(typ); err != nil {
		return nil, err
	}
	m.LotID = deref(lotID)
	return &m, nil
}

// Create persiste un movimiento de inventario.
func (r *InventoryMovementRepo) Create(ctx context.Context, movement *entity.InventoryMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query, args, err := psql.Insert("inventory_movements").
		Columns(movementColumns...).
		Values(movement.ID, movement.InventoryRecordID, movement.WarehouseID, movement.MaterialTypeID,
			string(movement.Type), movement.Quantity, movement.QuantityBefore, movement.QuantityAfter,
			nullIfEmpty(movement.LotID), movement.Reason, movement.Reference, movement.CreatedBy, movement.Date).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert movement: %w", err)
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("create inventory movement: %w", err)
	}
	return nil
}

// ListByRecord kardex del registro con filtros opcionales de tipo y rango de fechas, más recientes primero.
func (r *InventoryMovementRepo) ListByRecord(ctx context.Context, recordID string, filter repository.MovementFilter) ([]*entity.InventoryMovement, error) {
	qb := psql.Select(movementColumns...).
		From("inventory_movements").
		Where(sq.Eq{"inventory_record_id": recordID})
	if filter.Type != nil {
		qb = qb.Where(sq.Eq{"type": string(*filter.Type)})
	}
	if filter.From != nil {
		qb = qb.Where(sq.GtOrEq{"date": *filter.From})
	}
	if filter.To != nil {
		qb = qb.Where(sq.LtOrEq{"date": *filter.To})
	}
	qb = qb.OrderBy("date DESC", "seq DESC")
	if filter.Limit > 0 {
		qb = qb.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		qb = qb.Offset(uint64(filter.Offset))
	}
	return r.list(ctx, qb)
}

// ListByLot movimientos causados por un lote, en orden cronológico.
func (r *InventoryMovementRepo) ListByLot(ctx context.Context, lotID string) ([]*entity.InventoryMovement, error) {
	return r.list(ctx, psql.Select(movementColumns...).
		From("inventory_movements").
		Where(sq.Eq{"lot_id": lotID}).
		OrderBy("date", "seq"))
}

func (r *InventoryMovementRepo) list(ctx context.Context, qb sq.SelectBuilder) ([]*entity.InventoryMovement, error) {
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build movement query: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
