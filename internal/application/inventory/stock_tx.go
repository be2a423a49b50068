package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/trazabilidad-api/internal/application/catalog"
	"github.com/jhoicas/trazabilidad-api/internal/domain"
	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/trazabilidad-api/internal/domain/repository"
	"github.com/jhoicas/trazabilidad-api/internal/domain/traceability"
)

// StockInput entrada de una variación de stock. LotID es el lote causante, si lo hay.
type StockInput struct {
	WarehouseID    string
	MaterialTypeID string
	Quantity       decimal.Decimal
	LotID          string
	UserID         string
	Reason         string
	Reference      string
}

// AdjustInput entrada de un ajuste administrativo: fija el stock del par en NewQuantity.
type AdjustInput struct {
	WarehouseID    string
	MaterialTypeID string
	NewQuantity    decimal.Decimal
	Reason         string
	UserID         string
}

// StockChange resultado de una mutación: el registro ya actualizado y su movimiento.
type StockChange struct {
	Record   *entity.InventoryRecord
	Movement *entity.InventoryMovement
}

// Events eventos a publicar tras confirmar el cambio.
func (c StockChange) Events() []entity.Event {
	if c.Movement == nil {
		return nil
	}
	m := c.Movement
	events := []entity.Event{{
		Type:       entity.EventStockMoved,
		EntityType: entity.EntityInventoryRecord,
		EntityID:   c.Record.ID,
		UserID:     m.CreatedBy,
		OccurredAt: m.Date,
		Attributes: map[string]string{
			"movement_id":      m.ID,
			"movement_type":    string(m.Type),
			"warehouse_id":     m.WarehouseID,
			"material_type_id": m.MaterialTypeID,
			"quantity":         m.Quantity.String(),
			"quantity_before":  m.QuantityBefore.String(),
			"quantity_after":   m.QuantityAfter.String(),
			"lot_id":           m.LotID,
		},
	}}
	if c.Record.BelowMinimum() {
		events = append(events, entity.Event{
			Type:       entity.EventStockBelowMinimum,
			EntityType: entity.EntityInventoryRecord,
			EntityID:   c.Record.ID,
			OccurredAt: m.Date,
			Attributes: map[string]string{
				"warehouse_id":     c.Record.WarehouseID,
				"material_type_id": c.Record.MaterialTypeID,
				"quantity":         c.Record.Quantity.String(),
				"min_stock":        c.Record.MinStock.String(),
			},
		})
	}
	return events
}

// IncreaseStockInTx ejecuta una entrada (IN) usando los repositorios de la transacción del caller.
// Bloquea la bodega (SELECT FOR UPDATE) antes de sumar su stock para serializar el control de admisión.
func IncreaseStockInTx(ctx context.Context, repos repository.Repositories, in StockInput, now time.Time) (StockChange, error) {
	if !in.Quantity.IsPositive() {
		return StockChange{}, fmt.Errorf("%w: cantidad %s debe ser positiva", domain.ErrInvalidQuantity, in.Quantity)
	}
	wh, err := lockWarehouse(ctx, repos, in.WarehouseID)
	if err != nil {
		return StockChange{}, err
	}
	if !wh.IsActive() {
		return StockChange{}, fmt.Errorf("%w: bodega %s en estado %s", domain.ErrWarehouseUnavailable, wh.ID, wh.State)
	}
	if _, err := catalog.MaterialType(ctx, repos.MaterialTypes, in.MaterialTypeID); err != nil {
		return StockChange{}, err
	}
	total, err := repos.Records.SumByWarehouse(ctx, wh.ID)
	if err != nil {
		return StockChange{}, err
	}
	if !traceability.Admits(wh.MaxCapacity, total, in.Quantity) {
		return StockChange{}, fmt.Errorf("%w: bodega %s almacena %s de %s, no admite %s",
			domain.ErrCapacityExceeded, wh.ID, total, wh.MaxCapacity, in.Quantity)
	}
	rec, err := repos.Records.GetOrCreateForUpdate(ctx, in.WarehouseID, in.MaterialTypeID, now)
	if err != nil {
		return StockChange{}, err
	}
	return apply(ctx, repos, rec, entity.MovementTypeIN, rec.Quantity.Add(in.Quantity), in, now)
}

// DecreaseStockInTx ejecuta una salida (OUT) usando los repositorios de la transacción del caller.
// Un par sin registro equivale a stock cero.
func DecreaseStockInTx(ctx context.Context, repos repository.Repositories, in StockInput, now time.Time) (StockChange, error) {
	if !in.Quantity.IsPositive() {
		return StockChange{}, fmt.Errorf("%w: cantidad %s debe ser positiva", domain.ErrInvalidQuantity, in.Quantity)
	}
	if _, err := catalog.Warehouse(ctx, repos.Warehouses, in.WarehouseID); err != nil {
		return StockChange{}, err
	}
	if _, err := catalog.MaterialType(ctx, repos.MaterialTypes, in.MaterialTypeID); err != nil {
		return StockChange{}, err
	}
	rec, err := repos.Records.GetForUpdate(ctx, in.WarehouseID, in.MaterialTypeID)
	if err != nil {
		return StockChange{}, err
	}
	current := decimal.Zero
	if rec != nil {
		current = rec.Quantity
	}
	if current.LessThan(in.Quantity) {
		return StockChange{}, fmt.Errorf("%w: disponible %s, solicitado %s", domain.ErrInsufficientStock, current, in.Quantity)
	}
	return apply(ctx, repos, rec, entity.MovementTypeOUT, current.Sub(in.Quantity), in, now)
}

// AdjustStockInTx fija el stock del par en NewQuantity con un movimiento ADJUSTMENT.
// Subir stock pasa por el mismo control de capacidad que una entrada. Sin variación no hay movimiento.
func AdjustStockInTx(ctx context.Context, repos repository.Repositories, in AdjustInput, now time.Time) (StockChange, error) {
	if in.NewQuantity.IsNegative() {
		return StockChange{}, fmt.Errorf("%w: cantidad %s no puede ser negativa", domain.ErrInvalidQuantity, in.NewQuantity)
	}
	if in.Reason == "" {
		return StockChange{}, fmt.Errorf("%w: el ajuste requiere motivo", domain.ErrInvalidInput)
	}
	wh, err := lockWarehouse(ctx, repos, in.WarehouseID)
	if err != nil {
		return StockChange{}, err
	}
	if _, err := catalog.MaterialType(ctx, repos.MaterialTypes, in.MaterialTypeID); err != nil {
		return StockChange{}, err
	}
	rec, err := repos.Records.GetOrCreateForUpdate(ctx, in.WarehouseID, in.MaterialTypeID, now)
	if err != nil {
		return StockChange{}, err
	}
	if in.NewQuantity.Equal(rec.Quantity) {
		return StockChange{Record: rec}, nil
	}
	if in.NewQuantity.GreaterThan(rec.Quantity) {
		total, err := repos.Records.SumByWarehouse(ctx, wh.ID)
		if err != nil {
			return StockChange{}, err
		}
		others := total.Sub(rec.Quantity)
		if !traceability.Admits(wh.MaxCapacity, others, in.NewQuantity) {
			return StockChange{}, fmt.Errorf("%w: bodega %s no admite ajustar a %s (capacidad %s, resto %s)",
				domain.ErrCapacityExceeded, wh.ID, in.NewQuantity, wh.MaxCapacity, others)
		}
	}
	stock := StockInput{
		WarehouseID:    in.WarehouseID,
		MaterialTypeID: in.MaterialTypeID,
		Quantity:       in.NewQuantity.Sub(rec.Quantity).Abs(),
		UserID:         in.UserID,
		Reason:         in.Reason,
	}
	return apply(ctx, repos, rec, entity.MovementTypeADJUSTMENT, in.NewQuantity, stock, now)
}

func lockWarehouse(ctx context.Context, repos repository.Repositories, id string) (*entity.Warehouse, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: warehouse_id requerido", domain.ErrInvalidInput)
	}
	wh, err := repos.Warehouses.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, fmt.Errorf("%w: bodega %s", domain.ErrNotFound, id)
	}
	return wh, nil
}

// apply persiste la nueva cantidad y agrega exactamente un movimiento con el antes/después.
func apply(
	ctx context.Context,
	repos repository.Repositories,
	rec *entity.InventoryRecord,
	typ entity.MovementType,
	after decimal.Decimal,
	in StockInput,
	now time.Time,
) (StockChange, error) {
	before := rec.Quantity
	if err := repos.Records.UpdateQuantity(ctx, rec.ID, after, now); err != nil {
		return StockChange{}, err
	}
	rec.Quantity = after
	rec.UpdatedAt = now

	mov := &entity.InventoryMovement{
		ID:                uuid.New().String(),
		InventoryRecordID: rec.ID,
		WarehouseID:       rec.WarehouseID,
		MaterialTypeID:    rec.MaterialTypeID,
		Type:              typ,
		Quantity:          in.Quantity,
		QuantityBefore:    before,
		QuantityAfter:     after,
		LotID:             in.LotID,
		Reason:            in.Reason,
		Reference:         in.Reference,
		CreatedBy:         in.UserID,
		Date:              now,
	}
	if err := repos.Movements.Create(ctx, mov); err != nil {
		return StockChange{}, err
	}
	return StockChange{Record: rec, Movement: mov}, nil
}
