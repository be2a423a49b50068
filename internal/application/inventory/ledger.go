// Package inventory implementa el libro de inventario: un registro de stock por (bodega, material),
// control de capacidad y kardex de movimientos generado como efecto de cada mutación.
package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/trazabilidad-api/internal/application/catalog"
	"github.com/jhoicas/trazabilidad-api/internal/application/ports"
	"github.com/jhoicas/trazabilidad-api/internal/domain"
	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/trazabilidad-api/internal/domain/repository"
	"github.com/jhoicas/trazabilidad-api/internal/domain/traceability"
)

// LedgerUseCase registra variaciones de stock de forma transaccional con bloqueo de fila y Commit/Rollback.
type LedgerUseCase struct {
	txRunner  ports.TxRunner
	repos     repository.Repositories
	clock     ports.Clock
	events    ports.EventPublisher
	precision traceability.Precision
	log       zerolog.Logger
}

// NewLedgerUseCase construye el caso de uso. repos son los repositorios fuera de transacción (consultas).
func NewLedgerUseCase(
	txRunner ports.TxRunner,
	repos repository.Repositories,
	clock ports.Clock,
	events ports.EventPublisher,
	precision traceability.Precision,
	log zerolog.Logger,
) *LedgerUseCase {
	return &LedgerUseCase{
		txRunner:  txRunner,
		repos:     repos,
		clock:     clock,
		events:    events,
		precision: precision,
		log:       log.With().Str("component", "inventory").Logger(),
	}
}

// GetOrCreateRecord devuelve el registro único del par, creándolo con stock cero si no existe.
func (uc *LedgerUseCase) GetOrCreateRecord(ctx context.Context, warehouseID, materialTypeID string) (*entity.InventoryRecord, error) {
	var rec *entity.InventoryRecord
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		if _, err := catalog.Warehouse(ctx, repos.Warehouses, warehouseID); err != nil {
			return err
		}
		if _, err := catalog.MaterialType(ctx, repos.MaterialTypes, materialTypeID); err != nil {
			return err
		}
		var err error
		rec, err = repos.Records.GetOrCreateForUpdate(ctx, warehouseID, materialTypeID, uc.clock.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// IncreaseStock suma stock al par tras el control de admisión y registra un movimiento IN.
func (uc *LedgerUseCase) IncreaseStock(ctx context.Context, in StockInput) (StockChange, error) {
	in.Quantity = uc.precision.Round(in.Quantity)
	return uc.mutate(ctx, func(repos repository.Repositories, now time.Time) (StockChange, error) {
		return IncreaseStockInTx(ctx, repos, in, now)
	})
}

// DecreaseStock resta stock del par y registra un movimiento OUT. Nunca deja stock negativo.
func (uc *LedgerUseCase) DecreaseStock(ctx context.Context, in StockInput) (StockChange, error) {
	in.Quantity = uc.precision.Round(in.Quantity)
	return uc.mutate(ctx, func(repos repository.Repositories, now time.Time) (StockChange, error) {
		return DecreaseStockInTx(ctx, repos, in, now)
	})
}

// AdjustStock corrección administrativa: fija el stock del par y registra un movimiento ADJUSTMENT.
// Si la cantidad no cambia devuelve el registro sin movimiento.
func (uc *LedgerUseCase) AdjustStock(ctx context.Context, in AdjustInput) (StockChange, error) {
	in.NewQuantity = uc.precision.Round(in.NewQuantity)
	return uc.mutate(ctx, func(repos repository.Repositories, now time.Time) (StockChange, error) {
		return AdjustStockInTx(ctx, repos, in, now)
	})
}

// ThresholdInput umbrales administrativos de un registro.
type ThresholdInput struct {
	WarehouseID    string
	MaterialTypeID string
	MinStock       decimal.Decimal
	MaxStock       decimal.Decimal
	Location       string
}

// ConfigureRecord fija mínimo, máximo y ubicación del registro del par, creándolo si no existe.
func (uc *LedgerUseCase) ConfigureRecord(ctx context.Context, in ThresholdInput) (*entity.InventoryRecord, error) {
	if in.MinStock.IsNegative() || in.MaxStock.IsNegative() {
		return nil, fmt.Errorf("%w: umbrales negativos", domain.ErrInvalidQuantity)
	}
	if in.MaxStock.IsPositive() && in.MaxStock.LessThan(in.MinStock) {
		return nil, fmt.Errorf("%w: máximo %s menor que mínimo %s", domain.ErrInvalidQuantity, in.MaxStock, in.MinStock)
	}
	var rec *entity.InventoryRecord
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		if _, err := catalog.Warehouse(ctx, repos.Warehouses, in.WarehouseID); err != nil {
			return err
		}
		if _, err := catalog.MaterialType(ctx, repos.MaterialTypes, in.MaterialTypeID); err != nil {
			return err
		}
		var err error
		rec, err = repos.Records.GetOrCreateForUpdate(ctx, in.WarehouseID, in.MaterialTypeID, uc.clock.Now())
		if err != nil {
			return err
		}
		minStock, maxStock := uc.precision.Round(in.MinStock), uc.precision.Round(in.MaxStock)
		if err := repos.Records.SetThresholds(ctx, rec.ID, minStock, maxStock, in.Location); err != nil {
			return err
		}
		rec.MinStock, rec.MaxStock, rec.Location = minStock, maxStock, in.Location
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (uc *LedgerUseCase) mutate(
	ctx context.Context,
	fn func(repos repository.Repositories, now time.Time) (StockChange, error),
) (StockChange, error) {
	now := uc.clock.Now()
	var change StockChange
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		var err error
		change, err = fn(repos, now)
		return err
	})
	if err != nil {
		return StockChange{}, err
	}
	if m := change.Movement; m != nil {
		uc.log.Info().
			Str("movement_id", m.ID).
			Str("type", string(m.Type)).
			Str("warehouse_id", m.WarehouseID).
			Str("material_type_id", m.MaterialTypeID).
			Str("quantity", m.Quantity.String()).
			Str("before", m.QuantityBefore.String()).
			Str("after", m.QuantityAfter.String()).
			Msg("movimiento de inventario registrado")
	}
	ports.PublishAll(ctx, uc.events, uc.log, change.Events())
	return change, nil
}
