package lot

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/trazabilidad-api/internal/application/catalog"
	"github.com/jhoicas/trazabilidad-api/internal/application/inventory"
	"github.com/jhoicas/trazabilidad-api/internal/domain"
	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/trazabilidad-api/internal/domain/repository"
	"github.com/jhoicas/trazabilidad-api/internal/domain/traceability"
)

// IntakeInput entrada de un ingreso de material pesado.
type IntakeInput struct {
	SupplierID     string
	MaterialTypeID string
	WarehouseID    string
	GrossWeight    decimal.Decimal
	Tare           decimal.Decimal
	Quality        entity.Quality
	Origin         string
	Notes          string
	UserID         string
}

// IntakeResult lote creado y la entrada de inventario que lo respalda.
type IntakeResult struct {
	Lot   *entity.Lot
	Stock inventory.StockChange
}

// Intake crea un lote AVAILABLE y suma su peso neto al inventario de (bodega, material) en la misma
// unidad de trabajo: si la admisión falla, el lote no existe.
func (uc *LotUseCase) Intake(ctx context.Context, in IntakeInput) (*IntakeResult, error) {
	if _, err := entity.ParseQuality(string(in.Quality)); err != nil {
		return nil, err
	}
	gross, tare := uc.precision.Round(in.GrossWeight), uc.precision.Round(in.Tare)
	net, err := traceability.NetWeight(gross, tare)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	var res IntakeResult
	err = uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		if _, err := catalog.Supplier(ctx, repos.Suppliers, in.SupplierID); err != nil {
			return err
		}
		mt, err := catalog.MaterialType(ctx, repos.MaterialTypes, in.MaterialTypeID)
		if err != nil {
			return err
		}
		if !mt.Active {
			return fmt.Errorf("%w: tipo de material %s inactivo", domain.ErrInvalidState, mt.ID)
		}
		if _, err := catalog.Warehouse(ctx, repos.Warehouses, in.WarehouseID); err != nil {
			return err
		}
		code, err := uc.nextFreeCode(ctx, repos.Lots, now)
		if err != nil {
			return err
		}
		l := &entity.Lot{
			ID:              uuid.New().String(),
			Code:            code,
			GrossWeight:     gross,
			Tare:            tare,
			NetWeight:       net,
			RemainingWeight: net,
			Quality:         in.Quality,
			State:           entity.LotAvailable,
			SupplierID:      in.SupplierID,
			MaterialTypeID:  in.MaterialTypeID,
			WarehouseID:     in.WarehouseID,
			Origin:          in.Origin,
			Notes:           in.Notes,
			CreatedBy:       in.UserID,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := repos.Lots.Create(ctx, l); err != nil {
			return err
		}
		change, err := inventory.IncreaseStockInTx(ctx, repos, inventory.StockInput{
			WarehouseID:    l.WarehouseID,
			MaterialTypeID: l.MaterialTypeID,
			Quantity:       l.NetWeight,
			LotID:          l.ID,
			UserID:         in.UserID,
			Reason:         "ingreso de lote",
			Reference:      l.Code,
		}, now)
		if err != nil {
			return err
		}
		res = IntakeResult{Lot: l, Stock: change}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("lot_id", res.Lot.ID).
		Str("code", res.Lot.Code).
		Str("warehouse_id", res.Lot.WarehouseID).
		Str("material_type_id", res.Lot.MaterialTypeID).
		Str("net_weight", res.Lot.NetWeight.String()).
		Msg("lote ingresado")
	uc.publish(ctx, append([]entity.Event{createdEvent(res.Lot)}, res.Stock.Events()...))
	return &res, nil
}

// childLot construye un lote hijo AVAILABLE a partir del padre.
func childLot(parent *entity.Lot, code string, weight decimal.Decimal, materialTypeID, warehouseID string, q entity.Quality, notes, userID string, now time.Time) *entity.Lot {
	return &entity.Lot{
		ID:              uuid.New().String(),
		Code:            code,
		GrossWeight:     weight,
		Tare:            decimal.Zero,
		NetWeight:       weight,
		RemainingWeight: weight,
		Quality:         q,
		State:           entity.LotAvailable,
		SupplierID:      parent.SupplierID,
		MaterialTypeID:  materialTypeID,
		WarehouseID:     warehouseID,
		ParentID:        parent.ID,
		Origin:          parent.Origin,
		Notes:           notes,
		CreatedBy:       userID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
