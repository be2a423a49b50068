package lot

import (
	"context"
	"fmt"

	"github.com/jhoicas/trazabilidad-api/internal/application/inventory"
	"github.com/jhoicas/trazabilidad-api/internal/domain"
	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/trazabilidad-api/internal/domain/repository"
)

// BeginProcessing pasa el lote de AVAILABLE a IN_PROCESS. Ante llamadas concurrentes solo una gana;
// las demás reciben ErrInvalidState.
func (uc *LotUseCase) BeginProcessing(ctx context.Context, lotID, userID string) (*entity.Lot, error) {
	now := uc.clock.Now()
	var l *entity.Lot
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		var err error
		l, err = getLot(ctx, repos.Lots, lotID)
		if err != nil {
			return err
		}
		if l.State != entity.LotAvailable {
			return fmt.Errorf("%w: el lote %s está en %s, se requiere %s", domain.ErrInvalidState, l.Code, l.State, entity.LotAvailable)
		}
		return transition(ctx, repos.Lots, l, entity.LotInProcess, now)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("lot_id", l.ID).Str("code", l.Code).Msg("lote en proceso")
	uc.publish(ctx, []entity.Event{stateEvent(l, entity.LotAvailable, userID)})
	return l, nil
}

// SaleInput datos de la venta de un lote.
type SaleInput struct {
	LotID     string
	UserID    string
	Reference string
}

// SaleResult lote vendido y, si estaba en inventario, la salida registrada.
type SaleResult struct {
	Lot   *entity.Lot
	Stock inventory.StockChange
}

// MarkSold pasa a SOLD un lote AVAILABLE o PROCESSED. Un lote AVAILABLE aún figura en inventario,
// así que su peso neto sale con un movimiento OUT en la misma unidad de trabajo.
func (uc *LotUseCase) MarkSold(ctx context.Context, in SaleInput) (*SaleResult, error) {
	now := uc.clock.Now()
	var res SaleResult
	var from entity.LotState
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		l, err := lockLot(ctx, repos.Lots, in.LotID)
		if err != nil {
			return err
		}
		from = l.State
		switch l.State {
		case entity.LotAvailable:
			change, err := inventory.DecreaseStockInTx(ctx, repos, inventory.StockInput{
				WarehouseID:    l.WarehouseID,
				MaterialTypeID: l.MaterialTypeID,
				Quantity:       l.NetWeight,
				LotID:          l.ID,
				UserID:         in.UserID,
				Reason:         "venta de lote",
				Reference:      in.Reference,
			}, now)
			if err != nil {
				return err
			}
			res.Stock = change
		case entity.LotProcessed:
		default:
			return fmt.Errorf("%w: el lote %s está en %s y no puede venderse", domain.ErrInvalidState, l.Code, l.State)
		}
		if err := transition(ctx, repos.Lots, l, entity.LotSold, now); err != nil {
			return err
		}
		res.Lot = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("lot_id", res.Lot.ID).Str("code", res.Lot.Code).Str("from", string(from)).Msg("lote vendido")
	uc.publish(ctx, append([]entity.Event{stateEvent(res.Lot, from, in.UserID)}, res.Stock.Events()...))
	return &res, nil
}
