package lot

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/trazabilidad-api/internal/application/inventory"
	"github.com/jhoicas/trazabilidad-api/internal/domain"
	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/trazabilidad-api/internal/domain/repository"
	"github.com/jhoicas/trazabilidad-api/internal/domain/traceability"
)

// remainderNotes nota del lote hijo que materializa la porción no asignada.
const remainderNotes = "remanente sin procesar"

// ChildSpec especificación de un lote hijo.
type ChildSpec struct {
	OutputWeight   decimal.Decimal
	MaterialTypeID string
	WarehouseID    string
	Quality        entity.Quality
	Notes          string
}

// SplitInput división de un lote IN_PROCESS.
type SplitInput struct {
	ParentID string
	Children []ChildSpec
	UserID   string
}

// SplitResult padre ya PROCESSED, hijos en el orden pedido y el remanente si lo hubo.
type SplitResult struct {
	Parent    *entity.Lot
	Children  []*entity.Lot
	Remainder *entity.Lot
	Stock     []inventory.StockChange
}

// All hijos más el remanente.
func (r *SplitResult) All() []*entity.Lot {
	if r.Remainder == nil {
		return r.Children
	}
	return append(append([]*entity.Lot{}, r.Children...), r.Remainder)
}

// Split divide el lote padre en hijos AVAILABLE. La suma de hijos nunca supera el peso neto del padre;
// la diferencia se materializa como un hijo remanente del mismo material en la bodega del padre, de modo
// que la suma de pesos netos de los hijos es exactamente el del padre.
// El padre sale completo de su bodega (OUT) y cada hijo entra a la suya (IN); el padre queda PROCESSED.
func (uc *LotUseCase) Split(ctx context.Context, in SplitInput) (*SplitResult, error) {
	if len(in.Children) == 0 {
		return nil, fmt.Errorf("%w: la división requiere al menos un hijo", domain.ErrInvalidInput)
	}
	specs := make([]ChildSpec, len(in.Children))
	outputs := make([]decimal.Decimal, len(in.Children))
	for i, c := range in.Children {
		if _, err := entity.ParseQuality(string(c.Quality)); err != nil {
			return nil, err
		}
		c.OutputWeight = uc.precision.Round(c.OutputWeight)
		specs[i] = c
		outputs[i] = c.OutputWeight
	}

	now := uc.clock.Now()
	var res SplitResult
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		parent, err := lockLot(ctx, repos.Lots, in.ParentID)
		if err != nil {
			return err
		}
		if parent.State != entity.LotInProcess {
			return fmt.Errorf("%w: el lote %s está en %s, se requiere %s", domain.ErrInvalidState, parent.Code, parent.State, entity.LotInProcess)
		}
		if last, err := repos.Stages.LastByLot(ctx, parent.ID); err != nil {
			return err
		} else if last != nil && !last.IsClosed() {
			return fmt.Errorf("%w: el lote %s tiene una etapa abierta", domain.ErrInvalidState, parent.Code)
		}
		remainder, err := traceability.Remainder(parent.NetWeight, outputs)
		if err != nil {
			return err
		}

		out, err := inventory.DecreaseStockInTx(ctx, repos, inventory.StockInput{
			WarehouseID:    parent.WarehouseID,
			MaterialTypeID: parent.MaterialTypeID,
			Quantity:       parent.NetWeight,
			LotID:          parent.ID,
			UserID:         in.UserID,
			Reason:         "división de lote",
			Reference:      parent.Code,
		}, now)
		if err != nil {
			return err
		}
		res.Stock = append(res.Stock, out)

		for _, spec := range specs {
			child, change, err := uc.createChild(ctx, repos, parent, spec, in.UserID, now)
			if err != nil {
				return err
			}
			res.Children = append(res.Children, child)
			res.Stock = append(res.Stock, change)
		}
		if remainder.IsPositive() {
			spec := ChildSpec{
				OutputWeight:   remainder,
				MaterialTypeID: parent.MaterialTypeID,
				WarehouseID:    parent.WarehouseID,
				Quality:        parent.Quality,
				Notes:          remainderNotes,
			}
			child, change, err := uc.createChild(ctx, repos, parent, spec, in.UserID, now)
			if err != nil {
				return err
			}
			res.Remainder = child
			res.Stock = append(res.Stock, change)
		}

		if err := repos.Lots.UpdateRemainingWeight(ctx, parent.ID, decimal.Zero, now); err != nil {
			return err
		}
		parent.RemainingWeight = decimal.Zero
		if err := transition(ctx, repos.Lots, parent, entity.LotProcessed, now); err != nil {
			return err
		}
		res.Parent = parent
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("lot_id", res.Parent.ID).
		Str("code", res.Parent.Code).
		Int("children", len(res.All())).
		Bool("remainder", res.Remainder != nil).
		Msg("lote dividido")
	uc.publish(ctx, splitEvents(&res, in.UserID))
	return &res, nil
}

func (uc *LotUseCase) createChild(
	ctx context.Context,
	repos repository.Repositories,
	parent *entity.Lot,
	spec ChildSpec,
	userID string,
	now time.Time,
) (*entity.Lot, inventory.StockChange, error) {
	code, err := uc.nextFreeCode(ctx, repos.Lots, now)
	if err != nil {
		return nil, inventory.StockChange{}, err
	}
	child := childLot(parent, code, spec.OutputWeight, spec.MaterialTypeID, spec.WarehouseID, spec.Quality, spec.Notes, userID, now)
	if err := repos.Lots.Create(ctx, child); err != nil {
		return nil, inventory.StockChange{}, err
	}
	change, err := inventory.IncreaseStockInTx(ctx, repos, inventory.StockInput{
		WarehouseID:    child.WarehouseID,
		MaterialTypeID: child.MaterialTypeID,
		Quantity:       child.NetWeight,
		LotID:          child.ID,
		UserID:         userID,
		Reason:         "lote hijo de " + parent.Code,
		Reference:      child.Code,
	}, now)
	if err != nil {
		return nil, inventory.StockChange{}, err
	}
	return child, change, nil
}

func splitEvents(res *SplitResult, userID string) []entity.Event {
	children := res.All()
	events := []entity.Event{
		{
			Type:       entity.EventLotSplit,
			EntityType: entity.EntityLot,
			EntityID:   res.Parent.ID,
			UserID:     userID,
			OccurredAt: res.Parent.UpdatedAt,
			Attributes: map[string]string{
				"code":       res.Parent.Code,
				"net_weight": res.Parent.NetWeight.String(),
				"children":   fmt.Sprint(len(children)),
			},
		},
		stateEvent(res.Parent, entity.LotInProcess, userID),
	}
	for _, c := range children {
		events = append(events, createdEvent(c))
	}
	for _, change := range res.Stock {
		events = append(events, change.Events()...)
	}
	return events
}
