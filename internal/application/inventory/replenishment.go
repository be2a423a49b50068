package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/trazabilidad-api/internal/domain/traceability"
)

// ReplenishmentSuggestion registro bajo mínimo con la cantidad sugerida para reponerlo.
type ReplenishmentSuggestion struct {
	RecordID       string
	WarehouseID    string
	MaterialTypeID string
	CurrentStock   decimal.Decimal
	MinStock       decimal.Decimal
	TargetStock    decimal.Decimal
	SuggestedQty   decimal.Decimal
	Priority       int
}

// ReplenishmentList sugiere reposición para los registros bajo mínimo de una bodega (todas si warehouseID es vacío).
// El objetivo es el máximo del registro, o 1.5 × mínimo si no tiene máximo; la sugerencia se acota a la
// capacidad libre de la bodega para que la entrada resultante pase el control de admisión.
func (uc *LedgerUseCase) ReplenishmentList(ctx context.Context, warehouseID string) ([]ReplenishmentSuggestion, error) {
	records, err := uc.BelowMinimum(ctx)
	if err != nil {
		return nil, err
	}
	factor := decimal.NewFromFloat(1.5)
	free := map[string]decimal.Decimal{}

	out := make([]ReplenishmentSuggestion, 0, len(records))
	for _, rec := range records {
		if warehouseID != "" && rec.WarehouseID != warehouseID {
			continue
		}
		avail, ok := free[rec.WarehouseID]
		if !ok {
			avail, err = uc.AvailableCapacity(ctx, rec.WarehouseID)
			if err != nil {
				return nil, err
			}
		}
		target := rec.MaxStock
		if !target.IsPositive() {
			target = uc.precision.Round(rec.MinStock.Mul(factor))
		}
		qty := target.Sub(rec.Quantity)
		if qty.GreaterThan(avail) {
			qty = avail
		}
		if !qty.IsPositive() {
			continue
		}
		free[rec.WarehouseID] = traceability.AvailableCapacity(avail, qty)
		out = append(out, ReplenishmentSuggestion{
			RecordID:       rec.ID,
			WarehouseID:    rec.WarehouseID,
			MaterialTypeID: rec.MaterialTypeID,
			CurrentStock:   rec.Quantity,
			MinStock:       rec.MinStock,
			TargetStock:    target,
			SuggestedQty:   qty,
		})
	}

	// Mayor déficit relativo primero (stock / mínimo ascendente).
	sort.SliceStable(out, func(i, j int) bool {
		ri := out[i].CurrentStock.Div(out[i].MinStock)
		rj := out[j].CurrentStock.Div(out[j].MinStock)
		return ri.LessThan(rj)
	})
	for i := range out {
		out[i].Priority = i + 1
	}
	return out, nil
}
