package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/trazabilidad-api/internal/application/catalog"
	"github.com/jhoicas/trazabilidad-api/internal/domain"
	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/trazabilidad-api/internal/domain/repository"
	"github.com/jhoicas/trazabilidad-api/internal/domain/traceability"
)

// CapacityReport ocupación de una bodega.
type CapacityReport struct {
	WarehouseID   string
	WarehouseName string
	State         entity.WarehouseState
	Capacity      decimal.Decimal
	Stored        decimal.Decimal
	Available     decimal.Decimal
	OccupancyPct  decimal.Decimal
}

// Capacity capacidad disponible y porcentaje de ocupación de la bodega.
func (uc *LedgerUseCase) Capacity(ctx context.Context, warehouseID string) (*CapacityReport, error) {
	wh, err := catalog.Warehouse(ctx, uc.repos.Warehouses, warehouseID)
	if err != nil {
		return nil, err
	}
	return uc.capacityOf(ctx, wh)
}

// AvailableCapacity capacidad máxima - stock total de la bodega.
func (uc *LedgerUseCase) AvailableCapacity(ctx context.Context, warehouseID string) (decimal.Decimal, error) {
	r, err := uc.Capacity(ctx, warehouseID)
	if err != nil {
		return decimal.Zero, err
	}
	return r.Available, nil
}

// Occupancy stock total / capacidad × 100.
func (uc *LedgerUseCase) Occupancy(ctx context.Context, warehouseID string) (decimal.Decimal, error) {
	r, err := uc.Capacity(ctx, warehouseID)
	if err != nil {
		return decimal.Zero, err
	}
	return r.OccupancyPct, nil
}

// WarehousesWithCapacity bodegas activas con al menos required de capacidad libre, de mayor a menor holgura.
func (uc *LedgerUseCase) WarehousesWithCapacity(ctx context.Context, required decimal.Decimal) ([]*CapacityReport, error) {
	if required.IsNegative() {
		return nil, fmt.Errorf("%w: capacidad requerida negativa", domain.ErrInvalidQuantity)
	}
	warehouses, err := uc.repos.Warehouses.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*CapacityReport, 0, len(warehouses))
	for _, wh := range warehouses {
		if !wh.IsActive() {
			continue
		}
		r, err := uc.capacityOf(ctx, wh)
		if err != nil {
			return nil, err
		}
		if r.Available.GreaterThanOrEqual(required) {
			out = append(out, r)
		}
	}
	sortByAvailableDesc(out)
	return out, nil
}

func sortByAvailableDesc(reports []*CapacityReport) {
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].Available.GreaterThan(reports[j].Available)
	})
}

func (uc *LedgerUseCase) capacityOf(ctx context.Context, wh *entity.Warehouse) (*CapacityReport, error) {
	stored, err := uc.repos.Records.SumByWarehouse(ctx, wh.ID)
	if err != nil {
		return nil, err
	}
	return &CapacityReport{
		WarehouseID:   wh.ID,
		WarehouseName: wh.Name,
		State:         wh.State,
		Capacity:      wh.MaxCapacity,
		Stored:        stored,
		Available:     traceability.AvailableCapacity(wh.MaxCapacity, stored),
		OccupancyPct:  traceability.Occupancy(stored, wh.MaxCapacity),
	}, nil
}

// BelowMinimum registros con stock por debajo de su mínimo.
func (uc *LedgerUseCase) BelowMinimum(ctx context.Context) ([]*entity.InventoryRecord, error) {
	return uc.repos.Records.ListBelowMinimum(ctx)
}

// AboveMaximum registros con stock por encima de su máximo.
func (uc *LedgerUseCase) AboveMaximum(ctx context.Context) ([]*entity.InventoryRecord, error) {
	return uc.repos.Records.ListAboveMaximum(ctx)
}

// GlobalStock stock de un material sumado en todas las bodegas.
func (uc *LedgerUseCase) GlobalStock(ctx context.Context, materialTypeID string) (decimal.Decimal, error) {
	if _, err := catalog.MaterialType(ctx, uc.repos.MaterialTypes, materialTypeID); err != nil {
		return decimal.Zero, err
	}
	return uc.repos.Records.SumByMaterialType(ctx, materialTypeID)
}

// Record registro de inventario por id.
func (uc *LedgerUseCase) Record(ctx context.Context, id string) (*entity.InventoryRecord, error) {
	rec, err := uc.repos.Records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: registro de inventario %s", domain.ErrNotFound, id)
	}
	return rec, nil
}

// RecordsByWarehouse registros de stock de una bodega.
func (uc *LedgerUseCase) RecordsByWarehouse(ctx context.Context, warehouseID string) ([]*entity.InventoryRecord, error) {
	if _, err := catalog.Warehouse(ctx, uc.repos.Warehouses, warehouseID); err != nil {
		return nil, err
	}
	return uc.repos.Records.ListByWarehouse(ctx, warehouseID)
}

// Movements kardex de un registro, más recientes primero.
func (uc *LedgerUseCase) Movements(ctx context.Context, recordID string, filter repository.MovementFilter) ([]*entity.InventoryMovement, error) {
	if _, err := uc.Record(ctx, recordID); err != nil {
		return nil, err
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, fmt.Errorf("%w: rango de fechas invertido", domain.ErrInvalidInput)
	}
	return uc.repos.Movements.ListByRecord(ctx, recordID, filter)
}

// MovementsByLot movimientos causados por un lote, en orden cronológico.
func (uc *LedgerUseCase) MovementsByLot(ctx context.Context, lotID string) ([]*entity.InventoryMovement, error) {
	return uc.repos.Movements.ListByLot(ctx, lotID)
}
