package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/trazabilidad-api/internal/domain"
	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/trazabilidad-api/internal/domain/repository"
)

var (
	_ repository.InventoryRecordRepository   = (*InventoryRecordRepo)(nil)
	_ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)
)

func recordKey(warehouseID, materialTypeID string) string {
	return warehouseID + "|" + materialTypeID
}

// InventoryRecordRepo registros de stock en memoria; recordKeys hace cumplir un registro por par.
type InventoryRecordRepo struct{ v view }

func (r *InventoryRecordRepo) GetOrCreateForUpdate(_ context.Context, warehouseID, materialTypeID string, now time.Time) (*entity.InventoryRecord, error) {
	var out *entity.InventoryRecord
	r.v.write(func(st *state) {
		key := recordKey(warehouseID, materialTypeID)
		if id, ok := st.recordKeys[key]; ok {
			out = copyRecord(st.records[id])
			return
		}
		rec := &entity.InventoryRecord{
			ID:             uuid.New().String(),
			WarehouseID:    warehouseID,
			MaterialTypeID: materialTypeID,
			Quantity:       decimal.Zero,
			MinStock:       decimal.Zero,
			MaxStock:       decimal.Zero,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		st.records[rec.ID] = rec
		st.recordKeys[key] = rec.ID
		out = copyRecord(rec)
	})
	return out, nil
}

func (r *InventoryRecordRepo) GetForUpdate(ctx context.Context, warehouseID, materialTypeID string) (*entity.InventoryRecord, error) {
	return r.Get(ctx, warehouseID, materialTypeID)
}

func (r *InventoryRecordRepo) Get(_ context.Context, warehouseID, materialTypeID string) (*entity.InventoryRecord, error) {
	var out *entity.InventoryRecord
	r.v.read(func(st *state) {
		if id, ok := st.recordKeys[recordKey(warehouseID, materialTypeID)]; ok {
			out = copyRecord(st.records[id])
		}
	})
	return out, nil
}

func (r *InventoryRecordRepo) GetByID(_ context.Context, id string) (*entity.InventoryRecord, error) {
	var out *entity.InventoryRecord
	r.v.read(func(st *state) {
		if rec, ok := st.records[id]; ok {
			out = copyRecord(rec)
		}
	})
	return out, nil
}

func (r *InventoryRecordRepo) UpdateQuantity(_ context.Context, id string, quantity decimal.Decimal, at time.Time) error {
	var err error
	r.v.write(func(st *state) {
		rec, ok := st.records[id]
		if !ok {
			err = fmt.Errorf("update inventory record: %w", domain.ErrNotFound)
			return
		}
		rec.Quantity = quantity
		rec.UpdatedAt = at
	})
	return err
}

func (r *InventoryRecordRepo) SumByWarehouse(_ context.Context, warehouseID string) (decimal.Decimal, error) {
	total := decimal.Zero
	r.v.read(func(st *state) {
		for _, rec := range st.records {
			if rec.WarehouseID == warehouseID {
				total = total.Add(rec.Quantity)
			}
		}
	})
	return total, nil
}

func (r *InventoryRecordRepo) SumByMaterialType(_ context.Context, materialTypeID string) (decimal.Decimal, error) {
	total := decimal.Zero
	r.v.read(func(st *state) {
		for _, rec := range st.records {
			if rec.MaterialTypeID == materialTypeID {
				total = total.Add(rec.Quantity)
			}
		}
	})
	return total, nil
}

func (r *InventoryRecordRepo) ListByWarehouse(_ context.Context, warehouseID string) ([]*entity.InventoryRecord, error) {
	return r.filter(func(rec *entity.InventoryRecord) bool { return rec.WarehouseID == warehouseID }), nil
}

func (r *InventoryRecordRepo) ListBelowMinimum(_ context.Context) ([]*entity.InventoryRecord, error) {
	return r.filter((*entity.InventoryRecord).BelowMinimum), nil
}

func (r *InventoryRecordRepo) ListAboveMaximum(_ context.Context) ([]*entity.InventoryRecord, error) {
	return r.filter((*entity.InventoryRecord).AboveMaximum), nil
}

// SetThresholds fija mínimo, máximo y ubicación de un registro (configuración administrativa).
func (r *InventoryRecordRepo) SetThresholds(_ context.Context, id string, minStock, maxStock decimal.Decimal, location string) error {
	var err error
	r.v.write(func(st *state) {
		rec, ok := st.records[id]
		if !ok {
			err = fmt.Errorf("set thresholds: %w", domain.ErrNotFound)
			return
		}
		rec.MinStock = minStock
		rec.MaxStock = maxStock
		rec.Location = location
	})
	return err
}

func (r *InventoryRecordRepo) filter(keep func(*entity.InventoryRecord) bool) []*entity.InventoryRecord {
	var out []*entity.InventoryRecord
	r.v.read(func(st *state) {
		for _, rec := range st.records {
			if keep(rec) {
				out = append(out, copyRecord(rec))
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		return recordKey(out[i].WarehouseID, out[i].MaterialTypeID) < recordKey(out[j].WarehouseID, out[j].MaterialTypeID)
	})
	return out
}

// InventoryMovementRepo kardex en memoria (solo inserción).
type InventoryMovementRepo struct{ v view }

func (r *InventoryMovementRepo) Create(_ context.Context, movement *entity.InventoryMovement) error {
	m := *movement
	r.v.write(func(st *state) {
		st.movements = append(st.movements, &m)
	})
	return nil
}

func (r *InventoryMovementRepo) ListByRecord(_ context.Context, recordID string, filter repository.MovementFilter) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	r.v.read(func(st *state) {
		for i := len(st.movements) - 1; i >= 0; i-- {
			m := st.movements[i]
			if m.InventoryRecordID != recordID {
				continue
			}
			if filter.Type != nil && m.Type != *filter.Type {
				continue
			}
			if filter.From != nil && m.Date.Before(*filter.From) {
				continue
			}
			if filter.To != nil && m.Date.After(*filter.To) {
				continue
			}
			c := *m
			out = append(out, &c)
		}
	})
	slices.SortStableFunc(out, func(a, b *entity.InventoryMovement) int {
		return b.Date.Compare(a.Date)
	})
	return paginate(out, filter.Limit, filter.Offset), nil
}

func (r *InventoryMovementRepo) ListByLot(_ context.Context, lotID string) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	r.v.read(func(st *state) {
		for _, m := range st.movements {
			if m.LotID == lotID {
				c := *m
				out = append(out, &c)
			}
		}
	})
	return out, nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
