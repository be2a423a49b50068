package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/trazabilidad-api/internal/domain"
	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/trazabilidad-api/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo lotes en memoria; el índice lotCodes hace cumplir la unicidad del código.
type LotRepo struct{ v view }

func (r *LotRepo) Create(_ context.Context, lot *entity.Lot) error {
	var err error
	r.v.write(func(st *state) {
		if _, taken := st.lotCodes[lot.Code]; taken {
			err = fmt.Errorf("%w: %s", domain.ErrDuplicateCode, lot.Code)
			return
		}
		if _, exists := st.lots[lot.ID]; exists {
			err = fmt.Errorf("insert lot: id %s ya existe", lot.ID)
			return
		}
		st.lots[lot.ID] = copyLot(lot)
		st.lotCodes[lot.Code] = lot.ID
	})
	return err
}

func (r *LotRepo) GetByID(_ context.Context, id string) (*entity.Lot, error) {
	var out *entity.Lot
	r.v.read(func(st *state) {
		if l, ok := st.lots[id]; ok {
			out = copyLot(l)
		}
	})
	return out, nil
}

func (r *LotRepo) GetByCode(_ context.Context, code string) (*entity.Lot, error) {
	var out *entity.Lot
	r.v.read(func(st *state) {
		if id, ok := st.lotCodes[code]; ok {
			out = copyLot(st.lots[id])
		}
	})
	return out, nil
}

func (r *LotRepo) GetForUpdate(ctx context.Context, id string) (*entity.Lot, error) {
	return r.GetByID(ctx, id)
}

func (r *LotRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	var ok bool
	r.v.read(func(st *state) {
		_, ok = st.lotCodes[code]
	})
	return ok, nil
}

func (r *LotRepo) CompareAndSetState(_ context.Context, id string, from, to entity.LotState, at time.Time) (bool, error) {
	var swapped bool
	r.v.write(func(st *state) {
		l, ok := st.lots[id]
		if !ok || l.State != from {
			return
		}
		l.State = to
		l.Version++
		l.UpdatedAt = at
		swapped = true
	})
	return swapped, nil
}

func (r *LotRepo) UpdateRemainingWeight(_ context.Context, id string, remaining decimal.Decimal, at time.Time) error {
	var err error
	r.v.write(func(st *state) {
		l, ok := st.lots[id]
		if !ok {
			err = fmt.Errorf("update lot remaining weight: %w", domain.ErrNotFound)
			return
		}
		l.RemainingWeight = remaining
		l.UpdatedAt = at
	})
	return err
}

func (r *LotRepo) ListChildren(_ context.Context, parentID string) ([]*entity.Lot, error) {
	return r.filter(func(l *entity.Lot) bool { return l.ParentID == parentID }), nil
}

func (r *LotRepo) ListAvailable(_ context.Context, warehouseID, materialTypeID string) ([]*entity.Lot, error) {
	return r.filter(func(l *entity.Lot) bool {
		return l.State == entity.LotAvailable && l.WarehouseID == warehouseID && l.MaterialTypeID == materialTypeID
	}), nil
}

// filter devuelve copias de los lotes que cumplen keep, en orden de creación.
func (r *LotRepo) filter(keep func(*entity.Lot) bool) []*entity.Lot {
	var out []*entity.Lot
	r.v.read(func(st *state) {
		for _, l := range st.lots {
			if keep(l) {
				out = append(out, copyLot(l))
			}
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Code < out[j].Code
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
