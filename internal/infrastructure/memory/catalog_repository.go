package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/trazabilidad-api/internal/domain/repository"
)

var (
	_ repository.WarehouseRepository    = (*WarehouseRepo)(nil)
	_ repository.MaterialTypeRepository = (*MaterialTypeRepo)(nil)
	_ repository.SupplierRepository     = (*SupplierRepo)(nil)
)

// WarehouseRepo lectura de bodegas en memoria.
type WarehouseRepo struct{ v view }

func (r *WarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	var out *entity.Warehouse
	r.v.read(func(st *state) {
		if w, ok := st.warehouses[id]; ok {
			c := *w
			out = &c
		}
	})
	return out, nil
}

// GetForUpdate equivale a GetByID: la unidad de trabajo ya tiene acceso exclusivo.
func (r *WarehouseRepo) GetForUpdate(ctx context.Context, id string) (*entity.Warehouse, error) {
	return r.GetByID(ctx, id)
}

func (r *WarehouseRepo) List(_ context.Context) ([]*entity.Warehouse, error) {
	var out []*entity.Warehouse
	r.v.read(func(st *state) {
		for _, w := range st.warehouses {
			c := *w
			out = append(out, &c)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// MaterialTypeRepo lectura del catálogo de materiales en memoria.
type MaterialTypeRepo struct{ v view }

func (r *MaterialTypeRepo) GetByID(_ context.Context, id string) (*entity.MaterialType, error) {
	var out *entity.MaterialType
	r.v.read(func(st *state) {
		if m, ok := st.materials[id]; ok {
			c := *m
			out = &c
		}
	})
	return out, nil
}

func (r *MaterialTypeRepo) List(_ context.Context, onlyActive bool) ([]*entity.MaterialType, error) {
	var out []*entity.MaterialType
	r.v.read(func(st *state) {
		for _, m := range st.materials {
			if onlyActive && !m.Active {
				continue
			}
			c := *m
			out = append(out, &c)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// SupplierRepo lectura de proveedores en memoria.
type SupplierRepo struct{ v view }

func (r *SupplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	var out *entity.Supplier
	r.v.read(func(st *state) {
		if s, ok := st.suppliers[id]; ok {
			c := *s
			out = &c
		}
	})
	return out, nil
}
