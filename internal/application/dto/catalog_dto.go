package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
)

// WarehouseResponse bodega en respuestas.
type WarehouseResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Address     string          `json:"address,omitempty"`
	MaxCapacity decimal.Decimal `json:"max_capacity"`
	State       string          `json:"state"`
}

// MaterialTypeResponse tipo de material en respuestas.
type MaterialTypeResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Category        string          `json:"category"`
	Unit            string          `json:"unit"`
	ShrinkThreshold decimal.Decimal `json:"shrink_threshold"`
	Active          bool            `json:"active"`
}

func FromWarehouses(list []*entity.Warehouse) []WarehouseResponse {
	out := make([]WarehouseResponse, 0, len(list))
	for _, w := range list {
		out = append(out, WarehouseResponse{ID: w.ID, Name: w.Name, Address: w.Address, MaxCapacity: w.MaxCapacity, State: string(w.State)})
	}
	return out
}

func FromMaterialTypes(list []*entity.MaterialType) []MaterialTypeResponse {
	out := make([]MaterialTypeResponse, 0, len(list))
	for _, m := range list {
		out = append(out, MaterialTypeResponse{
			ID: m.ID, Name: m.Name, Category: string(m.Category), Unit: string(m.Unit),
			ShrinkThreshold: m.ShrinkThreshold, Active: m.Active,
		})
	}
	return out
}
