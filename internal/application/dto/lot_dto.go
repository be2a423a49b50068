package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
)

// IntakeRequest body para POST /api/lots.
type IntakeRequest struct {
	SupplierID     string          `json:"supplier_id"`
	MaterialTypeID string          `json:"material_type_id"`
	WarehouseID    string          `json:"warehouse_id"`
	GrossWeight    decimal.Decimal `json:"gross_weight"`
	Tare           decimal.Decimal `json:"tare"`
	Quality        string          `json:"quality"`
	Origin         string          `json:"origin,omitempty"`
	Notes          string          `json:"notes,omitempty"`
}

// ChildRequest un hijo dentro de SplitRequest.
type ChildRequest struct {
	OutputWeight   decimal.Decimal `json:"output_weight"`
	MaterialTypeID string          `json:"material_type_id"`
	WarehouseID    string          `json:"warehouse_id"`
	Quality        string          `json:"quality"`
	Notes          string          `json:"notes,omitempty"`
}

// SplitRequest body para POST /api/lots/:id/split.
type SplitRequest struct {
	Children []ChildRequest `json:"children"`
}

// SaleRequest body para POST /api/lots/:id/sale.
type SaleRequest struct {
	Reference string `json:"reference,omitempty"`
}

// LotResponse lote en respuestas.
type LotResponse struct {
	ID              string          `json:"id"`
	Code            string          `json:"code"`
	GrossWeight     decimal.Decimal `json:"gross_weight"`
	Tare            decimal.Decimal `json:"tare"`
	NetWeight       decimal.Decimal `json:"net_weight"`
	RemainingWeight decimal.Decimal `json:"remaining_weight"`
	Quality         string          `json:"quality"`
	State           string          `json:"state"`
	SupplierID      string          `json:"supplier_id,omitempty"`
	MaterialTypeID  string          `json:"material_type_id"`
	WarehouseID     string          `json:"warehouse_id"`
	ParentID        string          `json:"parent_id,omitempty"`
	Origin          string          `json:"origin,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedBy       string          `json:"created_by,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// SplitResponse resultado de una división.
type SplitResponse struct {
	Parent    LotResponse   `json:"parent"`
	Children  []LotResponse `json:"children"`
	Remainder *LotResponse  `json:"remainder,omitempty"`
}

// ShrinkResponse merma total del lote y compuesta sobre su linaje.
type ShrinkResponse struct {
	LotID        string          `json:"lot_id"`
	Total        decimal.Decimal `json:"total"`
	Lineage      decimal.Decimal `json:"lineage"`
	ClosedStages int             `json:"closed_stages"`
}

// FromLot convierte la entidad a su respuesta.
func FromLot(l *entity.Lot) LotResponse {
	return LotResponse{
		ID:              l.ID,
		Code:            l.Code,
		GrossWeight:     l.GrossWeight,
		Tare:            l.Tare,
		NetWeight:       l.NetWeight,
		RemainingWeight: l.RemainingWeight,
		Quality:         string(l.Quality),
		State:           string(l.State),
		SupplierID:      l.SupplierID,
		MaterialTypeID:  l.MaterialTypeID,
		WarehouseID:     l.WarehouseID,
		ParentID:        l.ParentID,
		Origin:          l.Origin,
		Notes:           l.Notes,
		CreatedBy:       l.CreatedBy,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}

// FromLots convierte una lista de lotes (nunca nil, para serializar []).
func FromLots(lots []*entity.Lot) []LotResponse {
	out := make([]LotResponse, 0, len(lots))
	for _, l := range lots {
		out = append(out, FromLot(l))
	}
	return out
}
