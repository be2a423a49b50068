package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
)

// StockRequest body para POST /api/inventory/increase y /decrease.
type StockRequest struct {
	WarehouseID    string          `json:"warehouse_id"`
	MaterialTypeID string          `json:"material_type_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	LotID          string          `json:"lot_id,omitempty"`
	Reason         string          `json:"reason,omitempty"`
	Reference      string          `json:"reference,omitempty"`
}

// AdjustRequest body para POST /api/inventory/adjust.
type AdjustRequest struct {
	WarehouseID    string          `json:"warehouse_id"`
	MaterialTypeID string          `json:"material_type_id"`
	NewQuantity    decimal.Decimal `json:"new_quantity"`
	Reason         string          `json:"reason"`
}

// RecordResponse registro de inventario en respuestas.
type RecordResponse struct {
	ID             string          `json:"id"`
	WarehouseID    string          `json:"warehouse_id"`
	MaterialTypeID string          `json:"material_type_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	MinStock       decimal.Decimal `json:"min_stock"`
	MaxStock       decimal.Decimal `json:"max_stock"`
	Location       string          `json:"location,omitempty"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// MovementResponse movimiento del kardex.
type MovementResponse struct {
	ID                string          `json:"id"`
	InventoryRecordID string          `json:"inventory_record_id"`
	Type              string          `json:"type"`
	Quantity          decimal.Decimal `json:"quantity"`
	QuantityBefore    decimal.Decimal `json:"quantity_before"`
	QuantityAfter     decimal.Decimal `json:"quantity_after"`
	LotID             string          `json:"lot_id,omitempty"`
	Reason            string          `json:"reason,omitempty"`
	Reference         string          `json:"reference,omitempty"`
	CreatedBy         string          `json:"created_by,omitempty"`
	Date              time.Time       `json:"date"`
}

// StockChangeResponse registro actualizado y el movimiento que lo explica.
type StockChangeResponse struct {
	Record   RecordResponse   `json:"record"`
	Movement MovementResponse `json:"movement"`
}

// CapacityResponse capacidad disponible y ocupación de una bodega.
type CapacityResponse struct {
	WarehouseID  string          `json:"warehouse_id"`
	Name         string          `json:"name"`
	State        string          `json:"state"`
	Capacity     decimal.Decimal `json:"capacity"`
	Stored       decimal.Decimal `json:"stored"`
	Available    decimal.Decimal `json:"available"`
	OccupancyPct decimal.Decimal `json:"occupancy_pct"`
}

// FromRecord convierte la entidad a su respuesta.
func FromRecord(r *entity.InventoryRecord) RecordResponse {
	return RecordResponse{
		ID:             r.ID,
		WarehouseID:    r.WarehouseID,
		MaterialTypeID: r.MaterialTypeID,
		Quantity:       r.Quantity,
		MinStock:       r.MinStock,
		MaxStock:       r.MaxStock,
		Location:       r.Location,
		UpdatedAt:      r.UpdatedAt,
	}
}

// FromRecords convierte una lista de registros.
func FromRecords(records []*entity.InventoryRecord) []RecordResponse {
	out := make([]RecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, FromRecord(r))
	}
	return out
}

// FromMovement convierte la entidad a su respuesta.
func FromMovement(m *entity.InventoryMovement) MovementResponse {
	return MovementResponse{
		ID:                m.ID,
		InventoryRecordID: m.InventoryRecordID,
		Type:              string(m.Type),
		Quantity:          m.Quantity,
		QuantityBefore:    m.QuantityBefore,
		QuantityAfter:     m.QuantityAfter,
		LotID:             m.LotID,
		Reason:            m.Reason,
		Reference:         m.Reference,
		CreatedBy:         m.CreatedBy,
		Date:              m.Date,
	}
}

// FromMovements convierte una lista de movimientos.
func FromMovements(movements []*entity.InventoryMovement) []MovementResponse {
	out := make([]MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, FromMovement(m))
	}
	return out
}

// ReplenishmentResponse registro bajo mínimo con la cantidad sugerida para reponerlo.
type ReplenishmentResponse struct {
	RecordID       string          `json:"record_id"`
	WarehouseID    string          `json:"warehouse_id"`
	MaterialTypeID string          `json:"material_type_id"`
	CurrentStock   decimal.Decimal `json:"current_stock"`
	MinStock       decimal.Decimal `json:"min_stock"`
	TargetStock    decimal.Decimal `json:"target_stock"`  // máximo, o 1.5 × mínimo
	SuggestedQty   decimal.Decimal `json:"suggested_qty"` // acotada a la capacidad libre
	Priority       int             `json:"priority"`      // 1 = más urgente
}

// ThresholdRequest body para PUT /api/inventory/thresholds.
type ThresholdRequest struct {
	WarehouseID    string          `json:"warehouse_id"`
	MaterialTypeID string          `json:"material_type_id"`
	MinStock       decimal.Decimal `json:"min_stock"`
	MaxStock       decimal.Decimal `json:"max_stock"`
	Location       string          `json:"location,omitempty"`
}
