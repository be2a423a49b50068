package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
)

// OpenStageRequest body para POST /api/lots/:id/stages.
type OpenStageRequest struct {
	Type        string          `json:"type"`
	InputWeight decimal.Decimal `json:"input_weight"`
	Notes       string          `json:"notes,omitempty"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
}

// CloseStageRequest body para POST /api/stages/:id/close.
type CloseStageRequest struct {
	OutputWeight decimal.Decimal `json:"output_weight"`
	Notes        string          `json:"notes,omitempty"`
	EndedAt      *time.Time      `json:"ended_at,omitempty"`
}

// StageResponse etapa de proceso en respuestas. Los campos de salida solo vienen tras el cierre.
type StageResponse struct {
	ID               string           `json:"id"`
	LotID            string           `json:"lot_id"`
	Type             string           `json:"type"`
	StartedAt        time.Time        `json:"started_at"`
	EndedAt          *time.Time       `json:"ended_at,omitempty"`
	InputWeight      decimal.Decimal  `json:"input_weight"`
	OutputWeight     *decimal.Decimal `json:"output_weight,omitempty"`
	PartialShrink    *decimal.Decimal `json:"partial_shrink,omitempty"`
	CumulativeShrink *decimal.Decimal `json:"cumulative_shrink,omitempty"`
	ShrinkExceeded   bool             `json:"shrink_exceeded"`
	RecordedBy       string           `json:"recorded_by,omitempty"`
	Notes            string           `json:"notes,omitempty"`
}

// CloseStageResponse etapa cerrada más el umbral aplicado y el peso restante del lote.
type CloseStageResponse struct {
	Stage        StageResponse   `json:"stage"`
	Threshold    decimal.Decimal `json:"threshold"`
	LotRemaining decimal.Decimal `json:"lot_remaining"`
}

// FromStage convierte la entidad a su respuesta.
func FromStage(s *entity.ProcessingStage) StageResponse {
	out := StageResponse{
		ID:             s.ID,
		LotID:          s.LotID,
		Type:           string(s.Type),
		StartedAt:      s.StartedAt,
		EndedAt:        s.EndedAt,
		InputWeight:    s.InputWeight,
		ShrinkExceeded: s.ShrinkExceeded,
		RecordedBy:     s.RecordedBy,
		Notes:          s.Notes,
	}
	if s.IsClosed() {
		output, partial, cumulative := s.OutputWeight, s.PartialShrink, s.CumulativeShrink
		out.OutputWeight = &output
		out.PartialShrink = &partial
		out.CumulativeShrink = &cumulative
	}
	return out
}

// FromStages convierte una lista de etapas.
func FromStages(stages []*entity.ProcessingStage) []StageResponse {
	out := make([]StageResponse, 0, len(stages))
	for _, s := range stages {
		out = append(out, FromStage(s))
	}
	return out
}
