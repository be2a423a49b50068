package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StageType tipo de etapa de procesamiento.
type StageType string

const (
	StageClassification StageType = "CLASSIFICATION"
	StageWashing        StageType = "WASHING"
	StageDrying         StageType = "DRYING"
	StageShredding      StageType = "SHREDDING"
	StagePelletizing    StageType = "PELLETIZING"
)

func (t StageType) Valid() bool {
	switch t {
	case StageClassification, StageWashing, StageDrying, StageShredding, StagePelletizing:
		return true
	}
	return false
}

// ParseStageType valida el valor leído desde almacenamiento.
func ParseStageType(s string) (StageType, error) {
	return parseEnum(StageType(s), "tipo de etapa")
}

// ProcessingStage etapa de transformación de un lote.
// Abierta mientras EndedAt es nil; inmutable una vez cerrada.
// OutputWeight, PartialShrink y CumulativeShrink solo tienen valor tras el cierre.
type ProcessingStage struct {
	ID               string
	LotID            string
	Type             StageType
	StartedAt        time.Time
	EndedAt          *time.Time
	InputWeight      decimal.Decimal
	OutputWeight     decimal.Decimal
	PartialShrink    decimal.Decimal
	CumulativeShrink decimal.Decimal
	ShrinkExceeded   bool
	RecordedBy       string
	Notes            string
	CreatedAt        time.Time
}

// IsClosed indica si la etapa ya tiene fecha de fin.
func (s *ProcessingStage) IsClosed() bool {
	return s.EndedAt != nil
}
