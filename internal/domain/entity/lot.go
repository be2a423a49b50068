package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LotState ciclo de vida de un lote.
type LotState string

const (
	LotAvailable LotState = "AVAILABLE"
	LotInProcess LotState = "IN_PROCESS"
	LotProcessed LotState = "PROCESSED"
	LotSold      LotState = "SOLD"
)

func (s LotState) Valid() bool {
	switch s {
	case LotAvailable, LotInProcess, LotProcessed, LotSold:
		return true
	}
	return false
}

// ParseLotState valida el valor leído desde almacenamiento.
func ParseLotState(s string) (LotState, error) {
	return parseEnum(LotState(s), "estado de lote")
}

// Quality calidad del material del lote.
type Quality string

const (
	QualityHigh   Quality = "HIGH"
	QualityMedium Quality = "MEDIUM"
	QualityLow    Quality = "LOW"
)

func (q Quality) Valid() bool {
	switch q {
	case QualityHigh, QualityMedium, QualityLow:
		return true
	}
	return false
}

// ParseQuality valida el valor leído desde almacenamiento.
func ParseQuality(s string) (Quality, error) {
	return parseEnum(Quality(s), "calidad")
}

// Lot lote de material trazable.
//
// NetWeight (= GrossWeight - Tare) se fija al crear el lote y no cambia nunca.
// RemainingWeight es el contador de material aún disponible para etapas de procesamiento:
// arranca en NetWeight y se reduce con la merma de cada etapa cerrada.
// ParentID vacío indica un lote de ingreso; los hijos solo se crean por división.
type Lot struct {
	ID              string
	Code            string
	GrossWeight     decimal.Decimal
	Tare            decimal.Decimal
	NetWeight       decimal.Decimal
	RemainingWeight decimal.Decimal
	Quality         Quality
	State           LotState
	SupplierID      string
	MaterialTypeID  string
	WarehouseID     string
	ParentID        string
	Origin          string
	Notes           string
	CreatedBy       string
	Version         int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasParent indica si el lote proviene de una división.
func (l *Lot) HasParent() bool {
	return l.ParentID != ""
}
