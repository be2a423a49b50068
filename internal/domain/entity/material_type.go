package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaterialCategory categoría del material reciclable.
type MaterialCategory string

const (
	CategoryPlastic MaterialCategory = "PLASTIC"
	CategoryPaper   MaterialCategory = "PAPER"
	CategoryMetal   MaterialCategory = "METAL"
	CategoryGlass   MaterialCategory = "GLASS"
	CategoryOther   MaterialCategory = "OTHER"
)

func (c MaterialCategory) Valid() bool {
	switch c {
	case CategoryPlastic, CategoryPaper, CategoryMetal, CategoryGlass, CategoryOther:
		return true
	}
	return false
}

// ParseMaterialCategory valida el valor leído desde almacenamiento.
func ParseMaterialCategory(s string) (MaterialCategory, error) {
	return parseEnum(MaterialCategory(s), "categoría de material")
}

// UnitOfMeasure unidad de medida del material.
type UnitOfMeasure string

const (
	UnitKilogram UnitOfMeasure = "KILOGRAM"
	UnitTon      UnitOfMeasure = "TON"
	UnitPound    UnitOfMeasure = "POUND"
)

func (u UnitOfMeasure) Valid() bool {
	switch u {
	case UnitKilogram, UnitTon, UnitPound:
		return true
	}
	return false
}

// ParseUnitOfMeasure valida el valor leído desde almacenamiento.
func ParseUnitOfMeasure(s string) (UnitOfMeasure, error) {
	return parseEnum(UnitOfMeasure(s), "unidad de medida")
}

// MaterialType dato de referencia: inmutable desde el punto de vista del motor.
// ShrinkThreshold es la merma máxima esperada por etapa, en porcentaje.
type MaterialType struct {
	ID              string
	Name            string
	Description     string
	Category        MaterialCategory
	Unit            UnitOfMeasure
	BasePrice       decimal.Decimal
	QualityFactor   decimal.Decimal
	ShrinkThreshold decimal.Decimal
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
