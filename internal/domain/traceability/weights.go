// Package traceability contiene la aritmética pura del motor: peso neto, conservación en divisiones,
// merma parcial/acumulada y ocupación de bodegas. Sin estado ni dependencias de infraestructura.
package traceability

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/trazabilidad-api/internal/domain"
)

// PercentScale decimales de todo porcentaje (columnas NUMERIC(5,2)).
const PercentScale int32 = 2

// DefaultPrecision decimales por defecto de pesos y cantidades.
const DefaultPrecision Precision = 2

var hundred = decimal.NewFromInt(100)

// Precision número de decimales con el que se redondean pesos y cantidades en la frontera del motor.
type Precision int32

// Round redondea d (half away from zero) a la precisión configurada.
func (p Precision) Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(int32(p))
}

// NetWeight calcula peso neto = bruto - tara. Falla con ErrInvalidWeight si el neto no es estrictamente positivo
// o la tara es negativa.
func NetWeight(gross, tare decimal.Decimal) (decimal.Decimal, error) {
	if tare.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: tara negativa %s", domain.ErrInvalidWeight, tare)
	}
	if gross.LessThanOrEqual(tare) {
		return decimal.Zero, fmt.Errorf("%w: peso bruto %s debe ser mayor que la tara %s", domain.ErrInvalidWeight, gross, tare)
	}
	return gross.Sub(tare), nil
}

// Sum suma una lista de pesos.
func Sum(weights ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, w := range weights {
		total = total.Add(w)
	}
	return total
}

// Remainder devuelve la porción no asignada de un lote padre al dividirlo en hijos de los pesos dados.
// Cada peso debe ser positivo y la suma no puede superar net. Un resultado cero significa asignación completa.
func Remainder(net decimal.Decimal, outputs []decimal.Decimal) (decimal.Decimal, error) {
	for _, w := range outputs {
		if !w.IsPositive() {
			return decimal.Zero, fmt.Errorf("%w: peso de hijo %s debe ser positivo", domain.ErrInvalidWeight, w)
		}
	}
	allocated := Sum(outputs...)
	if allocated.GreaterThan(net) {
		return decimal.Zero, fmt.Errorf("%w: suma de hijos %s supera el peso neto %s", domain.ErrInvalidWeight, allocated, net)
	}
	return net.Sub(allocated), nil
}

// AvailableCapacity capacidad libre de una bodega; nunca negativa.
func AvailableCapacity(capacity, stored decimal.Decimal) decimal.Decimal {
	free := capacity.Sub(stored)
	if free.IsNegative() {
		return decimal.Zero
	}
	return free
}

// Occupancy porcentaje de ocupación = almacenado / capacidad × 100, redondeado a PercentScale.
// Una bodega sin capacidad se reporta llena si almacena algo y vacía en caso contrario.
func Occupancy(stored, capacity decimal.Decimal) decimal.Decimal {
	if !capacity.IsPositive() {
		if stored.IsPositive() {
			return hundred
		}
		return decimal.Zero
	}
	return stored.Mul(hundred).Div(capacity).Round(PercentScale)
}

// Admits es el control de admisión: total + q <= capacidad.
func Admits(capacity, total, q decimal.Decimal) bool {
	return total.Add(q).LessThanOrEqual(capacity)
}
