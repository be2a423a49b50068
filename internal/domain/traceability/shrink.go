package traceability

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/trazabilidad-api/internal/domain"
)

// PartialShrink merma de una etapa: (entrada - salida) / entrada × 100, acotada a [0,100]
// y redondeada a PercentScale.
func PartialShrink(input, output decimal.Decimal) (decimal.Decimal, error) {
	if !input.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: peso de entrada %s debe ser positivo", domain.ErrInvalidWeight, input)
	}
	if output.IsNegative() || output.GreaterThan(input) {
		return decimal.Zero, fmt.Errorf("%w: peso de salida %s fuera de [0, %s]", domain.ErrInvalidWeight, output, input)
	}
	p := input.Sub(output).Mul(hundred).Div(input)
	return clampPercent(p).Round(PercentScale), nil
}

// CompoundShrink merma acumulada de una cadena de etapas cerradas en orden:
// 100 - 100 × Π(1 - p_i/100). El producto se calcula sin redondeos intermedios y el resultado
// se redondea una sola vez a PercentScale, de modo que la acumulada de la etapa n no arrastra
// el redondeo de las etapas anteriores. Sin etapas devuelve cero.
func CompoundShrink(partials ...decimal.Decimal) decimal.Decimal {
	retained := decimal.NewFromInt(1)
	for _, p := range partials {
		retained = retained.Mul(decimal.NewFromInt(1).Sub(clampPercent(p).Div(hundred)))
	}
	return clampPercent(hundred.Sub(hundred.Mul(retained))).Round(PercentScale)
}

// ExceedsThreshold indica si la merma parcial supera el umbral del tipo de material.
// Un umbral cero o negativo significa que el material no tiene umbral configurado y nunca alerta.
func ExceedsThreshold(partial, threshold decimal.Decimal) bool {
	if !threshold.IsPositive() {
		return false
	}
	return partial.GreaterThan(threshold)
}

// LostWeight peso perdido en una etapa.
func LostWeight(input, output decimal.Decimal) decimal.Decimal {
	return input.Sub(output)
}

func clampPercent(p decimal.Decimal) decimal.Decimal {
	if p.IsNegative() {
		return decimal.Zero
	}
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}
