// Package codegen genera códigos de lote PREFIJO-AAAAMMDD-NNNNNN con una secuencia diaria en proceso.
package codegen

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/trazabilidad-api/internal/application/ports"
)

// DefaultPrefix prefijo de código cuando la configuración no define otro.
const DefaultPrefix = "LOT"

var _ ports.LotCodeGenerator = (*Sequential)(nil)

// Format arma el código con la fecha UTC de at y la secuencia n con seis dígitos.
func Format(prefix string, at time.Time, n int64) string {
	return fmt.Sprintf("%s-%s-%06d", Normalize(prefix), at.UTC().Format("20060102"), n)
}

// Normalize prefijo en mayúsculas sin espacios; vacío equivale a DefaultPrefix.
func Normalize(prefix string) string {
	p := strings.ToUpper(strings.TrimSpace(prefix))
	if p == "" {
		return DefaultPrefix
	}
	return p
}

// Sequential generador en memoria; la secuencia reinicia cada día. Apto para una sola instancia.
type Sequential struct {
	prefix string
	mu     sync.Mutex
	day    string
	n      int64
}

func NewSequential(prefix string) *Sequential {
	return &Sequential{prefix: Normalize(prefix)}
}

func (g *Sequential) Next(ctx context.Context, at time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	day := at.UTC().Format("20060102")
	if day != g.day {
		g.day, g.n = day, 0
	}
	g.n++
	return Format(g.prefix, at, g.n), nil
}
