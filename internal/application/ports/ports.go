// Package ports define los contratos que el motor consume de colaboradores externos.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/ports_mock.go -package=mocks

import (
	"context"
	"time"

	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/trazabilidad-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una unidad de trabajo, pasando repositorios atados a ella.
// Si fn devuelve error todo se descarta; si no, todo se confirma junto.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.Repositories) error) error
}

// Clock fuente de marcas de tiempo del motor.
type Clock interface {
	Now() time.Time
}

// LotCodeGenerator genera códigos de lote legibles con formato PREFIJO-AAAAMMDD-NNNNNN.
type LotCodeGenerator interface {
	Next(ctx context.Context, at time.Time) (string, error)
}

// EventPublisher observador desacoplado (alertas, auditoría, métricas).
// Se invoca solo después de confirmar la unidad de trabajo.
type EventPublisher interface {
	Publish(ctx context.Context, event entity.Event) error
}
