package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
)

// ProcessingStageRepository puerto de persistencia de etapas de procesamiento.
// Las lecturas de una etapa devuelven (nil, nil) si no existe.
type ProcessingStageRepository interface {
	Create(ctx context.Context, stage *entity.ProcessingStage) error
	GetByID(ctx context.Context, id string) (*entity.ProcessingStage, error)
	GetForUpdate(ctx context.Context, id string) (*entity.ProcessingStage, error)
	// Close persiste fin, salida y mermas solo si la etapa sigue abierta; false si ya estaba cerrada.
	Close(ctx context.Context, stage *entity.ProcessingStage) (bool, error)
	// ListByLot etapas del lote ordenadas por inicio ascendente.
	ListByLot(ctx context.Context, lotID string) ([]*entity.ProcessingStage, error)
	// LastByLot etapa con el inicio más reciente del lote (abierta o cerrada).
	LastByLot(ctx context.Context, lotID string) (*entity.ProcessingStage, error)
	// LastClosedByLot etapa cerrada más reciente del lote.
	LastClosedByLot(ctx context.Context, lotID string) (*entity.ProcessingStage, error)
	// AverageShrinkByType merma parcial promedio de etapas cerradas, por tipo.
	AverageShrinkByType(ctx context.Context) (map[entity.StageType]decimal.Decimal, error)
	// ListShrinkAbove etapas cerradas cuya merma parcial supera threshold.
	ListShrinkAbove(ctx context.Context, threshold decimal.Decimal) ([]*entity.ProcessingStage, error)
}
