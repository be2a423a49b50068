package processing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/trazabilidad-api/internal/application/lot"
	"github.com/jhoicas/trazabilidad-api/internal/domain"
	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/trazabilidad-api/internal/domain/traceability"
)

// ShrinkSummary merma total del lote y la compuesta sobre todo su linaje.
type ShrinkSummary struct {
	LotID        string
	Total        decimal.Decimal
	Lineage      decimal.Decimal
	ClosedStages int
}

// Stage etapa por id.
func (uc *PipelineUseCase) Stage(ctx context.Context, id string) (*entity.ProcessingStage, error) {
	s, err := uc.repos.Stages.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("%w: etapa %s", domain.ErrNotFound, id)
	}
	return s, nil
}

// Stages etapas del lote en orden de inicio.
func (uc *PipelineUseCase) Stages(ctx context.Context, lotID string) ([]*entity.ProcessingStage, error) {
	if _, err := uc.lot(ctx, lotID); err != nil {
		return nil, err
	}
	return uc.repos.Stages.ListByLot(ctx, lotID)
}

// TotalShrink merma acumulada de la última etapa cerrada del lote; cero si no hay ninguna.
func (uc *PipelineUseCase) TotalShrink(ctx context.Context, lotID string) (decimal.Decimal, error) {
	if _, err := uc.lot(ctx, lotID); err != nil {
		return decimal.Zero, err
	}
	return uc.totalShrink(ctx, lotID)
}

// Shrink resumen de merma del lote: propia y compuesta con la de todos sus ancestros.
func (uc *PipelineUseCase) Shrink(ctx context.Context, lotID string) (*ShrinkSummary, error) {
	chain, err := lot.Lineage(ctx, uc.repos.Lots, lotID)
	if err != nil {
		return nil, err
	}
	var lineage []decimal.Decimal
	for _, l := range chain[:len(chain)-1] {
		partials, err := closedPartials(ctx, uc.repos.Stages, l.ID)
		if err != nil {
			return nil, err
		}
		lineage = append(lineage, partials...)
	}
	own, err := closedPartials(ctx, uc.repos.Stages, lotID)
	if err != nil {
		return nil, err
	}
	return &ShrinkSummary{
		LotID:        lotID,
		Total:        traceability.CompoundShrink(own...),
		Lineage:      traceability.CompoundShrink(append(lineage, own...)...),
		ClosedStages: len(own),
	}, nil
}

// AverageShrinkByType merma parcial promedio por tipo de etapa.
func (uc *PipelineUseCase) AverageShrinkByType(ctx context.Context) (map[entity.StageType]decimal.Decimal, error) {
	return uc.repos.Stages.AverageShrinkByType(ctx)
}

// StagesAboveThreshold etapas cerradas con merma parcial mayor que threshold.
func (uc *PipelineUseCase) StagesAboveThreshold(ctx context.Context, threshold decimal.Decimal) ([]*entity.ProcessingStage, error) {
	return uc.repos.Stages.ListShrinkAbove(ctx, threshold)
}

func (uc *PipelineUseCase) totalShrink(ctx context.Context, lotID string) (decimal.Decimal, error) {
	last, err := uc.repos.Stages.LastClosedByLot(ctx, lotID)
	if err != nil {
		return decimal.Zero, err
	}
	if last == nil {
		return decimal.Zero, nil
	}
	return last.CumulativeShrink, nil
}

func (uc *PipelineUseCase) lot(ctx context.Context, id string) (*entity.Lot, error) {
	l, err := uc.repos.Lots.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, fmt.Errorf("%w: lote %s", domain.ErrNotFound, id)
	}
	return l, nil
}
