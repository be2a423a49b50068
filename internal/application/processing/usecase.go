// Package processing registra las etapas de transformación de un lote y calcula su merma
// parcial y acumulada.
package processing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/trazabilidad-api/internal/application/catalog"
	"github.com/jhoicas/trazabilidad-api/internal/application/ports"
	"github.com/jhoicas/trazabilidad-api/internal/domain"
	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/trazabilidad-api/internal/domain/repository"
	"github.com/jhoicas/trazabilidad-api/internal/domain/traceability"
)

// PipelineUseCase casos de uso de la línea de procesamiento.
type PipelineUseCase struct {
	txRunner  ports.TxRunner
	repos     repository.Repositories
	clock     ports.Clock
	events    ports.EventPublisher
	precision traceability.Precision
	log       zerolog.Logger
}

// NewPipelineUseCase construye el caso de uso. repos son los repositorios fuera de transacción (consultas).
func NewPipelineUseCase(
	txRunner ports.TxRunner,
	repos repository.Repositories,
	clock ports.Clock,
	events ports.EventPublisher,
	precision traceability.Precision,
	log zerolog.Logger,
) *PipelineUseCase {
	return &PipelineUseCase{
		txRunner:  txRunner,
		repos:     repos,
		clock:     clock,
		events:    events,
		precision: precision,
		log:       log.With().Str("component", "processing").Logger(),
	}
}

// OpenStageInput apertura de una etapa. StartedAt vacío usa el reloj del motor.
type OpenStageInput struct {
	LotID       string
	Type        entity.StageType
	InputWeight decimal.Decimal
	UserID      string
	Notes       string
	StartedAt   *time.Time
}

// OpenStage abre una etapa sobre un lote IN_PROCESS. La entrada no puede superar el peso restante
// del lote y la etapa no puede empezar antes de que termine la anterior.
func (uc *PipelineUseCase) OpenStage(ctx context.Context, in OpenStageInput) (*entity.ProcessingStage, error) {
	if _, err := entity.ParseStageType(string(in.Type)); err != nil {
		return nil, err
	}
	input := uc.precision.Round(in.InputWeight)
	if !input.IsPositive() {
		return nil, fmt.Errorf("%w: peso de entrada %s debe ser positivo", domain.ErrInvalidWeight, input)
	}
	now := uc.clock.Now()
	start := now
	if in.StartedAt != nil {
		start = in.StartedAt.UTC()
	}

	var stage *entity.ProcessingStage
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		l, err := lockLot(ctx, repos.Lots, in.LotID)
		if err != nil {
			return err
		}
		if l.State != entity.LotInProcess {
			return fmt.Errorf("%w: el lote %s está en %s, se requiere %s", domain.ErrInvalidState, l.Code, l.State, entity.LotInProcess)
		}
		if input.GreaterThan(l.RemainingWeight) {
			return fmt.Errorf("%w: entrada %s supera el peso restante %s del lote %s", domain.ErrInvalidWeight, input, l.RemainingWeight, l.Code)
		}
		last, err := repos.Stages.LastByLot(ctx, l.ID)
		if err != nil {
			return err
		}
		if last != nil {
			if !last.IsClosed() {
				return fmt.Errorf("%w: la etapa %s sigue abierta", domain.ErrOverlappingStage, last.Type)
			}
			if start.Before(*last.EndedAt) {
				return fmt.Errorf("%w: inicio %s anterior al fin de %s (%s)", domain.ErrOverlappingStage,
					start.Format(time.RFC3339), last.Type, last.EndedAt.Format(time.RFC3339))
			}
		}
		stage = &entity.ProcessingStage{
			ID:          uuid.New().String(),
			LotID:       l.ID,
			Type:        in.Type,
			StartedAt:   start,
			InputWeight: input,
			RecordedBy:  in.UserID,
			Notes:       in.Notes,
			CreatedAt:   now,
		}
		return repos.Stages.Create(ctx, stage)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("stage_id", stage.ID).
		Str("lot_id", stage.LotID).
		Str("type", string(stage.Type)).
		Str("input", stage.InputWeight.String()).
		Msg("etapa abierta")
	ports.PublishAll(ctx, uc.events, uc.log, []entity.Event{{
		Type:       entity.EventStageOpened,
		EntityType: entity.EntityProcessingStage,
		EntityID:   stage.ID,
		UserID:     in.UserID,
		OccurredAt: stage.StartedAt,
		Attributes: map[string]string{
			"lot_id":       stage.LotID,
			"stage_type":   string(stage.Type),
			"input_weight": stage.InputWeight.String(),
		},
	}})
	return stage, nil
}

// CloseStageInput cierre de una etapa. EndedAt vacío usa el reloj del motor.
type CloseStageInput struct {
	StageID      string
	OutputWeight decimal.Decimal
	Notes        string
	EndedAt      *time.Time
}

// StageResult etapa cerrada y si su merma superó el umbral del material.
// El exceso no bloquea el cierre; se informa para alertas externas.
type StageResult struct {
	Stage          *entity.ProcessingStage
	ShrinkExceeded bool
	Threshold      decimal.Decimal
	LotRemaining   decimal.Decimal
}

// CloseStage cierra la etapa: calcula merma parcial y acumulada (compuesta sobre las parciales de todas
// las etapas cerradas del lote) y descuenta el peso perdido del peso restante del lote.
func (uc *PipelineUseCase) CloseStage(ctx context.Context, in CloseStageInput) (*StageResult, error) {
	output := uc.precision.Round(in.OutputWeight)
	now := uc.clock.Now()
	end := now
	if in.EndedAt != nil {
		end = in.EndedAt.UTC()
	}

	var res StageResult
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		stage, err := lockStage(ctx, repos.Stages, in.StageID)
		if err != nil {
			return err
		}
		if stage.IsClosed() {
			return fmt.Errorf("%w: etapa %s", domain.ErrAlreadyClosed, stage.ID)
		}
		partial, err := traceability.PartialShrink(stage.InputWeight, output)
		if err != nil {
			return err
		}
		if end.Before(stage.StartedAt) {
			return fmt.Errorf("%w: fin %s anterior al inicio %s", domain.ErrInvalidInput,
				end.Format(time.RFC3339), stage.StartedAt.Format(time.RFC3339))
		}
		l, err := lockLot(ctx, repos.Lots, stage.LotID)
		if err != nil {
			return err
		}
		mt, err := catalog.MaterialType(ctx, repos.MaterialTypes, l.MaterialTypeID)
		if err != nil {
			return err
		}
		chain, err := closedPartials(ctx, repos.Stages, l.ID)
		if err != nil {
			return err
		}

		stage.EndedAt = &end
		stage.OutputWeight = output
		stage.PartialShrink = partial
		stage.CumulativeShrink = traceability.CompoundShrink(append(chain, partial)...)
		stage.ShrinkExceeded = traceability.ExceedsThreshold(partial, mt.ShrinkThreshold)
		if in.Notes != "" {
			stage.Notes = joinNotes(stage.Notes, in.Notes)
		}
		closed, err := repos.Stages.Close(ctx, stage)
		if err != nil {
			return err
		}
		if !closed {
			return fmt.Errorf("%w: etapa %s", domain.ErrAlreadyClosed, stage.ID)
		}

		remaining := l.RemainingWeight.Sub(traceability.LostWeight(stage.InputWeight, output))
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}
		if err := repos.Lots.UpdateRemainingWeight(ctx, l.ID, remaining, now); err != nil {
			return err
		}
		res = StageResult{
			Stage:          stage,
			ShrinkExceeded: stage.ShrinkExceeded,
			Threshold:      mt.ShrinkThreshold,
			LotRemaining:   remaining,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	st := res.Stage
	uc.log.Info().
		Str("stage_id", st.ID).
		Str("lot_id", st.LotID).
		Str("partial_shrink", st.PartialShrink.String()).
		Str("cumulative_shrink", st.CumulativeShrink.String()).
		Msg("etapa cerrada")
	events := []entity.Event{stageClosedEvent(st, entity.EventStageClosed, res.Threshold)}
	if res.ShrinkExceeded {
		uc.log.Warn().
			Str("stage_id", st.ID).
			Str("lot_id", st.LotID).
			Str("partial_shrink", st.PartialShrink.String()).
			Str("threshold", res.Threshold.String()).
			Msg("merma por encima del umbral del material")
		events = append(events, stageClosedEvent(st, entity.EventShrinkExceeded, res.Threshold))
	}
	ports.PublishAll(ctx, uc.events, uc.log, events)
	return &res, nil
}

// closedPartials mermas parciales de las etapas cerradas del lote, en orden de inicio.
func closedPartials(ctx context.Context, repo repository.ProcessingStageRepository, lotID string) ([]decimal.Decimal, error) {
	stages, err := repo.ListByLot(ctx, lotID)
	if err != nil {
		return nil, err
	}
	out := make([]decimal.Decimal, 0, len(stages)+1)
	for _, s := range stages {
		if s.IsClosed() {
			out = append(out, s.PartialShrink)
		}
	}
	return out, nil
}

func stageClosedEvent(st *entity.ProcessingStage, typ entity.EventType, threshold decimal.Decimal) entity.Event {
	return entity.Event{
		Type:       typ,
		EntityType: entity.EntityProcessingStage,
		EntityID:   st.ID,
		UserID:     st.RecordedBy,
		OccurredAt: *st.EndedAt,
		Attributes: map[string]string{
			"lot_id":            st.LotID,
			"stage_type":        string(st.Type),
			"input_weight":      st.InputWeight.String(),
			"output_weight":     st.OutputWeight.String(),
			"partial_shrink":    st.PartialShrink.String(),
			"cumulative_shrink": st.CumulativeShrink.String(),
			"threshold":         threshold.String(),
		},
	}
}

func joinNotes(a, b string) string {
	if a == "" {
		return b
	}
	return a + "\n" + b
}

func lockLot(ctx context.Context, repo repository.LotRepository, id string) (*entity.Lot, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: lot_id requerido", domain.ErrInvalidInput)
	}
	l, err := repo.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, fmt.Errorf("%w: lote %s", domain.ErrNotFound, id)
	}
	return l, nil
}

func lockStage(ctx context.Context, repo repository.ProcessingStageRepository, id string) (*entity.ProcessingStage, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: stage_id requerido", domain.ErrInvalidInput)
	}
	s, err := repo.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("%w: etapa %s", domain.ErrNotFound, id)
	}
	return s, nil
}
