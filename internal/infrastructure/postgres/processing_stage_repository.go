package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/trazabilidad-api/internal/domain/repository"
	"github.com/jhoicas/trazabilidad-api/internal/domain/traceability"
)

var _ repository.ProcessingStageRepository = (*ProcessingStageRepo)(nil)

// ProcessingStageRepo etapas de procesamiento sobre PostgreSQL. seq desempata inicios iguales.
type ProcessingStageRepo struct {
	q Querier
}

// NewProcessingStageRepository construye el adaptador de etapas. Pasar pool o tx (Querier).
func NewProcessingStageRepository(q Querier) *ProcessingStageRepo {
	return &ProcessingStageRepo{q: q}
}

const stageColumns = `id, lot_id, type, started_at, ended_at, input_weight, output_weight,
	partial_shrink, cumulative_shrink, shrink_exceeded, recorded_by, notes, created_at`

func scanStage(row pgx.Row) (*entity.ProcessingStage, error) {
	var (
		s   entity.ProcessingStage
		typ string
	)
	err := row.Scan(&s.ID, &s.LotID, &typ, &s.StartedAt, &s.EndedAt, &s.InputWeight, &s.OutputWeight,
		&s.PartialShrink, &s.CumulativeShrink, &s.ShrinkExceeded, &s.RecordedBy, &s.Notes, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	if s.Type, err = entity.ParseStageType(typ); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ProcessingStageRepo) Create(ctx context.Context, stage *entity.ProcessingStage) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO processing_stages (`+stageColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		stage.ID, stage.LotID, string(stage.Type), stage.StartedAt, stage.EndedAt, stage.InputWeight, stage.OutputWeight,
		stage.PartialShrink, stage.CumulativeShrink, stage.ShrinkExceeded, stage.RecordedBy, stage.Notes, stage.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert processing stage: %w", err)
	}
	return nil
}

func (r *ProcessingStageRepo) GetByID(ctx context.Context, id string) (*entity.ProcessingStage, error) {
	return r.one(ctx, `SELECT `+stageColumns+` FROM processing_stages WHERE id = $1`, id)
}

func (r *ProcessingStageRepo) GetForUpdate(ctx context.Context, id string) (*entity.ProcessingStage, error) {
	return r.one(ctx, `SELECT `+stageColumns+` FROM processing_stages WHERE id = $1 FOR UPDATE`, id)
}

// Close solo actualiza etapas abiertas (ended_at IS NULL).
func (r *ProcessingStageRepo) Close(ctx context.Context, stage *entity.ProcessingStage) (bool, error) {
	cmd, err := r.q.Exec(ctx, `
		UPDATE processing_stages
		SET ended_at = $2, output_weight = $3, partial_shrink = $4, cumulative_shrink = $5,
			shrink_exceeded = $6, notes = $7
		WHERE id = $1 AND ended_at IS NULL`,
		stage.ID, stage.EndedAt, stage.OutputWeight, stage.PartialShrink, stage.CumulativeShrink,
		stage.ShrinkExceeded, stage.Notes,
	)
	if err != nil {
		return false, fmt.Errorf("close processing stage: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *ProcessingStageRepo) ListByLot(ctx context.Context, lotID string) ([]*entity.ProcessingStage, error) {
	return r.list(ctx, `
		SELECT `+stageColumns+` FROM processing_stages
		WHERE lot_id = $1 ORDER BY started_at, seq`, lotID)
}

func (r *ProcessingStageRepo) LastByLot(ctx context.Context, lotID string) (*entity.ProcessingStage, error) {
	return r.one(ctx, `
		SELECT `+stageColumns+` FROM processing_stages
		WHERE lot_id = $1 ORDER BY started_at DESC, seq DESC LIMIT 1`, lotID)
}

func (r *ProcessingStageRepo) LastClosedByLot(ctx context.Context, lotID string) (*entity.ProcessingStage, error) {
	return r.one(ctx, `
		SELECT `+stageColumns+` FROM processing_stages
		WHERE lot_id = $1 AND ended_at IS NOT NULL ORDER BY started_at DESC, seq DESC LIMIT 1`, lotID)
}

func (r *ProcessingStageRepo) AverageShrinkByType(ctx context.Context) (map[entity.StageType]decimal.Decimal, error) {
	rows, err := r.q.Query(ctx, `
		SELECT type, AVG(partial_shrink) FROM processing_stages
		WHERE ended_at IS NOT NULL GROUP BY type`)
	if err != nil {
		return nil, fmt.Errorf("average shrink by type: %w", err)
	}
	defer rows.Close()
	out := map[entity.StageType]decimal.Decimal{}
	for rows.Next() {
		var (
			typ string
			avg decimal.Decimal
		)
		if err := rows.Scan(&typ, &avg); err != nil {
			return nil, fmt.Errorf("scan average shrink: %w", err)
		}
		t, err := entity.ParseStageType(typ)
		if err != nil {
			return nil, err
		}
		out[t] = avg.Round(traceability.PercentScale)
	}
	return out, rows.Err()
}

func (r *ProcessingStageRepo) ListShrinkAbove(ctx context.Context, threshold decimal.Decimal) ([]*entity.ProcessingStage, error) {
	return r.list(ctx, `
		SELECT `+stageColumns+` FROM processing_stages
		WHERE ended_at IS NOT NULL AND partial_shrink > $1 ORDER BY started_at, seq`, threshold)
}

func (r *ProcessingStageRepo) one(ctx context.Context, query, arg string) (*entity.ProcessingStage, error) {
	s, err := scanStage(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get processing stage: %w", err)
	}
	return s, nil
}

func (r *ProcessingStageRepo) list(ctx context.Context, query string, args ...any) ([]*entity.ProcessingStage, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list processing stages: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProcessingStage
	for rows.Next() {
		s, err := scanStage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan processing stage: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
