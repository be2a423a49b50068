package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/trazabilidad-api/internal/domain/repository"
	"github.com/jhoicas/trazabilidad-api/internal/domain/traceability"
)

var _ repository.ProcessingStageRepository = (*ProcessingStageRepo)(nil)

// ProcessingStageRepo etapas en memoria. stageOrder conserva el orden de inserción para desempatar inicios iguales.
type ProcessingStageRepo struct{ v view }

func (r *ProcessingStageRepo) Create(_ context.Context, stage *entity.ProcessingStage) error {
	var err error
	r.v.write(func(st *state) {
		if _, exists := st.stages[stage.ID]; exists {
			err = fmt.Errorf("insert processing stage: id %s ya existe", stage.ID)
			return
		}
		st.stages[stage.ID] = copyStage(stage)
		st.stageOrder = append(st.stageOrder, stage.ID)
	})
	return err
}

func (r *ProcessingStageRepo) GetByID(_ context.Context, id string) (*entity.ProcessingStage, error) {
	var out *entity.ProcessingStage
	r.v.read(func(st *state) {
		if s, ok := st.stages[id]; ok {
			out = copyStage(s)
		}
	})
	return out, nil
}

func (r *ProcessingStageRepo) GetForUpdate(ctx context.Context, id string) (*entity.ProcessingStage, error) {
	return r.GetByID(ctx, id)
}

func (r *ProcessingStageRepo) Close(_ context.Context, stage *entity.ProcessingStage) (bool, error) {
	var closed bool
	r.v.write(func(st *state) {
		cur, ok := st.stages[stage.ID]
		if !ok || cur.IsClosed() {
			return
		}
		st.stages[stage.ID] = copyStage(stage)
		closed = true
	})
	return closed, nil
}

func (r *ProcessingStageRepo) ListByLot(_ context.Context, lotID string) ([]*entity.ProcessingStage, error) {
	return r.ordered(func(s *entity.ProcessingStage) bool { return s.LotID == lotID }), nil
}

func (r *ProcessingStageRepo) LastByLot(ctx context.Context, lotID string) (*entity.ProcessingStage, error) {
	stages, _ := r.ListByLot(ctx, lotID)
	if len(stages) == 0 {
		return nil, nil
	}
	return stages[len(stages)-1], nil
}

func (r *ProcessingStageRepo) LastClosedByLot(ctx context.Context, lotID string) (*entity.ProcessingStage, error) {
	stages, _ := r.ListByLot(ctx, lotID)
	for i := len(stages) - 1; i >= 0; i-- {
		if stages[i].IsClosed() {
			return stages[i], nil
		}
	}
	return nil, nil
}

func (r *ProcessingStageRepo) AverageShrinkByType(_ context.Context) (map[entity.StageType]decimal.Decimal, error) {
	sums := map[entity.StageType]decimal.Decimal{}
	counts := map[entity.StageType]int64{}
	r.v.read(func(st *state) {
		for _, s := range st.stages {
			if !s.IsClosed() {
				continue
			}
			sums[s.Type] = sums[s.Type].Add(s.PartialShrink)
			counts[s.Type]++
		}
	})
	out := make(map[entity.StageType]decimal.Decimal, len(sums))
	for t, sum := range sums {
		out[t] = sum.Div(decimal.NewFromInt(counts[t])).Round(traceability.PercentScale)
	}
	return out, nil
}

func (r *ProcessingStageRepo) ListShrinkAbove(_ context.Context, threshold decimal.Decimal) ([]*entity.ProcessingStage, error) {
	return r.ordered(func(s *entity.ProcessingStage) bool {
		return s.IsClosed() && s.PartialShrink.GreaterThan(threshold)
	}), nil
}

// ordered etapas que cumplen keep, por inicio ascendente y luego por orden de inserción.
func (r *ProcessingStageRepo) ordered(keep func(*entity.ProcessingStage) bool) []*entity.ProcessingStage {
	var out []*entity.ProcessingStage
	r.v.read(func(st *state) {
		for _, id := range st.stageOrder {
			if s := st.stages[id]; keep(s) {
				out = append(out, copyStage(s))
			}
		}
	})
	sortStagesByStart(out)
	return out
}

func sortStagesByStart(stages []*entity.ProcessingStage) {
	slices.SortStableFunc(stages, func(a, b *entity.ProcessingStage) int {
		return a.StartedAt.Compare(b.StartedAt)
	})
}
