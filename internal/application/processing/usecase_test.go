package processing_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/jhoicas/trazabilidad-api/internal/application/lot"
	"github.com/jhoicas/trazabilidad-api/internal/application/ports"
	"github.com/jhoicas/trazabilidad-api/internal/application/ports/mocks"
	"github.com/jhoicas/trazabilidad-api/internal/application/processing"
	"github.com/jhoicas/trazabilidad-api/internal/domain"
	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/trazabilidad-api/internal/domain/traceability"
	"github.com/jhoicas/trazabilidad-api/internal/infrastructure/codegen"
	"github.com/jhoicas/trazabilidad-api/internal/infrastructure/memory"
)

var t0 = time.Date(2026, 5, 4, 7, 0, 0, 0, time.UTC)

func kg(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func at(d time.Duration) *time.Time {
	v := t0.Add(d)
	return &v
}

type fixture struct {
	store    *memory.Store
	clock    *ports.FixedClock
	lots     *lot.LotUseCase
	pipeline *processing.PipelineUseCase
}

func newFixture(t *testing.T, events ports.EventPublisher) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.PutWarehouse(entity.Warehouse{ID: "W", Name: "Central", MaxCapacity: kg("1000"), State: entity.WarehouseActive})
	store.PutMaterialType(entity.MaterialType{ID: "PET", Name: "PET", Active: true, ShrinkThreshold: kg("8")})
	store.PutSupplier(entity.Supplier{ID: "S", FirstName: "Recicladora", LastName: "Andina", Active: true})
	if events == nil {
		events = ports.NopPublisher{}
	}
	clock := &ports.FixedClock{T: t0}
	repos := store.Repositories()
	return &fixture{
		store: store,
		clock: clock,
		lots: lot.NewLotUseCase(store, repos, clock, codegen.NewSequential("LOT"), ports.NopPublisher{},
			traceability.DefaultPrecision, zerolog.Nop()),
		pipeline: processing.NewPipelineUseCase(store, repos, clock, events, traceability.DefaultPrecision, zerolog.Nop()),
	}
}

// inProcessLot ingresa un lote de 100 kg netos y lo deja IN_PROCESS.
func (f *fixture) inProcessLot(t *testing.T) *entity.Lot {
	t.Helper()
	ctx := context.Background()
	res, err := f.lots.Intake(ctx, lot.IntakeInput{
		SupplierID: "S", MaterialTypeID: "PET", WarehouseID: "W",
		GrossWeight: kg("105"), Tare: kg("5"), Quality: entity.QualityMedium, UserID: "op1",
	})
	require.NoError(t, err)
	l, err := f.lots.BeginProcessing(ctx, res.Lot.ID, "op1")
	require.NoError(t, err)
	return l
}

func (f *fixture) runStage(t *testing.T, lotID string, typ entity.StageType, input, output string, start time.Duration) *processing.StageResult {
	t.Helper()
	ctx := context.Background()
	stage, err := f.pipeline.OpenStage(ctx, processing.OpenStageInput{
		LotID: lotID, Type: typ, InputWeight: kg(input), UserID: "op1", StartedAt: at(start),
	})
	require.NoError(t, err)
	res, err := f.pipeline.CloseStage(ctx, processing.CloseStageInput{
		StageID: stage.ID, OutputWeight: kg(output), EndedAt: at(start + time.Hour),
	})
	require.NoError(t, err)
	return res
}

func TestPipeline_LavadoYSecadoMermaCompuesta(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	l := f.inProcessLot(t)

	washing := f.runStage(t, l.ID, entity.StageWashing, "100", "90", 0)
	assert.True(t, kg("10").Equal(washing.Stage.PartialShrink))
	assert.True(t, kg("10").Equal(washing.Stage.CumulativeShrink), "primera etapa: acumulada = parcial")
	assert.True(t, washing.ShrinkExceeded, "10%% supera el umbral de 8%%")
	assert.True(t, kg("90").Equal(washing.LotRemaining))

	drying := f.runStage(t, l.ID, entity.StageDrying, "90", "85", 2*time.Hour)
	assert.True(t, kg("5.56").Equal(drying.Stage.PartialShrink), drying.Stage.PartialShrink.String())
	assert.True(t, kg("15").Equal(drying.Stage.CumulativeShrink), drying.Stage.CumulativeShrink.String())
	assert.False(t, drying.ShrinkExceeded)
	assert.True(t, kg("85").Equal(drying.LotRemaining))

	stages, err := f.pipeline.Stages(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, stages, 2)
	assert.Equal(t, entity.StageWashing, stages[0].Type)
	assert.Equal(t, entity.StageDrying, stages[1].Type)

	total, err := f.pipeline.TotalShrink(ctx, l.ID)
	require.NoError(t, err)
	assert.True(t, kg("15").Equal(total))

	got, err := f.lots.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.True(t, kg("100").Equal(got.NetWeight), "el peso neto nunca cambia")
	assert.True(t, kg("85").Equal(got.RemainingWeight))
	assert.Equal(t, entity.LotInProcess, got.State)

	rec, err := f.store.Repositories().Records.Get(ctx, "W", "PET")
	require.NoError(t, err)
	assert.True(t, kg("100").Equal(rec.Quantity), "la merma no es un movimiento de inventario")
}

func TestPipeline_MermaMonotona(t *testing.T) {
	f := newFixture(t, nil)
	l := f.inProcessLot(t)

	prev := decimal.Zero
	input := kg("100")
	for i, out := range []string{"97", "97", "80", "79.5", "60"} {
		res := f.runStage(t, l.ID, entity.StageClassification, input.String(), out, time.Duration(i)*2*time.Hour)
		assert.True(t, res.Stage.CumulativeShrink.GreaterThanOrEqual(prev), "etapa %d", i)
		prev = res.Stage.CumulativeShrink
		input = kg(out)
	}
	assert.True(t, kg("40").Equal(prev), prev.String())
}

func TestPipeline_TotalSinEtapas(t *testing.T) {
	f := newFixture(t, nil)
	l := f.inProcessLot(t)

	total, err := f.pipeline.TotalShrink(context.Background(), l.ID)
	require.NoError(t, err)
	assert.True(t, total.IsZero())

	_, err = f.pipeline.TotalShrink(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOpenStage_Errores(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	l := f.inProcessLot(t)

	available, err := f.lots.Intake(ctx, lot.IntakeInput{
		SupplierID: "S", MaterialTypeID: "PET", WarehouseID: "W",
		GrossWeight: kg("20"), Tare: kg("1"), Quality: entity.QualityLow,
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		in   processing.OpenStageInput
		want error
	}{
		{"lote inexistente", processing.OpenStageInput{LotID: "nope", Type: entity.StageWashing, InputWeight: kg("1")}, domain.ErrNotFound},
		{"lote disponible", processing.OpenStageInput{LotID: available.Lot.ID, Type: entity.StageWashing, InputWeight: kg("1")}, domain.ErrInvalidState},
		{"entrada cero", processing.OpenStageInput{LotID: l.ID, Type: entity.StageWashing, InputWeight: kg("0")}, domain.ErrInvalidWeight},
		{"entrada mayor al restante", processing.OpenStageInput{LotID: l.ID, Type: entity.StageWashing, InputWeight: kg("100.01")}, domain.ErrInvalidWeight},
		{"tipo desconocido", processing.OpenStageInput{LotID: l.ID, Type: "MELTING", InputWeight: kg("1")}, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.pipeline.OpenStage(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	stages, err := f.pipeline.Stages(ctx, l.ID)
	require.NoError(t, err)
	assert.Empty(t, stages)
}

func TestOpenStage_Superposicion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	l := f.inProcessLot(t)

	open, err := f.pipeline.OpenStage(ctx, processing.OpenStageInput{
		LotID: l.ID, Type: entity.StageWashing, InputWeight: kg("100"), StartedAt: at(0),
	})
	require.NoError(t, err)

	_, err = f.pipeline.OpenStage(ctx, processing.OpenStageInput{
		LotID: l.ID, Type: entity.StageDrying, InputWeight: kg("10"), StartedAt: at(time.Hour),
	})
	require.ErrorIs(t, err, domain.ErrOverlappingStage, "hay una etapa abierta")

	_, err = f.pipeline.CloseStage(ctx, processing.CloseStageInput{StageID: open.ID, OutputWeight: kg("90"), EndedAt: at(2 * time.Hour)})
	require.NoError(t, err)

	_, err = f.pipeline.OpenStage(ctx, processing.OpenStageInput{
		LotID: l.ID, Type: entity.StageDrying, InputWeight: kg("90"), StartedAt: at(90 * time.Minute),
	})
	require.ErrorIs(t, err, domain.ErrOverlappingStage, "inicia antes del fin de la anterior")

	_, err = f.pipeline.OpenStage(ctx, processing.OpenStageInput{
		LotID: l.ID, Type: entity.StageDrying, InputWeight: kg("90"), StartedAt: at(2 * time.Hour),
	})
	assert.NoError(t, err, "iniciar justo al cierre de la anterior es válido")
}

func TestOpenStage_ConcurrenciaUnaSolaAbierta(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	l := f.inProcessLot(t)

	const n = 8
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ok  int
		bad int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.pipeline.OpenStage(ctx, processing.OpenStageInput{
				LotID: l.ID, Type: entity.StageWashing, InputWeight: kg("50"),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrOverlappingStage):
				bad++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, bad)
}

func TestCloseStage_Errores(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	l := f.inProcessLot(t)

	stage, err := f.pipeline.OpenStage(ctx, processing.OpenStageInput{
		LotID: l.ID, Type: entity.StageShredding, InputWeight: kg("60"), StartedAt: at(time.Hour),
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		in   processing.CloseStageInput
		want error
	}{
		{"etapa inexistente", processing.CloseStageInput{StageID: "nope", OutputWeight: kg("1")}, domain.ErrNotFound},
		{"salida mayor a la entrada", processing.CloseStageInput{StageID: stage.ID, OutputWeight: kg("60.01")}, domain.ErrInvalidWeight},
		{"salida negativa", processing.CloseStageInput{StageID: stage.ID, OutputWeight: kg("-1")}, domain.ErrInvalidWeight},
		{"fin antes del inicio", processing.CloseStageInput{StageID: stage.ID, OutputWeight: kg("50"), EndedAt: at(0)}, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.pipeline.CloseStage(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	got, err := f.pipeline.Stage(ctx, stage.ID)
	require.NoError(t, err)
	assert.False(t, got.IsClosed(), "los cierres fallidos no alteran la etapa")

	f.clock.Advance(2 * time.Hour)
	res, err := f.pipeline.CloseStage(ctx, processing.CloseStageInput{StageID: stage.ID, OutputWeight: kg("60")})
	require.NoError(t, err)
	assert.True(t, res.Stage.PartialShrink.IsZero())
	assert.True(t, kg("100").Equal(res.LotRemaining))

	_, err = f.pipeline.CloseStage(ctx, processing.CloseStageInput{StageID: stage.ID, OutputWeight: kg("50")})
	assert.ErrorIs(t, err, domain.ErrAlreadyClosed)
}

func TestCloseStage_SalidaCeroEsMermaTotal(t *testing.T) {
	f := newFixture(t, nil)
	l := f.inProcessLot(t)

	res := f.runStage(t, l.ID, entity.StagePelletizing, "40", "0", 0)
	assert.True(t, kg("100").Equal(res.Stage.PartialShrink))
	assert.True(t, kg("100").Equal(res.Stage.CumulativeShrink))
	assert.True(t, kg("60").Equal(res.LotRemaining))
}

// exactCumulative 100 - 100 × Π(1 - p/100) sobre las parciales persistidas, redondeada una vez.
func exactCumulative(partials []decimal.Decimal) decimal.Decimal {
	one, hundred := decimal.NewFromInt(1), decimal.NewFromInt(100)
	retained := one
	for _, p := range partials {
		retained = retained.Mul(one.Sub(p.Div(hundred)))
	}
	return hundred.Sub(hundred.Mul(retained)).Round(traceability.PercentScale)
}

func TestPipeline_AcumuladaSinDerivaEnCadenaLarga(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	l := f.inProcessLot(t)

	var partials []decimal.Decimal
	input := "100"
	for i, out := range []string{"95.7", "83.53", "77.26", "73.1", "70.78", "69.01", "61.37"} {
		res := f.runStage(t, l.ID, entity.StageClassification, input, out, time.Duration(i)*2*time.Hour)
		partials = append(partials, res.Stage.PartialShrink)
		want := exactCumulative(partials)
		assert.True(t, want.Equal(res.Stage.CumulativeShrink), "etapa %d: acumulada %s, forma cerrada %s",
			i, res.Stage.CumulativeShrink, want)
		input = out
	}

	summary, err := f.pipeline.Shrink(ctx, l.ID)
	require.NoError(t, err)
	assert.True(t, exactCumulative(partials).Equal(summary.Total))
	assert.True(t, summary.Total.Equal(summary.Lineage))
	assert.Equal(t, len(partials), summary.ClosedStages)
}

func TestCloseStage_MaterialSinUmbralNoAlerta(t *testing.T) {
	f := newFixture(t, nil)
	f.store.PutMaterialType(entity.MaterialType{ID: "PET", Name: "PET", Active: true})
	l := f.inProcessLot(t)

	res := f.runStage(t, l.ID, entity.StageWashing, "100", "60", 0)
	assert.True(t, kg("40").Equal(res.Stage.PartialShrink))
	assert.False(t, res.ShrinkExceeded)
	assert.False(t, res.Stage.ShrinkExceeded)
}

func TestPipeline_MermaDelLinaje(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	parent := f.inProcessLot(t)
	f.runStage(t, parent.ID, entity.StageWashing, "100", "90", 0)

	split, err := f.lots.Split(ctx, lot.SplitInput{
		ParentID: parent.ID,
		Children: []lot.ChildSpec{{OutputWeight: kg("90"), MaterialTypeID: "PET", WarehouseID: "W", Quality: entity.QualityHigh}},
	})
	require.NoError(t, err)
	child := split.Children[0]

	_, err = f.lots.BeginProcessing(ctx, child.ID, "op1")
	require.NoError(t, err)
	f.runStage(t, child.ID, entity.StageShredding, "90", "81", 4*time.Hour)

	summary, err := f.pipeline.Shrink(ctx, child.ID)
	require.NoError(t, err)
	assert.True(t, kg("10").Equal(summary.Total))
	assert.True(t, kg("19").Equal(summary.Lineage), summary.Lineage.String())
	assert.Equal(t, 1, summary.ClosedStages)

	root, err := f.pipeline.Shrink(ctx, parent.ID)
	require.NoError(t, err)
	assert.True(t, kg("10").Equal(root.Lineage))
}

func TestPipeline_Estadisticas(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	l := f.inProcessLot(t)
	f.runStage(t, l.ID, entity.StageWashing, "100", "90", 0)
	f.runStage(t, l.ID, entity.StageWashing, "90", "87.3", 2*time.Hour)
	f.runStage(t, l.ID, entity.StageDrying, "87.3", "87.3", 4*time.Hour)

	avg, err := f.pipeline.AverageShrinkByType(ctx)
	require.NoError(t, err)
	assert.True(t, kg("6.5").Equal(avg[entity.StageWashing]), avg[entity.StageWashing].String())
	assert.True(t, avg[entity.StageDrying].IsZero())

	above, err := f.pipeline.StagesAboveThreshold(ctx, kg("8"))
	require.NoError(t, err)
	require.Len(t, above, 1)
	assert.True(t, kg("10").Equal(above[0].PartialShrink))
}

func TestCloseStage_PublicaEventos(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := mocks.NewMockEventPublisher(ctrl)
	f := newFixture(t, pub)
	l := f.inProcessLot(t)

	var got []entity.EventType
	pub.EXPECT().Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e entity.Event) error {
			got = append(got, e.Type)
			return nil
		}).Times(3)

	res := f.runStage(t, l.ID, entity.StageWashing, "100", "90", 0)
	require.True(t, res.ShrinkExceeded)
	assert.Equal(t, []entity.EventType{
		entity.EventStageOpened,
		entity.EventStageClosed,
		entity.EventShrinkExceeded,
	}, got)
}

func TestCloseStage_FalloDelPublicadorNoRevierte(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := mocks.NewMockEventPublisher(ctrl)
	pub.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker caído")).AnyTimes()
	f := newFixture(t, pub)
	l := f.inProcessLot(t)

	res := f.runStage(t, l.ID, entity.StageDrying, "100", "99", 0)
	got, err := f.pipeline.Stage(context.Background(), res.Stage.ID)
	require.NoError(t, err)
	assert.True(t, got.IsClosed())
}
