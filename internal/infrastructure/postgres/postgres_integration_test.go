//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/jhoicas/trazabilidad-api/internal/application/inventory"
	"github.com/jhoicas/trazabilidad-api/internal/application/lot"
	"github.com/jhoicas/trazabilidad-api/internal/application/ports"
	"github.com/jhoicas/trazabilidad-api/internal/application/processing"
	"github.com/jhoicas/trazabilidad-api/internal/domain"
	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/trazabilidad-api/internal/domain/repository"
	"github.com/jhoicas/trazabilidad-api/internal/domain/traceability"
	"github.com/jhoicas/trazabilidad-api/internal/infrastructure/codegen"
	"github.com/jhoicas/trazabilidad-api/internal/infrastructure/postgres"
	"github.com/jhoicas/trazabilidad-api/pkg/config"
)

func kg(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type PostgresSuite struct {
	suite.Suite
	pool     *pgxpool.Pool
	repos    repository.Repositories
	ledger   *inventory.LedgerUseCase
	lots     *lot.LotUseCase
	pipeline *processing.PipelineUseCase
}

func TestPostgresSuite(t *testing.T) {
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupSuite() {
	t := s.T()
	dpool, err := dockertest.NewPool("")
	require.NoError(t, err, "docker no disponible")

	resource, err := dpool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=test",
			"POSTGRES_PASSWORD=test",
			"POSTGRES_DB=trazabilidad",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = dpool.Purge(resource) })

	cfg := config.DBConfig{
		Host: "localhost", Port: mustPort(resource.GetPort("5432/tcp")),
		User: "test", Password: "test", DBName: "trazabilidad", SSLMode: "disable", MaxConns: 10,
	}
	ctx := context.Background()
	require.NoError(t, dpool.Retry(func() error {
		p, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		s.pool = p
		return nil
	}))
	t.Cleanup(s.pool.Close)

	m, err := postgres.NewMigrator(ctx, cfg.DSN(), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	require.NoError(t, m.Close())

	tx := postgres.NewTxRunner(s.pool)
	s.repos = postgres.NewRepositories(s.pool)
	clock := ports.SystemClock{}
	p := traceability.DefaultPrecision
	s.ledger = inventory.NewLedgerUseCase(tx, s.repos, clock, ports.NopPublisher{}, p, zerolog.Nop())
	s.lots = lot.NewLotUseCase(tx, s.repos, clock, codegen.NewSequential("IT"), ports.NopPublisher{}, p, zerolog.Nop())
	s.pipeline = processing.NewPipelineUseCase(tx, s.repos, clock, ports.NopPublisher{}, p, zerolog.Nop())
}

func mustPort(p string) int {
	var n int
	_, _ = fmt.Sscanf(p, "%d", &n)
	return n
}

func (s *PostgresSuite) SetupTest() {
	ctx := context.Background()
	_, err := s.pool.Exec(ctx, `TRUNCATE inventory_movements, inventory_records, processing_stages, lots,
		suppliers, material_types, warehouses`)
	s.Require().NoError(err)
	_, err = s.pool.Exec(ctx, `
		INSERT INTO warehouses (id, name, max_capacity, state) VALUES
			('W', 'Central', 1000, 'ACTIVE'),
			('WM', 'Taller', 1000, 'MAINTENANCE');
		INSERT INTO material_types (id, name, category, shrink_threshold, active) VALUES
			('PET', 'PET', 'PLASTIC', 8, true),
			('HDPE', 'HDPE', 'PLASTIC', 5, true);
		INSERT INTO suppliers (id, first_name) VALUES ('S', 'Recicladora');`)
	s.Require().NoError(err)
}

func (s *PostgresSuite) stock(wh, mt string) decimal.Decimal {
	rec, err := s.repos.Records.Get(context.Background(), wh, mt)
	s.Require().NoError(err)
	if rec == nil {
		return decimal.Zero
	}
	return rec.Quantity
}

func (s *PostgresSuite) TestEnumsYCatalogo() {
	ctx := context.Background()
	w, err := s.repos.Warehouses.GetByID(ctx, "WM")
	s.Require().NoError(err)
	s.Equal(entity.WarehouseMaintenance, w.State)

	missing, err := s.repos.Warehouses.GetByID(ctx, "nope")
	s.NoError(err)
	s.Nil(missing)

	mats, err := s.repos.MaterialTypes.List(ctx, true)
	s.Require().NoError(err)
	s.Len(mats, 2)
	s.Equal(entity.UnitKilogram, mats[0].Unit)
}

func (s *PostgresSuite) TestIntakeSplitConservacion() {
	ctx := context.Background()
	res, err := s.lots.Intake(ctx, lot.IntakeInput{
		SupplierID: "S", MaterialTypeID: "PET", WarehouseID: "W",
		GrossWeight: kg("95"), Tare: kg("5"), Quality: entity.QualityHigh, UserID: "op1",
	})
	s.Require().NoError(err)
	s.True(kg("90").Equal(s.stock("W", "PET")))

	_, err = s.lots.BeginProcessing(ctx, res.Lot.ID, "op1")
	s.Require().NoError(err)

	split, err := s.lots.Split(ctx, lot.SplitInput{
		ParentID: res.Lot.ID,
		Children: []lot.ChildSpec{
			{OutputWeight: kg("30"), MaterialTypeID: "PET", WarehouseID: "W", Quality: entity.QualityHigh},
			{OutputWeight: kg("50"), MaterialTypeID: "HDPE", WarehouseID: "W", Quality: entity.QualityMedium},
		},
	})
	s.Require().NoError(err)
	s.Require().NotNil(split.Remainder)
	s.True(kg("10").Equal(split.Remainder.NetWeight))

	children, err := s.lots.Children(ctx, res.Lot.ID)
	s.Require().NoError(err)
	sum := decimal.Zero
	for _, c := range children {
		sum = sum.Add(c.NetWeight)
	}
	s.True(kg("90").Equal(sum))
	s.True(kg("40").Equal(s.stock("W", "PET")))
	s.True(kg("50").Equal(s.stock("W", "HDPE")))

	parent, err := s.lots.Get(ctx, res.Lot.ID)
	s.Require().NoError(err)
	s.Equal(entity.LotProcessed, parent.State)
	s.Equal(2, parent.Version)
}

func (s *PostgresSuite) TestRollbackEnCapacidad() {
	ctx := context.Background()
	_, err := s.lots.Intake(ctx, lot.IntakeInput{
		SupplierID: "S", MaterialTypeID: "PET", WarehouseID: "W",
		GrossWeight: kg("1200"), Tare: kg("10"), Quality: entity.QualityLow,
	})
	s.ErrorIs(err, domain.ErrCapacityExceeded)

	var lots int
	s.Require().NoError(s.pool.QueryRow(ctx, `SELECT count(*) FROM lots`).Scan(&lots))
	s.Zero(lots, "el lote no puede existir sin su movimiento")
}

func (s *PostgresSuite) TestIncrementosConcurrentesRespetanCapacidad() {
	ctx := context.Background()
	const n = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok, bad int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		mt := "PET"
		if i%2 == 1 {
			mt = "HDPE"
		}
		go func() {
			defer wg.Done()
			_, err := s.ledger.IncreaseStock(ctx, inventory.StockInput{WarehouseID: "W", MaterialTypeID: mt, Quantity: kg("60")})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrCapacityExceeded):
				bad++
			default:
				s.T().Errorf("error inesperado: %v", err)
			}
		}()
	}
	wg.Wait()
	s.Equal(16, ok)
	s.Equal(4, bad)
	s.True(kg("960").Equal(s.stock("W", "PET").Add(s.stock("W", "HDPE"))))

	rec, err := s.repos.Records.Get(ctx, "W", "PET")
	s.Require().NoError(err)
	movs, err := s.repos.Movements.ListByRecord(ctx, rec.ID, repository.MovementFilter{})
	s.Require().NoError(err)
	total := decimal.Zero
	for _, m := range movs {
		total = total.Add(m.Delta())
	}
	s.True(rec.Quantity.Equal(total), "el kardex reconstruye el stock")
}

func (s *PostgresSuite) TestEtapasYMovimientosFiltrados() {
	ctx := context.Background()
	res, err := s.lots.Intake(ctx, lot.IntakeInput{
		SupplierID: "S", MaterialTypeID: "PET", WarehouseID: "W",
		GrossWeight: kg("105"), Tare: kg("5"), Quality: entity.QualityHigh,
	})
	s.Require().NoError(err)
	_, err = s.lots.BeginProcessing(ctx, res.Lot.ID, "op1")
	s.Require().NoError(err)

	start := time.Now().UTC().Add(-3 * time.Hour).Truncate(time.Second)
	st, err := s.pipeline.OpenStage(ctx, processing.OpenStageInput{
		LotID: res.Lot.ID, Type: entity.StageWashing, InputWeight: kg("100"), StartedAt: &start,
	})
	s.Require().NoError(err)
	end := start.Add(time.Hour)
	closed, err := s.pipeline.CloseStage(ctx, processing.CloseStageInput{StageID: st.ID, OutputWeight: kg("90"), EndedAt: &end})
	s.Require().NoError(err)
	s.True(closed.ShrinkExceeded)

	_, err = s.pipeline.CloseStage(ctx, processing.CloseStageInput{StageID: st.ID, OutputWeight: kg("90")})
	s.ErrorIs(err, domain.ErrAlreadyClosed)

	start2 := end
	st2, err := s.pipeline.OpenStage(ctx, processing.OpenStageInput{
		LotID: res.Lot.ID, Type: entity.StageDrying, InputWeight: kg("90"), StartedAt: &start2,
	})
	s.Require().NoError(err)
	end2 := start2.Add(time.Hour)
	closed, err = s.pipeline.CloseStage(ctx, processing.CloseStageInput{StageID: st2.ID, OutputWeight: kg("85"), EndedAt: &end2})
	s.Require().NoError(err)
	s.True(kg("15").Equal(closed.Stage.CumulativeShrink), closed.Stage.CumulativeShrink.String())

	avg, err := s.pipeline.AverageShrinkByType(ctx)
	s.Require().NoError(err)
	s.True(kg("10").Equal(avg[entity.StageWashing]))

	_, err = s.ledger.DecreaseStock(ctx, inventory.StockInput{WarehouseID: "W", MaterialTypeID: "PET", Quantity: kg("15")})
	s.Require().NoError(err)
	rec, err := s.repos.Records.Get(ctx, "W", "PET")
	s.Require().NoError(err)
	out := entity.MovementTypeOUT
	movs, err := s.repos.Movements.ListByRecord(ctx, rec.ID, repository.MovementFilter{Type: &out})
	s.Require().NoError(err)
	require.Len(s.T(), movs, 1)
	assert.True(s.T(), kg("85").Equal(movs[0].QuantityAfter))
}

func (s *PostgresSuite) TestCodigoDuplicado() {
	ctx := context.Background()
	now := time.Now().UTC()
	l := &entity.Lot{
		ID: "l1", Code: "DUP-1", GrossWeight: kg("10"), Tare: kg("0"), NetWeight: kg("10"), RemainingWeight: kg("10"),
		Quality: entity.QualityLow, State: entity.LotAvailable, MaterialTypeID: "PET", WarehouseID: "W",
		CreatedAt: now, UpdatedAt: now,
	}
	s.Require().NoError(s.repos.Lots.Create(ctx, l))
	l2 := *l
	l2.ID = "l2"
	s.ErrorIs(s.repos.Lots.Create(ctx, &l2), domain.ErrDuplicateCode)

	ok, err := s.repos.Lots.CompareAndSetState(ctx, "l1", entity.LotInProcess, entity.LotProcessed, now)
	s.Require().NoError(err)
	s.False(ok)
}
