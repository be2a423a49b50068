package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jhoicas/trazabilidad-api/internal/application/catalog"
	"github.com/jhoicas/trazabilidad-api/internal/application/inventory"
	"github.com/jhoicas/trazabilidad-api/internal/application/lot"
	"github.com/jhoicas/trazabilidad-api/internal/application/ports"
	"github.com/jhoicas/trazabilidad-api/internal/application/processing"
	"github.com/jhoicas/trazabilidad-api/internal/domain/repository"
	"github.com/jhoicas/trazabilidad-api/internal/domain/traceability"
	"github.com/jhoicas/trazabilidad-api/internal/infrastructure/alerts"
	"github.com/jhoicas/trazabilidad-api/internal/infrastructure/codegen"
	"github.com/jhoicas/trazabilidad-api/internal/infrastructure/events"
	"github.com/jhoicas/trazabilidad-api/internal/infrastructure/memory"
	"github.com/jhoicas/trazabilidad-api/internal/infrastructure/metrics"
	"github.com/jhoicas/trazabilidad-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/trazabilidad-api/internal/infrastructure/redis"
	"github.com/jhoicas/trazabilidad-api/internal/infrastructure/report"
	httpRouter "github.com/jhoicas/trazabilidad-api/internal/interfaces/http"
	"github.com/jhoicas/trazabilidad-api/pkg/config"
	"github.com/jhoicas/trazabilidad-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		App:   cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("storage", cfg.App.StorageDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	// Almacenamiento: PostgreSQL en producción; memoria para desarrollo y demos.
	var (
		txRunner ports.TxRunner
		repos    repository.Repositories
	)
	switch cfg.App.StorageDriver {
	case config.StorageMemory:
		store := memory.NewStore()
		txRunner, repos = store, store.Repositories()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		if cfg.DB.MigrateOnStart {
			migrator, err := postgres.NewMigrator(ctx, cfg.DB.ConnectionString(), log.Zerolog())
			if err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
			if err := migrator.Up(); err != nil {
				log.Fatal().Err(err).Msg("aplicar migraciones")
			}
			_ = migrator.Close()
		}
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		txRunner, repos = postgres.NewTxRunner(pool), postgres.NewRepositories(pool)
	}

	// Códigos de lote: secuencia en Redis si está configurado (varias instancias), si no en memoria.
	var codes ports.LotCodeGenerator = codegen.NewSequential(cfg.Lots.CodePrefix)
	if cfg.Redis.Addr != "" {
		client, err := infraredis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer client.Close()
		codes = infraredis.NewLotCodeGenerator(client, cfg.Lots.CodePrefix)
	}

	// Observadores de eventos: log, métricas y cola de alertas/auditoría.
	publishers := events.Multi{events.NewLogPublisher(log.Component("events"))}
	var gatherer prometheus.Gatherer
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		publishers = append(publishers, metrics.NewCollector(reg))
		gatherer = reg
	}
	if cfg.Alerts.Enabled {
		client := alerts.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer client.Close()
		publishers = append(publishers, alerts.NewPublisher(client, cfg.Alerts.Queue))
	}

	clock := ports.SystemClock{}
	precision := traceability.Precision(cfg.Lots.WeightScale)

	catalogUC := catalog.New(repos)
	ledgerUC := inventory.NewLedgerUseCase(txRunner, repos, clock, publishers, precision, log.Zerolog())
	lotUC := lot.NewLotUseCase(txRunner, repos, clock, codes, publishers, precision, log.Zerolog())
	pipelineUC := processing.NewPipelineUseCase(txRunner, repos, clock, publishers, precision, log.Zerolog())

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Trazabilidad API",
		}))
	} else {
		log.Warn().Str("file", swaggerFile).Msg("swagger no disponible")
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		Catalog:     catalogUC,
		Ledger:      ledgerUC,
		Lots:        lotUC,
		Pipeline:    pipelineUC,
		Certificate: report.NewCertificateGenerator(cfg.App.Name),
		Clock:       clock,
		Gatherer:    gatherer,
		ServiceName: cfg.App.Name,
		JWTSecret:   cfg.JWT.Secret,
		Log:         log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
