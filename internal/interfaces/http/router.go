package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/jhoicas/trazabilidad-api/internal/application/catalog"
	"github.com/jhoicas/trazabilidad-api/internal/application/inventory"
	"github.com/jhoicas/trazabilidad-api/internal/application/lot"
	"github.com/jhoicas/trazabilidad-api/internal/application/ports"
	"github.com/jhoicas/trazabilidad-api/internal/application/processing"
	"github.com/jhoicas/trazabilidad-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Catalog     *catalog.Catalog
	Ledger      *inventory.LedgerUseCase
	Lots        *lot.LotUseCase
	Pipeline    *processing.PipelineUseCase
	Certificate certificateRenderer
	Clock       ports.Clock
	// Gatherer expone /metrics; nil deja la ruta sin registrar.
	Gatherer    prometheus.Gatherer
	ServiceName string
	JWTSecret   string
	Log         zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	errs := errorMapper{log: deps.Log}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})
	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	// Rutas protegidas (requieren Bearer Token)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(jwt.RoleAdmin)
	writers := RequireRole(jwt.RoleAdmin, jwt.RoleOperator)

	lotHandler := &LotHandler{
		errorMapper: errs, lots: deps.Lots, pipeline: deps.Pipeline, ledger: deps.Ledger,
		catalog: deps.Catalog, pdf: deps.Certificate, clock: deps.Clock,
	}
	stageHandler := &StageHandler{errorMapper: errs, pipeline: deps.Pipeline}
	inventoryHandler := &InventoryHandler{errorMapper: errs, ledger: deps.Ledger, catalog: deps.Catalog}
	warehouseHandler := &WarehouseHandler{errorMapper: errs, catalog: deps.Catalog, ledger: deps.Ledger}

	// Lots
	lots := api.Group("/lots")
	lots.Post("/", writers, lotHandler.Intake)
	lots.Get("/available", lotHandler.Available)
	lots.Get("/code/:code", lotHandler.GetByCode)
	lots.Get("/:id", lotHandler.GetByID)
	lots.Get("/:id/children", lotHandler.Children)
	lots.Get("/:id/lineage", lotHandler.Lineage)
	lots.Post("/:id/processing", writers, lotHandler.BeginProcessing)
	lots.Post("/:id/split", writers, lotHandler.Split)
	lots.Post("/:id/sale", writers, lotHandler.Sale)
	lots.Get("/:id/movements", lotHandler.Movements)
	lots.Get("/:id/certificate.pdf", lotHandler.Certificate)

	// Stages
	lots.Get("/:id/stages", stageHandler.ByLot)
	lots.Post("/:id/stages", writers, stageHandler.Open)
	lots.Get("/:id/shrink", stageHandler.Shrink)
	stages := api.Group("/stages")
	stages.Get("/average-shrink", stageHandler.AverageByType)
	stages.Get("/above-threshold", stageHandler.AboveThreshold)
	stages.Get("/:id", stageHandler.GetByID)
	stages.Post("/:id/close", writers, stageHandler.Close)

	// Inventory
	inv := api.Group("/inventory")
	inv.Post("/increase", writers, inventoryHandler.Increase)
	inv.Post("/decrease", writers, inventoryHandler.Decrease)
	inv.Post("/adjust", adminOnly, inventoryHandler.Adjust)
	inv.Put("/thresholds", adminOnly, inventoryHandler.Thresholds)
	inv.Get("/records/:id/movements", inventoryHandler.RecordMovements)
	inv.Get("/below-minimum", inventoryHandler.BelowMinimum)
	inv.Get("/above-maximum", inventoryHandler.AboveMaximum)
	inv.Get("/replenishment", inventoryHandler.Replenishment)

	// Warehouses & catalog
	warehouses := api.Group("/warehouses")
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/with-capacity", warehouseHandler.WithCapacity)
	warehouses.Get("/:id/capacity", warehouseHandler.Capacity)
	warehouses.Get("/:id/records", warehouseHandler.Records)
	materials := api.Group("/material-types")
	materials.Get("/", warehouseHandler.MaterialTypes)
	materials.Get("/:id/stock", warehouseHandler.GlobalStock)
}
