package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/trazabilidad-api/internal/application/catalog"
	"github.com/jhoicas/trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/trazabilidad-api/internal/application/inventory"
	"github.com/jhoicas/trazabilidad-api/internal/application/lot"
	"github.com/jhoicas/trazabilidad-api/internal/application/ports"
	"github.com/jhoicas/trazabilidad-api/internal/application/processing"
	"github.com/jhoicas/trazabilidad-api/internal/domain"
	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/trazabilidad-api/internal/infrastructure/report"
)

// certificateRenderer genera el PDF de trazabilidad (implementado por report.CertificateGenerator).
type certificateRenderer interface {
	Generate(ctx context.Context, d report.CertificateData) ([]byte, error)
}

// LotHandler maneja las peticiones HTTP de lotes (protegido).
type LotHandler struct {
	errorMapper
	lots     *lot.LotUseCase
	pipeline *processing.PipelineUseCase
	ledger   *inventory.LedgerUseCase
	catalog  *catalog.Catalog
	pdf      certificateRenderer
	clock    ports.Clock
}

// Intake godoc
// @Summary      Ingreso de material: crea un lote AVAILABLE y suma su peso neto al inventario
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.IntakeRequest  true  "proveedor, material, bodega, pesos y calidad"
// @Success      201   {object}  dto.LotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lots [post]
func (h *LotHandler) Intake(c *fiber.Ctx) error {
	var in dto.IntakeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.lots.Intake(c.UserContext(), lot.IntakeInput{
		SupplierID:     in.SupplierID,
		MaterialTypeID: in.MaterialTypeID,
		WarehouseID:    in.WarehouseID,
		GrossWeight:    in.GrossWeight,
		Tare:           in.Tare,
		Quality:        entity.Quality(in.Quality),
		Origin:         in.Origin,
		Notes:          in.Notes,
		UserID:         GetUserID(c),
	})
	if err != nil {
		return h.respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromLot(res.Lot))
}

// GetByID godoc
// @Summary      Obtener lote por ID
// @Tags         lots
// @Router       /api/lots/{id} [get]
func (h *LotHandler) GetByID(c *fiber.Ctx) error {
	l, err := h.lots.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(dto.FromLot(l))
}

// GetByCode godoc
// @Summary      Obtener lote por código
// @Tags         lots
// @Router       /api/lots/code/{code} [get]
func (h *LotHandler) GetByCode(c *fiber.Ctx) error {
	l, err := h.lots.GetByCode(c.UserContext(), c.Params("code"))
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(dto.FromLot(l))
}

// Available lotes AVAILABLE de un material en una bodega, más antiguos primero.
func (h *LotHandler) Available(c *fiber.Ctx) error {
	warehouseID, materialTypeID := c.Query("warehouse_id"), c.Query("material_type_id")
	if warehouseID == "" || materialTypeID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "warehouse_id y material_type_id son requeridos"})
	}
	page, err := pageRequest(c)
	if err != nil {
		return h.respond(c, err)
	}
	lots, err := h.lots.AvailableFIFO(c.UserContext(), warehouseID, materialTypeID)
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(dto.Paginate(dto.FromLots(lots), page))
}

func (h *LotHandler) Children(c *fiber.Ctx) error {
	page, err := pageRequest(c)
	if err != nil {
		return h.respond(c, err)
	}
	lots, err := h.lots.Children(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(dto.Paginate(dto.FromLots(lots), page))
}

// Lineage ancestros del lote, raíz primero y terminando en el propio lote.
func (h *LotHandler) Lineage(c *fiber.Ctx) error {
	lots, err := h.lots.Lineage(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(dto.FromLots(lots))
}

// BeginProcessing godoc
// @Summary      Pasar un lote AVAILABLE a IN_PROCESS
// @Tags         lots
// @Router       /api/lots/{id}/processing [post]
func (h *LotHandler) BeginProcessing(c *fiber.Ctx) error {
	l, err := h.lots.BeginProcessing(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(dto.FromLot(l))
}

// Split godoc
// @Summary      Dividir un lote IN_PROCESS en hijos; el padre queda PROCESSED
// @Tags         lots
// @Accept       json
// @Param        body  body  dto.SplitRequest  true  "hijos con peso, material, bodega y calidad"
// @Success      201   {object}  dto.SplitResponse
// @Router       /api/lots/{id}/split [post]
func (h *LotHandler) Split(c *fiber.Ctx) error {
	var in dto.SplitRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	children := make([]lot.ChildSpec, 0, len(in.Children))
	for _, ch := range in.Children {
		children = append(children, lot.ChildSpec{
			OutputWeight:   ch.OutputWeight,
			MaterialTypeID: ch.MaterialTypeID,
			WarehouseID:    ch.WarehouseID,
			Quality:        entity.Quality(ch.Quality),
			Notes:          ch.Notes,
		})
	}
	res, err := h.lots.Split(c.UserContext(), lot.SplitInput{ParentID: c.Params("id"), Children: children, UserID: GetUserID(c)})
	if err != nil {
		return h.respond(c, err)
	}
	out := dto.SplitResponse{Parent: dto.FromLot(res.Parent), Children: dto.FromLots(res.Children)}
	if res.Remainder != nil {
		r := dto.FromLot(res.Remainder)
		out.Remainder = &r
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Sale godoc
// @Summary      Marcar un lote como vendido
// @Tags         lots
// @Param        body  body  dto.SaleRequest  false  "referencia de la venta"
// @Router       /api/lots/{id}/sale [post]
func (h *LotHandler) Sale(c *fiber.Ctx) error {
	var in dto.SaleRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	res, err := h.lots.MarkSold(c.UserContext(), lot.SaleInput{LotID: c.Params("id"), UserID: GetUserID(c), Reference: in.Reference})
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(dto.FromLot(res.Lot))
}

// Movements movimientos de inventario causados por el lote.
func (h *LotHandler) Movements(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if _, err := h.lots.Get(ctx, c.Params("id")); err != nil {
		return h.respond(c, err)
	}
	movements, err := h.ledger.MovementsByLot(ctx, c.Params("id"))
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(dto.FromMovements(movements))
}

// Certificate godoc
// @Summary      Certificado PDF de trazabilidad del lote
// @Tags         lots
// @Produce      application/pdf
// @Router       /api/lots/{id}/certificate.pdf [get]
func (h *LotHandler) Certificate(c *fiber.Ctx) error {
	data, err := h.certificateData(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.respond(c, err)
	}
	pdf, err := h.pdf.Generate(c.UserContext(), data)
	if err != nil {
		return h.respond(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+data.Lot.Code+`.pdf"`)
	return c.Send(pdf)
}

func (h *LotHandler) certificateData(ctx context.Context, id string) (report.CertificateData, error) {
	var d report.CertificateData
	l, err := h.lots.Get(ctx, id)
	if err != nil {
		return d, err
	}
	d.Lot = l
	d.GeneratedAt = h.clock.Now()
	if d.Lineage, err = h.lots.Lineage(ctx, id); err != nil {
		return d, err
	}
	if d.Children, err = h.lots.Children(ctx, id); err != nil {
		return d, err
	}
	if d.Stages, err = h.pipeline.Stages(ctx, id); err != nil {
		return d, err
	}
	if d.Movements, err = h.ledger.MovementsByLot(ctx, id); err != nil {
		return d, err
	}
	shrink, err := h.pipeline.Shrink(ctx, id)
	if err != nil {
		return d, err
	}
	d.TotalShrink, d.LineageShrink = shrink.Total, shrink.Lineage

	if mt, err := h.catalog.MaterialType(ctx, l.MaterialTypeID); err == nil {
		d.MaterialName = mt.Name
	} else if !errors.Is(err, domain.ErrNotFound) {
		return d, err
	}
	if wh, err := h.catalog.Warehouse(ctx, l.WarehouseID); err == nil {
		d.WarehouseName = wh.Name
	} else if !errors.Is(err, domain.ErrNotFound) {
		return d, err
	}
	if l.SupplierID != "" {
		if s, err := h.catalog.Supplier(ctx, l.SupplierID); err == nil {
			d.SupplierName = s.FullName()
		} else if !errors.Is(err, domain.ErrNotFound) {
			return d, err
		}
	}
	return d, nil
}
