package http

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/trazabilidad-api/internal/application/catalog"
	"github.com/jhoicas/trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/trazabilidad-api/internal/application/inventory"
	"github.com/jhoicas/trazabilidad-api/internal/domain"
	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/trazabilidad-api/internal/domain/repository"
	"github.com/jhoicas/trazabilidad-api/internal/infrastructure/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// InventoryHandler maneja las peticiones HTTP del libro de inventario (protegido).
type InventoryHandler struct {
	errorMapper
	ledger  *inventory.LedgerUseCase
	catalog *catalog.Catalog
}

// Increase godoc
// @Summary      Entrada de stock (pasa por el control de capacidad)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockRequest  true  "bodega, material, cantidad"
// @Success      201   {object}  dto.StockChangeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/increase [post]
func (h *InventoryHandler) Increase(c *fiber.Ctx) error {
	return h.stock(c, h.ledger.IncreaseStock)
}

// Decrease godoc
// @Summary      Salida de stock
// @Tags         inventory
// @Router       /api/inventory/decrease [post]
func (h *InventoryHandler) Decrease(c *fiber.Ctx) error {
	return h.stock(c, h.ledger.DecreaseStock)
}

func (h *InventoryHandler) stock(c *fiber.Ctx, op func(ctx context.Context, in inventory.StockInput) (inventory.StockChange, error)) error {
	var in dto.StockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	change, err := op(c.UserContext(), inventory.StockInput{
		WarehouseID:    in.WarehouseID,
		MaterialTypeID: in.MaterialTypeID,
		Quantity:       in.Quantity,
		LotID:          in.LotID,
		UserID:         GetUserID(c),
		Reason:         in.Reason,
		Reference:      in.Reference,
	})
	if err != nil {
		return h.respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(stockChange(change))
}

// Adjust godoc
// @Summary      Ajuste administrativo: fija el stock del par (solo admin)
// @Tags         inventory
// @Param        body  body  dto.AdjustRequest  true  "bodega, material, nueva cantidad, motivo"
// @Success      201   {object}  dto.StockChangeResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjust [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	change, err := h.ledger.AdjustStock(c.UserContext(), inventory.AdjustInput{
		WarehouseID:    in.WarehouseID,
		MaterialTypeID: in.MaterialTypeID,
		NewQuantity:    in.NewQuantity,
		Reason:         in.Reason,
		UserID:         GetUserID(c),
	})
	if err != nil {
		return h.respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(stockChange(change))
}

// RecordMovements godoc
// @Summary      Kardex de un registro, más recientes primero
// @Tags         inventory
// @Produce      json
// @Param        type    query  string  false  "IN | OUT | ADJUSTMENT"
// @Param        from    query  string  false  "RFC3339"
// @Param        to      query  string  false  "RFC3339"
// @Param        limit   query  int     false  "Límite (máx. 500)"  default(50)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Param        format  query  string  false  "xlsx para descargar el kardex"
// @Router       /api/inventory/records/{id}/movements [get]
func (h *InventoryHandler) RecordMovements(c *fiber.Ctx) error {
	page, err := pageRequest(c)
	if err != nil {
		return h.respond(c, err)
	}
	filter, err := movementFilter(c, page)
	if err != nil {
		return h.respond(c, err)
	}
	ctx := c.UserContext()
	movements, err := h.ledger.Movements(ctx, c.Params("id"), filter)
	if err != nil {
		return h.respond(c, err)
	}
	hasMore := len(movements) > page.Limit
	if hasMore {
		movements = movements[:page.Limit]
	}
	if c.Query("format") != "xlsx" {
		return c.JSON(dto.Page[dto.MovementResponse]{Items: dto.FromMovements(movements), Page: page.Response(hasMore)})
	}

	rec, err := h.ledger.Record(ctx, c.Params("id"))
	if err != nil {
		return h.respond(c, err)
	}
	data := report.KardexData{Record: rec, Movements: movements}
	if wh, err := h.catalog.Warehouse(ctx, rec.WarehouseID); err == nil {
		data.WarehouseName = wh.Name
	}
	if mt, err := h.catalog.MaterialType(ctx, rec.MaterialTypeID); err == nil {
		data.MaterialName = mt.Name
	}
	xlsx, err := report.KardexXLSX(data)
	if err != nil {
		return h.respond(c, err)
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="kardex-`+rec.ID+`.xlsx"`)
	return c.Send(xlsx)
}

// Thresholds fija mínimo, máximo y ubicación del registro del par (solo admin).
func (h *InventoryHandler) Thresholds(c *fiber.Ctx) error {
	var in dto.ThresholdRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	rec, err := h.ledger.ConfigureRecord(c.UserContext(), inventory.ThresholdInput{
		WarehouseID:    in.WarehouseID,
		MaterialTypeID: in.MaterialTypeID,
		MinStock:       in.MinStock,
		MaxStock:       in.MaxStock,
		Location:       in.Location,
	})
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(dto.FromRecord(rec))
}

func (h *InventoryHandler) BelowMinimum(c *fiber.Ctx) error {
	records, err := h.ledger.BelowMinimum(c.UserContext())
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(dto.FromRecords(records))
}

func (h *InventoryHandler) AboveMaximum(c *fiber.Ctx) error {
	records, err := h.ledger.AboveMaximum(c.UserContext())
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(dto.FromRecords(records))
}

// Replenishment sugerencias de reposición; ?warehouse_id= filtra por bodega.
func (h *InventoryHandler) Replenishment(c *fiber.Ctx) error {
	list, err := h.ledger.ReplenishmentList(c.UserContext(), c.Query("warehouse_id"))
	if err != nil {
		return h.respond(c, err)
	}
	out := make([]dto.ReplenishmentResponse, 0, len(list))
	for _, r := range list {
		out = append(out, dto.ReplenishmentResponse{
			RecordID:       r.RecordID,
			WarehouseID:    r.WarehouseID,
			MaterialTypeID: r.MaterialTypeID,
			CurrentStock:   r.CurrentStock,
			MinStock:       r.MinStock,
			TargetStock:    r.TargetStock,
			SuggestedQty:   r.SuggestedQty,
			Priority:       r.Priority,
		})
	}
	return c.JSON(fiber.Map{
		"total":          len(out),
		"replenishments": out,
	})
}

func stockChange(ch inventory.StockChange) dto.StockChangeResponse {
	return dto.StockChangeResponse{Record: dto.FromRecord(ch.Record), Movement: dto.FromMovement(ch.Movement)}
}

// movementFilter lee un elemento más que la página para saber si hay más movimientos.
func movementFilter(c *fiber.Ctx, page dto.PageRequest) (repository.MovementFilter, error) {
	f := repository.MovementFilter{Limit: page.Limit + 1, Offset: page.Offset}
	if s := c.Query("type"); s != "" {
		t, err := entity.ParseMovementType(s)
		if err != nil {
			return f, err
		}
		f.Type = &t
	}
	var err error
	if f.From, err = queryTime(c, "from"); err != nil {
		return f, err
	}
	if f.To, err = queryTime(c, "to"); err != nil {
		return f, err
	}
	return f, nil
}

func pageRequest(c *fiber.Ctx) (dto.PageRequest, error) {
	var p dto.PageRequest
	if err := c.QueryParser(&p); err != nil {
		return p, fmt.Errorf("%w: limit y offset deben ser enteros", domain.ErrInvalidInput)
	}
	p.Normalize()
	return p, nil
}

func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	s := c.Query(key)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s debe ser RFC3339", domain.ErrInvalidInput, key)
	}
	return &t, nil
}
