package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/trazabilidad-api/internal/application/catalog"
	"github.com/jhoicas/trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/trazabilidad-api/internal/application/inventory"
)

// WarehouseHandler consultas de bodegas y materiales (protegido).
// El alta y edición del catálogo no pasan por esta API.
type WarehouseHandler struct {
	errorMapper
	catalog *catalog.Catalog
	ledger  *inventory.LedgerUseCase
}

// List godoc
// @Summary      Listar bodegas
// @Tags         warehouses
// @Security     Bearer
// @Produce      json
// @Router       /api/warehouses [get]
func (h *WarehouseHandler) List(c *fiber.Ctx) error {
	list, err := h.catalog.Warehouses(c.UserContext())
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(dto.FromWarehouses(list))
}

// Capacity godoc
// @Summary      Capacidad disponible y porcentaje de ocupación de la bodega
// @Tags         warehouses
// @Param        id   path  string  true  "ID de la bodega"
// @Success      200  {object}  dto.CapacityResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/warehouses/{id}/capacity [get]
func (h *WarehouseHandler) Capacity(c *fiber.Ctx) error {
	r, err := h.ledger.Capacity(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(capacity(r))
}

// WithCapacity bodegas activas con al menos ?required= de capacidad libre, mayor disponibilidad primero.
func (h *WarehouseHandler) WithCapacity(c *fiber.Ctx) error {
	required, err := decimal.NewFromString(c.Query("required", "0"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "required debe ser numérico"})
	}
	reports, err := h.ledger.WarehousesWithCapacity(c.UserContext(), required)
	if err != nil {
		return h.respond(c, err)
	}
	out := make([]dto.CapacityResponse, 0, len(reports))
	for _, r := range reports {
		out = append(out, capacity(r))
	}
	return c.JSON(out)
}

// Records registros de inventario de la bodega.
func (h *WarehouseHandler) Records(c *fiber.Ctx) error {
	records, err := h.ledger.RecordsByWarehouse(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(dto.FromRecords(records))
}

// MaterialTypes catálogo de materiales; ?active=true filtra los activos.
func (h *WarehouseHandler) MaterialTypes(c *fiber.Ctx) error {
	list, err := h.catalog.MaterialTypes(c.UserContext(), c.QueryBool("active", false))
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(dto.FromMaterialTypes(list))
}

// GlobalStock stock del material sumado en todas las bodegas.
func (h *WarehouseHandler) GlobalStock(c *fiber.Ctx) error {
	total, err := h.ledger.GlobalStock(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(fiber.Map{"material_type_id": c.Params("id"), "quantity": total})
}

func capacity(r *inventory.CapacityReport) dto.CapacityResponse {
	return dto.CapacityResponse{
		WarehouseID:  r.WarehouseID,
		Name:         r.WarehouseName,
		State:        string(r.State),
		Capacity:     r.Capacity,
		Stored:       r.Stored,
		Available:    r.Available,
		OccupancyPct: r.OccupancyPct,
	}
}
