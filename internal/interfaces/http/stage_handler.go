package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/trazabilidad-api/internal/application/processing"
	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
)

// StageHandler maneja las etapas de proceso de los lotes (protegido).
type StageHandler struct {
	errorMapper
	pipeline *processing.PipelineUseCase
}

// Open godoc
// @Summary      Abrir una etapa sobre un lote IN_PROCESS
// @Tags         stages
// @Accept       json
// @Param        body  body  dto.OpenStageRequest  true  "tipo, peso de entrada, inicio opcional"
// @Success      201   {object}  dto.StageResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/stages [post]
func (h *StageHandler) Open(c *fiber.Ctx) error {
	var in dto.OpenStageRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	st, err := h.pipeline.OpenStage(c.UserContext(), processing.OpenStageInput{
		LotID:       c.Params("id"),
		Type:        entity.StageType(in.Type),
		InputWeight: in.InputWeight,
		UserID:      GetUserID(c),
		Notes:       in.Notes,
		StartedAt:   in.StartedAt,
	})
	if err != nil {
		return h.respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromStage(st))
}

// Close godoc
// @Summary      Cerrar una etapa: calcula merma parcial y acumulada
// @Tags         stages
// @Accept       json
// @Param        body  body  dto.CloseStageRequest  true  "peso de salida, fin opcional"
// @Success      200   {object}  dto.CloseStageResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stages/{id}/close [post]
func (h *StageHandler) Close(c *fiber.Ctx) error {
	var in dto.CloseStageRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.pipeline.CloseStage(c.UserContext(), processing.CloseStageInput{
		StageID:      c.Params("id"),
		OutputWeight: in.OutputWeight,
		Notes:        in.Notes,
		EndedAt:      in.EndedAt,
	})
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(dto.CloseStageResponse{
		Stage:        dto.FromStage(res.Stage),
		Threshold:    res.Threshold,
		LotRemaining: res.LotRemaining,
	})
}

func (h *StageHandler) GetByID(c *fiber.Ctx) error {
	st, err := h.pipeline.Stage(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(dto.FromStage(st))
}

// ByLot etapas del lote en orden de inicio.
func (h *StageHandler) ByLot(c *fiber.Ctx) error {
	stages, err := h.pipeline.Stages(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(dto.FromStages(stages))
}

// Shrink merma total del lote y compuesta sobre su linaje.
func (h *StageHandler) Shrink(c *fiber.Ctx) error {
	s, err := h.pipeline.Shrink(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(dto.ShrinkResponse{LotID: s.LotID, Total: s.Total, Lineage: s.Lineage, ClosedStages: s.ClosedStages})
}

// AverageByType merma parcial promedio por tipo de etapa.
func (h *StageHandler) AverageByType(c *fiber.Ctx) error {
	avg, err := h.pipeline.AverageShrinkByType(c.UserContext())
	if err != nil {
		return h.respond(c, err)
	}
	out := make(map[string]decimal.Decimal, len(avg))
	for typ, v := range avg {
		out[string(typ)] = v
	}
	return c.JSON(out)
}

// AboveThreshold etapas cerradas con merma parcial mayor a ?threshold=.
func (h *StageHandler) AboveThreshold(c *fiber.Ctx) error {
	threshold, err := decimal.NewFromString(c.Query("threshold"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "threshold debe ser numérico"})
	}
	stages, err := h.pipeline.StagesAboveThreshold(c.UserContext(), threshold)
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(dto.FromStages(stages))
}
