package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/trazabilidad-api/internal/domain"
)

type errorKind struct {
	err    error
	status int
	code   string
}

// errorKinds traducción de errores de dominio a estado HTTP y código estable.
var errorKinds = []errorKind{
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrInvalidWeight, fiber.StatusBadRequest, "INVALID_WEIGHT"},
	{domain.ErrInvalidQuantity, fiber.StatusBadRequest, "INVALID_QUANTITY"},
	{domain.ErrInvalidState, fiber.StatusConflict, "INVALID_STATE"},
	{domain.ErrCapacityExceeded, fiber.StatusConflict, "CAPACITY_EXCEEDED"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrWarehouseUnavailable, fiber.StatusConflict, "WAREHOUSE_UNAVAILABLE"},
	{domain.ErrDuplicateCode, fiber.StatusConflict, "DUPLICATE_CODE"},
	{domain.ErrOverlappingStage, fiber.StatusConflict, "OVERLAPPING_STAGE"},
	{domain.ErrAlreadyClosed, fiber.StatusConflict, "ALREADY_CLOSED"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
}

// errorMapper responde errores de los casos de uso; los no tipados se registran y salen como 500.
type errorMapper struct {
	log zerolog.Logger
}

func (m errorMapper) respond(c *fiber.Ctx, err error) error {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return c.Status(k.status).JSON(dto.ErrorResponse{Code: k.code, Message: err.Error()})
		}
	}
	m.log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
