package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Cada operación del motor devuelve uno de estos tipos, envuelto con contexto vía fmt.Errorf("%w: ...").
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrInvalidState         = errors.New("estado inválido para la operación")
	ErrInvalidWeight        = errors.New("peso inválido")
	ErrInvalidQuantity      = errors.New("cantidad inválida")
	ErrCapacityExceeded     = errors.New("capacidad de bodega excedida")
	ErrInsufficientStock    = errors.New("stock insuficiente")
	ErrWarehouseUnavailable = errors.New("bodega no disponible")
	ErrDuplicateCode        = errors.New("código de lote duplicado")
	ErrOverlappingStage     = errors.New("etapa superpuesta con la anterior")
	ErrAlreadyClosed        = errors.New("etapa ya cerrada")
	ErrUnauthorized         = errors.New("no autorizado")
	ErrForbidden            = errors.New("acceso denegado")
)
