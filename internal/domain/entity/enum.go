package entity

import (
	"fmt"

	"github.com/jhoicas/trazabilidad-api/internal/domain"
)

type enumValue interface {
	~string
	Valid() bool
}

// parseEnum es el único punto de validación de enumeraciones en la frontera de almacenamiento.
func parseEnum[T enumValue](v T, name string) (T, error) {
	if !v.Valid() {
		return v, fmt.Errorf("%w: %s desconocido %q", domain.ErrInvalidInput, name, string(v))
	}
	return v, nil
}
