package dto

// Límites de paginación de los listados.
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 500
)

// PageRequest paginación limit/offset (kardex de un registro, hijos de un lote, lotes disponibles).
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// Normalize aplica el límite por defecto si falta o supera MaxPageLimit, y un offset no negativo.
func (p *PageRequest) Normalize() {
	if p.Limit <= 0 || p.Limit > MaxPageLimit {
		p.Limit = DefaultPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// Response metadatos de la página servida.
func (p PageRequest) Response(hasMore bool) PageResponse {
	return PageResponse{Limit: p.Limit, Offset: p.Offset, HasMore: hasMore}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// Page listado paginado.
type Page[T any] struct {
	Items []T          `json:"items"`
	Page  PageResponse `json:"page"`
}

// Paginate corta un listado completo a la página pedida. Items nunca es nil.
func Paginate[T any](items []T, p PageRequest) Page[T] {
	out := Page[T]{Items: []T{}, Page: p.Response(false)}
	if p.Offset >= len(items) {
		return out
	}
	end := min(p.Offset+p.Limit, len(items))
	out.Items = items[p.Offset:end]
	out.Page.HasMore = end < len(items)
	return out
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
