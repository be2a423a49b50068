package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/trazabilidad-api/internal/domain/repository"
)

// Querier subconjunto común de *pgxpool.Pool y pgx.Tx; los repositorios funcionan con ambos.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewRepositories ata todos los repositorios a q (pool para consultas, tx dentro de una unidad de trabajo).
func NewRepositories(q Querier) repository.Repositories {
	return repository.Repositories{
		Warehouses:    NewWarehouseRepository(q),
		MaterialTypes: NewMaterialTypeRepository(q),
		Suppliers:     NewSupplierRepository(q),
		Lots:          NewLotRepository(q),
		Stages:        NewProcessingStageRepository(q),
		Records:       NewInventoryRecordRepository(q),
		Movements:     NewInventoryMovementRepository(q),
	}
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// nullIfEmpty mapea "" a NULL para columnas de referencia opcionales.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
