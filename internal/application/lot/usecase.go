// Package lot implementa el ciclo de vida de los lotes: ingreso, inicio de procesamiento,
// división en hijos con conservación de peso y venta.
package lot

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/trazabilidad-api/internal/application/ports"
	"github.com/jhoicas/trazabilidad-api/internal/domain"
	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/trazabilidad-api/internal/domain/repository"
	"github.com/jhoicas/trazabilidad-api/internal/domain/traceability"
)

// maxCodeAttempts intentos de generar un código libre antes de rechazar con ErrDuplicateCode.
const maxCodeAttempts = 3

// maxLineageDepth cota de seguridad al recorrer ancestros.
const maxLineageDepth = 256

// LotUseCase casos de uso del gestor de lotes.
type LotUseCase struct {
	txRunner  ports.TxRunner
	repos     repository.Repositories
	clock     ports.Clock
	codes     ports.LotCodeGenerator
	events    ports.EventPublisher
	precision traceability.Precision
	log       zerolog.Logger
}

// NewLotUseCase construye el caso de uso. repos son los repositorios fuera de transacción (consultas).
func NewLotUseCase(
	txRunner ports.TxRunner,
	repos repository.Repositories,
	clock ports.Clock,
	codes ports.LotCodeGenerator,
	events ports.EventPublisher,
	precision traceability.Precision,
	log zerolog.Logger,
) *LotUseCase {
	return &LotUseCase{
		txRunner:  txRunner,
		repos:     repos,
		clock:     clock,
		codes:     codes,
		events:    events,
		precision: precision,
		log:       log.With().Str("component", "lot").Logger(),
	}
}

// Get devuelve el lote por id.
func (uc *LotUseCase) Get(ctx context.Context, id string) (*entity.Lot, error) {
	return getLot(ctx, uc.repos.Lots, id)
}

// GetByCode devuelve el lote por su código legible.
func (uc *LotUseCase) GetByCode(ctx context.Context, code string) (*entity.Lot, error) {
	l, err := uc.repos.Lots.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, fmt.Errorf("%w: lote %s", domain.ErrNotFound, code)
	}
	return l, nil
}

// Children lotes hijos creados por división, en orden de creación.
func (uc *LotUseCase) Children(ctx context.Context, id string) ([]*entity.Lot, error) {
	if _, err := uc.Get(ctx, id); err != nil {
		return nil, err
	}
	return uc.repos.Lots.ListChildren(ctx, id)
}

// Lineage cadena de ancestros desde la raíz hasta el propio lote (inclusive).
func (uc *LotUseCase) Lineage(ctx context.Context, id string) ([]*entity.Lot, error) {
	return Lineage(ctx, uc.repos.Lots, id)
}

// AvailableFIFO lotes AVAILABLE de un material en una bodega, más antiguos primero.
func (uc *LotUseCase) AvailableFIFO(ctx context.Context, warehouseID, materialTypeID string) ([]*entity.Lot, error) {
	if warehouseID == "" || materialTypeID == "" {
		return nil, fmt.Errorf("%w: warehouse_id y material_type_id requeridos", domain.ErrInvalidInput)
	}
	return uc.repos.Lots.ListAvailable(ctx, warehouseID, materialTypeID)
}

// Lineage recorre ParentID hacia arriba. El árbol no admite ciclos porque los hijos solo nacen de Split,
// pero la profundidad se acota igualmente.
func Lineage(ctx context.Context, repo repository.LotRepository, id string) ([]*entity.Lot, error) {
	cur, err := getLot(ctx, repo, id)
	if err != nil {
		return nil, err
	}
	chain := []*entity.Lot{cur}
	for cur.HasParent() {
		if len(chain) > maxLineageDepth {
			return nil, fmt.Errorf("%w: linaje de %s excede %d niveles", domain.ErrInvalidState, id, maxLineageDepth)
		}
		parent, err := getLot(ctx, repo, cur.ParentID)
		if err != nil {
			return nil, err
		}
		chain = append(chain, parent)
		cur = parent
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

func getLot(ctx context.Context, repo repository.LotRepository, id string) (*entity.Lot, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: lot_id requerido", domain.ErrInvalidInput)
	}
	l, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, fmt.Errorf("%w: lote %s", domain.ErrNotFound, id)
	}
	return l, nil
}

func lockLot(ctx context.Context, repo repository.LotRepository, id string) (*entity.Lot, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: lot_id requerido", domain.ErrInvalidInput)
	}
	l, err := repo.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, fmt.Errorf("%w: lote %s", domain.ErrNotFound, id)
	}
	return l, nil
}

// transition aplica un cambio de estado compare-and-set; perder la carrera es ErrInvalidState.
func transition(ctx context.Context, repo repository.LotRepository, l *entity.Lot, to entity.LotState, at time.Time) error {
	ok, err := repo.CompareAndSetState(ctx, l.ID, l.State, to, at)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: el lote %s ya no está en %s", domain.ErrInvalidState, l.Code, l.State)
	}
	l.State = to
	l.Version++
	l.UpdatedAt = at
	return nil
}

// nextFreeCode pide códigos al generador hasta encontrar uno sin usar.
func (uc *LotUseCase) nextFreeCode(ctx context.Context, repo repository.LotRepository, at time.Time) (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code, err := uc.codes.Next(ctx, at)
		if err != nil {
			return "", fmt.Errorf("generate lot code: %w", err)
		}
		taken, err := repo.ExistsByCode(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
		uc.log.Warn().Str("code", code).Msg("código de lote en uso, reintentando")
	}
	return "", fmt.Errorf("%w: sin código libre tras %d intentos", domain.ErrDuplicateCode, maxCodeAttempts)
}

func (uc *LotUseCase) publish(ctx context.Context, events []entity.Event) {
	ports.PublishAll(ctx, uc.events, uc.log, events)
}

func stateEvent(l *entity.Lot, from entity.LotState, userID string) entity.Event {
	return entity.Event{
		Type:       entity.EventLotStateChanged,
		EntityType: entity.EntityLot,
		EntityID:   l.ID,
		UserID:     userID,
		OccurredAt: l.UpdatedAt,
		Attributes: map[string]string{
			"code": l.Code,
			"from": string(from),
			"to":   string(l.State),
		},
	}
}

func createdEvent(l *entity.Lot) entity.Event {
	return entity.Event{
		Type:       entity.EventLotCreated,
		EntityType: entity.EntityLot,
		EntityID:   l.ID,
		UserID:     l.CreatedBy,
		OccurredAt: l.CreatedAt,
		Attributes: map[string]string{
			"code":             l.Code,
			"net_weight":       l.NetWeight.String(),
			"warehouse_id":     l.WarehouseID,
			"material_type_id": l.MaterialTypeID,
			"parent_id":        l.ParentID,
		},
	}
}
