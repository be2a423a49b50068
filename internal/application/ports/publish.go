package ports

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
)

// PublishAll entrega los eventos de una unidad de trabajo ya confirmada.
// Un fallo del observador se registra y no se propaga: la operación ya es definitiva.
func PublishAll(ctx context.Context, pub EventPublisher, log zerolog.Logger, events []entity.Event) {
	if pub == nil {
		return
	}
	for _, ev := range events {
		if err := pub.Publish(ctx, ev); err != nil {
			log.Warn().Err(err).
				Str("event", string(ev.Type)).
				Str("entity_type", ev.EntityType).
				Str("entity_id", ev.EntityID).
				Msg("no se pudo publicar evento")
		}
	}
}
