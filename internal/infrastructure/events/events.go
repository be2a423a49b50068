// Package events reparte los eventos del motor entre los observadores configurados.
package events

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/jhoicas/trazabilidad-api/internal/application/ports"
	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
)

var (
	_ ports.EventPublisher = Multi(nil)
	_ ports.EventPublisher = (*LogPublisher)(nil)
)

// Multi entrega cada evento a todos los publicadores; un fallo no impide la entrega al resto.
type Multi []ports.EventPublisher

// Publish devuelve los errores de todos los publicadores que fallaron.
func (m Multi) Publish(ctx context.Context, e entity.Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogPublisher registra cada evento como una línea estructurada (auditoría mínima sin colas).
type LogPublisher struct {
	log zerolog.Logger
}

func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log.With().Str("component", "events").Logger()}
}

func (p *LogPublisher) Publish(_ context.Context, e entity.Event) error {
	ev := p.log.Info()
	if e.Type == entity.EventShrinkExceeded || e.Type == entity.EventStockBelowMinimum {
		ev = p.log.Warn()
	}
	dict := zerolog.Dict()
	for k, v := range e.Attributes {
		dict = dict.Str(k, v)
	}
	ev.Str("event", string(e.Type)).
		Str("entity_type", e.EntityType).
		Str("entity_id", e.EntityID).
		Str("user_id", e.UserID).
		Time("occurred_at", e.OccurredAt).
		Dict("attributes", dict).
		Msg("evento de trazabilidad")
	return nil
}
