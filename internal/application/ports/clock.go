package ports

import (
	"context"
	"time"

	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
)

// SystemClock reloj del sistema en UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock reloj manual para pruebas deterministas.
type FixedClock struct {
	T time.Time
}

func (c *FixedClock) Now() time.Time { return c.T }

// Advance adelanta el reloj d.
func (c *FixedClock) Advance(d time.Duration) { c.T = c.T.Add(d) }

// NopPublisher descarta todos los eventos.
type NopPublisher struct{}

func (NopPublisher) Publish(_ context.Context, _ entity.Event) error { return nil }
