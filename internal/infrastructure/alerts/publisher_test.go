package alerts_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/trazabilidad-api/internal/infrastructure/alerts"
)

type fakeEnqueuer struct {
	tasks []*asynq.Task
	opts  [][]asynq.Option
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	f.opts = append(f.opts, opts)
	return &asynq.TaskInfo{ID: "t1"}, nil
}

func maxRetry(opts []asynq.Option) int {
	for _, o := range opts {
		if o.Type() == asynq.MaxRetryOpt {
			return o.Value().(int)
		}
	}
	return -1
}

func TestPublisher_EncolaEventoComoJSON(t *testing.T) {
	fake := &fakeEnqueuer{}
	p := alerts.NewPublisher(fake, "traceability")
	e := entity.Event{
		Type:       entity.EventStockBelowMinimum,
		EntityType: entity.EntityInventoryRecord,
		EntityID:   "r1",
		OccurredAt: time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC),
		Attributes: map[string]string{"quantity": "40", "min_stock": "50"},
	}

	require.NoError(t, p.Publish(context.Background(), e))
	require.Len(t, fake.tasks, 1)
	assert.Equal(t, "trazabilidad:inventory.below_minimum", fake.tasks[0].Type())
	assert.Equal(t, 10, maxRetry(fake.opts[0]), "las alertas reintentan más")

	var got entity.Event
	require.NoError(t, json.Unmarshal(fake.tasks[0].Payload(), &got))
	assert.Equal(t, "r1", got.EntityID)
	assert.Equal(t, "50", got.Attributes["min_stock"])
}

func TestPublisher_AuditoriaConMenosReintentos(t *testing.T) {
	fake := &fakeEnqueuer{}
	p := alerts.NewPublisher(fake, "")

	require.NoError(t, p.Publish(context.Background(), entity.Event{Type: entity.EventLotCreated, EntityID: "l1"}))
	assert.Equal(t, 3, maxRetry(fake.opts[0]))
}

func TestPublisher_PropagaErrorDeCola(t *testing.T) {
	boom := errors.New("redis caído")
	p := alerts.NewPublisher(&fakeEnqueuer{err: boom}, "q")

	err := p.Publish(context.Background(), entity.Event{Type: entity.EventLotSplit})
	assert.ErrorIs(t, err, boom)
}

func TestIsAlert(t *testing.T) {
	assert.True(t, alerts.IsAlert(entity.EventShrinkExceeded))
	assert.False(t, alerts.IsAlert(entity.EventStageClosed))
}
