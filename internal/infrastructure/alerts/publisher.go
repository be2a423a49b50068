// Package alerts entrega los eventos del motor a colaboradores externos (alertas, auditoría)
// como tareas asynq sobre Redis.
package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/trazabilidad-api/internal/application/ports"
	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
)

// TaskPrefix prefijo de los tipos de tarea; el sufijo es el tipo de evento (ej. trazabilidad:stage.shrink_exceeded).
const TaskPrefix = "trazabilidad:"

var _ ports.EventPublisher = (*Publisher)(nil)

// Enqueuer subconjunto de *asynq.Client usado por el publicador.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Publisher encola cada evento. Las alertas (merma excedida, stock bajo mínimo) tienen más reintentos
// que los eventos de auditoría.
type Publisher struct {
	client Enqueuer
	queue  string
}

func NewPublisher(client Enqueuer, queue string) *Publisher {
	if queue == "" {
		queue = "default"
	}
	return &Publisher{client: client, queue: queue}
}

// TaskType tipo de tarea asynq para un evento.
func TaskType(t entity.EventType) string {
	return TaskPrefix + string(t)
}

// IsAlert indica si el evento requiere atención humana.
func IsAlert(t entity.EventType) bool {
	return t == entity.EventShrinkExceeded || t == entity.EventStockBelowMinimum
}

func (p *Publisher) Publish(ctx context.Context, e entity.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	retries := 3
	if IsAlert(e.Type) {
		retries = 10
	}
	task := asynq.NewTask(TaskType(e.Type), payload)
	if _, err := p.client.EnqueueContext(ctx, task,
		asynq.Queue(p.queue),
		asynq.MaxRetry(retries),
		asynq.Retention(24*time.Hour),
	); err != nil {
		return fmt.Errorf("enqueue %s: %w", e.Type, err)
	}
	return nil
}

// NewClient cliente asynq sobre la misma instancia Redis de la secuencia de códigos.
func NewClient(addr, password string, db int) *asynq.Client {
	return asynq.NewClient(asynq.RedisClientOpt{Addr: addr, Password: password, DB: db})
}
