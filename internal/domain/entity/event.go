package entity

import "time"

// EventType tipo de evento emitido tras confirmar una operación del motor.
type EventType string

const (
	EventLotCreated        EventType = "lot.created"
	EventLotStateChanged   EventType = "lot.state_changed"
	EventLotSplit          EventType = "lot.split"
	EventStageOpened       EventType = "stage.opened"
	EventStageClosed       EventType = "stage.closed"
	EventShrinkExceeded    EventType = "stage.shrink_exceeded"
	EventStockMoved        EventType = "inventory.movement"
	EventStockBelowMinimum EventType = "inventory.below_minimum"
)

// Tipos de entidad referenciados por los eventos.
const (
	EntityLot             = "Lot"
	EntityProcessingStage = "ProcessingStage"
	EntityInventoryRecord = "InventoryRecord"
)

// Event notificación para colaboradores externos (alertas, auditoría, métricas).
// Referencia la entidad por nombre de tipo + id; no forma parte del modelo transaccional.
type Event struct {
	Type       EventType         `json:"type"`
	EntityType string            `json:"entity_type"`
	EntityID   string            `json:"entity_id"`
	UserID     string            `json:"user_id,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}
