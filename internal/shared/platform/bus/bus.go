package bus

import (
	"context"
	"encoding/json"
	"time"
)

// IntegrationEvent es la base de todos los eventos que salen del servicio.
type IntegrationEvent struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"` // contenido específico del evento
}

// EventPublisher publica eventos de integración. La semántica de topic y el
// formato del payload los deciden los adapters.
type EventPublisher interface {
	Publish(ctx context.Context, event IntegrationEvent) error
}

// Keyer permite a un evento declarar su clave de partición (Kafka).
type Keyer interface {
	PartitionKey() string
}
