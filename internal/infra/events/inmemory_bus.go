package events

import (
	"context"
	"sync"

	sharedBus "github.com/davicafu/epidash/internal/shared/platform/bus"
)

// InMemoryEventBus implementa un bus de eventos para UN solo topic.
type InMemoryEventBus struct {
	subscribers []chan sharedBus.IntegrationEvent
	mu          sync.RWMutex
	topic       string
}

var _ sharedBus.EventPublisher = (*InMemoryEventBus)(nil)

// NewInMemoryEventBus crea un bus de eventos para un topic específico.
func NewInMemoryEventBus(topic string) *InMemoryEventBus {
	return &InMemoryEventBus{
		subscribers: make([]chan sharedBus.IntegrationEvent, 0),
		topic:       topic,
	}
}

// Publish envía un evento a todos los suscriptores de este bus. Los
// suscriptores lentos pierden eventos en vez de bloquear al publicador.
func (b *InMemoryEventBus) Publish(ctx context.Context, event sharedBus.IntegrationEvent) error {
	b.mu.RLock()
	subs := b.subscribers
	b.mu.RUnlock()

	for _, subChan := range subs {
		select {
		case subChan <- event:
		default:
		}
	}
	return nil
}

// Subscribe suscribe un nuevo oyente a este bus.
func (b *InMemoryEventBus) Subscribe(bufferSize int) <-chan sharedBus.IntegrationEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	subChan := make(chan sharedBus.IntegrationEvent, bufferSize)
	b.subscribers = append(b.subscribers, subChan)
	return subChan
}

// Topic devuelve el topic que maneja este bus.
func (b *InMemoryEventBus) Topic() string { return b.topic }
