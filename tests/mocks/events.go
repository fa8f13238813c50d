package mocks

import (
	"context"
	"sync"

	sharedBus "github.com/davicafu/epidash/internal/shared/platform/bus"
)

// DummyPublisher acumula los eventos publicados.
type DummyPublisher struct {
	mu     sync.Mutex
	Events []sharedBus.IntegrationEvent
	Err    error
}

var _ sharedBus.EventPublisher = (*DummyPublisher)(nil)

func (p *DummyPublisher) Publish(ctx context.Context, event sharedBus.IntegrationEvent) error {
	if p.Err != nil {
		return p.Err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, event)
	return nil
}

// Published devuelve una copia de los eventos vistos hasta ahora.
func (p *DummyPublisher) Published() []sharedBus.IntegrationEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]sharedBus.IntegrationEvent, len(p.Events))
	copy(out, p.Events)
	return out
}
