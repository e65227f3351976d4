package memory

import (
	"context"
	"sync"

	"github.com/aretw0/polyglot/pkg/domain"
)

// Bus implements ports.Sender in memory.
// Safe for concurrent use.
type Bus struct {
	mu       sync.RWMutex
	messages map[domain.Destination][]domain.OutboundMessage
	batches  map[domain.Destination]int
	failures map[domain.Destination]error
}

// NewBus creates a new in-memory bus.
func NewBus() *Bus {
	return &Bus{
		messages: make(map[domain.Destination][]domain.OutboundMessage),
		batches:  make(map[domain.Destination]int),
		failures: make(map[domain.Destination]error),
	}
}

// FailOn makes every subsequent Send to dest return err. A nil err clears it.
func (b *Bus) FailOn(dest domain.Destination, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		delete(b.failures, dest)
		return
	}
	b.failures[dest] = err
}

// Send records msgs as one batch.
func (b *Bus) Send(ctx context.Context, dest domain.Destination, msgs ...domain.OutboundMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.failures[dest]; err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}

	for _, m := range msgs {
		// Copy on write so callers can't mutate recorded messages.
		c := m
		c.Body = append([]byte(nil), m.Body...)
		if m.Properties != nil {
			c.Properties = domain.CloneProperties(m.Properties)
		}
		b.messages[dest] = append(b.messages[dest], c)
	}
	b.batches[dest]++
	return nil
}

// Messages returns the messages accepted for dest, in send order.
func (b *Bus) Messages(dest domain.Destination) []domain.OutboundMessage {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]domain.OutboundMessage(nil), b.messages[dest]...)
}

// Batches returns how many non-empty Send calls dest accepted.
func (b *Bus) Batches(dest domain.Destination) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.batches[dest]
}

// Total returns the number of messages accepted across all destinations.
func (b *Bus) Total() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, msgs := range b.messages {
		n += len(msgs)
	}
	return n
}
