package messaging

import (
	"context"
	"sync"
	"time"
)

// Noop discards every message.
type Noop struct{}

// Close implements io.Closer.
func (Noop) Close() error { return nil }

// Publish drops msg.
func (Noop) Publish(_ context.Context, destination string, _ OutgoingMessage) (PublishResult, error) {
	return PublishResult{Topic: destination, Timestamp: time.Now()}, nil
}

// Memory keeps published messages in memory, keyed by destination.
type Memory struct {
	mu       sync.Mutex
	messages map[string][]OutgoingMessage
}

// NewMemory returns an empty Memory publisher.
func NewMemory() *Memory {
	return &Memory{messages: map[string][]OutgoingMessage{}}
}

// Close implements io.Closer.
func (*Memory) Close() error { return nil }

// Publish records msg under destination.
func (m *Memory) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}

	m.mu.Lock()
	m.messages[destination] = append(m.messages[destination], msg)
	m.mu.Unlock()

	return PublishResult{Topic: destination, Timestamp: time.Now()}, nil
}

// Messages returns a copy of everything published to destination.
func (m *Memory) Messages(destination string) []OutgoingMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]OutgoingMessage(nil), m.messages[destination]...)
}
