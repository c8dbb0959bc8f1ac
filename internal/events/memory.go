package events

import (
	"context"
	"fmt"
	"sync"
)

const memoryChannelCapacity = 10000

// MemoryPublisher buffers messages in per-subject channels.
// It is used in tests and local development without a broker.
type MemoryPublisher struct {
	channels map[string]chan []byte
	closed   bool
	mu       sync.RWMutex
}

// NewMemoryPublisher creates an in-memory publisher for tests and local runs
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{
		channels: make(map[string]chan []byte),
	}
}

func (p *MemoryPublisher) channel(subject string) (chan []byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, fmt.Errorf("publisher closed")
	}
	if ch, exists := p.channels[subject]; exists {
		return ch, nil
	}

	ch := make(chan []byte, memoryChannelCapacity)
	p.channels[subject] = ch
	return ch, nil
}

// Publish buffers a copy of data
func (p *MemoryPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	ch, err := p.channel(subject)
	if err != nil {
		return err
	}

	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)

	select {
	case ch <- dataCopy:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("channel full for subject: %s", subject)
	}
}

// PublishBatch publishes multiple messages
func (p *MemoryPublisher) PublishBatch(ctx context.Context, messages []Message) (int, error) {
	successCount := 0
	for _, msg := range messages {
		if err := p.Publish(ctx, msg.Subject, msg.Data); err != nil {
			continue
		}
		successCount++
	}
	return successCount, nil
}

// Drain returns and removes every buffered message for a subject
func (p *MemoryPublisher) Drain(subject string) [][]byte {
	p.mu.RLock()
	ch, exists := p.channels[subject]
	p.mu.RUnlock()
	if !exists {
		return nil
	}

	var out [][]byte
	for {
		select {
		case data, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, data)
		default:
			return out
		}
	}
}

// PendingCount returns the number of buffered messages for a subject
func (p *MemoryPublisher) PendingCount(subject string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if ch, exists := p.channels[subject]; exists {
		return len(ch)
	}
	return 0
}

// Close rejects further publishes; buffered messages stay readable via Drain
func (p *MemoryPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
