package events

import (
	"context"
	"sync"
	"testing"
)

func TestMemoryPublisher_PublishAndDrain(t *testing.T) {
	p := NewMemoryPublisher()
	ctx := context.Background()

	data := []byte("first")
	if err := p.Publish(ctx, "ops.anomaly", data); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	data[0] = 'X'
	_ = p.Publish(ctx, "ops.anomaly", []byte("second"))

	if p.PendingCount("ops.anomaly") != 2 {
		t.Fatalf("Expected 2 pending, got %d", p.PendingCount("ops.anomaly"))
	}

	msgs := p.Drain("ops.anomaly")
	if len(msgs) != 2 || string(msgs[0]) != "first" || string(msgs[1]) != "second" {
		t.Errorf("unexpected drained messages %q", msgs)
	}
	if p.PendingCount("ops.anomaly") != 0 {
		t.Error("Drain should empty the subject")
	}
	if p.Drain("unknown") != nil {
		t.Error("Drain of unknown subject should be nil")
	}
}

func TestMemoryPublisher_PublishBatch(t *testing.T) {
	p := NewMemoryPublisher()

	n, err := p.PublishBatch(context.Background(), []Message{
		{Subject: "a", Data: []byte("1")},
		{Subject: "b", Data: []byte("2")},
		{Subject: "a", Data: []byte("3")},
	})
	if err != nil || n != 3 {
		t.Fatalf("PublishBatch = %d, %v", n, err)
	}
	if p.PendingCount("a") != 2 || p.PendingCount("b") != 1 {
		t.Errorf("unexpected pending counts a=%d b=%d", p.PendingCount("a"), p.PendingCount("b"))
	}
}

func TestMemoryPublisher_Closed(t *testing.T) {
	p := NewMemoryPublisher()
	_ = p.Publish(context.Background(), "a", []byte("x"))
	_ = p.Close()

	if err := p.Publish(context.Background(), "a", []byte("y")); err == nil {
		t.Error("Publish after Close should fail")
	}
	if got := p.Drain("a"); len(got) != 1 {
		t.Errorf("buffered message should survive Close, got %d", len(got))
	}
}

func TestMemoryPublisher_Concurrent(t *testing.T) {
	p := NewMemoryPublisher()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = p.Publish(ctx, "load", []byte("m"))
			}
		}()
	}
	wg.Wait()

	if p.PendingCount("load") != 1000 {
		t.Errorf("Expected 1000 messages, got %d", p.PendingCount("load"))
	}
}
