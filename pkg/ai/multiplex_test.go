package ai

import (
	"context"
	"testing"
	"time"
)

func TestMultiplexer_TeesToFullAndSpecificStream(t *testing.T) {
	t.Parallel()

	m := newMultiplexer()
	ctx := context.Background()

	m.publish(ctx, streamEvent{kind: EventTextDelta, textDelta: "hello"})

	select {
	case ev := <-m.text:
		if ev.textDelta != "hello" {
			t.Errorf("unexpected text delta: %q", ev.textDelta)
		}
	default:
		t.Fatal("expected an event on the text stream")
	}

	select {
	case ev := <-m.full:
		if ev.textDelta != "hello" {
			t.Errorf("unexpected text delta on full stream: %q", ev.textDelta)
		}
	default:
		t.Fatal("expected an event on the full stream")
	}

	select {
	case <-m.partial:
		t.Error("did not expect an event on the partial stream")
	case <-m.element:
		t.Error("did not expect an event on the element stream")
	default:
	}
}

func TestMultiplexer_SlowConsumerDoesNotBlockOthers(t *testing.T) {
	t.Parallel()

	m := newMultiplexer()
	ctx := context.Background()

	// Fill the partial stream's buffer without ever draining it.
	for i := 0; i < multiplexBufferDepth; i++ {
		m.publish(ctx, streamEvent{kind: EventPartialObject, partial: i})
	}

	// A concurrent text-delta publish must still complete promptly even
	// though the (unrelated) partial stream is saturated.
	done := make(chan struct{})
	go func() {
		m.publish(ctx, streamEvent{kind: EventTextDelta, textDelta: "still flowing"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish to the text stream blocked on an unrelated saturated stream")
	}

	select {
	case ev := <-m.text:
		if ev.textDelta != "still flowing" {
			t.Errorf("unexpected delta: %q", ev.textDelta)
		}
	default:
		t.Fatal("expected the text event to have been delivered")
	}
}

func TestMultiplexer_PublishRespectsContextCancellation(t *testing.T) {
	t.Parallel()

	m := newMultiplexer()
	for i := 0; i < multiplexBufferDepth; i++ {
		m.publish(context.Background(), streamEvent{kind: EventPartialObject, partial: i})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		// partial stream is full and never drained: this publish must
		// give up once ctx is cancelled rather than hang forever.
		m.publish(ctx, streamEvent{kind: EventPartialObject, partial: "never delivered"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish did not respect context cancellation")
	}
}

func TestMultiplexer_CloseAll(t *testing.T) {
	t.Parallel()

	m := newMultiplexer()
	m.closeAll()

	if _, ok := <-m.text; ok {
		t.Error("expected text channel to be closed")
	}
	if _, ok := <-m.full; ok {
		t.Error("expected full channel to be closed")
	}
}
