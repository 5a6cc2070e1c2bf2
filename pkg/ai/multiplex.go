package ai

import (
	"context"

	"golang.org/x/time/rate"
)

// multiplexBufferDepth is the default per-consumer channel capacity. Each
// derived stream is paced independently, so a slow consumer on one stream
// (say, a UI rendering partialObjectStream) never blocks producers writing
// to the others; it only ever blocks its own channel filling up.
const multiplexBufferDepth = 64

// streamEvent is one item pushed to every derived stream's buffer. Each
// consumer filters the fields it cares about; fullStream receives every
// event verbatim.
type streamEvent struct {
	kind         EventKind
	textDelta    string
	partial      interface{}
	element      interface{}
	elementIndex int
	err          error
}

// EventKind identifies what a FullStreamEvent carries. Exported so callers
// outside this package (an HTTP adapter translating fullStream to SSE, say)
// can switch on it.
type EventKind int

const (
	EventTextDelta EventKind = iota
	EventPartialObject
	EventElement
	EventError
	EventFinish
)

// multiplexer tees a single producer's events into N independently paced
// bounded-channel consumers. A consumer that stops draining its channel
// only throttles the producer once that one channel is full; the limiter
// bounds how fast the producer retries a full channel so a stalled
// consumer doesn't spin the producer goroutine.
type multiplexer struct {
	text    chan streamEvent
	partial chan streamEvent
	element chan streamEvent
	full    chan streamEvent

	limiter *rate.Limiter
}

func newMultiplexer() *multiplexer {
	return &multiplexer{
		text:    make(chan streamEvent, multiplexBufferDepth),
		partial: make(chan streamEvent, multiplexBufferDepth),
		element: make(chan streamEvent, multiplexBufferDepth),
		full:    make(chan streamEvent, multiplexBufferDepth),
		// Governs retry pacing when a consumer channel is saturated; not a
		// hard cap on throughput when consumers are keeping up.
		limiter: rate.NewLimiter(rate.Limit(1000), 1000),
	}
}

// publish delivers ev to every derived stream. Each send is attempted
// without blocking first; if a channel is full, publish waits (rate
// limited) for ctx or room, in the order text/partial/element/full are
// declared, to preserve relative delivery order across streams.
func (m *multiplexer) publish(ctx context.Context, ev streamEvent) {
	targets := []chan streamEvent{m.full}
	switch ev.kind {
	case EventTextDelta:
		targets = append(targets, m.text)
	case EventPartialObject:
		targets = append(targets, m.partial)
	case EventElement:
		targets = append(targets, m.element)
	}

	for _, ch := range targets {
		m.send(ctx, ch, ev)
	}
}

func (m *multiplexer) send(ctx context.Context, ch chan streamEvent, ev streamEvent) {
	select {
	case ch <- ev:
		return
	default:
	}

	// Channel was full: wait for either room or the limiter to admit a
	// retry, whichever frees up first, without busy-spinning.
	for {
		if err := m.limiter.Wait(ctx); err != nil {
			return
		}
		select {
		case ch <- ev:
			return
		case <-ctx.Done():
			return
		default:
		}
	}
}

// closeAll closes every derived stream's channel. Safe to call once, after
// the producer is known to have stopped publishing.
func (m *multiplexer) closeAll() {
	close(m.text)
	close(m.partial)
	close(m.element)
	close(m.full)
}
