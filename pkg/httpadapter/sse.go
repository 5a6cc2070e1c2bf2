// Package httpadapter pipes a streamed structured-output result to an HTTP
// response as server-sent events, one adapter per already-vendored web
// framework.
package httpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gsoc2/ai/pkg/ai"
)

// writeEvent writes one SSE frame: an "event: <name>\n" line (when name is
// non-empty) followed by "data: <payload>\n\n".
func writeEvent(w io.Writer, name string, payload []byte) error {
	if name != "" {
		if _, err := fmt.Fprintf(w, "event: %s\n", name); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	return nil
}

// SetSSEHeaders sets the headers an SSE response needs, matching the
// teacher's gin handler (no caching, keep-alive, and disabling proxy
// buffering so chunks aren't held back).
func SetSSEHeaders(h http.Header) {
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
}

// elementPayload is the JSON body of an "element" SSE event.
type elementPayload struct {
	Index int         `json:"index"`
	Value interface{} `json:"value"`
}

// finishPayload is the JSON body of the terminal "done" SSE event.
type finishPayload struct {
	Object       interface{} `json:"object,omitempty"`
	FinishReason string      `json:"finishReason,omitempty"`
	Usage        interface{} `json:"usage,omitempty"`
}

// flusher is satisfied by every response writer this package streams
// through (http.ResponseWriter via http.Flusher, gin's ResponseWriter,
// echo's Response).
type flusher interface {
	Flush()
}

// PipeToWriter drains result's fullStream, writing each event as an SSE
// frame to w, flushing after every frame when w supports it. It blocks until
// the stream finishes or ctx is cancelled. Works directly with any
// http.ResponseWriter — chi handlers, gin's c.Writer, echo's c.Response() —
// since none of those frameworks require a different write path for a
// standard chunked response.
func PipeToWriter(ctx context.Context, w io.Writer, result *ai.StreamObjectResult) error {
	flush, _ := w.(flusher)

	for ev := range result.FullStream() {
		var name string
		var payload []byte
		var err error

		switch ev.Kind {
		case ai.EventTextDelta:
			name, payload = "text-delta", []byte(ev.TextDelta)
		case ai.EventPartialObject:
			name = "partial-object"
			if payload, err = json.Marshal(ev.Partial); err != nil {
				return err
			}
		case ai.EventElement:
			name = "element"
			if payload, err = json.Marshal(elementPayload{Index: ev.ElementIndex, Value: ev.Element}); err != nil {
				return err
			}
		case ai.EventError:
			name, payload = "error", []byte(ev.Err.Error())
		case ai.EventFinish:
			name = "finish"
			payload = []byte(`{}`)
		default:
			continue
		}

		if err := writeEvent(w, name, payload); err != nil {
			return err
		}
		if flush != nil {
			flush.Flush()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	final, err := result.Object(ctx)
	if err != nil {
		return writeEvent(w, "done", []byte(fmt.Sprintf(`{"error":%q}`, err.Error())))
	}
	donePayload, err := json.Marshal(finishPayload{
		Object:       final.Object,
		FinishReason: string(final.FinishReason),
		Usage:        final.Usage,
	})
	if err != nil {
		return err
	}
	return writeEvent(w, "done", donePayload)
}
