package httpadapter

import (
	"bufio"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/gsoc2/ai/pkg/ai"
	"github.com/valyala/fasthttp"
)

// PipeToFiber streams result to c as SSE. Fiber sits on fasthttp, which has
// no incremental http.ResponseWriter — streaming means handing fasthttp a
// callback invoked with a *bufio.Writer once the connection is ready for a
// streamed body, per fasthttp's SetBodyStreamWriter convention.
func PipeToFiber(c *fiber.Ctx, result *ai.StreamObjectResult) error {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		for ev := range result.FullStream() {
			var name string
			var payload []byte

			switch ev.Kind {
			case ai.EventTextDelta:
				name, payload = "text-delta", []byte(ev.TextDelta)
			case ai.EventPartialObject:
				name = "partial-object"
				payload, _ = json.Marshal(ev.Partial)
			case ai.EventElement:
				name = "element"
				payload, _ = json.Marshal(elementPayload{Index: ev.ElementIndex, Value: ev.Element})
			case ai.EventError:
				name, payload = "error", []byte(ev.Err.Error())
			case ai.EventFinish:
				name, payload = "finish", []byte(`{}`)
			default:
				continue
			}

			if err := writeEvent(w, name, payload); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				return
			}
		}

		final, err := result.Object(c.Context())
		if err != nil {
			_ = writeEvent(w, "done", []byte(`{"error":"`+err.Error()+`"}`))
			_ = w.Flush()
			return
		}
		donePayload, _ := json.Marshal(finishPayload{
			Object:       final.Object,
			FinishReason: string(final.FinishReason),
			Usage:        final.Usage,
		})
		_ = writeEvent(w, "done", donePayload)
		_ = w.Flush()
	}))

	return nil
}
