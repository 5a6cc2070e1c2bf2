package httpadapter

import (
	"net/http"

	"github.com/gsoc2/ai/pkg/ai"
)

// PipeToResponseWriter streams result to w as SSE. Usable directly from a
// chi handler (or any stdlib net/http handler), following the teacher's
// chi-server pattern of writing straight to http.ResponseWriter.
func PipeToResponseWriter(r *http.Request, w http.ResponseWriter, result *ai.StreamObjectResult) error {
	SetSSEHeaders(w.Header())
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return PipeToWriter(r.Context(), w, result)
}
