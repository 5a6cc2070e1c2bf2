package httpadapter

import (
	"github.com/gin-gonic/gin"
	"github.com/gsoc2/ai/pkg/ai"
)

// PipeToGin streams result to c as SSE, following the teacher's gin-server
// handleStream handler: SSE headers set before the first write, one flush
// per frame.
func PipeToGin(c *gin.Context, result *ai.StreamObjectResult) error {
	SetSSEHeaders(c.Writer.Header())
	c.Status(200)
	c.Writer.Flush()
	return PipeToWriter(c.Request.Context(), c.Writer, result)
}
