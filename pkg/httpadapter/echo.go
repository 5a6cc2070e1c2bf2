package httpadapter

import (
	"net/http"

	"github.com/gsoc2/ai/pkg/ai"
	"github.com/labstack/echo/v4"
)

// PipeToEcho streams result to c as SSE. echo's *echo.Response implements
// both io.Writer and Flush, so it goes straight through PipeToWriter.
func PipeToEcho(c echo.Context, result *ai.StreamObjectResult) error {
	SetSSEHeaders(c.Response().Header())
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Flush()
	return PipeToWriter(c.Request().Context(), c.Response(), result)
}
