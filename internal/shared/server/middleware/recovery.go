package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"ingest-backend/internal/shared/server/respond"
	"ingest-backend/internal/shared/telemetry"
)

// GenericFailure is the only message a caller sees for unclassified errors.
const GenericFailure = "Failed to process request"

// Recovery is the outermost error boundary: a panic anywhere below it becomes
// a generic 500 and the detail only reaches the log.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				telemetry.Error("panic", map[string]any{
					"request_id": RequestIDFromContext(c),
					"error":      rec,
					"stack":      string(debug.Stack()),
					"path":       c.Request.URL.Path,
					"method":     c.Request.Method,
				})
				respond.Error(c, http.StatusInternalServerError, GenericFailure)
			}
		}()
		c.Next()
	}
}
