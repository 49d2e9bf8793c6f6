package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"contractai-backend/internal/shared/apperrors"
	"contractai-backend/internal/shared/server/respond"
	"contractai-backend/internal/shared/telemetry"
)

// Recovery recovers from panics and returns the standard error body.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				telemetry.Error("panic", map[string]any{
					"request_id": RequestIDFromContext(c),
					"error":      fmt.Sprint(rec),
					"stack":      string(debug.Stack()),
					"path":       c.Request.URL.Path,
					"method":     c.Request.Method,
				})
				respond.AppError(c, apperrors.New("unexpected server error", http.StatusInternalServerError, nil))
			}
		}()
		c.Next()
	}
}
