package respond

import (
	"github.com/gin-gonic/gin"

	"contractai-backend/internal/shared/apperrors"
	"contractai-backend/internal/shared/telemetry"
)

// AppError renders any error as the standard body. Typed errors keep their
// status and kind; everything else becomes a 500 AppError. The error itself
// was already logged at construction, only the request context is added
// here.
func AppError(c *gin.Context, err error) {
	appErr := apperrors.FromErr(err)

	fields := map[string]any{
		"status":     appErr.Status,
		"error":      string(appErr.Kind),
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	telemetry.Info("http.error", fields)

	resp := appErr.Response()
	c.AbortWithStatusJSON(resp.Status, resp.Body)
}
