package middleware

import (
	"strings"

	"advanced-blog/pkg/activity"
	"advanced-blog/pkg/logger"
	"advanced-blog/pkg/models"

	"github.com/gin-gonic/gin"
)

// ActivityMiddleware records a page_visit for every authenticated request
// outside /admin/. A failing recorder never fails the request.
func ActivityMiddleware(recorder activity.Recorder, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(ContextUserID)
		path := c.Request.URL.Path
		if recorder != nil && userID != "" && !strings.HasPrefix(path, "/admin/") {
			details := map[string]interface{}{
				"path":   path,
				"method": c.Request.Method,
			}
			if err := recorder.Record(c.Request.Context(), userID, models.ActivityPageVisit, details); err != nil {
				log.Warn("Failed to record page visit for user %s on %s: %v", userID, path, err)
			}
		}
		c.Next()
	}
}
