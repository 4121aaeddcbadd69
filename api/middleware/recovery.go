package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/xmd-bot/pkg/logger"
	"go.uber.org/zap"
)

// Recovery returns a gin middleware for panic recovery. events may be nil.
func Recovery(log *zap.Logger, events *logger.MultiLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				fields := []zap.Field{
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
				}
				log.Error("Panic recovered", fields...)
				events.LogAppError("http panic", fields...)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
			}
		}()
		c.Next()
	}
}
