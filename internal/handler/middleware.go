package handler

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"go-newsrank/internal/logging"
)

// RequestLogger 为每个请求生成关联 ID 并记录访问日志
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = logging.NewID()
		}
		ctx := logging.WithID(c.Request.Context(), id)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Request-ID", id)

		c.Next()

		slog.InfoContext(ctx, "HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
