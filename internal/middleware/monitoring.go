package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"mailroom/backend/internal/monitoring"
)

// HTTPMetrics HTTP 指标中间件，未匹配路由的请求统一记为 "unmatched"。
func HTTPMetrics(metrics *monitoring.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestSize := c.Request.ContentLength
		if requestSize < 0 {
			requestSize = 0
		}

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		responseSize := int64(c.Writer.Size())
		if responseSize < 0 {
			responseSize = 0
		}

		metrics.RecordHTTPRequest(
			c.Request.Method,
			endpoint,
			c.GetString(RouteActionKey),
			c.Writer.Status(),
			time.Since(start),
			requestSize,
			responseSize,
		)
	}
}
