package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"obra-admin/backend/pkg/metrics"
)

// Metrics HTTP 指标中间件；按路由模板而非原始路径打标签
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), start)
	}
}
