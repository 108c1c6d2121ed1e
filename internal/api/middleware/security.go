package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// SecurityHeaders 安全 HTTP 头中间件（纯 JSON/文件下载 API）
// apiPrefix 下的响应含工资与合同数据，一律禁止中间代理与浏览器缓存
func SecurityHeaders(apiPrefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		h.Set("Cross-Origin-Resource-Policy", "same-site")

		if apiPrefix != "" && strings.HasPrefix(c.Request.URL.Path, apiPrefix) {
			h.Set("Cache-Control", "no-store")
		}

		c.Next()
	}
}
