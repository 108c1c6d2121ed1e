package handler

import (
	"net/url"

	"github.com/gin-gonic/gin"

	"obra-admin/backend/internal/api/middleware"
	"obra-admin/backend/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(middleware.ContextUserID)
	if !exists {
		response.Unauthorized(c, middleware.CodeUnauthenticated, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, middleware.CodeUnauthenticated, "未认证")
		return "", false
	}
	return s, true
}

// bindYear 解析 ?year= 查询参数（2000..2100）
func bindYear(c *gin.Context) (int, bool) {
	var q struct {
		Year int `form:"year" binding:"required,min=2000,max=2100"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindError(c, err)
		return 0, false
	}
	return q.Year, true
}

// attachment 设置下载响应头（RFC 5987 文件名编码）
func attachment(c *gin.Context, filename, contentType string) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
	c.Header("Content-Type", contentType)
}
