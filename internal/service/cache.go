package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DashboardCacheKey 看板汇总缓存键
const DashboardCacheKey = "dashboard:summary"

// Cache 短时 JSON 缓存（Redis 实现见 pkg/redis）；为 nil 时不缓存
type Cache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// invalidateDashboard 写操作提交后使看板缓存失效；失败只记录日志
func invalidateDashboard(ctx context.Context, cache Cache, logger *zap.Logger) {
	if cache == nil {
		return
	}
	if err := cache.Delete(ctx, DashboardCacheKey); err != nil {
		logger.Warn("看板缓存失效失败", zap.Error(err))
	}
}
