package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"obra-admin/backend/internal/dto"
	pkgerrors "obra-admin/backend/pkg/errors"
)

// ── 通用业务错误 ──

var (
	ErrInvalidAmount    = pkgerrors.NewValidation(10002, "金额无效")
	ErrInvalidDate      = pkgerrors.NewValidation(10003, "日期格式无效，应为 YYYY-MM-DD")
	ErrInvalidDateRange = pkgerrors.NewValidation(10004, "结束日期不能早于开始日期")
	ErrInvalidID        = pkgerrors.NewValidation(10005, "ID 格式无效")
)

// ── 内部辅助方法 ──

// storageErr 将仓储错误映射为业务错误：记录不存在 → notFound，其余包装为 StorageError
func storageErr(err error, notFound *pkgerrors.AppError) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return pkgerrors.Storage(err)
}

// isNotFound 判断是否为记录不存在
func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// isDuplicateKey 唯一约束冲突（需开启 gorm TranslateError）
func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// requirePositive 金额必须 > 0
func requirePositive(field string, amount *decimal.Decimal) (decimal.Decimal, error) {
	if amount == nil {
		return decimal.Zero, ErrInvalidAmount.WithField(field, "gt=0")
	}
	// 按两位小数入库，舍入后为 0 同样无效
	rounded := amount.Round(2)
	if !rounded.IsPositive() {
		return decimal.Zero, ErrInvalidAmount.WithField(field, "gt=0")
	}
	return rounded, nil
}

// nonNegative 可选金额必须 >= 0，缺省为 0
func nonNegative(field string, amount *decimal.Decimal) (decimal.Decimal, error) {
	if amount == nil {
		return decimal.Zero, nil
	}
	rounded := amount.Round(2)
	if rounded.IsNegative() {
		return decimal.Zero, ErrInvalidAmount.WithField(field, "gte=0")
	}
	return rounded, nil
}

// parseDate 解析 YYYY-MM-DD
func parseDate(field, s string) (time.Time, error) {
	t, err := dto.ParseDate(s)
	if err != nil {
		return time.Time{}, ErrInvalidDate.WithField(field, "datetime=2006-01-02")
	}
	return t, nil
}

// optionalID 解析可清空的 ID 字段：空字符串 → nil
func optionalID(field, s string) (*string, error) {
	if s == "" {
		return nil, nil
	}
	if err := uuid.Validate(s); err != nil {
		return nil, ErrInvalidID.WithField(field, "uuid")
	}
	return &s, nil
}

// requireID 校验路径中的实体 ID；格式非法的 ID 不可能命中任何记录，按不存在处理
func requireID(id string, notFound *pkgerrors.AppError) error {
	if uuid.Validate(id) != nil {
		return notFound
	}
	return nil
}

// auditPtr 审计字段取值；匿名调用方记为 nil
func auditPtr(callerID string) *string {
	if callerID == "" {
		return nil
	}
	return &callerID
}

// logOpError 按错误类别记录失败：存储错误 Error，业务错误 Warn
func logOpError(logger *zap.Logger, op, id string, err error) {
	fields := []zap.Field{zap.String("op", op), zap.String("id", id), zap.Error(err)}
	if pkgerrors.KindOf(err) == pkgerrors.KindStorage {
		logger.Error("操作失败", fields...)
		return
	}
	logger.Warn("操作被拒绝", fields...)
}
