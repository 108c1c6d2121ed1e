package errors

import (
	"errors"
	"fmt"
)

// Kind 业务错误类别，决定 HTTP 状态码
type Kind int

const (
	KindValidation Kind = iota + 1 // 422 参数/业务校验失败
	KindNotFound                   // 404 资源不存在
	KindConflict                   // 422 状态冲突（重复年份、已关闭周等）
	KindStorage                    // 500 持久化失败
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// AppError 统一业务错误
//
// Code 为业务错误码（与前端约定），Fields 为字段级校验详情。
// 以 Kind + Code 判等，WithField / Wrap 派生出的副本仍可被 errors.Is 命中。
type AppError struct {
	Kind    Kind
	Code    int
	Message string
	Fields  map[string]string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Is 按 Kind + Code 匹配
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// WithField 返回附带字段详情的副本
func (e *AppError) WithField(field, reason string) *AppError {
	cp := *e
	cp.Fields = make(map[string]string, len(e.Fields)+1)
	for k, v := range e.Fields {
		cp.Fields[k] = v
	}
	cp.Fields[field] = reason
	return &cp
}

// Wrap 返回包裹底层错误的副本
func (e *AppError) Wrap(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// ── 构造函数 ──

func NewValidation(code int, message string) *AppError {
	return &AppError{Kind: KindValidation, Code: code, Message: message}
}

func NewNotFound(code int, message string) *AppError {
	return &AppError{Kind: KindNotFound, Code: code, Message: message}
}

func NewConflict(code int, message string) *AppError {
	return &AppError{Kind: KindConflict, Code: code, Message: message}
}

// Storage 将底层持久化错误包装为 500 错误；已是 AppError 的原样返回
func Storage(err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	return &AppError{Kind: KindStorage, Code: 50000, Message: "数据存储失败", Err: err}
}

// KindOf 提取错误类别，非 AppError 视为 KindStorage
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindStorage
}

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = NewConflict(10009, "数据已被其他操作修改，请刷新后重试")
