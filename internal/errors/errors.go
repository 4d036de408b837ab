// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

// ErrorType 定义错误类型
type ErrorType string

const (
	// 通用错误类型
	ErrorTypeValidation        ErrorType = "validation_error"
	ErrorTypeNotFound          ErrorType = "not_found"
	ErrorTypeError             ErrorType = "processing_error"
	ErrorTypeNetwork           ErrorType = "network_error"
	ErrorTypeUnsupportedFormat ErrorType = "unsupported_format"
	ErrorTypeConflict          ErrorType = "conflict"
	ErrorTypeTimeout           ErrorType = "timeout"
)

// AppError 应用程序错误结构
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
	Code    string // 用户友好的错误代码
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap 实现错误链接
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError 创建新的 AppError
func NewAppError(errType ErrorType, message string, originalError error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     originalError,
		Code:    generateErrorCode(errType),
	}
}

// ValidationKind 校验失败的种类
type ValidationKind string

const (
	MissingField ValidationKind = "missing_field"
	NotANumber   ValidationKind = "not_a_number"
)

// FieldError 描述具体哪个字段、哪一行没有通过校验。
// Index 为 -1 表示不属于某一行（例如坐标轴标题）。
type FieldError struct {
	Kind  ValidationKind
	Field string
	Index int
}

func (e *FieldError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Field)
	}
	return fmt.Sprintf("%s: %s[%d]", e.Kind, e.Field, e.Index)
}

// NewValidationError 创建验证错误
func NewValidationError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeValidation, message, originalError)
}

// NewFieldError 创建带字段定位信息的验证错误
func NewFieldError(kind ValidationKind, field string, index int, message string) *AppError {
	return NewValidationError(message, &FieldError{Kind: kind, Field: field, Index: index})
}

// NewNotFoundError 创建未找到错误
func NewNotFoundError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeNotFound, message, originalError)
}

// NewProcessingError 创建处理错误
func NewProcessingError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeError, message, originalError)
}

// NewNetworkError 创建网络错误（非 2xx 或传输失败）
func NewNetworkError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeNetwork, message, originalError)
}

// NewUnsupportedFormatError 创建不支持的导出格式错误
func NewUnsupportedFormatError(format string) *AppError {
	return NewAppError(ErrorTypeUnsupportedFormat, fmt.Sprintf("Unsupported format: %s", format), nil)
}

// NewConflictError 创建冲突错误
func NewConflictError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeConflict, message, originalError)
}

// NewTimeoutError 创建超时错误
func NewTimeoutError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeTimeout, message, originalError)
}

// TypeOf 返回错误链上第一个 AppError 的类型，非 AppError 返回空串
func TypeOf(err error) ErrorType {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError.Type
	}
	return ""
}

// IsValidationError 检查是否为验证错误
func IsValidationError(err error) bool {
	return TypeOf(err) == ErrorTypeValidation
}

// IsNotFoundError 检查是否为未找到错误
func IsNotFoundError(err error) bool {
	return TypeOf(err) == ErrorTypeNotFound
}

// IsNetworkError 检查是否为网络错误
func IsNetworkError(err error) bool {
	return TypeOf(err) == ErrorTypeNetwork
}

// IsUnsupportedFormat 检查是否为不支持的格式
func IsUnsupportedFormat(err error) bool {
	return TypeOf(err) == ErrorTypeUnsupportedFormat
}

// IsConflictError 检查是否为冲突错误
func IsConflictError(err error) bool {
	return TypeOf(err) == ErrorTypeConflict
}

// AsFieldError 取出错误链中的 FieldError
func AsFieldError(err error) (*FieldError, bool) {
	var fieldErr *FieldError
	if errors.As(err, &fieldErr) {
		return fieldErr, true
	}
	return nil, false
}

// generateErrorCode 根据错误类型生成错误代码
func generateErrorCode(errType ErrorType) string {
	switch errType {
	case ErrorTypeValidation:
		return "VALIDATION_ERROR"
	case ErrorTypeNotFound:
		return "NOT_FOUND"
	case ErrorTypeError:
		return "PROCESSING_ERROR"
	case ErrorTypeNetwork:
		return "NETWORK_ERROR"
	case ErrorTypeUnsupportedFormat:
		return "UNSUPPORTED_FORMAT"
	case ErrorTypeConflict:
		return "CONFLICT"
	case ErrorTypeTimeout:
		return "TIMEOUT"
	default:
		return "UNKNOWN_ERROR"
	}
}

// WrapError 包装现有错误
func WrapError(err error, message string, errType ErrorType) error {
	if err == nil {
		return nil
	}

	var appError *AppError
	if errors.As(err, &appError) {
		// 如果已经是 AppError，只更新消息
		return &AppError{
			Type:    appError.Type,
			Message: fmt.Sprintf("%s: %s", message, appError.Message),
			Err:     appError,
			Code:    appError.Code,
		}
	}

	// 否则创建新的 AppError
	return NewAppError(errType, message, err)
}
