// internal/api/error_codes.go
package api

import (
	"net/http"

	apperrors "github.com/Corphon/DataVisualizer/internal/errors"
)

// API错误代码常量
const (
	// 通用错误
	ErrorBadRequest    = "BAD_REQUEST"
	ErrorNotFound      = "NOT_FOUND"
	ErrorInternalError = "INTERNAL_ERROR"
	ErrorConflict      = "CONFLICT"
	ErrorRateLimited   = "RATE_LIMIT_EXCEEDED"

	// 图表相关错误
	ErrorChartDataNotFound = "CHART_DATA_NOT_FOUND"
	ErrorValidationFailed  = "VALIDATION_ERROR"
	ErrorSubmitInProgress  = "SUBMIT_IN_PROGRESS"

	// 导出相关错误
	ErrorExportFailed        = "EXPORT_FAILED"
	ErrorExportFormatInvalid = "EXPORT_FORMAT_INVALID"
	ErrorExportInProgress    = "EXPORT_IN_PROGRESS"
	ErrorExportUpstream      = "EXPORT_UPSTREAM_FAILED"
	ErrorExportTimeout       = "EXPORT_TIMEOUT"
)

// statusForError 按 AppError 类型映射 HTTP 状态码
func statusForError(err error) int {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeValidation, apperrors.ErrorTypeUnsupportedFormat:
		return http.StatusBadRequest
	case apperrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case apperrors.ErrorTypeConflict:
		return http.StatusConflict
	case apperrors.ErrorTypeNetwork:
		return http.StatusBadGateway
	case apperrors.ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// exportErrorCode 导出接口使用更具体的错误代码
func exportErrorCode(err error) string {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeUnsupportedFormat:
		return ErrorExportFormatInvalid
	case apperrors.ErrorTypeNotFound:
		return ErrorChartDataNotFound
	case apperrors.ErrorTypeConflict:
		return ErrorExportInProgress
	case apperrors.ErrorTypeNetwork:
		return ErrorExportUpstream
	case apperrors.ErrorTypeTimeout:
		return ErrorExportTimeout
	default:
		return ErrorExportFailed
	}
}
