// internal/api/response_helpers.go
package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	apperrors "github.com/Corphon/DataVisualizer/internal/errors"
	"github.com/Corphon/DataVisualizer/internal/models"
	"github.com/gin-gonic/gin"
)

// APIResponse 标准API响应格式
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"` // 用于调试和追踪
}

// APIError 标准错误格式
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// FieldErrorDetails 校验失败时附带的定位信息
type FieldErrorDetails struct {
	Field string `json:"field"`
	Index int    `json:"index"`
	Kind  string `json:"kind"`
}

// ResponseHelper 响应助手类
type ResponseHelper struct{}

// NewResponseHelper 创建响应助手
func NewResponseHelper() *ResponseHelper {
	return &ResponseHelper{}
}

// Success 成功响应
func (rh *ResponseHelper) Success(c *gin.Context, data interface{}, message ...string) {
	rh.respond(c, http.StatusOK, data, message...)
}

// Created 创建成功响应
func (rh *ResponseHelper) Created(c *gin.Context, data interface{}, message ...string) {
	rh.respond(c, http.StatusCreated, data, message...)
}

func (rh *ResponseHelper) respond(c *gin.Context, status int, data interface{}, message ...string) {
	response := &APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
		RequestID: rh.getRequestID(c),
	}
	if len(message) > 0 {
		response.Message = message[0]
	}
	c.JSON(status, response)
}

// Error 错误响应
func (rh *ResponseHelper) Error(c *gin.Context, statusCode int, errorCode, message string, details ...interface{}) {
	apiError := &APIError{
		Code:    errorCode,
		Message: message,
	}
	if len(details) > 0 {
		apiError.Details = details[0]
	}

	c.JSON(statusCode, &APIResponse{
		Success:   false,
		Error:     apiError,
		Timestamp: time.Now(),
		RequestID: rh.getRequestID(c),
	})
}

// BadRequest 400错误响应
func (rh *ResponseHelper) BadRequest(c *gin.Context, message string, details ...interface{}) {
	rh.Error(c, http.StatusBadRequest, ErrorBadRequest, message, details...)
}

// NotFound 404错误响应
func (rh *ResponseHelper) NotFound(c *gin.Context, code, message string, details ...interface{}) {
	rh.Error(c, http.StatusNotFound, code, message, details...)
}

// Conflict 409错误响应
func (rh *ResponseHelper) Conflict(c *gin.Context, code, message string) {
	rh.Error(c, http.StatusConflict, code, message)
}

// InternalError 500错误响应
func (rh *ResponseHelper) InternalError(c *gin.Context, message string, details ...interface{}) {
	rh.Error(c, http.StatusInternalServerError, ErrorInternalError, message, details...)
}

// AppError 按错误类型输出状态码；校验错误附带字段定位
func (rh *ResponseHelper) AppError(c *gin.Context, err error) {
	status := statusForError(err)
	code := ErrorInternalError
	message := err.Error()

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
		message = appErr.Message
	}

	if fieldErr, ok := apperrors.AsFieldError(err); ok {
		rh.Error(c, status, code, message, FieldErrorDetails{
			Field: fieldErr.Field,
			Index: fieldErr.Index,
			Kind:  string(fieldErr.Kind),
		})
		return
	}
	rh.Error(c, status, code, message)
}

// ExportError 导出失败
func (rh *ResponseHelper) ExportError(c *gin.Context, format models.ExportFormat, err error) {
	message := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	if apperrors.IsNetworkError(err) {
		message = fmt.Sprintf("Failed to export as %s", format)
	}
	rh.Error(c, statusForError(err), exportErrorCode(err), message)
}

// Attachment 以附件形式返回文件内容
func (rh *ResponseHelper) Attachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}

// ExportResponse 导出结果作为附件返回
func (rh *ResponseHelper) ExportResponse(c *gin.Context, result *models.ExportResult) {
	c.Header("Content-Length", fmt.Sprintf("%d", result.Size))
	rh.Attachment(c, result.Filename, result.ContentType, result.Data)
}

// getRequestID 获取请求ID
func (rh *ResponseHelper) getRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
