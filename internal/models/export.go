// internal/models/export.go
package models

import (
	"strings"
	"time"
)

// ExportFormat 导出格式
type ExportFormat string

const (
	FormatPDF  ExportFormat = "pdf"
	FormatPNG  ExportFormat = "png"
	FormatSVG  ExportFormat = "svg"
	FormatJSON ExportFormat = "json"
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"
)

// ParseExportFormat 规范化大小写，不做合法性判断
func ParseExportFormat(s string) ExportFormat {
	return ExportFormat(strings.ToLower(strings.TrimSpace(s)))
}

// IsImage png/svg 由渲染器直接截图
func (f ExportFormat) IsImage() bool {
	return f == FormatPNG || f == FormatSVG
}

// IsDocument 需要经过文档服务生成
func (f ExportFormat) IsDocument() bool {
	switch f {
	case FormatPDF, FormatJSON, FormatCSV, FormatXLSX:
		return true
	}
	return false
}

// Supported 是否支持该格式
func (f ExportFormat) Supported() bool {
	return f.IsImage() || f.IsDocument()
}

// Filename 下载文件名
func (f ExportFormat) Filename() string {
	return "chart." + string(f)
}

// ContentType 对应的 MIME 类型
func (f ExportFormat) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatPNG:
		return "image/png"
	case FormatSVG:
		return "image/svg+xml"
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// ExportRequest 导出请求，当前桩接口不需要请求体
type ExportRequest struct {
	Format ExportFormat `json:"format"`
}

// ExportResult 导出结果
type ExportResult struct {
	Format      ExportFormat `json:"format"`
	Filename    string       `json:"filename"`
	ContentType string       `json:"content_type"`
	Data        []byte       `json:"-"`
	Size        int64        `json:"size"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// NewExportResult 按格式填充文件名和类型
func NewExportResult(format ExportFormat, data []byte) *ExportResult {
	return &ExportResult{
		Format:      format,
		Filename:    format.Filename(),
		ContentType: format.ContentType(),
		Data:        data,
		Size:        int64(len(data)),
		GeneratedAt: time.Now(),
	}
}
