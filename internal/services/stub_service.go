// internal/services/stub_service.go
package services

import (
	"context"
	"encoding/json"
	"time"

	apperrors "github.com/Corphon/DataVisualizer/internal/errors"
	"github.com/Corphon/DataVisualizer/internal/models"
)

// 桩接口返回的固定内容
const (
	CannedCSV = "Month,Value\nJan,10\nFeb,25\nMar,15\nApr,30\nMay,45"
	CannedPDF = "PDF data would be returned here"
)

// MsgMissingFields process-data 缺少 chartType 或 data
const MsgMissingFields = "Missing required fields"

// CannedChartDocument download-json 返回的示例图表
func CannedChartDocument() ChartDocument {
	return ChartDocument{
		ChartType: models.ChartLine,
		Data: models.ChartData{
			X: []string{"Jan", "Feb", "Mar", "Apr", "May"},
			Y: []float64{10, 25, 15, 30, 45},
		},
		Config: models.ChartConfig{
			Title:      "Sample Chart",
			XAxisLabel: "Month",
			YAxisLabel: "Value",
		},
	}
}

// StubService 模拟后端：处理数据、返回固定的下载内容
type StubService struct {
	delay     time.Duration
	validator *Validator
}

// NewStubService delay 为模拟的处理耗时
func NewStubService(delay time.Duration) *StubService {
	return &StubService{
		delay:     delay,
		validator: NewValidator(),
	}
}

// wait 模拟处理延迟，可被取消
func (s *StubService) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return apperrors.NewTimeoutError("request cancelled", ctx.Err())
	case <-timer.C:
		return nil
	}
}

// Process 与本地 Transform 做同样的映射
func (s *StubService) Process(ctx context.Context, req models.ProcessRequest) (*models.ProcessResponse, error) {
	if req.ChartType == "" || len(req.Data) == 0 || string(req.Data) == "null" {
		return nil, apperrors.NewValidationError(MsgMissingFields, nil)
	}

	input, err := models.DecodeChartInput(req.ChartType, req.Data)
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid chart data", err)
	}
	if err := s.validator.Validate(req.ChartType, input); err != nil {
		return nil, err
	}

	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	spec, err := Transform(req.ChartType, input)
	if err != nil {
		return nil, err
	}
	resp := spec.ToProcessResponse()
	return &resp, nil
}

// Canned 返回某种格式的固定下载内容
func (s *StubService) Canned(ctx context.Context, format models.ExportFormat) ([]byte, error) {
	var body []byte
	switch format {
	case models.FormatCSV:
		body = []byte(CannedCSV)
	case models.FormatPDF:
		body = []byte(CannedPDF)
	case models.FormatJSON:
		data, err := json.Marshal(CannedChartDocument())
		if err != nil {
			return nil, apperrors.NewProcessingError("Failed to generate JSON", err)
		}
		body = data
	default:
		return nil, apperrors.NewUnsupportedFormatError(string(format))
	}

	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return body, nil
}
