// internal/services/process_client.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/Corphon/DataVisualizer/internal/errors"
	"github.com/Corphon/DataVisualizer/internal/models"
)

// 响应体读取上限
const maxResponseBytes = 32 << 20

// ProcessClient 调用处理/导出桩接口的 HTTP 客户端
type ProcessClient struct {
	baseURL string
	client  *http.Client
}

// NewProcessClient 创建客户端，baseURL 形如 http://localhost:5000
func NewProcessClient(baseURL string, timeout time.Duration) *ProcessClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ProcessClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// BaseURL 后端地址
func (c *ProcessClient) BaseURL() string {
	return c.baseURL
}

// Process POST /api/process-data
func (c *ProcessClient) Process(ctx context.Context, chartType models.ChartType, input models.ChartInput) (*models.ProcessResponse, error) {
	data, err := json.Marshal(input)
	if err != nil {
		return nil, apperrors.NewProcessingError("encode chart input", err)
	}
	body, err := json.Marshal(models.ProcessRequest{ChartType: chartType, Data: data})
	if err != nil {
		return nil, apperrors.NewProcessingError("encode process request", err)
	}

	respBody, err := c.do(ctx, http.MethodPost, "/api/process-data", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var resp models.ProcessResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, apperrors.NewNetworkError("decode process-data response", err)
	}
	return &resp, nil
}

// Download GET /api/download-{format}，返回桩接口的固定内容
func (c *ProcessClient) Download(ctx context.Context, format models.ExportFormat) ([]byte, error) {
	return c.do(ctx, http.MethodGet, "/api/download-"+string(format), "", nil)
}

// Export POST /api/export/{format}，由当前图表生成文件
func (c *ProcessClient) Export(ctx context.Context, format models.ExportFormat, spec *models.ChartSpec) ([]byte, error) {
	body, err := json.Marshal(spec)
	if err != nil {
		return nil, apperrors.NewProcessingError("encode chart spec", err)
	}
	return c.do(ctx, http.MethodPost, "/api/export/"+string(format), "application/json", bytes.NewReader(body))
}

// do 非 2xx 或传输失败都返回 NetworkError
func (c *ProcessClient) do(ctx context.Context, method, path, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, apperrors.NewNetworkError("build request", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperrors.NewNetworkError(fmt.Sprintf("%s %s failed", method, path), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, apperrors.NewNetworkError("read response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.NewNetworkError(
			fmt.Sprintf("%s %s returned %d", method, path, resp.StatusCode),
			fmt.Errorf("%s", strings.TrimSpace(string(data))))
	}
	return data, nil
}

// RemoteTransformer 经由 /api/process-data 完成转换
type RemoteTransformer struct {
	Client *ProcessClient
}

// Transform 实现 Transformer
func (r RemoteTransformer) Transform(ctx context.Context, chartType models.ChartType, input models.ChartInput) (*models.ChartSpec, error) {
	resp, err := r.Client.Process(ctx, chartType, input)
	if err != nil {
		return nil, err
	}
	return models.SpecFromResponse(chartType, *resp), nil
}
