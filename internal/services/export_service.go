// internal/services/export_service.go
package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	apperrors "github.com/Corphon/DataVisualizer/internal/errors"
	"github.com/Corphon/DataVisualizer/internal/models"
	"github.com/Corphon/DataVisualizer/internal/storage"
	"github.com/Corphon/DataVisualizer/internal/utils"
)

// MsgNotRendered 还没有可截图的渲染器
const MsgNotRendered = "chart is not rendered yet"

// DocumentFetcher 获取 pdf/json/csv/xlsx 文件内容
type DocumentFetcher interface {
	Fetch(ctx context.Context, format models.ExportFormat, spec *models.ChartSpec) ([]byte, error)
}

// LocalDocumentFetcher 进程内生成
type LocalDocumentFetcher struct {
	Documents *DocumentService
}

// Fetch 实现 DocumentFetcher
func (f LocalDocumentFetcher) Fetch(ctx context.Context, format models.ExportFormat, spec *models.ChartSpec) ([]byte, error) {
	return f.Documents.Generate(ctx, format, spec)
}

// HTTPDocumentFetcher 通过后端接口获取。
// Live 为 false 时走 GET /api/download-*，内容是固定示例；xlsx 没有桩接口，总是走实时导出。
type HTTPDocumentFetcher struct {
	Client *ProcessClient
	Live   bool
}

// Fetch 实现 DocumentFetcher
func (f HTTPDocumentFetcher) Fetch(ctx context.Context, format models.ExportFormat, spec *models.ChartSpec) ([]byte, error) {
	if !f.Live && format != models.FormatXLSX {
		return f.Client.Download(ctx, format)
	}
	return f.Client.Export(ctx, format, spec)
}

// DownloadSink 接收导出结果（浏览器下载、写磁盘等）
type DownloadSink interface {
	Deliver(result *models.ExportResult) error
}

// DirectorySink 把导出文件写入目录
type DirectorySink struct {
	Store *storage.FileStorage
	Dir   string
}

// Deliver 实现 DownloadSink
func (d DirectorySink) Deliver(result *models.ExportResult) error {
	if err := d.Store.WriteFile(d.Dir, result.Filename, result.Data); err != nil {
		return apperrors.NewProcessingError("write export file", err)
	}
	return nil
}

// ExportService 按格式分派导出：png/svg 由渲染器截图，其余交给 DocumentFetcher
type ExportService struct {
	fetcher  DocumentFetcher
	gate     *ActionGate
	notifier Notifier
	metrics  *utils.PipelineMetrics
	logger   *utils.Logger

	mu     sync.RWMutex
	width  int
	height int
}

// NewExportService 创建导出服务
func NewExportService(fetcher DocumentFetcher, gate *ActionGate, notifier Notifier, metrics *utils.PipelineMetrics) *ExportService {
	if gate == nil {
		gate = NewActionGate()
	}
	if metrics == nil {
		metrics = utils.NewPipelineMetrics(nil)
	}
	return &ExportService{
		fetcher:  fetcher,
		gate:     gate,
		notifier: notifier,
		metrics:  metrics,
		logger:   utils.GetLogger(),
		width:    ExportImageWidth,
		height:   ExportImageHeight,
	}
}

// SetImageSize 修改截图尺寸
func (s *ExportService) SetImageSize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if width > 0 {
		s.width = width
	}
	if height > 0 {
		s.height = height
	}
}

// SetLiveExports 切换后端文档来源，只对 HTTPDocumentFetcher 生效
func (s *ExportService) SetLiveExports(live bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.fetcher.(HTTPDocumentFetcher); ok {
		f.Live = live
		s.fetcher = f
	}
}

// Fetcher 当前使用的文档来源
func (s *ExportService) Fetcher() DocumentFetcher {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetcher
}

// Export 生成导出文件并发出成功/失败提示。同一时间只允许一个导出。
func (s *ExportService) Export(ctx context.Context, format models.ExportFormat, spec *models.ChartSpec, handle ImageCapturer) (*models.ExportResult, error) {
	start := time.Now()

	result, err := s.export(ctx, format, spec, handle)
	s.metrics.RecordExport(string(format), err == nil, time.Since(start))

	if err != nil {
		s.logger.Warn("export failed", map[string]interface{}{
			"format": string(format),
			"error":  err.Error(),
		})
		notifyFailure(s.notifier, "Export Failed", exportFailureMessage(format, err))
		return nil, err
	}

	notifySuccess(s.notifier, "Export Successful",
		fmt.Sprintf("Chart exported as %s", strings.ToUpper(string(format))))
	return result, nil
}

// ExportTo 导出并交给 sink
func (s *ExportService) ExportTo(ctx context.Context, format models.ExportFormat, spec *models.ChartSpec, handle ImageCapturer, sink DownloadSink) (*models.ExportResult, error) {
	result, err := s.Export(ctx, format, spec, handle)
	if err != nil {
		return nil, err
	}
	if err := sink.Deliver(result); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *ExportService) export(ctx context.Context, format models.ExportFormat, spec *models.ChartSpec, handle ImageCapturer) (*models.ExportResult, error) {
	if !format.Supported() {
		return nil, apperrors.NewUnsupportedFormatError(string(format))
	}

	release, ok := s.gate.TryAcquire(GateExport)
	if !ok {
		return nil, apperrors.NewConflictError("export already in progress", nil)
	}
	defer release()

	var data []byte
	var err error
	if format.IsImage() {
		if handle == nil {
			return nil, apperrors.NewProcessingError(MsgNotRendered, nil)
		}
		s.mu.RLock()
		width, height := s.width, s.height
		s.mu.RUnlock()
		data, err = handle.ToImage(ctx, format, width, height)
	} else {
		if spec == nil {
			return nil, ErrNoChartData()
		}
		data, err = s.Fetcher().Fetch(ctx, format, spec)
	}
	if err != nil {
		return nil, err
	}

	return models.NewExportResult(format, data), nil
}

// exportFailureMessage 网络错误沿用原来的提示文案
func exportFailureMessage(format models.ExportFormat, err error) string {
	if apperrors.IsNetworkError(err) {
		return fmt.Sprintf("Failed to export as %s", format)
	}
	return messageOf(err)
}
