// internal/services/pipeline_service.go
package services

import (
	"context"

	apperrors "github.com/Corphon/DataVisualizer/internal/errors"
	"github.com/Corphon/DataVisualizer/internal/models"
	"github.com/Corphon/DataVisualizer/internal/utils"
)

// OutputPageRedirect 提交成功后跳转的页面
const OutputPageRedirect = "/output"

// SubmitResult 提交结果，Envelope 可以直接交给输出阶段
type SubmitResult struct {
	Envelope *models.ChartEnvelope `json:"envelope"`
	Render   *models.RenderConfig  `json:"render"`
	Redirect string                `json:"redirect"`
}

// OutputView 输出页需要的全部内容
type OutputView struct {
	Envelope *models.ChartEnvelope
	Spec     *models.ChartSpec
	Config   *models.RenderConfig // 无法渲染时为 nil
	Handle   ImageCapturer        // 无法渲染时为 nil
}

// PipelineService 串起 校验 -> 转换 -> 单槽交接 -> 渲染 -> 导出
type PipelineService struct {
	validator   *Validator
	transformer Transformer
	bridge      Bridge
	exporter    *ExportService
	gate        *ActionGate
	notifier    Notifier
	metrics     *utils.PipelineMetrics
	stats       *StatsService
	logger      *utils.Logger
}

// PipelineOptions 构造参数，未设置的使用默认实现
type PipelineOptions struct {
	Transformer Transformer
	Bridge      Bridge
	Exporter    *ExportService
	Gate        *ActionGate
	Notifier    Notifier
	Metrics     *utils.PipelineMetrics
	Stats       *StatsService // 可选
}

// NewPipelineService 创建流水线
func NewPipelineService(opts PipelineOptions) *PipelineService {
	if opts.Transformer == nil {
		opts.Transformer = LocalTransformer{}
	}
	if opts.Bridge == nil {
		opts.Bridge = NewMemoryBridge()
	}
	if opts.Gate == nil {
		opts.Gate = NewActionGate()
	}
	if opts.Metrics == nil {
		opts.Metrics = utils.NewPipelineMetrics(nil)
	}
	if opts.Exporter == nil {
		opts.Exporter = NewExportService(
			LocalDocumentFetcher{Documents: NewDocumentService(0, 0)},
			opts.Gate, opts.Notifier, opts.Metrics)
	}

	return &PipelineService{
		validator:   NewValidator(),
		transformer: opts.Transformer,
		bridge:      opts.Bridge,
		exporter:    opts.Exporter,
		gate:        opts.Gate,
		notifier:    opts.Notifier,
		metrics:     opts.Metrics,
		stats:       opts.Stats,
		logger:      utils.GetLogger(),
	}
}

// Gate 共享的操作闸门
func (p *PipelineService) Gate() *ActionGate {
	return p.gate
}

// Exporter 导出服务
func (p *PipelineService) Exporter() *ExportService {
	return p.exporter
}

// Submit 校验、转换并保存到单槽；提交进行中时返回冲突错误
func (p *PipelineService) Submit(ctx context.Context, chartType models.ChartType, input models.ChartInput) (*SubmitResult, error) {
	release, ok := p.gate.TryAcquire(GateSubmit)
	if !ok {
		return nil, apperrors.NewConflictError("submit already in progress", nil)
	}
	defer release()

	if err := p.validator.Validate(chartType, input); err != nil {
		if fieldErr, ok := apperrors.AsFieldError(err); ok {
			p.metrics.RecordValidationFailure(string(fieldErr.Kind))
		} else {
			p.metrics.RecordValidationFailure("chart_type")
		}
		p.metrics.RecordSubmission(string(chartType), false)
		notifyFailure(p.notifier, "Validation Error", messageOf(err))
		return nil, err
	}

	spec, err := p.transformer.Transform(ctx, chartType, input)
	if err != nil {
		p.metrics.RecordSubmission(string(chartType), false)
		p.metrics.RecordError(string(apperrors.TypeOf(err)), "transform")
		notifyFailure(p.notifier, "Error", messageOf(err))
		return nil, err
	}

	env := models.NewChartEnvelope(spec, input)
	if err := p.bridge.Save(env); err != nil {
		p.metrics.RecordSubmission(string(chartType), false)
		notifyFailure(p.notifier, "Error", messageOf(err))
		return nil, err
	}

	p.metrics.RecordSubmission(string(chartType), true)
	if p.stats != nil {
		p.stats.RecordChart(string(chartType))
	}
	p.logger.Info("chart submitted", map[string]interface{}{
		"chart_type": string(chartType),
		"points":     len(spec.X) + len(spec.Labels),
	})

	return &SubmitResult{
		Envelope: env,
		Render:   ToRenderable(spec),
		Redirect: OutputPageRedirect,
	}, nil
}

// SubmitForm 提交表单当前内容
func (p *PipelineService) SubmitForm(ctx context.Context, form *FormState) (*SubmitResult, error) {
	return p.Submit(ctx, form.ChartType(), form.Input())
}

// Current 读取单槽，没有数据时返回 NotFound
func (p *PipelineService) Current() (*models.ChartEnvelope, error) {
	env, ok := p.bridge.Load()
	if !ok {
		return nil, ErrNoChartData()
	}
	return env, nil
}

// Open 为输出页准备内容；渲染失败不算错误，Config/Handle 为 nil
func (p *PipelineService) Open(env *models.ChartEnvelope) *OutputView {
	view := &OutputView{Envelope: env, Spec: env.Spec()}
	view.Config = ToRenderable(view.Spec)
	if view.Config != nil {
		if renderer, err := NewChartRenderer(view.Config); err == nil {
			view.Handle = renderer
		}
	}
	return view
}

// OpenCurrent 读取单槽并准备输出页
func (p *PipelineService) OpenCurrent() (*OutputView, error) {
	env, err := p.Current()
	if err != nil {
		return nil, err
	}
	return p.Open(env), nil
}

// Export 导出输出页上的图表
func (p *PipelineService) Export(ctx context.Context, format models.ExportFormat, view *OutputView) (*models.ExportResult, error) {
	var handle ImageCapturer
	var spec *models.ChartSpec
	if view != nil {
		spec = view.Spec
		handle = view.Handle
	}
	result, err := p.exporter.Export(ctx, format, spec, handle)
	if err == nil && p.stats != nil {
		p.stats.RecordExport(string(format))
	}
	return result, err
}

// ExportCurrent 读取单槽后导出
func (p *PipelineService) ExportCurrent(ctx context.Context, format models.ExportFormat) (*models.ExportResult, error) {
	view, err := p.OpenCurrent()
	if err != nil {
		return nil, err
	}
	return p.Export(ctx, format, view)
}

// Clear 清空单槽
func (p *PipelineService) Clear() error {
	return p.bridge.Clear()
}

func messageOf(err error) string {
	if appErr, ok := err.(*apperrors.AppError); ok {
		return appErr.Message
	}
	return err.Error()
}
