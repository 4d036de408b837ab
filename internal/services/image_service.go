// internal/services/image_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	apperrors "github.com/Corphon/DataVisualizer/internal/errors"
	"github.com/Corphon/DataVisualizer/internal/models"
)

// 导出图片默认尺寸
const (
	ExportImageWidth  = 800
	ExportImageHeight = 600
)

// ImageCapturer 渲染器句柄：把已渲染的图表截图为 png/svg
type ImageCapturer interface {
	ToImage(ctx context.Context, format models.ExportFormat, width, height int) ([]byte, error)
}

// ChartRenderer 用 go-chart 绘制 RenderConfig
type ChartRenderer struct {
	config *models.RenderConfig
}

// NewChartRenderer 为渲染配置创建句柄，配置为空时失败
func NewChartRenderer(config *models.RenderConfig) (*ChartRenderer, error) {
	if config == nil || len(config.Data) == 0 {
		return nil, apperrors.NewProcessingError(MsgRenderFailed, nil)
	}
	return &ChartRenderer{config: config}, nil
}

// Config 渲染配置
func (r *ChartRenderer) Config() *models.RenderConfig {
	return r.config
}

// ToImage 实现 ImageCapturer
func (r *ChartRenderer) ToImage(ctx context.Context, format models.ExportFormat, width, height int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var provider chart.RendererProvider
	switch format {
	case models.FormatPNG:
		provider = chart.PNG
	case models.FormatSVG:
		provider = chart.SVG
	default:
		return nil, apperrors.NewUnsupportedFormatError(string(format))
	}

	if width <= 0 {
		width = ExportImageWidth
	}
	if height <= 0 {
		height = ExportImageHeight
	}

	trace := r.config.Data[0]
	layout := r.config.Layout

	var buf bytes.Buffer
	var err error
	switch trace.Type {
	case models.ChartLine:
		err = renderLine(&buf, provider, trace, layout, width, height)
	case models.ChartBar:
		err = renderBar(&buf, provider, trace, layout, width, height)
	case models.ChartPie:
		err = renderPie(&buf, provider, trace, layout, width, height)
	default:
		return nil, apperrors.NewProcessingError(MsgRenderFailed,
			fmt.Errorf("unsupported trace type %q", trace.Type))
	}
	if err != nil {
		return nil, apperrors.NewProcessingError("render chart image", err)
	}
	return buf.Bytes(), nil
}

// hexColor "#4F46E5" -> drawing.Color
func hexColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}

func traceColor(trace models.RenderTrace) drawing.Color {
	if trace.Marker != nil && trace.Marker.Color != "" {
		return hexColor(trace.Marker.Color)
	}
	return hexColor(LineColor)
}

func padding(m models.RenderMargin) chart.Style {
	return chart.Style{Padding: chart.Box{Top: m.T / 2, Left: m.L / 2, Right: m.R / 2, Bottom: m.B / 2}}
}

// flatRange 所有值相等时 go-chart 会拒绝零跨度的坐标轴，手动撑开
func flatRange(values []float64) *chart.ContinuousRange {
	if len(values) == 0 {
		return nil
	}
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if max > min {
		return nil
	}
	return &chart.ContinuousRange{Min: min - 1, Max: max + 1}
}

func axisTitle(axis *models.RenderAxis) string {
	if axis == nil {
		return ""
	}
	return axis.Title
}

func renderLine(buf *bytes.Buffer, provider chart.RendererProvider, trace models.RenderTrace, layout models.RenderLayout, width, height int) error {
	xs := make([]float64, len(trace.Y))
	ticks := make([]chart.Tick, len(trace.Y))
	for i := range trace.Y {
		xs[i] = float64(i)
		label := ""
		if i < len(trace.X) {
			label = trace.X[i]
		}
		ticks[i] = chart.Tick{Value: float64(i), Label: label}
	}

	color := traceColor(trace)
	yAxis := chart.YAxis{Name: axisTitle(layout.YAxis)}
	if rng := flatRange(trace.Y); rng != nil {
		yAxis.Range = rng
	}

	ch := chart.Chart{
		Title:      layout.Title,
		Width:      width,
		Height:     height,
		Background: padding(layout.Margin),
		XAxis:      chart.XAxis{Name: axisTitle(layout.XAxis), Ticks: ticks},
		YAxis:      yAxis,
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    layout.Title,
				XValues: xs,
				YValues: trace.Y,
				Style: chart.Style{
					StrokeColor: color,
					StrokeWidth: 2,
					DotColor:    color,
					DotWidth:    4,
				},
			},
		},
	}
	return ch.Render(provider, buf)
}

func renderBar(buf *bytes.Buffer, provider chart.RendererProvider, trace models.RenderTrace, layout models.RenderLayout, width, height int) error {
	color := traceColor(trace)
	bars := make([]chart.Value, len(trace.Y))
	for i, y := range trace.Y {
		label := ""
		if i < len(trace.X) {
			label = trace.X[i]
		}
		bars[i] = chart.Value{
			Value: y,
			Label: label,
			Style: chart.Style{FillColor: color, StrokeColor: color},
		}
	}

	yAxis := chart.YAxis{Name: axisTitle(layout.YAxis)}
	if rng := flatRange(trace.Y); rng != nil {
		yAxis.Range = rng
	}

	bc := chart.BarChart{
		Title:      layout.Title,
		Width:      width,
		Height:     height,
		Background: padding(layout.Margin),
		BarWidth:   barWidth(width, len(bars)),
		Bars:       bars,
		YAxis:      yAxis,
	}
	return bc.Render(provider, buf)
}

// barWidth 按画布宽度均分，限制在 [8, 60]
func barWidth(width, n int) int {
	if n <= 0 {
		return 60
	}
	w := width / (n * 2)
	if w < 8 {
		return 8
	}
	if w > 60 {
		return 60
	}
	return w
}

func renderPie(buf *bytes.Buffer, provider chart.RendererProvider, trace models.RenderTrace, layout models.RenderLayout, width, height int) error {
	total := 0.0
	for _, v := range trace.Values {
		if v > 0 {
			total += v
		}
	}
	if total <= 0 {
		return fmt.Errorf("pie chart needs at least one positive value")
	}

	// 非正数的扇区无法绘制，直接略过
	values := make([]chart.Value, 0, len(trace.Values))
	for i, v := range trace.Values {
		if v <= 0 {
			continue
		}
		label := ""
		if i < len(trace.Labels) {
			label = trace.Labels[i]
		}
		values = append(values, chart.Value{
			Value: v,
			Label: fmt.Sprintf("%s (%.1f%%)", label, v/total*100),
		})
	}

	pc := chart.PieChart{
		Title:      layout.Title,
		Width:      width,
		Height:     height,
		Background: padding(layout.Margin),
		Values:     values,
	}
	return pc.Render(provider, buf)
}
