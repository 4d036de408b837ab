// internal/services/document_service.go
package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"image/png"
	"strconv"
	"sync"

	"github.com/xuri/excelize/v2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	apperrors "github.com/Corphon/DataVisualizer/internal/errors"
	"github.com/Corphon/DataVisualizer/internal/models"
)

const xlsxSheet = "Sheet1"

// DocumentService 根据当前图表生成 pdf/json/csv/xlsx 文件
type DocumentService struct {
	mu     sync.RWMutex
	width  int
	height int
}

// NewDocumentService 指定 pdf 页面使用的像素尺寸
func NewDocumentService(width, height int) *DocumentService {
	if width <= 0 {
		width = ExportImageWidth
	}
	if height <= 0 {
		height = ExportImageHeight
	}
	return &DocumentService{width: width, height: height}
}

// SetPageSize 修改 pdf 页面尺寸，非正数保持原值
func (s *DocumentService) SetPageSize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if width > 0 {
		s.width = width
	}
	if height > 0 {
		s.height = height
	}
}

// PageSize 当前 pdf 页面像素尺寸
func (s *DocumentService) PageSize() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height
}

// Generate 按格式生成文件内容
func (s *DocumentService) Generate(ctx context.Context, format models.ExportFormat, spec *models.ChartSpec) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if spec == nil {
		return nil, ErrNoChartData()
	}

	switch format {
	case models.FormatCSV:
		return s.CSV(spec)
	case models.FormatJSON:
		return s.JSON(spec)
	case models.FormatPDF:
		return s.PDF(ctx, spec)
	case models.FormatXLSX:
		return s.XLSX(spec)
	default:
		return nil, apperrors.NewUnsupportedFormatError(string(format))
	}
}

// rows 统一成 (类别, 数值) 两列
func specRows(spec *models.ChartSpec) (header [2]string, labels []string, values []float64) {
	if spec.ChartType == models.ChartPie {
		return [2]string{"Label", "Value"}, spec.Labels, spec.Values
	}
	x, y := spec.XAxisTitle, spec.YAxisTitle
	if x == "" {
		x = "X"
	}
	if y == "" {
		y = "Y"
	}
	return [2]string{x, y}, spec.X, spec.Y
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// CSV 表头为坐标轴标题（饼图为 Label,Value），每个数据点一行
func (s *DocumentService) CSV(spec *models.ChartSpec) ([]byte, error) {
	header, labels, values := specRows(spec)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header[:]); err != nil {
		return nil, apperrors.NewProcessingError("write csv", err)
	}
	for i, v := range values {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		if err := w.Write([]string{label, formatNumber(v)}); err != nil {
			return nil, apperrors.NewProcessingError("write csv", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, apperrors.NewProcessingError("write csv", err)
	}
	return buf.Bytes(), nil
}

// ChartDocument json 导出的结构，与桩接口返回的示例一致
type ChartDocument struct {
	ChartType models.ChartType   `json:"chartType"`
	Data      models.ChartData   `json:"data"`
	Config    models.ChartConfig `json:"config"`
}

// JSON {chartType, data, config}
func (s *DocumentService) JSON(spec *models.ChartSpec) ([]byte, error) {
	resp := spec.ToProcessResponse()
	data, err := json.MarshalIndent(ChartDocument{
		ChartType: spec.ChartType,
		Data:      resp.ChartData,
		Config:    resp.Config,
	}, "", "  ")
	if err != nil {
		return nil, apperrors.NewProcessingError("encode json", err)
	}
	return data, nil
}

// PDF 折线/柱状图直接用 gonum/plot 绘制；饼图先用 go-chart 渲染再嵌入
func (s *DocumentService) PDF(ctx context.Context, spec *models.ChartSpec) ([]byte, error) {
	p := plot.New()
	p.Title.Text = spec.Title

	switch spec.ChartType {
	case models.ChartLine, models.ChartBar:
		if err := s.addXY(p, spec); err != nil {
			return nil, apperrors.NewProcessingError("build pdf plot", err)
		}
	case models.ChartPie:
		if err := s.addPieImage(ctx, p, spec); err != nil {
			return nil, err
		}
	default:
		return nil, apperrors.NewProcessingError(MsgRenderFailed, nil)
	}

	// 96 dpi 像素换算成点
	width, height := s.PageSize()
	w := vg.Length(width) * vg.Inch / 96
	h := vg.Length(height) * vg.Inch / 96
	writer, err := p.WriterTo(w, h, "pdf")
	if err != nil {
		return nil, apperrors.NewProcessingError("create pdf writer", err)
	}

	var buf bytes.Buffer
	if _, err := writer.WriteTo(&buf); err != nil {
		return nil, apperrors.NewProcessingError("write pdf", err)
	}
	return buf.Bytes(), nil
}

func (s *DocumentService) addXY(p *plot.Plot, spec *models.ChartSpec) error {
	p.X.Label.Text = spec.XAxisTitle
	p.Y.Label.Text = spec.YAxisTitle
	p.Add(plotter.NewGrid())

	if spec.ChartType == models.ChartBar {
		bars, err := plotter.NewBarChart(plotter.Values(spec.Y), vg.Points(20))
		if err != nil {
			return err
		}
		bars.Color = hexColor(BarColor)
		bars.LineStyle.Width = 0
		p.Add(bars)
	} else {
		pts := make(plotter.XYs, len(spec.Y))
		for i, y := range spec.Y {
			pts[i] = plotter.XY{X: float64(i), Y: y}
		}
		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return err
		}
		line.Color = hexColor(LineColor)
		line.LineStyle.Width = vg.Points(2)
		points.Color = hexColor(LineColor)
		p.Add(line, points)
	}

	p.NominalX(spec.X...)
	return nil
}

func (s *DocumentService) addPieImage(ctx context.Context, p *plot.Plot, spec *models.ChartSpec) error {
	renderer, err := NewChartRenderer(ToRenderable(spec))
	if err != nil {
		return err
	}
	width, height := s.PageSize()
	data, err := renderer.ToImage(ctx, models.FormatPNG, width, height)
	if err != nil {
		return err
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return apperrors.NewProcessingError("decode pie image", err)
	}

	p.HideAxes()
	p.Title.Text = ""
	p.Add(plotter.NewImage(img, 0, 0, float64(width), float64(height)))
	return nil
}

// XLSX 数据表写在 Sheet1 的 A/B 两列，右侧插入原生图表
func (s *DocumentService) XLSX(spec *models.ChartSpec) ([]byte, error) {
	header, labels, values := specRows(spec)

	f := excelize.NewFile()
	defer f.Close()

	for col, text := range header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(xlsxSheet, cell, text); err != nil {
			return nil, apperrors.NewProcessingError("write xlsx header", err)
		}
	}
	for i, v := range values {
		labelCell, _ := excelize.CoordinatesToCellName(1, i+2)
		valueCell, _ := excelize.CoordinatesToCellName(2, i+2)
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		if err := f.SetCellValue(xlsxSheet, labelCell, label); err != nil {
			return nil, apperrors.NewProcessingError("write xlsx row", err)
		}
		if err := f.SetCellValue(xlsxSheet, valueCell, v); err != nil {
			return nil, apperrors.NewProcessingError("write xlsx row", err)
		}
	}

	if len(values) > 0 {
		if err := f.AddChart(xlsxSheet, "D2", xlsxChart(spec, len(values))); err != nil {
			return nil, apperrors.NewProcessingError("add xlsx chart", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, apperrors.NewProcessingError("write xlsx", err)
	}
	return buf.Bytes(), nil
}

func xlsxChart(spec *models.ChartSpec, n int) *excelize.Chart {
	last := n + 1
	chartType := excelize.Line
	switch spec.ChartType {
	case models.ChartBar:
		chartType = excelize.Col
	case models.ChartPie:
		chartType = excelize.Pie
	}

	c := &excelize.Chart{
		Type: chartType,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$B$1", xlsxSheet),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", xlsxSheet, last),
			Values:     fmt.Sprintf("%s!$B$2:$B$%d", xlsxSheet, last),
		}},
		Title: []excelize.RichTextRun{{Text: spec.Title}},
	}
	if spec.ChartType != models.ChartPie {
		c.XAxis = excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: spec.XAxisTitle}}}
		c.YAxis = excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: spec.YAxisTitle}}}
	}
	return c
}
