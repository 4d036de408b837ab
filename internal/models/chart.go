// internal/models/chart.go
package models

import (
	"encoding/json"
	"fmt"
)

// ChartType 图表类型
type ChartType string

const (
	ChartLine ChartType = "line"
	ChartBar  ChartType = "bar"
	ChartPie  ChartType = "pie"
)

// IsXY 折线图和柱状图共用 XY 输入
func (t ChartType) IsXY() bool {
	return t == ChartLine || t == ChartBar
}

// Known 是否为受支持的图表类型
func (t ChartType) Known() bool {
	return t.IsXY() || t == ChartPie
}

// Title 图表默认标题
func (t ChartType) Title() string {
	switch t {
	case ChartLine:
		return "Line Chart"
	case ChartBar:
		return "Bar Chart"
	case ChartPie:
		return "Pie Chart"
	default:
		return ""
	}
}

// SeriesPoint 编辑中的一个数据点，Y 在提交前必须能转成有限数字
type SeriesPoint struct {
	X string `json:"x"`
	Y string `json:"y"`
}

// XYChartInput 折线图/柱状图的表单数据
type XYChartInput struct {
	XAxisLabel string        `json:"xAxis"`
	YAxisLabel string        `json:"yAxis"`
	Points     []SeriesPoint `json:"data"`
}

// PieChartInput 饼图的表单数据，Labels 与 Values 按下标一一对应
type PieChartInput struct {
	Labels []string `json:"labels"`
	Values []string `json:"values"`
}

// ChartInput 表单原始输入，XY 与 Pie 只会设置其一
type ChartInput struct {
	XY  *XYChartInput
	Pie *PieChartInput
}

// MarshalJSON 序列化为实际设置的那一种输入
func (in ChartInput) MarshalJSON() ([]byte, error) {
	switch {
	case in.Pie != nil:
		return json.Marshal(in.Pie)
	case in.XY != nil:
		return json.Marshal(in.XY)
	default:
		return []byte("null"), nil
	}
}

// DecodeChartInput 按图表类型解析原始输入
func DecodeChartInput(chartType ChartType, raw json.RawMessage) (ChartInput, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return ChartInput{}, fmt.Errorf("empty chart input")
	}
	if chartType == ChartPie {
		var pie PieChartInput
		if err := json.Unmarshal(raw, &pie); err != nil {
			return ChartInput{}, err
		}
		return ChartInput{Pie: &pie}, nil
	}
	var xy XYChartInput
	if err := json.Unmarshal(raw, &xy); err != nil {
		return ChartInput{}, err
	}
	return ChartInput{XY: &xy}, nil
}

// Clone 深拷贝
func (in ChartInput) Clone() ChartInput {
	out := ChartInput{}
	if in.XY != nil {
		xy := *in.XY
		xy.Points = append([]SeriesPoint(nil), in.XY.Points...)
		out.XY = &xy
	}
	if in.Pie != nil {
		out.Pie = &PieChartInput{
			Labels: append([]string(nil), in.Pie.Labels...),
			Values: append([]string(nil), in.Pie.Values...),
		}
	}
	return out
}

// ChartSpec 归一化后的图表描述，创建后不再修改
type ChartSpec struct {
	ChartType  ChartType `json:"chartType"`
	Title      string    `json:"title"`
	XAxisTitle string    `json:"xAxisLabel,omitempty"`
	YAxisTitle string    `json:"yAxisLabel,omitempty"`
	X          []string  `json:"x,omitempty"`
	Y          []float64 `json:"y,omitempty"`
	Labels     []string  `json:"labels,omitempty"`
	Values     []float64 `json:"values,omitempty"`
}

// ChartData process-data 响应中的 chartData
type ChartData struct {
	X      []string  `json:"x,omitempty"`
	Y      []float64 `json:"y,omitempty"`
	Labels []string  `json:"labels,omitempty"`
	Values []float64 `json:"values,omitempty"`
}

// ChartConfig process-data 响应中的 config
type ChartConfig struct {
	Title      string `json:"title"`
	XAxisLabel string `json:"xAxisLabel,omitempty"`
	YAxisLabel string `json:"yAxisLabel,omitempty"`
}

// ProcessRequest POST /api/process-data 请求体
type ProcessRequest struct {
	ChartType ChartType       `json:"chartType"`
	Data      json.RawMessage `json:"data"`
}

// ProcessResponse POST /api/process-data 响应体，也是 ChartSpec 的线上格式
type ProcessResponse struct {
	ChartData ChartData   `json:"chartData"`
	Config    ChartConfig `json:"config"`
}

// ToProcessResponse 转成线上格式
func (s *ChartSpec) ToProcessResponse() ProcessResponse {
	return ProcessResponse{
		ChartData: ChartData{X: s.X, Y: s.Y, Labels: s.Labels, Values: s.Values},
		Config: ChartConfig{
			Title:      s.Title,
			XAxisLabel: s.XAxisTitle,
			YAxisLabel: s.YAxisTitle,
		},
	}
}

// SpecFromResponse 从线上格式还原 ChartSpec
func SpecFromResponse(chartType ChartType, resp ProcessResponse) *ChartSpec {
	return &ChartSpec{
		ChartType:  chartType,
		Title:      resp.Config.Title,
		XAxisTitle: resp.Config.XAxisLabel,
		YAxisTitle: resp.Config.YAxisLabel,
		X:          resp.ChartData.X,
		Y:          resp.ChartData.Y,
		Labels:     resp.ChartData.Labels,
		Values:     resp.ChartData.Values,
	}
}

// ChartEnvelope 单槽存储中保存的内容：{chartType, data, rawData}
type ChartEnvelope struct {
	ChartType ChartType       `json:"chartType"`
	Data      ProcessResponse `json:"data"`
	RawData   ChartInput      `json:"rawData"`
}

// NewChartEnvelope 由 spec 和原始输入组装
func NewChartEnvelope(spec *ChartSpec, raw ChartInput) *ChartEnvelope {
	return &ChartEnvelope{
		ChartType: spec.ChartType,
		Data:      spec.ToProcessResponse(),
		RawData:   raw.Clone(),
	}
}

// Spec 还原归一化的图表描述
func (e *ChartEnvelope) Spec() *ChartSpec {
	return SpecFromResponse(e.ChartType, e.Data)
}

// UnmarshalJSON rawData 的形状取决于 chartType
func (e *ChartEnvelope) UnmarshalJSON(b []byte) error {
	var aux struct {
		ChartType ChartType       `json:"chartType"`
		Data      ProcessResponse `json:"data"`
		RawData   json.RawMessage `json:"rawData"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if aux.ChartType == "" {
		return fmt.Errorf("envelope without chartType")
	}
	raw, err := DecodeChartInput(aux.ChartType, aux.RawData)
	if err != nil {
		return fmt.Errorf("decode rawData: %w", err)
	}
	e.ChartType = aux.ChartType
	e.Data = aux.Data
	e.RawData = raw
	return nil
}
