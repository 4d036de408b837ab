// internal/services/form_state.go
package services

import (
	"fmt"
	"sync"

	apperrors "github.com/Corphon/DataVisualizer/internal/errors"
	"github.com/Corphon/DataVisualizer/internal/models"
)

// 初始表单的空行数
const initialRows = 3

// EditKind 表单编辑操作类型
type EditKind string

const (
	EditSetChartType EditKind = "set_chart_type"
	EditXAxis        EditKind = "update_x_axis"
	EditYAxis        EditKind = "update_y_axis"
	EditPointX       EditKind = "update_point_x"
	EditPointY       EditKind = "update_point_y"
	EditLabel        EditKind = "update_label"
	EditValue        EditKind = "update_value"
	EditAddPoint     EditKind = "add_point"
	EditRemovePoint  EditKind = "remove_point"
)

// FormEdit 一次带标签的表单编辑
type FormEdit struct {
	Kind  EditKind `json:"kind"`
	Index int      `json:"index,omitempty"`
	Value string   `json:"value,omitempty"`
}

// SetChartType 切换图表类型
func SetChartType(t models.ChartType) FormEdit {
	return FormEdit{Kind: EditSetChartType, Value: string(t)}
}

// UpdateXAxis 修改 X 轴标题
func UpdateXAxis(v string) FormEdit { return FormEdit{Kind: EditXAxis, Value: v} }

// UpdateYAxis 修改 Y 轴标题
func UpdateYAxis(v string) FormEdit { return FormEdit{Kind: EditYAxis, Value: v} }

// UpdatePointX 修改第 i 个点的 x
func UpdatePointX(i int, v string) FormEdit { return FormEdit{Kind: EditPointX, Index: i, Value: v} }

// UpdatePointY 修改第 i 个点的 y
func UpdatePointY(i int, v string) FormEdit { return FormEdit{Kind: EditPointY, Index: i, Value: v} }

// UpdateLabel 修改第 i 个饼图标签
func UpdateLabel(i int, v string) FormEdit { return FormEdit{Kind: EditLabel, Index: i, Value: v} }

// UpdateValue 修改第 i 个饼图数值
func UpdateValue(i int, v string) FormEdit { return FormEdit{Kind: EditValue, Index: i, Value: v} }

// AddPoint 追加一行
func AddPoint() FormEdit { return FormEdit{Kind: EditAddPoint} }

// RemovePoint 删除第 i 行
func RemovePoint(i int) FormEdit { return FormEdit{Kind: EditRemovePoint, Index: i} }

// FormState 输入页的表单状态，XY 与饼图两份数据同时保留
type FormState struct {
	mu        sync.Mutex
	chartType models.ChartType
	xy        models.XYChartInput
	pie       models.PieChartInput
}

// NewFormState 默认折线图，各 3 行空数据
func NewFormState() *FormState {
	return &FormState{
		chartType: models.ChartLine,
		xy: models.XYChartInput{
			Points: make([]models.SeriesPoint, initialRows),
		},
		pie: models.PieChartInput{
			Labels: make([]string, initialRows),
			Values: make([]string, initialRows),
		},
	}
}

// ChartType 当前图表类型
func (f *FormState) ChartType() models.ChartType {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.chartType
}

// PointCount 当前图表类型下的行数
func (f *FormState) PointCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.countLocked()
}

func (f *FormState) countLocked() int {
	if f.chartType == models.ChartPie {
		return len(f.pie.Labels)
	}
	return len(f.xy.Points)
}

// Input 当前图表类型对应的输入（深拷贝）
func (f *FormState) Input() models.ChartInput {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.chartType == models.ChartPie {
		pie := f.pie
		return models.ChartInput{Pie: &pie}.Clone()
	}
	xy := f.xy
	return models.ChartInput{XY: &xy}.Clone()
}

// Apply 执行一次编辑。删除到最少行数以下时不修改状态，返回提示。
func (f *FormState) Apply(edit FormEdit) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch edit.Kind {
	case EditSetChartType:
		t := models.ChartType(edit.Value)
		if !t.Known() {
			err := apperrors.NewValidationError("Unsupported chart type: "+edit.Value, nil)
			err.Code = ErrCodeUnsupportedChartType
			return nil, err
		}
		f.chartType = t

	case EditXAxis:
		f.xy.XAxisLabel = edit.Value
	case EditYAxis:
		f.xy.YAxisLabel = edit.Value

	case EditPointX, EditPointY:
		if err := checkIndex("data", edit.Index, len(f.xy.Points)); err != nil {
			return nil, err
		}
		if edit.Kind == EditPointX {
			f.xy.Points[edit.Index].X = edit.Value
		} else {
			f.xy.Points[edit.Index].Y = edit.Value
		}

	case EditLabel:
		if err := checkIndex("labels", edit.Index, len(f.pie.Labels)); err != nil {
			return nil, err
		}
		f.pie.Labels[edit.Index] = edit.Value
	case EditValue:
		if err := checkIndex("values", edit.Index, len(f.pie.Values)); err != nil {
			return nil, err
		}
		f.pie.Values[edit.Index] = edit.Value

	case EditAddPoint:
		if f.chartType == models.ChartPie {
			f.pie.Labels = append(f.pie.Labels, "")
			f.pie.Values = append(f.pie.Values, "")
		} else {
			f.xy.Points = append(f.xy.Points, models.SeriesPoint{})
		}

	case EditRemovePoint:
		return f.removeLocked(edit.Index)

	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown form edit: %s", edit.Kind), nil)
	}

	return nil, nil
}

func (f *FormState) removeLocked(index int) (*models.Notification, error) {
	count := f.countLocked()
	if count <= MinDataPoints {
		desc := "You need at least 2 data points for a chart"
		if f.chartType == models.ChartPie {
			desc = "You need at least 2 data points for a pie chart"
		}
		n := models.NewNotification(models.NotifyDestructive, "Cannot remove", desc)
		return &n, nil
	}

	if f.chartType == models.ChartPie {
		if err := checkIndex("labels", index, count); err != nil {
			return nil, err
		}
		f.pie.Labels = append(f.pie.Labels[:index:index], f.pie.Labels[index+1:]...)
		f.pie.Values = append(f.pie.Values[:index:index], f.pie.Values[index+1:]...)
		return nil, nil
	}

	if err := checkIndex("data", index, count); err != nil {
		return nil, err
	}
	f.xy.Points = append(f.xy.Points[:index:index], f.xy.Points[index+1:]...)
	return nil, nil
}

func checkIndex(field string, index, length int) error {
	if index < 0 || index >= length {
		return apperrors.NewValidationError(
			fmt.Sprintf("%s index %d out of range [0,%d)", field, index, length), nil)
	}
	return nil
}
