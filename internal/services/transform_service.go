// internal/services/transform_service.go
package services

import (
	"context"
	"fmt"

	apperrors "github.com/Corphon/DataVisualizer/internal/errors"
	"github.com/Corphon/DataVisualizer/internal/models"
)

// Transformer 把已校验的表单数据转成 ChartSpec。
// 本地和远程实现对同一输入必须给出相同结果。
type Transformer interface {
	Transform(ctx context.Context, chartType models.ChartType, input models.ChartInput) (*models.ChartSpec, error)
}

// LocalTransformer 进程内转换
type LocalTransformer struct{}

// Transform 实现 Transformer
func (LocalTransformer) Transform(ctx context.Context, chartType models.ChartType, input models.ChartInput) (*models.ChartSpec, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Transform(chartType, input)
}

// Transform 纯函数：pie 的 values、XY 的 y 转成数字，其余原样复制
func Transform(chartType models.ChartType, input models.ChartInput) (*models.ChartSpec, error) {
	spec := &models.ChartSpec{
		ChartType: chartType,
		Title:     chartType.Title(),
	}

	switch {
	case chartType == models.ChartPie:
		if input.Pie == nil {
			return nil, apperrors.NewProcessingError("pie chart input is missing", nil)
		}
		values, err := parseNumbers(input.Pie.Values, "values")
		if err != nil {
			return nil, err
		}
		spec.Labels = append([]string(nil), input.Pie.Labels...)
		spec.Values = values

	case chartType.IsXY():
		if input.XY == nil {
			return nil, apperrors.NewProcessingError("xy chart input is missing", nil)
		}
		spec.XAxisTitle = input.XY.XAxisLabel
		spec.YAxisTitle = input.XY.YAxisLabel
		spec.X = make([]string, len(input.XY.Points))
		ys := make([]string, len(input.XY.Points))
		for i, p := range input.XY.Points {
			spec.X[i] = p.X
			ys[i] = p.Y
		}
		values, err := parseNumbers(ys, "data")
		if err != nil {
			return nil, err
		}
		spec.Y = values

	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("Unsupported chart type: %s", chartType), nil)
	}

	return spec, nil
}

func parseNumbers(raw []string, field string) ([]float64, error) {
	out := make([]float64, len(raw))
	for i, s := range raw {
		v, ok := ParseNumber(s)
		if !ok {
			return nil, apperrors.NewFieldError(apperrors.NotANumber, field, i,
				fmt.Sprintf("%s[%d] is not a number: %q", field, i, s))
		}
		out[i] = v
	}
	return out, nil
}
