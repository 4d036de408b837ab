// internal/services/validator.go
package services

import (
	"math"
	"strconv"
	"strings"

	apperrors "github.com/Corphon/DataVisualizer/internal/errors"
	"github.com/Corphon/DataVisualizer/internal/models"
)

// MinDataPoints 一张图至少需要的数据点数
const MinDataPoints = 2

// 校验失败时展示给用户的提示
const (
	MsgPieMissing    = "All labels and values must be filled"
	MsgPieNotNumber  = "All values must be numbers"
	MsgAxisMissing   = "X-axis and Y-axis labels are required"
	MsgPointsMissing = "All data points must be filled"
	MsgYNotNumber    = "Y values must be numbers"
)

// ErrCodeUnsupportedChartType 未知图表类型
const ErrCodeUnsupportedChartType = "UNSUPPORTED_CHART_TYPE"

// ParseNumber 去掉首尾空白后按浮点数解析，结果必须是有限数
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Validator 提交前的纯校验，不产生副作用
type Validator struct{}

// NewValidator 创建校验器
func NewValidator() *Validator {
	return &Validator{}
}

// Validate 检查输入是否完整且数值合法，返回第一个失败
func (v *Validator) Validate(chartType models.ChartType, input models.ChartInput) error {
	switch {
	case chartType == models.ChartPie:
		return validatePie(input.Pie)
	case chartType.IsXY():
		return validateXY(input.XY)
	default:
		err := apperrors.NewValidationError("Unsupported chart type: "+string(chartType), nil)
		err.Code = ErrCodeUnsupportedChartType
		return err
	}
}

func validatePie(pie *models.PieChartInput) error {
	if pie == nil {
		return apperrors.NewFieldError(apperrors.MissingField, "labels", 0, MsgPieMissing)
	}

	n := len(pie.Labels)
	if len(pie.Values) < n {
		n = len(pie.Values)
	}

	if n < MinDataPoints {
		field := "labels"
		if len(pie.Labels) > len(pie.Values) {
			field = "values"
		}
		return apperrors.NewFieldError(apperrors.MissingField, field, n, MsgPieMissing)
	}

	// 逐项检查：先看是否填写，再看是否为数字
	for i := 0; i < n; i++ {
		if isBlank(pie.Labels[i]) {
			return apperrors.NewFieldError(apperrors.MissingField, "labels", i, MsgPieMissing)
		}
		if isBlank(pie.Values[i]) {
			return apperrors.NewFieldError(apperrors.MissingField, "values", i, MsgPieMissing)
		}
		if _, ok := ParseNumber(pie.Values[i]); !ok {
			return apperrors.NewFieldError(apperrors.NotANumber, "values", i, MsgPieNotNumber)
		}
	}
	if len(pie.Labels) != len(pie.Values) {
		field := "values"
		if len(pie.Labels) < len(pie.Values) {
			field = "labels"
		}
		return apperrors.NewFieldError(apperrors.MissingField, field, n, MsgPieMissing)
	}
	return nil
}

func validateXY(xy *models.XYChartInput) error {
	if xy == nil {
		return apperrors.NewFieldError(apperrors.MissingField, "xAxis", -1, MsgAxisMissing)
	}

	if isBlank(xy.XAxisLabel) {
		return apperrors.NewFieldError(apperrors.MissingField, "xAxis", -1, MsgAxisMissing)
	}
	if isBlank(xy.YAxisLabel) {
		return apperrors.NewFieldError(apperrors.MissingField, "yAxis", -1, MsgAxisMissing)
	}

	if len(xy.Points) < MinDataPoints {
		return apperrors.NewFieldError(apperrors.MissingField, "data", len(xy.Points), MsgPointsMissing)
	}

	for i, p := range xy.Points {
		if isBlank(p.X) || isBlank(p.Y) {
			return apperrors.NewFieldError(apperrors.MissingField, "data", i, MsgPointsMissing)
		}
		if _, ok := ParseNumber(p.Y); !ok {
			return apperrors.NewFieldError(apperrors.NotANumber, "data", i, MsgYNotNumber)
		}
	}
	return nil
}
