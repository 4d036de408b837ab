package services

import (
	"testing"

	apperrors "github.com/Corphon/DataVisualizer/internal/errors"
	"github.com/Corphon/DataVisualizer/internal/models"
)

func xyInput(xLabel, yLabel string, pts ...string) models.ChartInput {
	xy := &models.XYChartInput{XAxisLabel: xLabel, YAxisLabel: yLabel}
	for i := 0; i+1 < len(pts); i += 2 {
		xy.Points = append(xy.Points, models.SeriesPoint{X: pts[i], Y: pts[i+1]})
	}
	return models.ChartInput{XY: xy}
}

func pieInput(labels, values []string) models.ChartInput {
	return models.ChartInput{Pie: &models.PieChartInput{Labels: labels, Values: values}}
}

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"10", 10, true},
		{" 2.5 ", 2.5, true},
		{"-3e2", -300, true},
		{"", 0, false},
		{"   ", 0, false},
		{"x", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"1e400", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseNumber(tc.in)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("ParseNumber(%q) = %v, %v; want %v, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestValidate(t *testing.T) {
	v := NewValidator()

	cases := []struct {
		name      string
		chartType models.ChartType
		input     models.ChartInput
		wantKind  apperrors.ValidationKind
		wantField string
		wantIndex int
		wantMsg   string
	}{
		{
			name:      "valid line",
			chartType: models.ChartLine,
			input:     xyInput("Month", "Value", "Jan", "10", "Feb", "25"),
		},
		{
			name:      "valid pie",
			chartType: models.ChartPie,
			input:     pieInput([]string{"A", "B"}, []string{"1", "2"}),
		},
		{
			name:      "pie not a number",
			chartType: models.ChartPie,
			input:     pieInput([]string{"A", "B"}, []string{"1", "x"}),
			wantKind:  apperrors.NotANumber,
			wantField: "values",
			wantIndex: 1,
			wantMsg:   MsgPieNotNumber,
		},
		{
			name:      "pie earlier bad number wins over later missing label",
			chartType: models.ChartPie,
			input:     pieInput([]string{"A", "B", ""}, []string{"x", "2", "3"}),
			wantKind:  apperrors.NotANumber,
			wantField: "values",
			wantIndex: 0,
			wantMsg:   MsgPieNotNumber,
		},
		{
			name:      "pie bad number before blank value",
			chartType: models.ChartPie,
			input:     pieInput([]string{"A", "B"}, []string{"x", ""}),
			wantKind:  apperrors.NotANumber,
			wantField: "values",
			wantIndex: 0,
			wantMsg:   MsgPieNotNumber,
		},
		{
			name:      "pie blank value before bad number",
			chartType: models.ChartPie,
			input:     pieInput([]string{"A", "B"}, []string{"", "x"}),
			wantKind:  apperrors.MissingField,
			wantField: "values",
			wantIndex: 0,
			wantMsg:   MsgPieMissing,
		},
		{
			name:      "pie missing value",
			chartType: models.ChartPie,
			input:     pieInput([]string{"A", "B"}, []string{"1", " "}),
			wantKind:  apperrors.MissingField,
			wantField: "values",
			wantIndex: 1,
			wantMsg:   MsgPieMissing,
		},
		{
			name:      "pie length mismatch",
			chartType: models.ChartPie,
			input:     pieInput([]string{"A", "B", "C"}, []string{"1", "2"}),
			wantKind:  apperrors.MissingField,
			wantField: "values",
			wantIndex: 2,
			wantMsg:   MsgPieMissing,
		},
		{
			name:      "pie too few",
			chartType: models.ChartPie,
			input:     pieInput([]string{"A"}, []string{"1"}),
			wantKind:  apperrors.MissingField,
			wantField: "labels",
			wantIndex: 1,
			wantMsg:   MsgPieMissing,
		},
		{
			name:      "missing x axis label",
			chartType: models.ChartBar,
			input:     xyInput("", "Value", "Jan", "10", "Feb", "25"),
			wantKind:  apperrors.MissingField,
			wantField: "xAxis",
			wantIndex: -1,
			wantMsg:   MsgAxisMissing,
		},
		{
			name:      "missing y axis label",
			chartType: models.ChartLine,
			input:     xyInput("Month", "", "Jan", "10", "Feb", "25"),
			wantKind:  apperrors.MissingField,
			wantField: "yAxis",
			wantIndex: -1,
			wantMsg:   MsgAxisMissing,
		},
		{
			name:      "missing point field",
			chartType: models.ChartLine,
			input:     xyInput("Month", "Value", "Jan", "10", "", "25"),
			wantKind:  apperrors.MissingField,
			wantField: "data",
			wantIndex: 1,
			wantMsg:   MsgPointsMissing,
		},
		{
			name:      "y not a number",
			chartType: models.ChartLine,
			input:     xyInput("Month", "Value", "Jan", "ten", "Feb", "25"),
			wantKind:  apperrors.NotANumber,
			wantField: "data",
			wantIndex: 0,
			wantMsg:   MsgYNotNumber,
		},
		{
			name:      "y not a number before blank point",
			chartType: models.ChartLine,
			input:     xyInput("Month", "Value", "Jan", "abc", "", "2"),
			wantKind:  apperrors.NotANumber,
			wantField: "data",
			wantIndex: 0,
			wantMsg:   MsgYNotNumber,
		},
		{
			name:      "single point",
			chartType: models.ChartLine,
			input:     xyInput("Month", "Value", "Jan", "10"),
			wantKind:  apperrors.MissingField,
			wantField: "data",
			wantIndex: 1,
			wantMsg:   MsgPointsMissing,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate(tc.chartType, tc.input)
			if tc.wantKind == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !apperrors.IsValidationError(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
			fe, ok := apperrors.AsFieldError(err)
			if !ok {
				t.Fatalf("no field error in %v", err)
			}
			if fe.Kind != tc.wantKind || fe.Field != tc.wantField || fe.Index != tc.wantIndex {
				t.Errorf("got %s %s[%d], want %s %s[%d]", fe.Kind, fe.Field, fe.Index, tc.wantKind, tc.wantField, tc.wantIndex)
			}
			if msg := messageOf(err); msg != tc.wantMsg {
				t.Errorf("message = %q, want %q", msg, tc.wantMsg)
			}
		})
	}
}

func TestValidateUnknownChartType(t *testing.T) {
	err := NewValidator().Validate("scatter", xyInput("a", "b", "1", "1", "2", "2"))
	if !apperrors.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if appErr := err.(*apperrors.AppError); appErr.Code != ErrCodeUnsupportedChartType {
		t.Errorf("code = %s", appErr.Code)
	}
}
