package services

import (
	"bytes"
	"context"
	"image/png"
	"strings"
	"testing"

	apperrors "github.com/Corphon/DataVisualizer/internal/errors"
	"github.com/Corphon/DataVisualizer/internal/models"
)

func TestToRenderableXY(t *testing.T) {
	for chartType, color := range map[models.ChartType]string{models.ChartLine: LineColor, models.ChartBar: BarColor} {
		spec, _ := Transform(chartType, xyInput("Month", "Value", "Jan", "10", "Feb", "25"))
		cfg := ToRenderable(spec)
		if cfg == nil || len(cfg.Data) != 1 {
			t.Fatalf("%s: no config", chartType)
		}
		trace := cfg.Data[0]
		if trace.Type != chartType || trace.Marker == nil || trace.Marker.Color != color {
			t.Errorf("%s: trace = %+v", chartType, trace)
		}
		if cfg.Layout.XAxis.Title != "Month" || cfg.Layout.YAxis.Title != "Value" {
			t.Errorf("%s: axis titles = %+v", chartType, cfg.Layout)
		}
		if cfg.Layout.Height != 500 || cfg.Layout.Width != 700 || cfg.Layout.Margin.B != 80 {
			t.Errorf("%s: layout = %+v", chartType, cfg.Layout)
		}
	}
}

func TestToRenderablePie(t *testing.T) {
	spec, _ := Transform(models.ChartPie, pieInput([]string{"A", "B"}, []string{"1", "2"}))
	cfg := ToRenderable(spec)
	if cfg == nil {
		t.Fatal("no config")
	}
	trace := cfg.Data[0]
	if trace.TextInfo != "label+percent" || trace.InsideTextOrientation != "radial" || trace.Marker != nil {
		t.Errorf("trace = %+v", trace)
	}
	if cfg.Layout.Title != "Pie Chart" || cfg.Layout.XAxis != nil || cfg.Layout.Margin != (models.RenderMargin{T: 50, B: 50, L: 50, R: 50}) {
		t.Errorf("layout = %+v", cfg.Layout)
	}
}

func TestToRenderableUnknown(t *testing.T) {
	if cfg := ToRenderable(&models.ChartSpec{ChartType: "scatter"}); cfg != nil {
		t.Errorf("unknown chart type should give nil, got %+v", cfg)
	}
	if ToRenderable(nil) != nil {
		t.Errorf("nil spec should give nil")
	}
	if _, err := NewChartRenderer(nil); err == nil {
		t.Errorf("renderer without config should fail")
	}
}

func TestChartRendererImages(t *testing.T) {
	specs := []*models.ChartSpec{
		mustSpec(t, models.ChartLine, xyInput("Month", "Value", "Jan", "10", "Feb", "25", "Mar", "15")),
		mustSpec(t, models.ChartBar, xyInput("Month", "Value", "Jan", "5", "Feb", "7")),
		mustSpec(t, models.ChartPie, pieInput([]string{"A", "B", "C"}, []string{"1", "2", "0"})),
	}

	for _, spec := range specs {
		r, err := NewChartRenderer(ToRenderable(spec))
		if err != nil {
			t.Fatalf("%s: %v", spec.ChartType, err)
		}

		data, err := r.ToImage(context.Background(), models.FormatPNG, 400, 300)
		if err != nil {
			t.Fatalf("%s png: %v", spec.ChartType, err)
		}
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("%s: invalid png: %v", spec.ChartType, err)
		}
		if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 300 {
			t.Errorf("%s: size %v", spec.ChartType, b)
		}

		svg, err := r.ToImage(context.Background(), models.FormatSVG, 0, 0)
		if err != nil {
			t.Fatalf("%s svg: %v", spec.ChartType, err)
		}
		if !strings.Contains(string(svg), "<svg") {
			t.Errorf("%s: not an svg document", spec.ChartType)
		}

		if _, err := r.ToImage(context.Background(), models.FormatPDF, 0, 0); !apperrors.IsUnsupportedFormat(err) {
			t.Errorf("%s: pdf capture should be unsupported, got %v", spec.ChartType, err)
		}
	}
}

func mustSpec(t *testing.T, chartType models.ChartType, input models.ChartInput) *models.ChartSpec {
	t.Helper()
	spec, err := Transform(chartType, input)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	return spec
}
