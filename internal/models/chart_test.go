package models

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestEnvelopeJSONShape(t *testing.T) {
	spec := &ChartSpec{
		ChartType:  ChartLine,
		Title:      "Line Chart",
		XAxisTitle: "Month",
		YAxisTitle: "Value",
		X:          []string{"Jan", "Feb"},
		Y:          []float64{10, 25},
	}
	raw := ChartInput{XY: &XYChartInput{
		XAxisLabel: "Month",
		YAxisLabel: "Value",
		Points:     []SeriesPoint{{X: "Jan", Y: "10"}, {X: "Feb", Y: "25"}},
	}}
	b, err := json.Marshal(NewChartEnvelope(spec, raw))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var generic map[string]any
	if err := json.Unmarshal(b, &generic); err != nil {
		t.Fatalf("unmarshal generic: %v", err)
	}
	for _, key := range []string{"chartType", "data", "rawData"} {
		if _, ok := generic[key]; !ok {
			t.Errorf("envelope missing key %q: %s", key, b)
		}
	}
	rawData := generic["rawData"].(map[string]any)
	if rawData["xAxis"] != "Month" {
		t.Errorf("rawData should use the form wire names, got %v", rawData)
	}

	var back ChartEnvelope
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(back.Spec(), spec) {
		t.Errorf("spec mismatch: %+v vs %+v", back.Spec(), spec)
	}
	if back.RawData.XY == nil || back.RawData.Pie != nil {
		t.Fatalf("rawData decoded into wrong variant: %+v", back.RawData)
	}
}

func TestEnvelopeRejectsMissingType(t *testing.T) {
	var env ChartEnvelope
	if err := json.Unmarshal([]byte(`{"data":{},"rawData":{}}`), &env); err == nil {
		t.Fatalf("expected error for envelope without chartType")
	}
}

func TestChartInputCloneIsDeep(t *testing.T) {
	in := ChartInput{Pie: &PieChartInput{Labels: []string{"A"}, Values: []string{"1"}}}
	cp := in.Clone()
	cp.Pie.Labels[0] = "Z"
	if in.Pie.Labels[0] != "A" {
		t.Errorf("clone shares backing array")
	}
}

func TestExportFormat(t *testing.T) {
	if ParseExportFormat(" PNG ") != FormatPNG {
		t.Errorf("format should be normalized")
	}
	if !FormatSVG.IsImage() || FormatCSV.IsImage() {
		t.Errorf("image classification wrong")
	}
	if ExportFormat("gif").Supported() {
		t.Errorf("gif must be unsupported")
	}
	if FormatPDF.Filename() != "chart.pdf" {
		t.Errorf("filename = %s", FormatPDF.Filename())
	}
}
