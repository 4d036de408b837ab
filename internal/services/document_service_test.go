package services

import (
	"bytes"
	"context"
	"encoding/json"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/Corphon/DataVisualizer/internal/errors"
	"github.com/Corphon/DataVisualizer/internal/models"
)

func TestDocumentCSV(t *testing.T) {
	docs := NewDocumentService(0, 0)

	line := mustSpec(t, models.ChartLine, xyInput("Month", "Value", "Jan", "10", "Feb", "2.5"))
	data, err := docs.Generate(context.Background(), models.FormatCSV, line)
	if err != nil {
		t.Fatal(err)
	}
	if want := "Month,Value\nJan,10\nFeb,2.5\n"; string(data) != want {
		t.Errorf("csv = %q, want %q", data, want)
	}

	pie := mustSpec(t, models.ChartPie, pieInput([]string{"A, Inc", "B"}, []string{"1", "2"}))
	data, _ = docs.CSV(pie)
	if want := "Label,Value\n\"A, Inc\",1\nB,2\n"; string(data) != want {
		t.Errorf("csv = %q, want %q", data, want)
	}
}

func TestDocumentJSONDerivesFromChart(t *testing.T) {
	spec := mustSpec(t, models.ChartBar, xyInput("Team", "Score", "Red", "3", "Blue", "4"))
	data, err := NewDocumentService(0, 0).Generate(context.Background(), models.FormatJSON, spec)
	if err != nil {
		t.Fatal(err)
	}
	var doc ChartDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if doc.ChartType != models.ChartBar || !reflect.DeepEqual(doc.Data.Y, []float64{3, 4}) || doc.Config.XAxisLabel != "Team" {
		t.Errorf("doc = %+v", doc)
	}
}

func TestDocumentPDF(t *testing.T) {
	docs := NewDocumentService(400, 300)
	for _, spec := range []*models.ChartSpec{
		mustSpec(t, models.ChartLine, xyInput("M", "V", "Jan", "10", "Feb", "25")),
		mustSpec(t, models.ChartBar, xyInput("M", "V", "Jan", "10", "Feb", "25")),
		mustSpec(t, models.ChartPie, pieInput([]string{"A", "B"}, []string{"1", "2"})),
	} {
		data, err := docs.Generate(context.Background(), models.FormatPDF, spec)
		if err != nil {
			t.Fatalf("%s: %v", spec.ChartType, err)
		}
		if !bytes.HasPrefix(data, []byte("%PDF")) {
			t.Errorf("%s: not a pdf: %q", spec.ChartType, data[:min(len(data), 16)])
		}
	}
}

func TestDocumentXLSX(t *testing.T) {
	spec := mustSpec(t, models.ChartLine, xyInput("Month", "Value", "Jan", "10", "Feb", "25"))
	data, err := NewDocumentService(0, 0).Generate(context.Background(), models.FormatXLSX, spec)
	if err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	for cell, want := range map[string]string{"A1": "Month", "B1": "Value", "A3": "Feb", "B3": "25"} {
		got, err := f.GetCellValue(xlsxSheet, cell)
		if err != nil || got != want {
			t.Errorf("%s = %q (%v), want %q", cell, got, err, want)
		}
	}
}

func TestDocumentErrors(t *testing.T) {
	docs := NewDocumentService(0, 0)
	spec := mustSpec(t, models.ChartPie, pieInput([]string{"A", "B"}, []string{"1", "2"}))

	if _, err := docs.Generate(context.Background(), models.FormatPNG, spec); !apperrors.IsUnsupportedFormat(err) {
		t.Errorf("png is not a document format: %v", err)
	}
	if _, err := docs.Generate(context.Background(), models.FormatCSV, nil); !apperrors.IsNotFoundError(err) {
		t.Errorf("nil spec: %v", err)
	}
}
