package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	apperrors "github.com/Corphon/DataVisualizer/internal/errors"
	"github.com/Corphon/DataVisualizer/internal/models"
)

func TestStubServiceProcess(t *testing.T) {
	stub := NewStubService(time.Millisecond)

	resp, err := stub.Process(context.Background(), models.ProcessRequest{
		ChartType: models.ChartPie,
		Data:      json.RawMessage(`{"labels":["A","B"],"values":["1","2"]}`),
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Config.Title != "Pie Chart" || len(resp.ChartData.Values) != 2 {
		t.Errorf("resp = %+v", resp)
	}

	_, err = stub.Process(context.Background(), models.ProcessRequest{ChartType: models.ChartLine})
	if !apperrors.IsValidationError(err) || messageOf(err) != MsgMissingFields {
		t.Errorf("missing data: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewStubService(time.Hour).Canned(ctx, models.FormatPDF); err == nil {
		t.Errorf("cancelled request should fail")
	}
}

func TestStubServiceCanned(t *testing.T) {
	stub := NewStubService(0)

	pdf, _ := stub.Canned(context.Background(), models.FormatPDF)
	if string(pdf) != CannedPDF {
		t.Errorf("pdf = %q", pdf)
	}

	data, err := stub.Canned(context.Background(), models.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	var doc ChartDocument
	if err := json.Unmarshal(data, &doc); err != nil || doc.Config.Title != "Sample Chart" || len(doc.Data.X) != 5 {
		t.Errorf("json = %s (%v)", data, err)
	}

	if _, err := stub.Canned(context.Background(), models.FormatPNG); !apperrors.IsUnsupportedFormat(err) {
		t.Errorf("png has no canned body: %v", err)
	}
}
