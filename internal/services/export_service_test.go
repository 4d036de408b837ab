package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	apperrors "github.com/Corphon/DataVisualizer/internal/errors"
	"github.com/Corphon/DataVisualizer/internal/models"
	"github.com/Corphon/DataVisualizer/internal/storage"
	"github.com/Corphon/DataVisualizer/internal/utils"
)

// recorder 记录收到的提示
type recorder struct {
	mu    sync.Mutex
	notes []models.Notification
}

func (r *recorder) Notify(n models.Notification) {
	r.mu.Lock()
	r.notes = append(r.notes, n)
	r.mu.Unlock()
}

func (r *recorder) last() (models.Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notes) == 0 {
		return models.Notification{}, false
	}
	return r.notes[len(r.notes)-1], true
}

type countingFetcher struct {
	calls int32
	data  []byte
	err   error
}

func (f *countingFetcher) Fetch(ctx context.Context, format models.ExportFormat, spec *models.ChartSpec) ([]byte, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.data, f.err
}

type fakeCapturer struct {
	calls   int32
	started chan struct{}
	release chan struct{}
}

func (c *fakeCapturer) ToImage(ctx context.Context, format models.ExportFormat, width, height int) ([]byte, error) {
	atomic.AddInt32(&c.calls, 1)
	if c.started != nil {
		close(c.started)
		<-c.release
	}
	return []byte(string(format)), nil
}

func newTestExporter(fetcher DocumentFetcher, rec *recorder) *ExportService {
	return NewExportService(fetcher, NewActionGate(), rec, utils.NewPipelineMetrics(utils.NewMetricsCollector()))
}

func TestImageExportNeverFetches(t *testing.T) {
	fetcher := &countingFetcher{}
	rec := &recorder{}
	exp := newTestExporter(fetcher, rec)
	capturer := &fakeCapturer{}
	spec := mustSpec(t, models.ChartLine, xyInput("a", "b", "1", "1", "2", "2"))

	for _, format := range []models.ExportFormat{models.FormatPNG, models.FormatSVG} {
		res, err := exp.Export(context.Background(), format, spec, capturer)
		if err != nil {
			t.Fatalf("%s: %v", format, err)
		}
		if res.Filename != "chart."+string(format) || res.ContentType != format.ContentType() {
			t.Errorf("result = %+v", res)
		}
	}
	if fetcher.calls != 0 {
		t.Errorf("image export must not call the document fetcher")
	}
	if capturer.calls != 2 {
		t.Errorf("capturer calls = %d", capturer.calls)
	}
	if n, _ := rec.last(); n.Title != "Export Successful" || n.Description != "Chart exported as SVG" {
		t.Errorf("notification = %+v", n)
	}
}

func TestImageExportWithoutRenderer(t *testing.T) {
	rec := &recorder{}
	exp := newTestExporter(&countingFetcher{}, rec)

	_, err := exp.Export(context.Background(), models.FormatPNG, nil, nil)
	if err == nil {
		t.Fatal("expected error without renderer handle")
	}
	if n, _ := rec.last(); n.Title != "Export Failed" || n.Description != MsgNotRendered {
		t.Errorf("notification = %+v", n)
	}
}

func TestUnsupportedFormat(t *testing.T) {
	fetcher := &countingFetcher{}
	rec := &recorder{}
	exp := newTestExporter(fetcher, rec)

	_, err := exp.Export(context.Background(), "gif", nil, &fakeCapturer{})
	if !apperrors.IsUnsupportedFormat(err) {
		t.Fatalf("expected UnsupportedFormat, got %v", err)
	}
	if fetcher.calls != 0 {
		t.Errorf("fetcher called for unsupported format")
	}
	n, ok := rec.last()
	if !ok || n.Level != models.NotifyDestructive || n.Description != "Unsupported format: gif" {
		t.Errorf("notification = %+v", n)
	}
}

func TestConcurrentExportRejected(t *testing.T) {
	exp := newTestExporter(&countingFetcher{}, &recorder{})
	capturer := &fakeCapturer{started: make(chan struct{}), release: make(chan struct{})}

	done := make(chan error, 1)
	go func() {
		_, err := exp.Export(context.Background(), models.FormatPNG, nil, capturer)
		done <- err
	}()
	<-capturer.started

	_, err := exp.Export(context.Background(), models.FormatSVG, nil, &fakeCapturer{})
	if !apperrors.IsConflictError(err) {
		t.Errorf("second export should conflict, got %v", err)
	}

	close(capturer.release)
	if err := <-done; err != nil {
		t.Fatalf("first export: %v", err)
	}

	// 第一个导出结束后可以再次导出
	if _, err := exp.Export(context.Background(), models.FormatSVG, nil, &fakeCapturer{}); err != nil {
		t.Errorf("export after release: %v", err)
	}
}

func TestHTTPDocumentFetcher(t *testing.T) {
	stub := NewStubService(0)
	docs := NewDocumentService(0, 0)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/download-csv", func(w http.ResponseWriter, r *http.Request) {
		body, _ := stub.Canned(r.Context(), models.FormatCSV)
		w.Write(body)
	})
	mux.HandleFunc("/api/export/csv", func(w http.ResponseWriter, r *http.Request) {
		spec := mustSpec(t, models.ChartPie, pieInput([]string{"A", "B"}, []string{"1", "2"}))
		body, _ := docs.CSV(spec)
		w.Write(body)
	})
	mux.HandleFunc("/api/download-pdf", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewProcessClient(srv.URL, 0)
	spec := mustSpec(t, models.ChartPie, pieInput([]string{"A", "B"}, []string{"1", "2"}))

	canned, err := HTTPDocumentFetcher{Client: client}.Fetch(context.Background(), models.FormatCSV, spec)
	if err != nil || string(canned) != CannedCSV {
		t.Errorf("stub fetch = %q, %v", canned, err)
	}
	live, err := HTTPDocumentFetcher{Client: client, Live: true}.Fetch(context.Background(), models.FormatCSV, spec)
	if err != nil || string(live) != "Label,Value\nA,1\nB,2\n" {
		t.Errorf("live fetch = %q, %v", live, err)
	}

	rec := &recorder{}
	exp := newTestExporter(HTTPDocumentFetcher{Client: client}, rec)
	if _, err := exp.Export(context.Background(), models.FormatPDF, spec, nil); !apperrors.IsNetworkError(err) {
		t.Errorf("expected network error, got %v", err)
	}
	if n, _ := rec.last(); n.Description != "Failed to export as pdf" {
		t.Errorf("notification = %+v", n)
	}
}

func TestSetLiveExports(t *testing.T) {
	client := NewProcessClient("http://backend.invalid", 0)
	exp := newTestExporter(HTTPDocumentFetcher{Client: client, Live: true}, &recorder{})

	exp.SetLiveExports(false)
	f, ok := exp.Fetcher().(HTTPDocumentFetcher)
	if !ok || f.Live || f.Client != client {
		t.Errorf("fetcher after SetLiveExports(false) = %+v", exp.Fetcher())
	}

	local := newTestExporter(LocalDocumentFetcher{Documents: NewDocumentService(0, 0)}, &recorder{})
	local.SetLiveExports(false)
	if _, ok := local.Fetcher().(LocalDocumentFetcher); !ok {
		t.Errorf("local fetcher must be left alone, got %T", local.Fetcher())
	}
}

func TestDocumentPageSize(t *testing.T) {
	docs := NewDocumentService(0, 0)
	if w, h := docs.PageSize(); w != ExportImageWidth || h != ExportImageHeight {
		t.Errorf("default page size = %dx%d", w, h)
	}
	docs.SetPageSize(320, 0)
	if w, h := docs.PageSize(); w != 320 || h != ExportImageHeight {
		t.Errorf("page size = %dx%d", w, h)
	}
}

func TestExportToDirectory(t *testing.T) {
	store, err := storage.NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	exp := newTestExporter(LocalDocumentFetcher{Documents: NewDocumentService(0, 0)}, &recorder{})
	spec := mustSpec(t, models.ChartLine, xyInput("Month", "Value", "Jan", "10", "Feb", "25"))

	res, err := exp.ExportTo(context.Background(), models.FormatJSON, spec, nil, DirectorySink{Store: store, Dir: "out"})
	if err != nil {
		t.Fatal(err)
	}
	data, err := store.ReadFile("out", "chart.json")
	if err != nil || len(data) != int(res.Size) {
		t.Errorf("written file = %d bytes (%v), result size %d", len(data), err, res.Size)
	}
}
