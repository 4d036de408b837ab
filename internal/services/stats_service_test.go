package services

import (
	"context"
	"testing"

	"github.com/Corphon/DataVisualizer/internal/storage"
)

func TestStatsPersistAcrossRestart(t *testing.T) {
	store, err := storage.NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	stats := NewStatsService(store, 0)
	stats.RecordChart("line")
	stats.RecordChart("pie")
	stats.RecordExport("csv")
	if err := stats.Close(); err != nil {
		t.Fatal(err)
	}

	reloaded := NewStatsService(store, 0)
	defer reloaded.Close()
	got := reloaded.GetUsageStats()
	if got.TodayCharts != 2 || got.TodayExports != 1 {
		t.Errorf("today = %d charts, %d exports", got.TodayCharts, got.TodayExports)
	}
	if got.ChartTypes["line"] != 1 || got.ChartTypes["pie"] != 1 || got.Exports["csv"] != 1 {
		t.Errorf("stats = %+v", got)
	}

	// 返回值是副本
	got.ChartTypes["line"] = 99
	if reloaded.GetUsageStats().ChartTypes["line"] != 1 {
		t.Errorf("GetUsageStats leaked internal map")
	}
}

func TestPipelineRecordsStats(t *testing.T) {
	stats := NewStatsService(nil, 0)
	p := NewPipelineService(PipelineOptions{Notifier: &recorder{}, Stats: stats})

	if _, err := p.Submit(context.Background(), "bar", xyInput("a", "b", "x", "1", "y", "2")); err != nil {
		t.Fatal(err)
	}
	if _, err := p.ExportCurrent(context.Background(), "json"); err != nil {
		t.Fatal(err)
	}
	if _, err := p.ExportCurrent(context.Background(), "gif"); err == nil {
		t.Fatal("gif should fail")
	}

	got := stats.GetUsageStats()
	if got.ChartTypes["bar"] != 1 || got.Exports["json"] != 1 || got.Exports["gif"] != 0 {
		t.Errorf("stats = %+v", got)
	}
}
