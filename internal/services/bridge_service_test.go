package services

import (
	"reflect"
	"testing"

	"github.com/Corphon/DataVisualizer/internal/models"
	"github.com/Corphon/DataVisualizer/internal/storage"
)

func sampleEnvelope(t *testing.T, chartType models.ChartType, input models.ChartInput) *models.ChartEnvelope {
	t.Helper()
	spec, err := Transform(chartType, input)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	return models.NewChartEnvelope(spec, input)
}

func bridges(t *testing.T) map[string]Bridge {
	t.Helper()
	store, err := storage.NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStorage: %v", err)
	}
	t.Cleanup(store.Close)
	return map[string]Bridge{
		"memory": NewMemoryBridge(),
		"file":   NewFileBridge(store, "session"),
	}
}

func TestBridgeRoundTrip(t *testing.T) {
	for name, b := range bridges(t) {
		t.Run(name, func(t *testing.T) {
			if env, ok := b.Load(); ok || env != nil {
				t.Fatalf("empty bridge returned %+v", env)
			}

			first := sampleEnvelope(t, models.ChartLine, xyInput("Month", "Value", "Jan", "10", "Feb", "25"))
			second := sampleEnvelope(t, models.ChartPie, pieInput([]string{"A", "B"}, []string{"1", "2"}))

			if err := b.Save(first); err != nil {
				t.Fatalf("Save: %v", err)
			}
			if err := b.Save(second); err != nil {
				t.Fatalf("Save: %v", err)
			}

			got, ok := b.Load()
			if !ok {
				t.Fatalf("Load returned nothing")
			}
			if !reflect.DeepEqual(got, second) {
				t.Errorf("Load = %+v, want last saved %+v", got, second)
			}
			if !reflect.DeepEqual(got.Spec(), second.Spec()) {
				t.Errorf("spec mismatch")
			}

			if err := b.Clear(); err != nil {
				t.Fatalf("Clear: %v", err)
			}
			if _, ok := b.Load(); ok {
				t.Errorf("Load after Clear should be empty")
			}
		})
	}
}

func TestCorruptSlotReadsAsEmpty(t *testing.T) {
	mem := NewMemoryBridge()
	for _, raw := range []string{"{not json", `{"data":{}}`, `{"chartType":"pie","rawData":null}`} {
		mem.SaveRaw([]byte(raw))
		if env, ok := mem.Load(); ok {
			t.Errorf("%q loaded as %+v", raw, env)
		}
	}

	store, err := storage.NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	if err := store.WriteFile("s", ChartDataKey+".json", []byte("garbage")); err != nil {
		t.Fatal(err)
	}
	if _, ok := NewFileBridge(store, "s").Load(); ok {
		t.Errorf("corrupt file should read as empty")
	}
}
