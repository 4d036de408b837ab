package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/Corphon/DataVisualizer/internal/config"
	"github.com/Corphon/DataVisualizer/internal/di"
	"github.com/Corphon/DataVisualizer/internal/models"
	"github.com/Corphon/DataVisualizer/internal/services"
)

// 测试前的设置工作
func setupTest(t *testing.T) string {
	t.Helper()
	instance = nil
	di.GetContainer().Clear()

	tempDir := t.TempDir()
	t.Setenv("DATA_DIR", filepath.Join(tempDir, "data"))
	t.Setenv("LOG_DIR", filepath.Join(tempDir, "logs"))
	t.Setenv("BACKEND_URL", "")
	t.Setenv("DEBUG_MODE", "false")

	t.Cleanup(func() {
		Shutdown(di.GetContainer())
		di.GetContainer().Clear()
		instance = nil
	})
	return tempDir
}

// 测试创建模拟服务器
type mockServer struct {
	shutdownCalled bool
}

func (m *mockServer) ListenAndServe() error {
	return nil
}

func (m *mockServer) Shutdown(ctx context.Context) error {
	m.shutdownCalled = true
	return nil
}

// TestGetApp 测试获取应用实例
func TestGetApp(t *testing.T) {
	instance = nil
	defer func() { instance = nil }()

	app1 := GetApp()
	if app1 == nil {
		t.Fatal("GetApp应该返回一个非nil的应用实例")
	}
	if app1 != GetApp() {
		t.Fatal("GetApp应该返回相同的实例")
	}
	if app1.stopChan == nil {
		t.Fatal("应用实例的stopChan应该被初始化")
	}
}

// TestInitialize 测试应用初始化
func TestInitialize(t *testing.T) {
	tempDir := setupTest(t)
	dataDir := filepath.Join(tempDir, "data")

	if err := Initialize(dataDir); err != nil {
		t.Fatalf("初始化应用失败: %v", err)
	}

	app := GetApp()
	if app.config == nil {
		t.Fatal("应用配置应该已被设置")
	}
	if app.router == nil || app.server == nil {
		t.Fatal("应用路由和服务器应该已被设置")
	}

	if _, err := os.Stat(filepath.Join(dataDir, "config.json")); os.IsNotExist(err) {
		t.Error("配置文件应该已被创建")
	}

	files, _ := os.ReadDir(filepath.Join(tempDir, "logs"))
	if len(files) == 0 {
		t.Error("应该已创建日志文件")
	}
}

// TestServiceRegistration 测试服务注册
func TestServiceRegistration(t *testing.T) {
	tempDir := setupTest(t)
	if err := config.InitConfig(filepath.Join(tempDir, "data")); err != nil {
		t.Fatalf("初始化配置失败: %v", err)
	}

	if err := InitServices(); err != nil {
		t.Fatalf("服务初始化失败: %v", err)
	}

	container := GetDIContainer()
	names := []string{
		di.ServiceStorage, di.ServiceBridge, di.ServicePipeline, di.ServiceExporter,
		di.ServiceStub, di.ServiceDocuments, di.ServiceConfig, di.ServiceStats,
		di.ServiceMetrics, di.ServiceWebSocket, di.ServiceGate,
	}
	for _, name := range names {
		if !container.Has(name) {
			t.Errorf("服务 %s 应该已被注册", name)
		}
	}

	pipeline, err := di.Resolve[*services.PipelineService](container, di.ServicePipeline)
	if err != nil {
		t.Fatalf("流水线服务类型不正确: %v", err)
	}
	gate, err := di.Resolve[*services.ActionGate](container, di.ServiceGate)
	if err != nil {
		t.Fatalf("闸门类型不正确: %v", err)
	}
	if pipeline.Gate() != gate {
		t.Error("流水线和导出应该共享同一个闸门")
	}
}

// TestSettingsChangeResizesExports 测试导出设置变更传递到导出服务
func TestSettingsChangeResizesExports(t *testing.T) {
	tempDir := setupTest(t)

	var (
		mu    sync.Mutex
		paths []string
	)
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.Method+" "+r.URL.Path)
		mu.Unlock()
		w.Write([]byte("x,y\n"))
	}))
	defer backend.Close()
	t.Setenv("BACKEND_URL", backend.URL)
	t.Setenv("LIVE_EXPORTS", "true")

	if err := config.InitConfig(filepath.Join(tempDir, "data")); err != nil {
		t.Fatalf("初始化配置失败: %v", err)
	}
	if err := InitServices(); err != nil {
		t.Fatalf("服务初始化失败: %v", err)
	}

	container := GetDIContainer()
	configService, _ := di.Resolve[*services.ConfigService](container, di.ServiceConfig)
	exporter, _ := di.Resolve[*services.ExportService](container, di.ServiceExporter)
	documents, _ := di.Resolve[*services.DocumentService](container, di.ServiceDocuments)

	width, height := 320, 240
	if _, err := configService.PatchExportSettings(services.ExportSettingsPatch{Width: &width, Height: &height}, "test"); err != nil {
		t.Fatalf("更新导出设置失败: %v", err)
	}
	cfg := config.GetCurrentConfig()
	if cfg.ExportWidth != 320 {
		t.Errorf("导出宽度应该为 320，实际: %d", cfg.ExportWidth)
	}
	if !cfg.LiveExports {
		t.Error("未提交 live_exports 时应保持原值")
	}
	if w, h := documents.PageSize(); w != 320 || h != 240 {
		t.Errorf("pdf 页面尺寸应该为 320x240，实际: %dx%d", w, h)
	}

	live := false
	if _, err := configService.PatchExportSettings(services.ExportSettingsPatch{LiveExports: &live}, "test"); err != nil {
		t.Fatalf("关闭实时导出失败: %v", err)
	}
	if history := configService.GetChangeHistory(0); len(history) != 2 {
		t.Errorf("应该有 2 条变更记录，实际: %d", len(history))
	}

	spec := &models.ChartSpec{ChartType: models.ChartLine, X: []string{"Jan", "Feb"}, Y: []float64{1, 2}}
	if _, err := exporter.Export(context.Background(), models.FormatCSV, spec, nil); err != nil {
		t.Fatalf("导出失败: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(paths) != 1 || paths[0] != "GET /api/download-csv" {
		t.Errorf("关闭实时导出后应请求固定示例接口，实际: %v", paths)
	}
}

// TestRun 测试应用运行和关闭
func TestRun(t *testing.T) {
	setupTest(t)

	testApp := &App{
		config:   &config.AppConfig{Port: "8081"},
		stopChan: make(chan os.Signal, 1),
	}
	instance = testApp
	mockSrv := &mockServer{}
	testApp.server = mockSrv

	go func() {
		time.Sleep(100 * time.Millisecond)
		testApp.stopChan <- syscall.SIGTERM
	}()

	if err := Run(); err != nil {
		t.Fatalf("运行应用失败: %v", err)
	}
	if !mockSrv.shutdownCalled {
		t.Error("应该调用了server.Shutdown")
	}
}

// TestRunWithoutInitialize 未初始化时直接返回错误
func TestRunWithoutInitialize(t *testing.T) {
	setupTest(t)
	instance = &App{stopChan: make(chan os.Signal, 1)}

	if err := Run(); err == nil {
		t.Fatal("未初始化时Run应该返回错误")
	}
}

// TestIsDebugMode 测试调试模式检查
func TestIsDebugMode(t *testing.T) {
	setupTest(t)

	instance = nil
	if IsDebugMode() {
		t.Error("无应用实例时IsDebugMode应该返回false")
	}

	testApp := &App{}
	instance = testApp
	if IsDebugMode() {
		t.Error("应用无配置时IsDebugMode应该返回false")
	}

	testApp.config = &config.AppConfig{DebugMode: true}
	if !IsDebugMode() {
		t.Error("调试模式开启时IsDebugMode应该返回true")
	}
	if testApp.GetConfig() != testApp.config {
		t.Error("GetConfig应该返回应用的配置")
	}
}
