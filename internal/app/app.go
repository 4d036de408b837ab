// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/Corphon/DataVisualizer/internal/api"
	"github.com/Corphon/DataVisualizer/internal/config"
	"github.com/Corphon/DataVisualizer/internal/di"
	"github.com/Corphon/DataVisualizer/internal/services"
	"github.com/Corphon/DataVisualizer/internal/storage"
	"github.com/Corphon/DataVisualizer/internal/utils"
)

// 数据目录下的子目录
const (
	ChartsDir  = "charts"
	ExportsDir = "exports"
)

// server 抽象 http.Server，便于测试
type server interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// App 应用实例
type App struct {
	config   *config.AppConfig
	router   http.Handler
	server   server
	stopChan chan os.Signal
	cancel   context.CancelFunc
}

var (
	instance *App
	mu       sync.Mutex
)

// GetApp 获取应用单例
func GetApp() *App {
	mu.Lock()
	defer mu.Unlock()

	if instance == nil {
		instance = &App{stopChan: make(chan os.Signal, 1)}
	}
	return instance
}

// Initialize 加载配置、日志、服务和路由
func Initialize(dataDir string) error {
	if err := config.InitConfig(dataDir); err != nil {
		return fmt.Errorf("初始化配置失败: %w", err)
	}
	cfg := config.GetCurrentConfig()

	app := GetApp()
	app.config = cfg

	if err := initLogger(cfg.LogDir, cfg.LogLevel); err != nil {
		return fmt.Errorf("初始化日志系统失败: %w", err)
	}
	if err := InitServices(); err != nil {
		return fmt.Errorf("初始化服务失败: %w", err)
	}

	router, err := api.SetupRouter()
	if err != nil {
		return fmt.Errorf("设置路由失败: %w", err)
	}
	app.router = router
	app.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

// initLogger 日志写入 {logDir}/app_YYYY-MM-DD.log
func initLogger(logDir, level string) error {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return err
	}
	logFile := filepath.Join(logDir, fmt.Sprintf("app_%s.log", time.Now().Format("2006-01-02")))
	if err := utils.InitLogger(logFile); err != nil {
		return err
	}
	utils.GetLogger().SetLogLevel(utils.ParseLogLevel(level))
	return nil
}

// InitServices 按依赖顺序创建所有服务并注册到容器
func InitServices() error {
	cfg := config.GetCurrentConfig()
	container := di.GetContainer()
	logger := utils.GetLogger()

	// 1. 存储与单槽
	store, err := storage.NewFileStorage(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("创建文件存储失败: %w", err)
	}
	container.Register(di.ServiceStorage, store)

	bridge := services.NewFileBridge(store, ChartsDir)
	container.Register(di.ServiceBridge, bridge)

	// 2. 指标、闸门与提示通道
	metrics := utils.NewPipelineMetrics(nil)
	container.Register(di.ServiceMetrics, metrics)

	gate := services.NewActionGate()
	container.Register(di.ServiceGate, gate)

	manager := api.NewWebSocketManager(0)
	manager.Start()
	container.Register(di.ServiceWebSocket, manager)

	notifier := services.MultiNotifier{manager, services.NewLogNotifier()}

	// 3. 转换与导出后端
	documents := services.NewDocumentService(cfg.ExportWidth, cfg.ExportHeight)
	container.Register(di.ServiceDocuments, documents)

	var transformer services.Transformer = services.LocalTransformer{}
	var fetcher services.DocumentFetcher = services.LocalDocumentFetcher{Documents: documents}
	if cfg.BackendURL != "" {
		client := services.NewProcessClient(cfg.BackendURL, 30*time.Second)
		fetcher = services.HTTPDocumentFetcher{Client: client, Live: cfg.LiveExports}
		if cfg.RemoteTransform {
			transformer = services.RemoteTransformer{Client: client}
		}
		logger.Info("使用远程后端", map[string]interface{}{
			"backend_url":      cfg.BackendURL,
			"remote_transform": cfg.RemoteTransform,
			"live_exports":     cfg.LiveExports,
		})
	}

	exporter := services.NewExportService(fetcher, gate, notifier, metrics)
	exporter.SetImageSize(cfg.ExportWidth, cfg.ExportHeight)
	container.Register(di.ServiceExporter, exporter)

	// 4. 统计与配置
	stats := services.NewStatsService(store, time.Minute)
	container.Register(di.ServiceStats, stats)

	configService := services.NewConfigService()
	configService.SubscribeToChanges(services.ConfigChangeFunc(func(old, updated services.ExportSettings) {
		exporter.SetImageSize(updated.Width, updated.Height)
		documents.SetPageSize(updated.Width, updated.Height)
		if old.LiveExports != updated.LiveExports {
			exporter.SetLiveExports(updated.LiveExports)
		}
	}))
	container.Register(di.ServiceConfig, configService)

	// 5. 流水线与模拟后端
	pipeline := services.NewPipelineService(services.PipelineOptions{
		Transformer: transformer,
		Bridge:      bridge,
		Exporter:    exporter,
		Gate:        gate,
		Notifier:    notifier,
		Metrics:     metrics,
		Stats:       stats,
	})
	container.Register(di.ServicePipeline, pipeline)

	container.Register(di.ServiceStub, services.NewStubService(cfg.ProcessDelay))

	logger.Info("服务初始化完成", map[string]interface{}{"services": container.GetNames()})
	return nil
}

// Run 启动服务器并阻塞直到收到停止信号
func Run() error {
	app := GetApp()
	if app.server == nil {
		return fmt.Errorf("应用尚未初始化")
	}

	ctx, cancel := context.WithCancel(context.Background())
	app.cancel = cancel
	if metrics, err := di.Resolve[*utils.PipelineMetrics](di.GetContainer(), di.ServiceMetrics); err == nil {
		metrics.StartMetricsCollection(ctx, 5*time.Minute)
	}

	errChan := make(chan error, 1)
	go func() {
		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	signal.Notify(app.stopChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(app.stopChan)

	select {
	case err := <-errChan:
		app.cleanup()
		return fmt.Errorf("启动服务器失败: %w", err)
	case <-app.stopChan:
	}

	const shutdownTimeout = 30 * time.Second
	logger := utils.GetLogger()
	logger.Infof("正在关闭服务器，最长等待 %s", shutdownTimeout)
	log.Println("🛑 正在关闭服务器...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	err := app.server.Shutdown(shutdownCtx)
	app.cleanup()
	if err != nil {
		logger.Warnf("服务器未能在超时内关闭: %v", err)
		return fmt.Errorf("服务器强制关闭: %w", err)
	}
	log.Println("✅ 服务器优雅关闭完成")
	return nil
}

// cleanup 释放后台协程和文件句柄
func (a *App) cleanup() {
	if a.cancel != nil {
		a.cancel()
	}
	Shutdown(di.GetContainer())
}

// Shutdown 停止容器中带后台协程的服务
func Shutdown(container *di.Container) {
	if manager, err := di.Resolve[*api.WebSocketManager](container, di.ServiceWebSocket); err == nil {
		manager.Stop()
	}
	if stats, err := di.Resolve[*services.StatsService](container, di.ServiceStats); err == nil {
		if err := stats.Close(); err != nil {
			log.Printf("⚠️ 保存使用统计失败: %v", err)
		}
	}
	if store, err := di.Resolve[*storage.FileStorage](container, di.ServiceStorage); err == nil {
		store.Close()
	}
}

// GetConfig 获取应用配置
func (a *App) GetConfig() *config.AppConfig {
	return a.config
}

// GetDIContainer 获取依赖注入容器
func GetDIContainer() *di.Container {
	return di.GetContainer()
}

// IsDebugMode 是否处于调试模式
func IsDebugMode() bool {
	mu.Lock()
	defer mu.Unlock()
	return instance != nil && instance.config != nil && instance.config.DebugMode
}
