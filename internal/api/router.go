// internal/api/router.go
package api

import (
	"fmt"
	"time"

	"github.com/Corphon/DataVisualizer/internal/config"
	"github.com/Corphon/DataVisualizer/internal/di"
	"github.com/Corphon/DataVisualizer/internal/models"
	"github.com/Corphon/DataVisualizer/internal/services"
	"github.com/Corphon/DataVisualizer/internal/utils"
	"github.com/gin-gonic/gin"
)

// 导出接口限流：每个 IP 每分钟 30 次
const (
	exportRateLimit  = 30
	exportRateWindow = time.Minute
)

// RouterOptions 路由可调参数
type RouterOptions struct {
	DebugMode   bool
	StaticDir   string
	RateLimiter *RateLimiter
}

// SetupRouter 从依赖注入容器取出服务并配置HTTP路由
func SetupRouter() (*gin.Engine, error) {
	cfg := config.GetCurrentConfig()
	container := di.GetContainer()

	pipeline, err := di.Resolve[*services.PipelineService](container, di.ServicePipeline)
	if err != nil {
		return nil, fmt.Errorf("流水线服务未正确初始化: %w", err)
	}
	stub, err := di.Resolve[*services.StubService](container, di.ServiceStub)
	if err != nil {
		return nil, fmt.Errorf("模拟后端未正确初始化: %w", err)
	}
	documents, err := di.Resolve[*services.DocumentService](container, di.ServiceDocuments)
	if err != nil {
		return nil, fmt.Errorf("文档服务未正确初始化: %w", err)
	}
	configService, err := di.Resolve[*services.ConfigService](container, di.ServiceConfig)
	if err != nil {
		return nil, fmt.Errorf("配置服务未正确初始化: %w", err)
	}
	statsService, err := di.Resolve[*services.StatsService](container, di.ServiceStats)
	if err != nil {
		return nil, fmt.Errorf("统计服务未正确初始化: %w", err)
	}
	metrics, err := di.Resolve[*utils.PipelineMetrics](container, di.ServiceMetrics)
	if err != nil {
		return nil, fmt.Errorf("指标服务未正确初始化: %w", err)
	}
	manager, err := di.Resolve[*WebSocketManager](container, di.ServiceWebSocket)
	if err != nil {
		return nil, fmt.Errorf("WebSocket 管理器未正确初始化: %w", err)
	}

	handler := &Handler{
		Pipeline:  pipeline,
		Stub:      stub,
		Documents: documents,
		Help:      services.NewHelpService(),
		Config:    configService,
		Stats:     statsService,
		Metrics:   metrics,
		Manager:   manager,
		WebSocket: NewWebSocketHandler(manager, services.DefaultLandingConfig()),
		Response:  NewResponseHelper(),
	}

	return NewRouter(handler, RouterOptions{
		DebugMode: cfg.DebugMode,
		StaticDir: cfg.StaticDir,
	}), nil
}

// NewRouter 注册所有路由
func NewRouter(handler *Handler, opts RouterOptions) *gin.Engine {
	if !opts.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	if opts.RateLimiter == nil {
		opts.RateLimiter = NewRateLimiter(time.Hour)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if opts.DebugMode {
		r.Use(gin.Logger())
	}
	r.Use(corsMiddleware())
	r.Use(requestIDMiddleware())
	r.Use(metricsMiddleware(handler.Metrics))

	if opts.StaticDir != "" {
		r.Static("/static", opts.StaticDir)
	}

	exportLimit := RateLimitByIP(opts.RateLimiter, exportRateLimit, exportRateWindow)

	// WebSocket 支持
	r.GET("/ws/notifications", handler.NotificationsWebSocket)
	r.GET("/ws/landing", handler.LandingWebSocket)

	api := r.Group("/api")
	{
		// ===============================
		// 模拟后端
		// ===============================
		api.POST("/process-data", handler.ProcessData)
		api.GET("/download-csv", handler.DownloadCanned(models.FormatCSV))
		api.GET("/download-json", handler.DownloadCanned(models.FormatJSON))
		api.GET("/download-pdf", handler.DownloadCanned(models.FormatPDF))
		api.POST("/export/:format", exportLimit, handler.ExportDocument)

		// ===============================
		// 图表
		// ===============================
		charts := api.Group("/charts")
		{
			charts.POST("", handler.CreateChart)
			charts.GET("/current", handler.GetCurrentChart)
			charts.GET("/current/render", handler.RenderCurrentChart)
			charts.GET("/current/export/:format", exportLimit, handler.ExportCurrentChart)
			charts.DELETE("/current", handler.DeleteCurrentChart)
		}

		// ===============================
		// 帮助中心
		// ===============================
		help := api.Group("/help")
		{
			help.GET("/faqs", handler.GetFAQs)
			help.GET("/tutorials", handler.GetTutorials)
		}

		// ===============================
		// 设置与状态
		// ===============================
		settings := api.Group("/settings")
		{
			settings.GET("", handler.GetSettings)
			settings.PUT("", handler.UpdateSettings)
			settings.GET("/history", handler.GetSettingsHistory)
		}

		api.GET("/stats", handler.GetStats)
		api.GET("/metrics", handler.GetMetrics)
		api.GET("/ws/status", handler.GetWebSocketStatus)
	}

	return r
}
