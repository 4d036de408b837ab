// internal/api/handlers.go
package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/Corphon/DataVisualizer/internal/errors"
	"github.com/Corphon/DataVisualizer/internal/models"
	"github.com/Corphon/DataVisualizer/internal/services"
	"github.com/Corphon/DataVisualizer/internal/utils"
	"github.com/gin-gonic/gin"
)

// Handler 处理API请求
type Handler struct {
	Pipeline  *services.PipelineService // 提交 / 读取 / 导出当前图表
	Stub      *services.StubService     // 模拟后端
	Documents *services.DocumentService // 服务端生成导出文件
	Help      *services.HelpService     // 帮助中心
	Config    *services.ConfigService   // 导出设置
	Stats     *services.StatsService    // 使用统计
	Metrics   *utils.PipelineMetrics
	WebSocket *WebSocketHandler
	Manager   *WebSocketManager
	Response  *ResponseHelper
}

// errorMessage 取 AppError 的用户可读消息
func errorMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// ===============================
// 模拟后端接口（保持原始响应格式，不使用 APIResponse 包装）
// ===============================

// ProcessData POST /api/process-data
func (h *Handler) ProcessData(c *gin.Context) {
	var req models.ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process data"})
		return
	}

	resp, err := h.Stub.Process(c.Request.Context(), req)
	if err != nil {
		if apperrors.IsValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": errorMessage(err)})
			return
		}
		utils.GetLogger().Error("process data failed", map[string]interface{}{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process data"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DownloadCanned GET /api/download-{format}，返回固定示例内容
func (h *Handler) DownloadCanned(format models.ExportFormat) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := h.Stub.Canned(c.Request.Context(), format)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to generate " + strings.ToUpper(string(format)),
			})
			return
		}
		h.Response.Attachment(c, format.Filename(), format.ContentType(), body)
	}
}

// ExportDocument POST /api/export/:format，由请求体中的图表生成文件
func (h *Handler) ExportDocument(c *gin.Context) {
	format := models.ParseExportFormat(c.Param("format"))

	var spec models.ChartSpec
	if err := c.ShouldBindJSON(&spec); err != nil {
		h.Response.BadRequest(c, "Invalid chart data", err.Error())
		return
	}
	if !spec.ChartType.Known() {
		h.Response.BadRequest(c, fmt.Sprintf("Unsupported chart type: %s", spec.ChartType))
		return
	}

	start := time.Now()
	data, err := h.generate(c, format, &spec)
	h.Metrics.RecordExport(string(format), err == nil, time.Since(start))
	if err != nil {
		h.Response.ExportError(c, format, err)
		return
	}

	h.Response.ExportResponse(c, models.NewExportResult(format, data))
}

func (h *Handler) generate(c *gin.Context, format models.ExportFormat, spec *models.ChartSpec) ([]byte, error) {
	if !format.IsImage() {
		return h.Documents.Generate(c.Request.Context(), format, spec)
	}

	renderer, err := services.NewChartRenderer(services.ToRenderable(spec))
	if err != nil {
		return nil, err
	}
	width, height := services.ExportImageWidth, services.ExportImageHeight
	if h.Config != nil {
		settings := h.Config.ExportSettings()
		width, height = settings.Width, settings.Height
	}
	return renderer.ToImage(c.Request.Context(), format, width, height)
}

// ===============================
// 图表
// ===============================

// CreateChart POST /api/charts
func (h *Handler) CreateChart(c *gin.Context) {
	var req models.ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "无效的请求数据", err.Error())
		return
	}
	if req.ChartType == "" || len(req.Data) == 0 {
		h.Response.BadRequest(c, services.MsgMissingFields)
		return
	}

	input, err := models.DecodeChartInput(req.ChartType, req.Data)
	if err != nil {
		h.Response.BadRequest(c, "Invalid chart data", err.Error())
		return
	}

	result, err := h.Pipeline.Submit(c.Request.Context(), req.ChartType, input)
	if err != nil {
		if apperrors.IsConflictError(err) {
			h.Response.Conflict(c, ErrorSubmitInProgress, errorMessage(err))
			return
		}
		h.Response.AppError(c, err)
		return
	}

	h.Response.Created(c, result, "Chart created")
}

// GetCurrentChart GET /api/charts/current
func (h *Handler) GetCurrentChart(c *gin.Context) {
	env, err := h.Pipeline.Current()
	if err != nil {
		h.chartNotFound(c)
		return
	}
	h.Response.Success(c, env)
}

// RenderCurrentChart GET /api/charts/current/render
func (h *Handler) RenderCurrentChart(c *gin.Context) {
	view, err := h.Pipeline.OpenCurrent()
	if err != nil {
		h.chartNotFound(c)
		return
	}

	if view.Config == nil {
		h.Response.Success(c, gin.H{"config": nil, "fallback": services.MsgRenderFailed})
		return
	}
	h.Response.Success(c, gin.H{"config": view.Config})
}

// ExportCurrentChart GET /api/charts/current/export/:format
func (h *Handler) ExportCurrentChart(c *gin.Context) {
	format := models.ParseExportFormat(c.Param("format"))

	result, err := h.Pipeline.ExportCurrent(c.Request.Context(), format)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			h.chartNotFound(c)
			return
		}
		h.Response.ExportError(c, format, err)
		return
	}

	h.Response.ExportResponse(c, result)
}

// DeleteCurrentChart DELETE /api/charts/current
func (h *Handler) DeleteCurrentChart(c *gin.Context) {
	if err := h.Pipeline.Clear(); err != nil {
		h.Response.AppError(c, err)
		return
	}
	h.Response.Success(c, nil, "Chart data cleared")
}

func (h *Handler) chartNotFound(c *gin.Context) {
	h.Response.NotFound(c, ErrorChartDataNotFound, services.MsgNoChartData,
		gin.H{"redirect": services.InputPageRedirect})
}

// ===============================
// 帮助中心
// ===============================

// GetFAQs GET /api/help/faqs?q=
func (h *Handler) GetFAQs(c *gin.Context) {
	h.Response.Success(c, h.Help.SearchFAQs(c.Query("q")))
}

// GetTutorials GET /api/help/tutorials?q=
func (h *Handler) GetTutorials(c *gin.Context) {
	h.Response.Success(c, h.Help.SearchTutorials(c.Query("q")))
}

// ===============================
// 设置、统计与状态
// ===============================

// GetSettings GET /api/settings
func (h *Handler) GetSettings(c *gin.Context) {
	if !h.requireConfig(c) {
		return
	}
	h.Response.Success(c, h.Config.ExportSettings())
}

// UpdateSettings PUT /api/settings
func (h *Handler) UpdateSettings(c *gin.Context) {
	if !h.requireConfig(c) {
		return
	}
	var patch services.ExportSettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.Response.BadRequest(c, "无效的请求数据", err.Error())
		return
	}

	updated, err := h.Config.PatchExportSettings(patch, "web_ui")
	if err != nil {
		h.Response.AppError(c, err)
		return
	}
	h.Response.Success(c, updated, "设置保存成功")
}

// GetSettingsHistory GET /api/settings/history?limit=
func (h *Handler) GetSettingsHistory(c *gin.Context) {
	if !h.requireConfig(c) {
		return
	}
	limit := 0
	fmt.Sscanf(c.DefaultQuery("limit", "0"), "%d", &limit)
	h.Response.Success(c, h.Config.GetChangeHistory(limit))
}

// requireConfig 没有注册配置服务时返回 500
func (h *Handler) requireConfig(c *gin.Context) bool {
	if h.Config == nil {
		h.Response.InternalError(c, "配置服务不可用")
		return false
	}
	return true
}

// GetStats GET /api/stats
func (h *Handler) GetStats(c *gin.Context) {
	h.Response.Success(c, h.Stats.GetUsageStats())
}

// GetMetrics GET /api/metrics
func (h *Handler) GetMetrics(c *gin.Context) {
	if h.Manager != nil {
		for _, channel := range []string{ChannelNotifications, ChannelLanding} {
			h.Metrics.RecordConnections(channel, h.Manager.ClientCount(channel))
		}
	}
	h.Response.Success(c, gin.H{
		"metrics":      h.Metrics.Collector().GetMetrics(),
		"active_gates": h.Pipeline.Gate().Active(),
	})
}

// GetWebSocketStatus GET /api/ws/status
func (h *Handler) GetWebSocketStatus(c *gin.Context) {
	status := h.Manager.GetStatus()
	status["timestamp"] = time.Now().Format(time.RFC3339)
	c.JSON(http.StatusOK, status)
}

// NotificationsWebSocket GET /ws/notifications
func (h *Handler) NotificationsWebSocket(c *gin.Context) {
	h.WebSocket.NotificationsWebSocket(c)
}

// LandingWebSocket GET /ws/landing
func (h *Handler) LandingWebSocket(c *gin.Context) {
	h.WebSocket.LandingWebSocket(c)
}
