// internal/services/config_service.go
package services

import (
	"sync"
	"time"

	"github.com/Corphon/DataVisualizer/internal/config"
	apperrors "github.com/Corphon/DataVisualizer/internal/errors"
)

// 变更历史最多保留的条数
const maxConfigHistory = 100

// ExportSettings 可在运行时修改的导出设置
type ExportSettings struct {
	Width       int  `json:"width"`
	Height      int  `json:"height"`
	LiveExports bool `json:"live_exports"`
}

// ExportSettingsPatch 部分更新，缺省的字段沿用当前值
type ExportSettingsPatch struct {
	Width       *int  `json:"width"`
	Height      *int  `json:"height"`
	LiveExports *bool `json:"live_exports"`
}

// Merge 把补丁叠加到 current 上
func (p ExportSettingsPatch) Merge(current ExportSettings) ExportSettings {
	if p.Width != nil {
		current.Width = *p.Width
	}
	if p.Height != nil {
		current.Height = *p.Height
	}
	if p.LiveExports != nil {
		current.LiveExports = *p.LiveExports
	}
	return current
}

// ConfigChangeSubscriber 导出设置变更订阅者
type ConfigChangeSubscriber interface {
	OnExportSettingsChanged(old, updated ExportSettings)
}

// ConfigChangeFunc 函数适配器
type ConfigChangeFunc func(old, updated ExportSettings)

// OnExportSettingsChanged 实现 ConfigChangeSubscriber
func (f ConfigChangeFunc) OnExportSettingsChanged(old, updated ExportSettings) {
	f(old, updated)
}

// ConfigChangeRecord 配置变更记录
type ConfigChangeRecord struct {
	Timestamp time.Time      `json:"timestamp"`
	ChangedBy string         `json:"changed_by"`
	OldValue  ExportSettings `json:"old_value"`
	NewValue  ExportSettings `json:"new_value"`
}

// ConfigService 管理导出设置，变更会持久化到 config.json 并同步通知订阅者
type ConfigService struct {
	mu            sync.RWMutex
	subscribers   []ConfigChangeSubscriber
	changeHistory []ConfigChangeRecord
}

// NewConfigService 创建配置服务实例
func NewConfigService() *ConfigService {
	return &ConfigService{
		changeHistory: make([]ConfigChangeRecord, 0, maxConfigHistory),
	}
}

// GetCurrentConfig 获取当前配置
func (s *ConfigService) GetCurrentConfig() *config.AppConfig {
	return config.GetCurrentConfig()
}

// ExportSettings 当前导出设置
func (s *ConfigService) ExportSettings() ExportSettings {
	cfg := config.GetCurrentConfig()
	return ExportSettings{
		Width:       cfg.ExportWidth,
		Height:      cfg.ExportHeight,
		LiveExports: cfg.LiveExports,
	}
}

// UpdateExportSettings 校验并保存导出设置
func (s *ConfigService) UpdateExportSettings(settings ExportSettings, changedBy string) (ExportSettings, error) {
	if settings.Width <= 0 || settings.Height <= 0 {
		return ExportSettings{}, apperrors.NewValidationError("export width and height must be positive", nil)
	}

	old := s.ExportSettings()
	if err := config.UpdateExportConfig(settings.Width, settings.Height, settings.LiveExports); err != nil {
		return ExportSettings{}, apperrors.NewProcessingError("save export settings", err)
	}
	updated := s.ExportSettings()

	s.recordChange(old, updated, changedBy)
	s.notifySubscribers(old, updated)
	return updated, nil
}

// PatchExportSettings 只修改补丁中给出的字段
func (s *ConfigService) PatchExportSettings(patch ExportSettingsPatch, changedBy string) (ExportSettings, error) {
	return s.UpdateExportSettings(patch.Merge(s.ExportSettings()), changedBy)
}

// SubscribeToChanges 订阅配置变更事件
func (s *ConfigService) SubscribeToChanges(subscriber ConfigChangeSubscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subscribers = append(s.subscribers, subscriber)
}

// notifySubscribers 在调用方 goroutine 中依次通知
func (s *ConfigService) notifySubscribers(old, updated ExportSettings) {
	s.mu.RLock()
	subscribers := make([]ConfigChangeSubscriber, len(s.subscribers))
	copy(subscribers, s.subscribers)
	s.mu.RUnlock()

	for _, subscriber := range subscribers {
		subscriber.OnExportSettingsChanged(old, updated)
	}
}

// GetChangeHistory 获取最近 limit 条变更，limit<=0 返回全部
func (s *ConfigService) GetChangeHistory(limit int) []ConfigChangeRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.changeHistory) {
		limit = len(s.changeHistory)
	}

	history := make([]ConfigChangeRecord, limit)
	copy(history, s.changeHistory[len(s.changeHistory)-limit:])
	return history
}

func (s *ConfigService) recordChange(old, updated ExportSettings, changedBy string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.changeHistory) >= maxConfigHistory {
		s.changeHistory = s.changeHistory[1:]
	}
	s.changeHistory = append(s.changeHistory, ConfigChangeRecord{
		Timestamp: time.Now(),
		ChangedBy: changedBy,
		OldValue:  old,
		NewValue:  updated,
	})
}
