// internal/services/stats_service.go
package services

import (
	"maps"
	"sync"
	"time"

	"github.com/Corphon/DataVisualizer/internal/storage"
	"github.com/Corphon/DataVisualizer/internal/utils"
)

const (
	statsDir  = "stats"
	statsFile = "usage_stats.json"
)

// UsageStats 图表使用统计
type UsageStats struct {
	TodayCharts  int            `json:"today_charts"`
	TodayExports int            `json:"today_exports"`
	DailyCharts  map[string]int `json:"daily_charts"`
	ChartTypes   map[string]int `json:"chart_types"`
	Exports      map[string]int `json:"exports"`
	LastUpdated  time.Time      `json:"last_updated"`
}

func newUsageStats() *UsageStats {
	return &UsageStats{
		DailyCharts: make(map[string]int),
		ChartTypes:  make(map[string]int),
		Exports:     make(map[string]int),
		LastUpdated: time.Now(),
	}
}

// StatsService 记录生成和导出的次数，批量写入数据目录
type StatsService struct {
	store *storage.FileStorage
	mu    sync.Mutex
	stats *UsageStats

	isDirty      bool
	lastSaveTime time.Time
	saveInterval time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

// NewStatsService 从 store 加载已有统计并启动定时保存；store 为 nil 时只在内存中统计
func NewStatsService(store *storage.FileStorage, saveInterval time.Duration) *StatsService {
	if saveInterval <= 0 {
		saveInterval = 30 * time.Second
	}
	s := &StatsService{
		store:        store,
		saveInterval: saveInterval,
		stop:         make(chan struct{}),
	}
	s.stats = s.load()
	s.rollPeriodLocked(time.Now())

	if store != nil {
		go s.periodicSave()
	}
	return s
}

func (s *StatsService) load() *UsageStats {
	if s.store == nil {
		return newUsageStats()
	}
	var stats UsageStats
	if err := s.store.ReadJSON(statsDir, statsFile, &stats); err != nil {
		return newUsageStats()
	}
	if stats.DailyCharts == nil {
		stats.DailyCharts = make(map[string]int)
	}
	if stats.ChartTypes == nil {
		stats.ChartTypes = make(map[string]int)
	}
	if stats.Exports == nil {
		stats.Exports = make(map[string]int)
	}
	return &stats
}

// rollPeriodLocked 跨天时清零当日计数
func (s *StatsService) rollPeriodLocked(now time.Time) {
	if now.Format("2006-01-02") != s.stats.LastUpdated.Format("2006-01-02") {
		s.stats.TodayCharts = 0
		s.stats.TodayExports = 0
		s.stats.LastUpdated = now
		s.isDirty = true
	}
}

// RecordChart 记录一次成功生成
func (s *StatsService) RecordChart(chartType string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.rollPeriodLocked(now)
	s.stats.TodayCharts++
	s.stats.DailyCharts[now.Format("2006-01-02")]++
	s.stats.ChartTypes[chartType]++
	s.stats.LastUpdated = now
	s.markDirtyLocked(now)
}

// RecordExport 记录一次成功导出
func (s *StatsService) RecordExport(format string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.rollPeriodLocked(now)
	s.stats.TodayExports++
	s.stats.Exports[format]++
	s.stats.LastUpdated = now
	s.markDirtyLocked(now)
}

func (s *StatsService) markDirtyLocked(now time.Time) {
	s.isDirty = true
	if now.Sub(s.lastSaveTime) > s.saveInterval {
		s.saveLocked()
	}
}

// GetUsageStats 返回深拷贝
func (s *StatsService) GetUsageStats() *UsageStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rollPeriodLocked(time.Now())
	return &UsageStats{
		TodayCharts:  s.stats.TodayCharts,
		TodayExports: s.stats.TodayExports,
		DailyCharts:  maps.Clone(s.stats.DailyCharts),
		ChartTypes:   maps.Clone(s.stats.ChartTypes),
		Exports:      maps.Clone(s.stats.Exports),
		LastUpdated:  s.stats.LastUpdated,
	}
}

func (s *StatsService) saveLocked() {
	if !s.isDirty || s.store == nil {
		return
	}
	if err := s.store.WriteJSON(statsDir, statsFile, s.stats); err != nil {
		utils.GetLogger().Warn("save usage stats failed", map[string]interface{}{"error": err.Error()})
		return
	}
	s.isDirty = false
	s.lastSaveTime = time.Now()
}

func (s *StatsService) periodicSave() {
	ticker := time.NewTicker(s.saveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.saveLocked()
			s.mu.Unlock()
		}
	}
}

// Close 停止定时保存并写入未保存的数据
func (s *StatsService) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveLocked()
	return nil
}
