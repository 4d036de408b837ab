// internal/services/bridge_service.go
package services

import (
	"encoding/json"
	"sync"

	apperrors "github.com/Corphon/DataVisualizer/internal/errors"
	"github.com/Corphon/DataVisualizer/internal/models"
	"github.com/Corphon/DataVisualizer/internal/storage"
	"github.com/Corphon/DataVisualizer/internal/utils"
)

// ChartDataKey 单槽存储的固定键
const ChartDataKey = "chartData"

// 输出页找不到数据时的提示
const (
	MsgNoChartData    = "No chart data found. Please go back and input your data."
	MsgRenderFailed   = "Failed to render chart. Please try again."
	InputPageRedirect = "/input"
)

// Bridge 输入页与输出页之间的单槽交接，每次保存都会覆盖
type Bridge interface {
	Save(env *models.ChartEnvelope) error
	// Load 没有数据或数据损坏时返回 (nil, false)
	Load() (*models.ChartEnvelope, bool)
	Clear() error
}

// ErrNoChartData 把“没有数据”映射为可恢复的 NotFound 错误
func ErrNoChartData() error {
	return apperrors.NewNotFoundError(MsgNoChartData, nil)
}

// decodeEnvelope 解析失败按“没有数据”处理
func decodeEnvelope(raw []byte) (*models.ChartEnvelope, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var env models.ChartEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		utils.GetLogger().Warn("stored chart data is corrupt, treating as empty", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, false
	}
	return &env, true
}

// MemoryBridge 进程内单槽，保存序列化后的 JSON
type MemoryBridge struct {
	mu   sync.RWMutex
	slot []byte
}

// NewMemoryBridge 创建内存单槽
func NewMemoryBridge() *MemoryBridge {
	return &MemoryBridge{}
}

// Save 实现 Bridge
func (b *MemoryBridge) Save(env *models.ChartEnvelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return apperrors.NewProcessingError("serialize chart data", err)
	}
	b.mu.Lock()
	b.slot = data
	b.mu.Unlock()
	return nil
}

// SaveRaw 直接写入原始字节（用于模拟外部写入的数据）
func (b *MemoryBridge) SaveRaw(raw []byte) {
	b.mu.Lock()
	b.slot = append([]byte(nil), raw...)
	b.mu.Unlock()
}

// Load 实现 Bridge
func (b *MemoryBridge) Load() (*models.ChartEnvelope, bool) {
	b.mu.RLock()
	raw := b.slot
	b.mu.RUnlock()
	return decodeEnvelope(raw)
}

// Clear 实现 Bridge
func (b *MemoryBridge) Clear() error {
	b.mu.Lock()
	b.slot = nil
	b.mu.Unlock()
	return nil
}

// FileBridge 把单槽保存为 {dir}/chartData.json
type FileBridge struct {
	store *storage.FileStorage
	dir   string
}

// NewFileBridge 创建文件单槽
func NewFileBridge(store *storage.FileStorage, dir string) *FileBridge {
	return &FileBridge{store: store, dir: dir}
}

func (b *FileBridge) filename() string {
	return ChartDataKey + ".json"
}

// Save 实现 Bridge
func (b *FileBridge) Save(env *models.ChartEnvelope) error {
	if err := b.store.WriteJSON(b.dir, b.filename(), env); err != nil {
		return apperrors.NewProcessingError("save chart data", err)
	}
	return nil
}

// Load 实现 Bridge
func (b *FileBridge) Load() (*models.ChartEnvelope, bool) {
	raw, err := b.store.ReadFile(b.dir, b.filename())
	if err != nil {
		return nil, false
	}
	return decodeEnvelope(raw)
}

// Clear 实现 Bridge
func (b *FileBridge) Clear() error {
	return b.store.Remove(b.dir, b.filename())
}
