// internal/services/action_gate.go
package services

import (
	"sort"
	"sync"
	"time"

	apperrors "github.com/Corphon/DataVisualizer/internal/errors"
)

// 受保护的操作名
const (
	GateSubmit = "submit"
	GateExport = "export"
)

// ActionGate 同一操作同时只允许一个在执行（相当于按钮的 loading 禁用）
type ActionGate struct {
	mu     sync.Mutex
	active map[string]*GateInfo
}

// GateInfo 正在执行的操作
type GateInfo struct {
	Action    string    `json:"action"`
	StartedAt time.Time `json:"started_at"`
}

// NewActionGate 创建操作闸门
func NewActionGate() *ActionGate {
	return &ActionGate{
		active: make(map[string]*GateInfo),
	}
}

// TryAcquire 尝试占用操作，成功时返回释放函数（可重复调用）
func (g *ActionGate) TryAcquire(action string) (func(), bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.active[action]; busy {
		return nil, false
	}

	info := &GateInfo{Action: action, StartedAt: time.Now()}
	g.active[action] = info

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			if g.active[action] == info {
				delete(g.active, action)
			}
			g.mu.Unlock()
		})
	}, true
}

// Run 在闸门保护下执行 fn，操作进行中时返回冲突错误
func (g *ActionGate) Run(action string, fn func() error) error {
	release, ok := g.TryAcquire(action)
	if !ok {
		return apperrors.NewConflictError(action+" already in progress", nil)
	}
	defer release()

	return fn()
}

// Busy 操作是否正在进行
func (g *ActionGate) Busy(action string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, busy := g.active[action]
	return busy
}

// Active 返回正在执行的操作，按名称排序
func (g *ActionGate) Active() []GateInfo {
	g.mu.Lock()
	defer g.mu.Unlock()

	list := make([]GateInfo, 0, len(g.active))
	for _, info := range g.active {
		list = append(list, *info)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Action < list[j].Action })
	return list
}
