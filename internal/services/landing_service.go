// internal/services/landing_service.go
package services

import (
	"context"
	"sync"
	"time"
)

// LandingUpdate 推送给落地页的进度
type LandingUpdate struct {
	Progress float64 `json:"progress"` // 0-100
	Status   string  `json:"status"`   // running, redirect
	Redirect string  `json:"redirect,omitempty"`
	Reason   string  `json:"reason,omitempty"` // timeout, skip
}

// LandingConfig 落地页参数
type LandingConfig struct {
	RedirectAfter time.Duration
	TickInterval  time.Duration
	Step          float64
	Target        string
	SkipClicks    int // 第几次点击时跳过
}

// DefaultLandingConfig 8 秒后跳转，每 100ms 前进 1.25%，第二次点击跳过
func DefaultLandingConfig() LandingConfig {
	return LandingConfig{
		RedirectAfter: 8 * time.Second,
		TickInterval:  100 * time.Millisecond,
		Step:          1.25,
		Target:        "/dashboard",
		SkipClicks:    2,
	}
}

// LandingView 落地页：进度条 + 自动跳转，所有定时器随视图关闭
type LandingView struct {
	config LandingConfig
	scope  *ViewScope

	mu         sync.Mutex
	progress   float64
	clicks     int
	redirected bool

	updates chan LandingUpdate
}

// NewLandingView 挂载落地页并启动定时器
func NewLandingView(ctx context.Context, config LandingConfig) *LandingView {
	if config.Target == "" {
		config.Target = "/dashboard"
	}
	if config.SkipClicks <= 0 {
		config.SkipClicks = 2
	}

	v := &LandingView{
		config:  config,
		scope:   NewViewScope(ctx, "landing"),
		updates: make(chan LandingUpdate, 16),
	}

	v.scope.Every(config.TickInterval, v.tick)
	v.scope.After(config.RedirectAfter, func() { v.redirect("timeout") })

	return v
}

// Updates 进度与跳转通知
func (v *LandingView) Updates() <-chan LandingUpdate {
	return v.updates
}

// Done 视图关闭时关闭
func (v *LandingView) Done() <-chan struct{} {
	return v.scope.Done()
}

// Progress 当前进度
func (v *LandingView) Progress() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.progress
}

// Redirected 是否已经跳转
func (v *LandingView) Redirected() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.redirected
}

// Skip 记录一次点击，达到次数后立即跳转；返回是否触发了跳转
func (v *LandingView) Skip() bool {
	v.mu.Lock()
	v.clicks++
	reached := v.clicks >= v.config.SkipClicks
	v.mu.Unlock()

	if !reached {
		return false
	}
	return v.redirect("skip")
}

// Close 卸载视图
func (v *LandingView) Close() {
	v.scope.Close()
}

func (v *LandingView) tick() bool {
	v.mu.Lock()
	if v.redirected {
		v.mu.Unlock()
		return false
	}
	v.progress += v.config.Step
	if v.progress > 100 {
		v.progress = 100
	}
	update := LandingUpdate{Progress: v.progress, Status: "running"}
	v.mu.Unlock()

	// 非阻塞发送，通道已满则跳过
	select {
	case v.updates <- update:
	default:
	}
	return update.Progress < 100
}

func (v *LandingView) redirect(reason string) bool {
	v.mu.Lock()
	if v.redirected {
		v.mu.Unlock()
		return false
	}
	v.redirected = true
	update := LandingUpdate{
		Progress: v.progress,
		Status:   "redirect",
		Redirect: v.config.Target,
		Reason:   reason,
	}
	v.mu.Unlock()

	// 跳转消息必须送达，除非视图已卸载
	select {
	case v.updates <- update:
	case <-v.scope.Done():
	}
	return true
}
