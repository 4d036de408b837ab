// internal/services/view_scope.go
package services

import (
	"context"
	"sync"
	"time"
)

// ViewScope 把定时器绑定到一个视图的生命周期上，Close 之后不会再触发任何回调。
// 回调里不能调用 Close。
type ViewScope struct {
	name   string
	ctx    context.Context
	cancel context.CancelFunc

	fireMu sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewViewScope 创建视图作用域，parent 取消时作用域一并结束
func NewViewScope(parent context.Context, name string) *ViewScope {
	ctx, cancel := context.WithCancel(parent)
	return &ViewScope{
		name:   name,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Name 视图名称
func (s *ViewScope) Name() string {
	return s.name
}

// Context 作用域的 context
func (s *ViewScope) Context() context.Context {
	return s.ctx
}

// Done 作用域结束时关闭
func (s *ViewScope) Done() <-chan struct{} {
	return s.ctx.Done()
}

// fire 在作用域仍然存活时执行回调
func (s *ViewScope) fire(fn func()) bool {
	s.fireMu.RLock()
	defer s.fireMu.RUnlock()

	if s.closed || s.ctx.Err() != nil {
		return false
	}
	fn()
	return true
}

// After 在 d 之后执行一次 fn；作用域已关闭返回 false
func (s *ViewScope) After(d time.Duration, fn func()) bool {
	if s.ctx.Err() != nil {
		return false
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		timer := time.NewTimer(d)
		defer timer.Stop()

		select {
		case <-s.ctx.Done():
		case <-timer.C:
			s.fire(fn)
		}
	}()
	return true
}

// Every 每隔 d 执行一次 fn，直到 fn 返回 false 或作用域关闭
func (s *ViewScope) Every(d time.Duration, fn func() bool) bool {
	if s.ctx.Err() != nil {
		return false
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(d)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				keep := true
				if !s.fire(func() { keep = fn() }) || !keep {
					return
				}
			}
		}
	}()
	return true
}

// Close 取消所有定时器并等待正在执行的回调结束
func (s *ViewScope) Close() {
	s.cancel()

	s.fireMu.Lock()
	s.closed = true
	s.fireMu.Unlock()

	s.wg.Wait()
}
