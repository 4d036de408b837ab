// internal/services/notifier.go
package services

import (
	"github.com/Corphon/DataVisualizer/internal/models"
	"github.com/Corphon/DataVisualizer/internal/utils"
)

// Notifier 接收短暂提示（toast）
type Notifier interface {
	Notify(n models.Notification)
}

// NotifierFunc 函数适配器
type NotifierFunc func(n models.Notification)

// Notify 实现 Notifier
func (f NotifierFunc) Notify(n models.Notification) {
	f(n)
}

// MultiNotifier 广播给多个接收者
type MultiNotifier []Notifier

// Notify 实现 Notifier
func (m MultiNotifier) Notify(n models.Notification) {
	for _, target := range m {
		if target != nil {
			target.Notify(n)
		}
	}
}

// LogNotifier 把提示写入日志
type LogNotifier struct {
	logger *utils.Logger
}

// NewLogNotifier 使用全局日志
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{logger: utils.GetLogger()}
}

// Notify 实现 Notifier
func (l *LogNotifier) Notify(n models.Notification) {
	fields := map[string]interface{}{
		"level": string(n.Level),
		"title": n.Title,
	}
	if n.Level == models.NotifyDestructive {
		l.logger.Warn(n.Description, fields)
		return
	}
	l.logger.Info(n.Description, fields)
}

func notifySuccess(n Notifier, title, description string) {
	if n != nil {
		n.Notify(models.NewNotification(models.NotifySuccess, title, description))
	}
}

func notifyFailure(n Notifier, title, description string) {
	if n != nil {
		n.Notify(models.NewNotification(models.NotifyDestructive, title, description))
	}
}
