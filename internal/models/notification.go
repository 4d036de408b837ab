// internal/models/notification.go
package models

import "time"

// NotificationLevel 提示级别
type NotificationLevel string

const (
	NotifySuccess     NotificationLevel = "success"
	NotifyInfo        NotificationLevel = "info"
	NotifyDestructive NotificationLevel = "destructive"
)

// Notification 短暂显示的提示消息（toast）
type Notification struct {
	Level       NotificationLevel `json:"level"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Timestamp   time.Time         `json:"timestamp"`
}

// NewNotification 创建提示
func NewNotification(level NotificationLevel, title, description string) Notification {
	return Notification{
		Level:       level,
		Title:       title,
		Description: description,
		Timestamp:   time.Now(),
	}
}
