// internal/api/websocket.go
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Corphon/DataVisualizer/internal/models"
	"github.com/gorilla/websocket"
)

// 频道名称
const (
	ChannelNotifications = "notifications"
	ChannelLanding       = "landing"
)

// WebSocket 升级器配置
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketConnection 定义 WebSocket 连接的接口
type WebSocketConnection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
}

// WebSocketClient 表示一个 WebSocket 客户端连接
type WebSocketClient struct {
	conn      WebSocketConnection
	channel   string
	send      chan []byte
	done      chan struct{}
	closed    int32 // 0=开启，1=关闭
	lastPing  atomic.Int64
	createdAt time.Time
}

// NewWebSocketClient 创建客户端
func NewWebSocketClient(conn WebSocketConnection, channel string) *WebSocketClient {
	client := &WebSocketClient{
		conn:      conn,
		channel:   channel,
		send:      make(chan []byte, 64),
		done:      make(chan struct{}),
		createdAt: time.Now(),
	}
	client.UpdatePing()
	return client
}

// Close 安全关闭客户端连接
func (client *WebSocketClient) Close() {
	if atomic.CompareAndSwapInt32(&client.closed, 0, 1) {
		close(client.done)
		if client.conn != nil {
			client.conn.Close()
		}
	}
}

// IsClosed 检查连接是否已关闭
func (client *WebSocketClient) IsClosed() bool {
	return atomic.LoadInt32(&client.closed) == 1
}

// UpdatePing 更新最后ping时间
func (client *WebSocketClient) UpdatePing() {
	client.lastPing.Store(time.Now().UnixNano())
}

// IsExpired 检查连接是否超时
func (client *WebSocketClient) IsExpired(timeout time.Duration) bool {
	if timeout <= 0 {
		return true
	}
	return time.Since(time.Unix(0, client.lastPing.Load())) > timeout
}

// SendMessage 非阻塞地把消息放入发送队列，队列满时丢弃
func (client *WebSocketClient) SendMessage(message interface{}) error {
	if client.IsClosed() {
		return nil
	}

	msgBytes, err := json.Marshal(message)
	if err != nil {
		return err
	}

	select {
	case client.send <- msgBytes:
	default:
		log.Printf("⚠️ 客户端 (%s) 消息队列已满，消息被丢弃", client.channel)
	}
	return nil
}

type channelMessage struct {
	channel string
	payload []byte
}

// WebSocketManager 管理所有 WebSocket 连接，并作为提示（toast）的推送通道
type WebSocketManager struct {
	connections map[string]map[*WebSocketClient]struct{} // channel -> clients
	mutex       sync.RWMutex

	broadcast  chan channelMessage
	register   chan *WebSocketClient
	unregister chan *WebSocketClient
	done       chan struct{}
	stopOnce   sync.Once

	pingTimeout     time.Duration
	cleanupInterval time.Duration
	dropped         atomic.Int64
}

// NewWebSocketManager 创建管理器，需要调用 Start 启动主循环
func NewWebSocketManager(pingTimeout time.Duration) *WebSocketManager {
	if pingTimeout <= 0 {
		pingTimeout = 60 * time.Second
	}
	return &WebSocketManager{
		connections:     make(map[string]map[*WebSocketClient]struct{}),
		broadcast:       make(chan channelMessage, 256),
		register:        make(chan *WebSocketClient, 64),
		unregister:      make(chan *WebSocketClient, 64),
		done:            make(chan struct{}),
		pingTimeout:     pingTimeout,
		cleanupInterval: 30 * time.Second,
	}
}

// Start 启动主循环
func (manager *WebSocketManager) Start() {
	go manager.run()
}

// Stop 关闭所有连接并退出主循环
func (manager *WebSocketManager) Stop() {
	manager.stopOnce.Do(func() { close(manager.done) })
}

func (manager *WebSocketManager) run() {
	ticker := time.NewTicker(manager.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case client := <-manager.register:
			manager.registerClient(client)

		case client := <-manager.unregister:
			manager.unregisterClient(client)

		case message := <-manager.broadcast:
			manager.broadcastMessage(message)

		case <-ticker.C:
			manager.cleanupExpiredConnections()

		case <-manager.done:
			manager.shutdown()
			return
		}
	}
}

// Register 注册客户端；管理器已停止时返回 false
func (manager *WebSocketManager) Register(client *WebSocketClient) bool {
	select {
	case manager.register <- client:
		return true
	case <-manager.done:
		return false
	}
}

// Unregister 注销客户端
func (manager *WebSocketManager) Unregister(client *WebSocketClient) {
	select {
	case manager.unregister <- client:
	case <-manager.done:
		client.Close()
	}
}

func (manager *WebSocketManager) registerClient(client *WebSocketClient) {
	if client == nil {
		return
	}

	manager.mutex.Lock()
	defer manager.mutex.Unlock()

	if manager.connections[client.channel] == nil {
		manager.connections[client.channel] = make(map[*WebSocketClient]struct{})
	}
	manager.connections[client.channel][client] = struct{}{}

	log.Printf("✅ WebSocket 客户端已连接 (频道: %s)", client.channel)
}

func (manager *WebSocketManager) unregisterClient(client *WebSocketClient) {
	if client == nil {
		return
	}

	manager.mutex.Lock()
	defer manager.mutex.Unlock()

	if clients, exists := manager.connections[client.channel]; exists {
		delete(clients, client)
		if len(clients) == 0 {
			delete(manager.connections, client.channel)
		}
	}
	client.Close()

	log.Printf("🔌 WebSocket 客户端已断开连接 (频道: %s)", client.channel)
}

// cleanupExpiredConnections 清理过期和已关闭的连接
func (manager *WebSocketManager) cleanupExpiredConnections() {
	manager.mutex.Lock()
	defer manager.mutex.Unlock()

	for channel, clients := range manager.connections {
		for client := range clients {
			if client.IsClosed() || client.IsExpired(manager.pingTimeout) {
				delete(clients, client)
				client.Close()
			}
		}
		if len(clients) == 0 {
			delete(manager.connections, channel)
		}
	}
}

func (manager *WebSocketManager) broadcastMessage(message channelMessage) {
	manager.mutex.RLock()
	targets := make([]*WebSocketClient, 0, len(manager.connections[message.channel]))
	for client := range manager.connections[message.channel] {
		if !client.IsClosed() {
			targets = append(targets, client)
		}
	}
	manager.mutex.RUnlock()

	for _, client := range targets {
		select {
		case client.send <- message.payload:
		default:
			// 慢客户端直接断开
			manager.dropped.Add(1)
			client.Close()
		}
	}
}

func (manager *WebSocketManager) shutdown() {
	manager.mutex.Lock()
	defer manager.mutex.Unlock()

	log.Println("🛑 正在关闭 WebSocket 管理器...")
	for _, clients := range manager.connections {
		for client := range clients {
			client.Close()
		}
	}
	manager.connections = make(map[string]map[*WebSocketClient]struct{})
	log.Println("✅ WebSocket 管理器已关闭")
}

// Broadcast 向频道内所有客户端发送消息
func (manager *WebSocketManager) Broadcast(channel string, message interface{}) {
	payload, err := json.Marshal(message)
	if err != nil {
		log.Printf("❌ 序列化广播消息失败: %v", err)
		return
	}

	select {
	case manager.broadcast <- channelMessage{channel: channel, payload: payload}:
	case <-manager.done:
	default:
		manager.dropped.Add(1)
	}
}

// Notify 把提示推送到 notifications 频道
func (manager *WebSocketManager) Notify(n models.Notification) {
	manager.Broadcast(ChannelNotifications, notificationMessage{Type: "notification", Notification: n})
}

type notificationMessage struct {
	Type string `json:"type"`
	models.Notification
}

// ClientCount 频道内的连接数
func (manager *WebSocketManager) ClientCount(channel string) int {
	manager.mutex.RLock()
	defer manager.mutex.RUnlock()
	return len(manager.connections[channel])
}

// GetStatus 获取管理器状态
func (manager *WebSocketManager) GetStatus() map[string]interface{} {
	manager.mutex.RLock()
	defer manager.mutex.RUnlock()

	channels := make(map[string]interface{})
	total := 0
	for channel, clients := range manager.connections {
		active := 0
		for client := range clients {
			if !client.IsClosed() {
				active++
			}
		}
		channels[channel] = map[string]interface{}{"client_count": active}
		total += active
	}

	return map[string]interface{}{
		"total_connections":    total,
		"channels":             channels,
		"dropped_messages":     manager.dropped.Load(),
		"ping_timeout_seconds": int(manager.pingTimeout.Seconds()),
	}
}
