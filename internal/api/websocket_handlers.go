// internal/api/websocket_handlers.go
package api

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/Corphon/DataVisualizer/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 54 * time.Second
)

// WebSocketHandler 处理 WebSocket 相关的 HTTP 请求
type WebSocketHandler struct {
	manager *WebSocketManager
	landing services.LandingConfig
}

// NewWebSocketHandler 创建 WebSocket 处理器
func NewWebSocketHandler(manager *WebSocketManager, landing services.LandingConfig) *WebSocketHandler {
	return &WebSocketHandler{manager: manager, landing: landing}
}

// NotificationsWebSocket 提示推送通道；客户端可发送 {"type":"ping"}
func (wh *WebSocketHandler) NotificationsWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ 提示 WebSocket 升级失败: %v", err)
		return
	}

	client := NewWebSocketClient(conn, ChannelNotifications)
	if !wh.manager.Register(client) {
		conn.Close()
		return
	}
	defer wh.manager.Unregister(client)

	go wh.handleWebSocketWrites(client)

	client.SendMessage(map[string]interface{}{
		"type":      "connected",
		"channel":   ChannelNotifications,
		"timestamp": time.Now().Format(time.RFC3339),
	})

	wh.handleWebSocketReads(client)
}

// handleWebSocketReads 读取客户端消息直到连接断开
func (wh *WebSocketHandler) handleWebSocketReads(client *WebSocketClient) {
	client.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	client.conn.SetPongHandler(func(string) error {
		client.UpdatePing()
		client.conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for !client.IsClosed() {
		_, messageBytes, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("❌ WebSocket 读取错误: %v", err)
			}
			return
		}
		client.UpdatePing()
		client.conn.SetReadDeadline(time.Now().Add(wsPongWait))

		var message struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(messageBytes, &message); err != nil {
			continue
		}
		if message.Type == "ping" {
			client.SendMessage(map[string]interface{}{
				"type":      "pong",
				"timestamp": time.Now().Unix(),
			})
		}
	}
}

// handleWebSocketWrites 单独的写协程：发送队列中的消息并定期 ping
func (wh *WebSocketHandler) handleWebSocketWrites(client *WebSocketClient) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		client.Close()
	}()

	for {
		select {
		case <-client.done:
			return

		case message := <-client.send:
			if client.IsClosed() {
				return
			}
			client.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			if client.IsClosed() {
				return
			}
			client.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type landingMessage struct {
	Type string `json:"type"`
	services.LandingUpdate
}

// LandingWebSocket 落地页：推送进度，超时或第二次 {"type":"skip"} 后推送跳转并关闭
func (wh *WebSocketHandler) LandingWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ 落地页 WebSocket 升级失败: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	view := services.NewLandingView(ctx, wh.landing)
	defer view.Close()

	// 读协程：连接断开时卸载视图
	go func() {
		defer cancel()
		for {
			var message struct {
				Type string `json:"type"`
			}
			if err := conn.ReadJSON(&message); err != nil {
				return
			}
			if message.Type == "skip" {
				view.Skip()
			}
		}
	}()

	for {
		select {
		case <-view.Done():
			return
		case update := <-view.Updates():
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(landingMessage{Type: ChannelLanding, LandingUpdate: update}); err != nil {
				return
			}
			if update.Status == "redirect" {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "redirect"))
				return
			}
		}
	}
}
