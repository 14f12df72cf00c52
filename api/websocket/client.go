package websocket

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/OldStager01/energy-intelligence/internal/logger"
	"github.com/OldStager01/energy-intelligence/pkg/validation"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	mu     sync.RWMutex
	topics map[MessageType]bool
}

// NewClient creates a client subscribed to topics. No topics means all topics.
func NewClient(hub *Hub, conn *websocket.Conn, topics []MessageType) *Client {
	c := &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
	c.setTopics(topics)
	return c
}

func (c *Client) Wants(topic MessageType) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.topics) == 0 || c.topics[topic]
}

// setTopics replaces the subscription. An empty list subscribes to everything;
// a list naming no known topic leaves the subscription unchanged and returns false.
func (c *Client) setTopics(topics []MessageType) bool {
	next := make(map[MessageType]bool, len(topics))
	for _, t := range topics {
		if validTopic(t) {
			next[t] = true
		}
	}
	if len(topics) > 0 && len(next) == 0 {
		return false
	}

	c.mu.Lock()
	c.topics = next
	c.mu.Unlock()
	return true
}

func (c *Client) subscribed() []MessageType {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.topics) == 0 {
		return Topics()
	}
	out := make([]MessageType, 0, len(c.topics))
	for _, t := range Topics() {
		if c.topics[t] {
			out = append(out, t)
		}
	}
	return out
}

func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Errorf("WebSocket error: %v", err)
			}
			break
		}

		var msg IncomingMessage
		if err := json.Unmarshal(message, &msg); err == nil {
			c.handleMessage(&msg)
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(msg *IncomingMessage) {
	switch msg.Type {
	case "subscribe":
		if !c.setTopics(msg.Topics) {
			logger.Debugf("Client sent unknown topics %v", msg.Topics)
			c.sendConfirmation("rejected")
			return
		}
		logger.Debugf("Client subscribed to %v", c.subscribed())
		c.sendConfirmation("subscribed")
	case "unsubscribe":
		c.setTopics(nil)
		c.sendConfirmation("unsubscribed")
	}
}

func (c *Client) sendConfirmation(action string) {
	data, err := json.Marshal(subscriptionUpdate{
		Type:      "subscription_update",
		Action:    action,
		Topics:    c.subscribed(),
		Timestamp: time.Now(),
	})
	if err != nil {
		logger.Errorf("Failed to marshal confirmation: %v", err)
		return
	}
	if !c.hub.sendTo(c, data) {
		logger.Debug("Client gone or send channel full, dropping confirmation")
	}
}

// parseTopics reads a comma-separated topic list such as "power_reading,anomaly".
func parseTopics(raw string) []MessageType {
	if raw == "" {
		return nil
	}
	var topics []MessageType
	for _, part := range strings.Split(raw, ",") {
		t, err := validation.NormalizeTopic(part)
		if err != nil {
			continue
		}
		topics = append(topics, MessageType(t))
	}
	return topics
}

// ServeWebSocket upgrades GET /ws/realtime. The optional topics query parameter
// limits which messages the client receives.
func ServeWebSocket(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Errorf("WebSocket upgrade failed: %v", err)
			return
		}

		client := NewClient(hub, conn, parseTopics(c.Query("topics")))
		if !hub.Register(client) {
			conn.Close()
			return
		}

		go client.WritePump()
		go client.ReadPump()
	}
}
