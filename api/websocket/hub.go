package websocket

import (
	"context"
	"sync"

	"github.com/OldStager01/energy-intelligence/internal/logger"
)

// Hub tracks connected clients and routes messages to those subscribed to a topic.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	onCount    func(int)
}

// NewHub creates a hub. onCount, if set, is called with the client count after
// every connect and disconnect.
func NewHub(onCount func(int)) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		onCount:    onCount,
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.countChanged()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			logger.Infof("WebSocket client connected (total: %d)", h.ClientCount())
			h.countChanged()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			logger.Infof("WebSocket client disconnected (total: %d)", h.ClientCount())
			h.countChanged()
		}
	}
}

// Publish sends message to every client subscribed to topic. Clients whose send
// buffer is full miss the message.
func (h *Hub) Publish(topic MessageType, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if !client.Wants(topic) {
			continue
		}
		select {
		case client.send <- message:
		default:
			logger.Warnf("WebSocket client buffer full, dropping %s message", topic)
		}
	}
}

// sendTo queues message for a single client. It reports false once the client
// has left the hub, whose send channel is then closed, or when its buffer is full.
func (h *Hub) sendTo(client *Client, message []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.clients[client] {
		return false
	}
	select {
	case client.send <- message:
		return true
	default:
		return false
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) countChanged() {
	if h.onCount != nil {
		h.onCount(h.ClientCount())
	}
}
