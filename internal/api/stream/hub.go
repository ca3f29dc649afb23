package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/wonny/happiness/internal/contracts"
	"github.com/wonny/happiness/pkg/logger"
)

// Message is the envelope pushed to every client
type Message struct {
	Type    string               `json:"type"` // "dashboard"
	Payload *contracts.Dashboard `json:"payload"`
}

// Hub maintains the set of active clients and broadcasts dashboards
// ⭐ SSOT: 실시간 푸시는 이 Hub에서만
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex

	latest    func() *contracts.Dashboard
	onClients func(n int)
	logger    *logger.Logger
}

// NewHub creates a hub. latest, if set, supplies the dashboard sent on connect.
func NewHub(log *logger.Logger, latest func() *contracts.Dashboard, onClients func(n int)) *Hub {
	if onClients == nil {
		onClients = func(int) {}
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		latest:     latest,
		onClients:  onClients,
		logger:     log.Component("api.stream"),
	}
}

// Run serves registrations and broadcasts until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.onClients(0)
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mu.Unlock()
			h.onClients(n)
			h.logger.WithField("remote", client.remote).Debug("Stream client registered")
			h.sendInitial(client)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.onClients(n)
			h.logger.WithField("remote", client.remote).Debug("Stream client unregistered")

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// 느린 클라이언트는 제거
					h.logger.WithField("remote", client.remote).Warn("Stream client too slow, dropping")
					delete(h.clients, client)
					close(client.send)
				}
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.onClients(n)
		}
	}
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish broadcasts a dashboard to every client
func (h *Hub) Publish(ctx context.Context, d *contracts.Dashboard) error {
	message, err := encode(d)
	if err != nil {
		return err
	}

	select {
	case h.broadcast <- message:
		return nil
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) sendInitial(client *Client) {
	if h.latest == nil {
		return
	}
	d := h.latest()
	if d == nil {
		return
	}

	message, err := encode(d)
	if err != nil {
		h.logger.WithError(err).Error("Encode initial dashboard failed")
		return
	}

	select {
	case client.send <- message:
	default:
	}
}

func encode(d *contracts.Dashboard) ([]byte, error) {
	message, err := json.Marshal(Message{Type: "dashboard", Payload: d})
	if err != nil {
		return nil, fmt.Errorf("encode dashboard: %w", err)
	}
	return message, nil
}
