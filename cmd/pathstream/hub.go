package main

import "sync"

const maxTotalConns = 64

// Hub fans broadcast frames out to all connected clients
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	connMu     sync.Mutex
	totalConns int
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 16),
		unregister: make(chan *Client, 16),
		broadcast:  make(chan []byte, 256),
	}
}

func (h *Hub) CanAccept() bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	return h.totalConns < maxTotalConns
}

func (h *Hub) TrackConnect() {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.totalConns++
}

func (h *Hub) TrackDisconnect() {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.totalConns--
}

// Run processes register/unregister events and fan-out
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case frame := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				client.Send(frame)
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast queues a frame for all clients, dropping it when the hub is saturated
func (h *Hub) Broadcast(frame []byte) {
	select {
	case h.broadcast <- frame:
	default:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
