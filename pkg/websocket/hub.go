package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"gbtravel/pkg/logger"
)

// Message is the envelope pushed to subscribers.
type Message struct {
	Type      string      `json:"type"`
	Room      string      `json:"room"`
	Timestamp int64       `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// Hub fans messages out to the clients subscribed to a room. Each client
// belongs to exactly one room. Membership changes go through Run.
type Hub struct {
	rooms      map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
	logger     *logger.Logger
	now        func() time.Time
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     log,
		now:        time.Now,
	}
}

// Run processes membership changes until ctx is cancelled, then disconnects
// every client.
func (h *Hub) Run(ctx context.Context) {
	defer h.closeAll()

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.add(client)
		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

// Register reports false once the hub has stopped.
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

func (h *Hub) Subscribers(room string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.rooms[room])
}

// Publish delivers a message to every client in room and returns how many
// received it. Clients whose buffers are full are disconnected.
func (h *Hub) Publish(room, messageType string, data interface{}) int {
	payload, err := h.encode(room, messageType, data)
	if err != nil {
		h.logger.WithError(err).WithField("room", room).Error("Failed to encode websocket message")
		return 0
	}

	var delivered int
	var slow []*Client

	h.mutex.RLock()
	for client := range h.rooms[room] {
		select {
		case client.send <- payload:
			delivered++
		default:
			slow = append(slow, client)
		}
	}
	h.mutex.RUnlock()

	for _, client := range slow {
		go h.Unregister(client)
	}
	return delivered
}

func (h *Hub) encode(room, messageType string, data interface{}) ([]byte, error) {
	return json.Marshal(&Message{
		Type:      messageType,
		Room:      room,
		Timestamp: h.now().Unix(),
		Data:      data,
	})
}

func (h *Hub) add(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	room := h.rooms[client.room]
	if room == nil {
		room = make(map[*Client]struct{})
		h.rooms[client.room] = room
	}
	room[client] = struct{}{}
	h.logger.WithField("room", client.room).Debug("Websocket client subscribed")
}

func (h *Hub) remove(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	room, ok := h.rooms[client.room]
	if !ok {
		return
	}
	if _, ok := room[client]; !ok {
		return
	}
	delete(room, client)
	close(client.send)
	if len(room) == 0 {
		delete(h.rooms, client.room)
	}
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	close(h.done)
	for id, room := range h.rooms {
		for client := range room {
			close(client.send)
		}
		delete(h.rooms, id)
	}
}
