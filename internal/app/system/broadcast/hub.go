// Package broadcast fans membership events and chat messages out to
// connected websocket clients.
//
// Each group is a room. A client joins the rooms for every group it belongs
// to when it connects; the engine publishes events after each committed
// transition and the hub delivers them to the affected room. Delivery is
// best effort: a client that cannot keep up has frames dropped rather than
// stalling the publisher.
package broadcast

import (
	"encoding/json"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dalemusser/chathub/internal/app/lifecycle"
	"github.com/dalemusser/chathub/internal/domain/models"
)

// Frame is the wire shape of every websocket push.
type Frame struct {
	Type    string `json:"type"` // "membership", "message", or "direct_message"
	GroupID string `json:"group_id,omitempty"`
	UserID  string `json:"user_id,omitempty"`
	Action  string `json:"action,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

// Hub tracks rooms and their connected clients.
type Hub struct {
	log *zap.Logger

	mu      sync.RWMutex
	clients map[*Client]struct{}
	rooms   map[string]map[*Client]struct{} // group id hex -> clients
}

// NewHub returns an empty hub.
func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		log:     log,
		clients: make(map[*Client]struct{}),
		rooms:   make(map[string]map[*Client]struct{}),
	}
}

// Publish delivers a membership event to the group's room. It never blocks.
func (h *Hub) Publish(ev lifecycle.Event) {
	// A new member's live connections start receiving group traffic; a
	// member who left or was banished stops.
	if ev.Action == models.ActionJoined {
		h.JoinRoom(ev.GroupID, ev.UserID)
	}

	h.send(ev.GroupID.Hex(), Frame{
		Type:    "membership",
		GroupID: ev.GroupID.Hex(),
		UserID:  ev.UserID.Hex(),
		Action:  ev.Action,
	})

	if ev.Action != models.ActionJoined {
		h.leaveRoom(ev.GroupID.Hex(), ev.UserID)
	}
}

// PublishMessage delivers a chat message to the group's room.
func (h *Hub) PublishMessage(groupID primitive.ObjectID, payload any) {
	h.send(groupID.Hex(), Frame{
		Type:    "message",
		GroupID: groupID.Hex(),
		Payload: payload,
	})
}

// PublishDirect delivers a direct message to every active connection of the
// recipient. It never blocks.
func (h *Hub) PublishDirect(toUserID primitive.ObjectID, payload any) {
	data, err := json.Marshal(Frame{
		Type:    "direct_message",
		UserID:  toUserID.Hex(),
		Payload: payload,
	})
	if err != nil {
		h.log.Error("marshal frame", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.userID != toUserID {
			continue
		}
		select {
		case c.out <- data:
		default:
			h.log.Warn("dropping frame, client send buffer full",
				zap.String("user_id", c.userID.Hex()))
		}
	}
}

func (h *Hub) send(room string, f Frame) {
	data, err := json.Marshal(f)
	if err != nil {
		h.log.Error("marshal frame", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[room] {
		select {
		case c.out <- data:
		default:
			h.log.Warn("dropping frame, client send buffer full",
				zap.String("user_id", c.userID.Hex()),
				zap.String("group_id", room))
		}
	}
}

func (h *Hub) register(c *Client, rooms []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	for _, room := range rooms {
		clients, ok := h.rooms[room]
		if !ok {
			clients = make(map[*Client]struct{})
			h.rooms[room] = clients
		}
		clients[c] = struct{}{}
	}
}

// JoinRoom subscribes userID's active connections to a group's room, used
// when the user joins a group mid-session.
func (h *Hub) JoinRoom(groupID, userID primitive.ObjectID) {
	room := groupID.Hex()
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if c.userID != userID {
			continue
		}
		clients, ok := h.rooms[room]
		if !ok {
			clients = make(map[*Client]struct{})
			h.rooms[room] = clients
		}
		clients[c] = struct{}{}
	}
}

func (h *Hub) leaveRoom(room string, userID primitive.ObjectID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients := h.rooms[room]
	for c := range clients {
		if c.userID == userID {
			delete(clients, c)
		}
	}
	if len(clients) == 0 {
		delete(h.rooms, room)
	}
}

func (h *Hub) drop(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
	for room, clients := range h.rooms {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.rooms, room)
		}
	}
}

// ConnectionCount reports the number of connected clients.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer.
	pongWait = 60 * time.Second

	// Send pings with this period; must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound frame size. Clients only send pings and small
	// control payloads; chat messages go through the REST API.
	maxMessageSize = 1024

	sendBufferSize = 64
)
