package sse

import (
	"encoding/json"
	"sync"
)

// Event is one server-sent event.
type Event struct {
	EventType string `json:"event"`
	Data      string `json:"data"`
}

// Client is one connected event stream.
type Client struct {
	ID     string
	UserID string
	Events chan Event
}

// Hub fans events out to all connected clients. Constructed once at startup
// and passed to services that publish updates.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
}

// Unregister removes a client and closes its channel.
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		close(client.Events)
		delete(h.clients, clientID)
	}
}

// ClientCount reports the number of connected streams.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends an event to every client. Slow clients with a full buffer
// are skipped rather than blocked on.
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.Events <- event:
		default:
		}
	}
}

// PublishStageUpdate notifies clients of a stage status change.
func (h *Hub) PublishStageUpdate(projectID, stageID, status string) {
	data, _ := json.Marshal(map[string]string{
		"project_id": projectID,
		"stage_id":   stageID,
		"status":     status,
	})
	h.Broadcast(Event{EventType: "stage_update", Data: string(data)})
}

// PublishMessage notifies clients of a new thread message.
func (h *Hub) PublishMessage(relatedType, relatedID, messageID string) {
	data, _ := json.Marshal(map[string]string{
		"related_type": relatedType,
		"related_id":   relatedID,
		"message_id":   messageID,
	})
	h.Broadcast(Event{EventType: "message_new", Data: string(data)})
}
