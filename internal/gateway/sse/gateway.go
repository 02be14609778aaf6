package sse

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/mcoot/emojiguess-go/internal/gateway"
	"github.com/mcoot/emojiguess-go/internal/model"
)

// HubManager manages hubs for all rooms and implements the broadcast
// gateway for single-process deployments. Delivery is best-effort: events
// for rooms or connections with no subscriber are dropped, and clients
// re-query current state on reconnect rather than replaying missed events.
type HubManager struct {
	hubs   map[model.RoomCode]*Hub
	conns  map[model.ConnectionID]*Client
	mu     sync.RWMutex
	logger *slog.Logger
}

// Ensure HubManager implements the gateway
var _ gateway.Gateway = (*HubManager)(nil)

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:   make(map[model.RoomCode]*Hub),
		conns:  make(map[model.ConnectionID]*Client),
		logger: logger.With(slog.String("component", "sse")),
	}
}

// GetOrCreateHub returns the hub for a room, creating and starting one if
// it doesn't exist
func (m *HubManager) GetOrCreateHub(code model.RoomCode) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[code]; ok {
		return hub
	}

	hub := NewHub(code, m.logger)
	m.hubs[code] = hub
	go hub.Run()
	return hub
}

// CloseHub shuts down and removes the hub for a room
func (m *HubManager) CloseHub(code model.RoomCode) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[code]; ok {
		hub.Close()
		delete(m.hubs, code)
	}
}

// Serve subscribes a connection to its room's event stream and blocks
// until the client disconnects
func (m *HubManager) Serve(w http.ResponseWriter, r *http.Request, code model.RoomCode, connID model.ConnectionID) {
	hub := m.GetOrCreateHub(code)

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	client := NewClient(hub, connID)
	m.mu.Lock()
	m.conns[connID] = client
	m.mu.Unlock()
	hub.Register(client)

	defer func() {
		hub.Unregister(client)
		m.mu.Lock()
		if m.conns[connID] == client {
			delete(m.conns, connID)
		}
		m.mu.Unlock()
	}()

	serveClient(w, r, client, flusher)
}

// SendToConnection delivers an event to one live connection
func (m *HubManager) SendToConnection(ctx context.Context, connID model.ConnectionID, event gateway.Event) error {
	m.mu.RLock()
	client, ok := m.conns[connID]
	m.mu.RUnlock()
	if !ok {
		return nil
	}

	select {
	case client.send <- frame(event):
	default:
		m.logger.Warn("sse message dropped - client buffer full",
			slog.String("connection_id", string(connID)))
	}
	return nil
}

// SendToRoom delivers an event to every connection in a room
func (m *HubManager) SendToRoom(ctx context.Context, code model.RoomCode, event gateway.Event) error {
	m.mu.RLock()
	hub, ok := m.hubs[code]
	m.mu.RUnlock()
	if !ok {
		return nil
	}
	hub.Broadcast(frame(event), "")
	return nil
}

// SendToRoomExcept delivers an event to every connection in a room except one
func (m *HubManager) SendToRoomExcept(ctx context.Context, code model.RoomCode, except model.ConnectionID, event gateway.Event) error {
	m.mu.RLock()
	hub, ok := m.hubs[code]
	m.mu.RUnlock()
	if !ok {
		return nil
	}
	hub.Broadcast(frame(event), except)
	return nil
}

// Deliver forwards an already-encoded payload into a room's hub. Used by
// relay edges that receive events from a remote publisher rather than
// producing them locally.
func (m *HubManager) Deliver(code model.RoomCode, eventName string, payload json.RawMessage, except model.ConnectionID) {
	m.mu.RLock()
	hub, ok := m.hubs[code]
	m.mu.RUnlock()
	if !ok {
		return
	}
	data := "{}"
	if len(payload) > 0 {
		data = string(payload)
	}
	hub.Broadcast(formatSSEMessage(eventName, data), except)
}

// DeliverToConnection forwards an already-encoded payload to one live
// connection, for the same relay edges as Deliver
func (m *HubManager) DeliverToConnection(connID model.ConnectionID, eventName string, payload json.RawMessage) {
	m.mu.RLock()
	client, ok := m.conns[connID]
	m.mu.RUnlock()
	if !ok {
		return
	}
	data := "{}"
	if len(payload) > 0 {
		data = string(payload)
	}
	select {
	case client.send <- formatSSEMessage(eventName, data):
	default:
	}
}

// frame encodes an event into SSE wire format
func frame(event gateway.Event) []byte {
	data := "{}"
	if event.Payload != nil {
		if encoded, err := json.Marshal(event.Payload); err == nil {
			data = string(encoded)
		}
	}
	return formatSSEMessage(event.Name, data)
}
