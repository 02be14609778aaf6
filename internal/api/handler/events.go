package handler

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/mcoot/emojiguess-go/internal/api/middleware"
	"github.com/mcoot/emojiguess-go/internal/gateway/sse"
	"github.com/mcoot/emojiguess-go/internal/model"
	"github.com/mcoot/emojiguess-go/internal/services/room"
)

// RoomSubscriber taps a remote event feed. Implemented by the NATS gateway;
// nil when events are produced in-process.
type RoomSubscriber interface {
	SubscribeRoom(code model.RoomCode, handler func(eventName string, payload json.RawMessage, except model.ConnectionID)) (func(), error)
	SubscribeConnection(connID model.ConnectionID, handler func(eventName string, payload json.RawMessage)) (func(), error)
}

// EventsHandler serves the per-room SSE stream
type EventsHandler struct {
	roomService *room.Service
	hubManager  *sse.HubManager
	subscriber  RoomSubscriber

	mu     sync.Mutex
	relays map[model.RoomCode]func()
}

// NewEventsHandler creates a new events handler. subscriber may be nil when
// the hub manager is also the process's gateway.
func NewEventsHandler(roomService *room.Service, hubManager *sse.HubManager, subscriber RoomSubscriber) *EventsHandler {
	return &EventsHandler{
		roomService: roomService,
		hubManager:  hubManager,
		subscriber:  subscriber,
		relays:      make(map[model.RoomCode]func()),
	}
}

// Subscribe handles GET /api/v1/rooms/events. The stream carries events for
// the caller's current room; callers outside any room are rejected.
func (h *EventsHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	connID := middleware.MustGetConnectionID(r.Context())

	_, code, err := h.roomService.GetCurrentUserData(r.Context(), connID)
	if err != nil {
		WriteError(w, err)
		return
	}
	if code == model.NoRoomCode {
		WriteError(w, model.ErrForbidden)
		return
	}

	h.ensureRelay(code)
	if h.subscriber != nil {
		unsubscribe, err := h.subscriber.SubscribeConnection(connID, func(eventName string, payload json.RawMessage) {
			h.hubManager.DeliverToConnection(connID, eventName, payload)
		})
		if err == nil {
			defer unsubscribe()
		}
	}
	h.hubManager.Serve(w, r, code, connID)
}

// ensureRelay bridges the remote feed into the local hub the first time a
// client subscribes to a room
func (h *EventsHandler) ensureRelay(code model.RoomCode) {
	if h.subscriber == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.relays[code]; ok {
		return
	}

	unsubscribe, err := h.subscriber.SubscribeRoom(code, func(eventName string, payload json.RawMessage, except model.ConnectionID) {
		h.hubManager.Deliver(code, eventName, payload, except)
	})
	if err != nil {
		return
	}
	h.relays[code] = unsubscribe
}
