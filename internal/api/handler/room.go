package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/emojiguess-go/internal/api/middleware"
	"github.com/mcoot/emojiguess-go/internal/api/request"
	"github.com/mcoot/emojiguess-go/internal/api/response"
	"github.com/mcoot/emojiguess-go/internal/gateway"
	"github.com/mcoot/emojiguess-go/internal/model"
	"github.com/mcoot/emojiguess-go/internal/services/room"
)

// RoomHandler handles room lifecycle endpoints
type RoomHandler struct {
	roomService *room.Service
	gateway     gateway.Gateway
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(roomService *room.Service, gw gateway.Gateway) *RoomHandler {
	return &RoomHandler{
		roomService: roomService,
		gateway:     gw,
	}
}

// Create handles POST /api/v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	connID := middleware.MustGetConnectionID(r.Context())

	var req request.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	created, err := h.roomService.CreateRoom(r.Context(), connID, req.Name, req.Category, req.Rounds, req.RoundDuration)
	if err != nil {
		WriteError(w, err)
		return
	}

	_ = h.gateway.SendToConnection(r.Context(), connID, gateway.Event{
		Name:    model.EventCreatedRoom,
		Payload: response.CreatedRoom{RoomCode: string(created.Code)},
	})
	response.JSON(w, http.StatusCreated, response.RoomFromModel(created))
}

// Join handles POST /api/v1/rooms/{code}/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	connID := middleware.MustGetConnectionID(r.Context())
	user := middleware.GetUser(r.Context())
	code := model.RoomCode(mux.Vars(r)["code"])

	joined, err := h.roomService.JoinRoom(r.Context(), connID, code)
	if err != nil {
		WriteError(w, err)
		return
	}

	_ = h.gateway.SendToConnection(r.Context(), connID, gateway.Event{
		Name:    model.EventJoinedRoom,
		Payload: response.RoomFromModel(joined),
	})
	_ = h.gateway.SendToRoomExcept(r.Context(), joined.Code, connID, gateway.Event{
		Name:    model.EventPlayerJoined,
		Payload: model.PlayerJoinedPayload{Username: user.Username},
	})
	response.JSON(w, http.StatusOK, response.RoomFromModel(joined))
}

// Leave handles POST /api/v1/rooms/leave
func (h *RoomHandler) Leave(w http.ResponseWriter, r *http.Request) {
	connID := middleware.MustGetConnectionID(r.Context())

	username, code, gameEnded, err := h.roomService.LeftRoom(r.Context(), connID)
	if err != nil {
		WriteError(w, err)
		return
	}

	_ = h.gateway.SendToRoom(r.Context(), code, gateway.Event{
		Name:    model.EventPlayerLeft,
		Payload: model.PlayerLeftPayload{Username: username, IsGameEnded: gameEnded},
	})
	if gameEnded {
		_ = h.gateway.SendToRoom(r.Context(), code, gateway.Event{
			Name: model.EventGameEnded,
		})
	}
	response.NoContent(w)
}
