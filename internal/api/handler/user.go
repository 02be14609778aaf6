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
	"github.com/mcoot/emojiguess-go/internal/services/identity"
	"github.com/mcoot/emojiguess-go/internal/services/room"
)

// UserHandler handles user-related endpoints
type UserHandler struct {
	identityService *identity.Service
	roomService     *room.Service
	gateway         gateway.Gateway
}

// NewUserHandler creates a new user handler
func NewUserHandler(identityService *identity.Service, roomService *room.Service, gw gateway.Gateway) *UserHandler {
	return &UserHandler{
		identityService: identityService,
		roomService:     roomService,
		gateway:         gw,
	}
}

// CreateUser handles POST /api/v1/users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req request.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Username == "" {
		WriteError(w, NewInvalidRequestError("username is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("password is required"))
		return
	}

	user, err := h.identityService.CreateUser(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	_ = h.gateway.SendToConnection(r.Context(), user.ConnectionID, gateway.Event{
		Name:    model.EventCreatedUser,
		Payload: response.UserData{Username: string(user.Username)},
	})
	response.JSON(w, http.StatusCreated, response.AuthResponseFromUser(user))
}

// Login handles POST /api/v1/users/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Username == "" {
		WriteError(w, NewInvalidRequestError("username is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("password is required"))
		return
	}

	user, err := h.identityService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	_ = h.gateway.SendToConnection(r.Context(), user.ConnectionID, gateway.Event{
		Name: model.EventUserLoggedIn,
	})
	response.JSON(w, http.StatusOK, response.AuthResponseFromUser(user))
}

// GetMe handles GET /api/v1/users/me
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	connID := middleware.MustGetConnectionID(r.Context())

	username, roomCode, err := h.roomService.GetCurrentUserData(r.Context(), connID)
	if err != nil {
		WriteError(w, err)
		return
	}

	data := response.CurrentUserData{
		Username: string(username),
		RoomCode: string(roomCode),
	}
	_ = h.gateway.SendToConnection(r.Context(), connID, gateway.Event{
		Name:    model.EventCurrentUserData,
		Payload: data,
	})
	response.JSON(w, http.StatusOK, data)
}

// GetUser handles GET /api/v1/users/{username}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	connID := middleware.MustGetConnectionID(r.Context())
	target := model.Username(mux.Vars(r)["username"])

	username, err := h.roomService.GetUserData(r.Context(), connID, target)
	if err != nil {
		WriteError(w, err)
		return
	}

	data := response.UserData{Username: string(username)}
	_ = h.gateway.SendToConnection(r.Context(), connID, gateway.Event{
		Name:    model.EventUserData,
		Payload: data,
	})
	response.JSON(w, http.StatusOK, data)
}
