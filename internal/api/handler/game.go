package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mcoot/emojiguess-go/internal/api/middleware"
	"github.com/mcoot/emojiguess-go/internal/api/request"
	"github.com/mcoot/emojiguess-go/internal/api/response"
	"github.com/mcoot/emojiguess-go/internal/gateway"
	"github.com/mcoot/emojiguess-go/internal/model"
	"github.com/mcoot/emojiguess-go/internal/services/identity"
	"github.com/mcoot/emojiguess-go/internal/services/room"
)

// GameHandler handles in-game endpoints: starting, commander rotation,
// word distribution, emoji clues, guessing and round results
type GameHandler struct {
	roomService     *room.Service
	identityService *identity.Service
	gateway         gateway.Gateway
}

// NewGameHandler creates a new game handler
func NewGameHandler(roomService *room.Service, identityService *identity.Service, gw gateway.Gateway) *GameHandler {
	return &GameHandler{
		roomService:     roomService,
		identityService: identityService,
		gateway:         gw,
	}
}

// Start handles POST /api/v1/rooms/start
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	connID := middleware.MustGetConnectionID(r.Context())

	code, err := h.roomService.StartGame(r.Context(), connID)
	if err != nil {
		WriteError(w, err)
		return
	}

	_ = h.gateway.SendToRoom(r.Context(), code, gateway.Event{
		Name: model.EventGameStarted,
	})
	response.NoContent(w)
}

// Commander handles POST /api/v1/rooms/commander
func (h *GameHandler) Commander(w http.ResponseWriter, r *http.Request) {
	connID := middleware.MustGetConnectionID(r.Context())

	commander, round, code, err := h.roomService.GetCommander(r.Context(), connID)
	if err != nil {
		WriteError(w, err)
		return
	}

	// Idempotent calls re-announce the same commander, so reconnecting
	// clients converge without special casing
	payload := model.CommanderAnnouncedPayload{Username: commander, Round: round}

	if commanderUser, err := h.identityService.GetUser(r.Context(), commander); err == nil {
		_ = h.gateway.SendToConnection(r.Context(), commanderUser.ConnectionID, gateway.Event{
			Name:    model.EventCommanderSelected,
			Payload: payload,
		})
	}
	_ = h.gateway.SendToRoom(r.Context(), code, gateway.Event{
		Name:    model.EventCommanderAnnounced,
		Payload: payload,
	})
	response.JSON(w, http.StatusOK, response.Commander{Username: string(commander), Round: round})
}

// Word handles POST /api/v1/rooms/word
func (h *GameHandler) Word(w http.ResponseWriter, r *http.Request) {
	connID := middleware.MustGetConnectionID(r.Context())

	word, _, err := h.roomService.GetWord(r.Context(), connID)
	if err != nil {
		WriteError(w, err)
		return
	}

	// The word goes to the commander's connection only, never the room
	_ = h.gateway.SendToConnection(r.Context(), connID, gateway.Event{
		Name:    model.EventReceivedWord,
		Payload: response.Word{Word: word},
	})
	response.JSON(w, http.StatusOK, response.Word{Word: word})
}

// SendEmojis handles POST /api/v1/rooms/emojis
func (h *GameHandler) SendEmojis(w http.ResponseWriter, r *http.Request) {
	connID := middleware.MustGetConnectionID(r.Context())

	var req request.SendEmojisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if len(req.Emojis) == 0 {
		WriteError(w, NewInvalidRequestError("emojis are required"))
		return
	}

	code, err := h.roomService.SendEmojis(r.Context(), connID)
	if err != nil {
		WriteError(w, err)
		return
	}

	_ = h.gateway.SendToConnection(r.Context(), connID, gateway.Event{
		Name: model.EventEmojisReceived,
	})
	_ = h.gateway.SendToRoomExcept(r.Context(), code, connID, gateway.Event{
		Name:    model.EventReceiveEmojis,
		Payload: model.EmojisPayload{Emojis: req.Emojis},
	})
	response.NoContent(w)
}

// Guess handles POST /api/v1/rooms/guess
func (h *GameHandler) Guess(w http.ResponseWriter, r *http.Request) {
	connID := middleware.MustGetConnectionID(r.Context())

	var req request.CheckWordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Guess == "" {
		WriteError(w, NewInvalidRequestError("guess is required"))
		return
	}

	correct, _, err := h.roomService.CheckWord(r.Context(), connID, req.Guess)
	if err != nil {
		WriteError(w, err)
		return
	}

	_ = h.gateway.SendToConnection(r.Context(), connID, gateway.Event{
		Name:    model.EventWordChecked,
		Payload: response.CheckedWord{IsCorrect: correct},
	})
	response.JSON(w, http.StatusOK, response.CheckedWord{IsCorrect: correct})
}

// Results handles POST /api/v1/rooms/results
func (h *GameHandler) Results(w http.ResponseWriter, r *http.Request) {
	connID := middleware.MustGetConnectionID(r.Context())

	results, nextRound, code, err := h.roomService.GetResults(r.Context(), connID)
	if err != nil {
		WriteError(w, err)
		return
	}

	_ = h.gateway.SendToRoom(r.Context(), code, gateway.Event{
		Name:    model.EventRoundEnded,
		Payload: model.RoundEndedPayload{Results: results, NextRound: nextRound},
	})
	if nextRound {
		_ = h.gateway.SendToRoom(r.Context(), code, gateway.Event{
			Name: model.EventRoundStarted,
		})
	} else {
		_ = h.gateway.SendToRoom(r.Context(), code, gateway.Event{
			Name: model.EventGameEnded,
		})
	}
	response.JSON(w, http.StatusOK, response.RoundResultsFromModel(results, nextRound))
}
