package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/emojiguess-go/internal/model"
	"github.com/mcoot/emojiguess-go/internal/services/identity"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Error codes surfaced on the wire
const (
	CodeInvalidRequest            = "INVALID_REQUEST"
	CodeIncorrectUsername         = "INCORRECT_USERNAME"
	CodeIncorrectPassword         = "INCORRECT_PASSWORD"
	CodeUsernameTaken             = "USERNAME_TAKEN"
	CodeIncorrectUsernamePassword = "INCORRECT_USERNAME_PASSWORD"
	CodeIncorrectConnectionID     = "INCORRECT_CONNECTION_ID"
	CodeForbidden                 = "FORBIDDEN"
	CodeJoinedDifferentRoom       = "JOINED_DIFFERENT_ROOM"
	CodeIncorrectRoomName         = "INCORRECT_ROOM_NAME"
	CodeIncorrectRoomCategory     = "INCORRECT_ROOM_CATEGORY"
	CodeIncorrectRoundAmount      = "INCORRECT_ROUND_AMOUNT"
	CodeIncorrectRoundDuration    = "INCORRECT_ROUND_DURATION"
	CodeIncorrectRoomCode         = "INCORRECT_ROOM_CODE"
	CodeRoomGameStarted           = "ROOM_GAME_STARTED"
	CodeNotEnoughPlayers          = "NOT_ENOUGH_PLAYERS"
	CodeNoWordsAvailable          = "NO_WORDS_AVAILABLE"
	CodeConflict                  = "CONFLICT"
	CodeInternalError             = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrInvalidUsername):
		return &httpError{http.StatusBadRequest, APIError{CodeIncorrectUsername, "Username must be 3-32 characters: letters, digits, underscore"}}
	case errors.Is(err, model.ErrInvalidPassword):
		return &httpError{http.StatusBadRequest, APIError{CodeIncorrectPassword, "Password must be 8-32 allowed characters"}}
	case errors.Is(err, model.ErrUsernameTaken):
		return &httpError{http.StatusConflict, APIError{CodeUsernameTaken, "Username already taken"}}
	case errors.Is(err, model.ErrInvalidConnection):
		return &httpError{http.StatusUnauthorized, APIError{CodeIncorrectConnectionID, "Invalid or stale connection id"}}
	case errors.Is(err, model.ErrInvalidRoomName):
		return &httpError{http.StatusBadRequest, APIError{CodeIncorrectRoomName, "Room name must be 3-32 characters: letters, digits, underscore, space"}}
	case errors.Is(err, model.ErrCategoryNotFound):
		return &httpError{http.StatusBadRequest, APIError{CodeIncorrectRoomCategory, "Unknown word category"}}
	case errors.Is(err, model.ErrInvalidRoundAmount):
		return &httpError{http.StatusBadRequest, APIError{CodeIncorrectRoundAmount, "Round count must be between 10 and 30"}}
	case errors.Is(err, model.ErrInvalidRoundDuration):
		return &httpError{http.StatusBadRequest, APIError{CodeIncorrectRoundDuration, "Round duration must be between 15 and 45 seconds"}}
	case errors.Is(err, model.ErrRoomNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeIncorrectRoomCode, "Room not found"}}
	case errors.Is(err, model.ErrJoinedDifferentRoom):
		return &httpError{http.StatusConflict, APIError{CodeJoinedDifferentRoom, "Already a member of a different room"}}
	case errors.Is(err, model.ErrGameAlreadyStarted):
		return &httpError{http.StatusConflict, APIError{CodeRoomGameStarted, "Game has already started"}}
	case errors.Is(err, model.ErrNotEnoughPlayers):
		return &httpError{http.StatusConflict, APIError{CodeNotEnoughPlayers, "Not enough players to start"}}
	case errors.Is(err, model.ErrNoWordsAvailable):
		return &httpError{http.StatusConflict, APIError{CodeNoWordsAvailable, "Word category has too few words"}}
	case errors.Is(err, model.ErrForbidden),
		errors.Is(err, model.ErrNotInRoom),
		errors.Is(err, model.ErrUserNotFound):
		return &httpError{http.StatusForbidden, APIError{CodeForbidden, "Operation not permitted"}}
	case errors.Is(err, model.ErrConflict):
		return &httpError{http.StatusConflict, APIError{CodeConflict, "Concurrent update, retry the request"}}

	// Map identity errors
	case errors.Is(err, identity.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeIncorrectUsernamePassword, "Incorrect username or password"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeIncorrectConnectionID, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
