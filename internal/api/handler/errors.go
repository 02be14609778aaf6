package handler

import (
	"net/http"

	"github.com/mcoot/emojiguess-go/internal/api/apierr"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// Re-export error codes
const (
	CodeInvalidRequest            = apierr.CodeInvalidRequest
	CodeIncorrectUsername         = apierr.CodeIncorrectUsername
	CodeIncorrectPassword         = apierr.CodeIncorrectPassword
	CodeUsernameTaken             = apierr.CodeUsernameTaken
	CodeIncorrectUsernamePassword = apierr.CodeIncorrectUsernamePassword
	CodeIncorrectConnectionID     = apierr.CodeIncorrectConnectionID
	CodeForbidden                 = apierr.CodeForbidden
	CodeJoinedDifferentRoom       = apierr.CodeJoinedDifferentRoom
	CodeIncorrectRoomName         = apierr.CodeIncorrectRoomName
	CodeIncorrectRoomCategory     = apierr.CodeIncorrectRoomCategory
	CodeIncorrectRoundAmount      = apierr.CodeIncorrectRoundAmount
	CodeIncorrectRoundDuration    = apierr.CodeIncorrectRoundDuration
	CodeIncorrectRoomCode         = apierr.CodeIncorrectRoomCode
	CodeRoomGameStarted           = apierr.CodeRoomGameStarted
	CodeNotEnoughPlayers          = apierr.CodeNotEnoughPlayers
	CodeNoWordsAvailable          = apierr.CodeNoWordsAvailable
	CodeConflict                  = apierr.CodeConflict
	CodeInternalError             = apierr.CodeInternalError
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return apierr.NewUnauthorizedError()
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return apierr.NewInternalError()
}
