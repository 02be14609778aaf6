package model

import "errors"

// Common errors used across the application
var (
	// User errors
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidUsername   = errors.New("invalid username")
	ErrInvalidPassword   = errors.New("invalid password")
	ErrUsernameTaken     = errors.New("username already taken")
	ErrInvalidConnection = errors.New("connection does not resolve to a user")

	// Room errors
	ErrRoomNotFound         = errors.New("room not found")
	ErrNotInRoom            = errors.New("user is not in a room")
	ErrJoinedDifferentRoom  = errors.New("user is already in a room")
	ErrInvalidRoomName      = errors.New("invalid room name")
	ErrInvalidRoundAmount   = errors.New("round amount out of range")
	ErrInvalidRoundDuration = errors.New("round duration out of range")
	ErrGameAlreadyStarted   = errors.New("game has already started")
	ErrNotEnoughPlayers     = errors.New("not enough players to start")

	// Phase and role violations, all surfaced to callers as FORBIDDEN
	ErrForbidden = errors.New("operation not permitted in current state")

	// Category / word errors
	ErrCategoryNotFound = errors.New("category not found")
	ErrNoWordsAvailable = errors.New("no words available")

	// Concurrency errors
	ErrConflict = errors.New("concurrent modification, retry the operation")
)
