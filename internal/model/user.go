package model

import "time"

// Username uniquely identifies a user across the system.
// Room membership is keyed by Username, not by connection, so a user can
// reconnect without losing their place in a room.
type Username string

// ConnectionID identifies a user's current live transport binding.
// It is rebound on every successful login.
type ConnectionID string

// User represents a registered account
type User struct {
	Username     Username
	PasswordHash string // bcrypt hash, never the plaintext
	ConnectionID ConnectionID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NoRoomCode is the sentinel room code returned for users without a membership
const NoRoomCode RoomCode = "-1"
