package storage

import (
	"context"

	"github.com/mcoot/emojiguess-go/internal/model"
)

// Storage defines the interface for data persistence.
//
// SaveRoom is the serialization point for all room mutations: a Room with
// Version 0 is an insert (failing with model.ErrConflict if the code is
// already taken), and a Room with Version > 0 is a compare-and-swap against
// the stored version, failing with model.ErrConflict when a concurrent
// writer got there first. On success the implementation increments
// room.Version in place. Implementations also maintain the username -> room
// code index from room.Members on every SaveRoom/DeleteRoom.
type Storage interface {
	// User operations
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, username model.Username) (*model.User, error)
	GetUserByConnection(ctx context.Context, connID model.ConnectionID) (*model.User, error)
	UpdateUserConnection(ctx context.Context, username model.Username, connID model.ConnectionID) error

	// Room operations
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error)
	DeleteRoom(ctx context.Context, code model.RoomCode) error
	RoomExists(ctx context.Context, code model.RoomCode) (bool, error)

	// GetRoomCodeForUser resolves the room a user currently belongs to,
	// returning model.ErrNotInRoom when they have no membership
	GetRoomCodeForUser(ctx context.Context, username model.Username) (model.RoomCode, error)

	// Category operations (reference data, loaded at startup)
	SaveCategory(ctx context.Context, category *model.Category, words []string) error
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	GetCategoryWords(ctx context.Context, id model.CategoryID) ([]string, error)

	// Room word queue operations. Words are pushed once at room creation
	// and popped one per round; PopRoomWord returns model.ErrNoWordsAvailable
	// when the queue is exhausted or was never preloaded.
	PushRoomWords(ctx context.Context, code model.RoomCode, words []string) error
	PopRoomWord(ctx context.Context, code model.RoomCode) (string, error)
	DeleteRoomWords(ctx context.Context, code model.RoomCode) error
}
