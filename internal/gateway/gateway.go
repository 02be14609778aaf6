package gateway

import (
	"context"

	"github.com/mcoot/emojiguess-go/internal/model"
)

// Event is a named payload delivered to clients. Event names are the wire
// constants in the model package.
type Event struct {
	Name    string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// Gateway delivers events to one connection or to all connections grouped
// under a room code. Delivery is best-effort and ordered per recipient; the
// core never depends on delivery mechanics beyond these three primitives.
type Gateway interface {
	SendToConnection(ctx context.Context, connID model.ConnectionID, event Event) error
	SendToRoom(ctx context.Context, code model.RoomCode, event Event) error
	SendToRoomExcept(ctx context.Context, code model.RoomCode, except model.ConnectionID, event Event) error
}
