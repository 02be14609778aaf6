package nats

import (
	"github.com/mcoot/emojiguess-go/internal/model"
)

const (
	// Room fanout subject prefix. Full format: egame.room.{code}
	subjectRoomPrefix = "egame.room."

	// Direct-to-connection subject prefix. Full format: egame.conn.{connection_id}
	subjectConnPrefix = "egame.conn."
)

func roomSubject(code model.RoomCode) string {
	return subjectRoomPrefix + string(code)
}

func connSubject(connID model.ConnectionID) string {
	return subjectConnPrefix + string(connID)
}
