package postgres

import (
	"time"

	"github.com/mcoot/emojiguess-go/internal/model"
)

// Row types mirror the logical schema: Users, Categories, Words, Rooms,
// RoomMembers, RoomWords. The Room aggregate is split across rooms and
// room_members; SaveRoom writes both inside one transaction guarded by the
// version column.

type userRow struct {
	Username     string `gorm:"primaryKey;size:32"`
	PasswordHash string `gorm:"size:255;not null"`
	ConnectionID string `gorm:"size:64;uniqueIndex;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userRow) TableName() string { return "users" }

type categoryRow struct {
	ID        string `gorm:"primaryKey;size:64"`
	Name      string `gorm:"size:64;uniqueIndex;not null"`
	CreatedAt time.Time
}

func (categoryRow) TableName() string { return "categories" }

type wordRow struct {
	ID         uint   `gorm:"primaryKey"`
	CategoryID string `gorm:"size:64;index;not null"`
	Text       string `gorm:"size:64;not null"`
}

func (wordRow) TableName() string { return "words" }

type roomRow struct {
	RoomCode      string `gorm:"primaryKey;size:6"`
	RoomName      string `gorm:"size:32;not null"`
	CategoryID    string `gorm:"size:64"`
	Rounds        int    `gorm:"not null"`
	RoundDuration int    `gorm:"not null"`
	RoomCreator   string `gorm:"size:32;not null"`
	GameStarted   bool   `gorm:"not null"`
	RoundWord     string `gorm:"size:64"`
	EmojisSent    bool   `gorm:"not null"`
	EmojisSentAt  *time.Time
	RoundEnded    bool `gorm:"not null"`
	CurrentRound  int  `gorm:"not null"`
	Version       int  `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (roomRow) TableName() string { return "rooms" }

type roomMemberRow struct {
	RoomCode     string `gorm:"primaryKey;size:6"`
	Username     string `gorm:"primaryKey;size:32;index"`
	Role         string `gorm:"size:16;not null"`
	GameScore    int    `gorm:"not null"`
	GuessedRight bool   `gorm:"not null"`
	GuessedWord  string `gorm:"size:64"`
	JoinedAt     time.Time
}

func (roomMemberRow) TableName() string { return "room_members" }

type roomWordRow struct {
	ID       uint   `gorm:"primaryKey"`
	RoomCode string `gorm:"size:6;index;not null"`
	Position int    `gorm:"not null"`
	Text     string `gorm:"size:64;not null"`
}

func (roomWordRow) TableName() string { return "room_words" }

// Conversions between rows and domain types

func userFromRow(r *userRow) *model.User {
	return &model.User{
		Username:     model.Username(r.Username),
		PasswordHash: r.PasswordHash,
		ConnectionID: model.ConnectionID(r.ConnectionID),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func rowFromUser(u *model.User) *userRow {
	return &userRow{
		Username:     string(u.Username),
		PasswordHash: u.PasswordHash,
		ConnectionID: string(u.ConnectionID),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func roomFromRows(r *roomRow, members []roomMemberRow) *model.Room {
	room := &model.Room{
		Code:          model.RoomCode(r.RoomCode),
		Name:          r.RoomName,
		CategoryID:    model.CategoryID(r.CategoryID),
		Rounds:        r.Rounds,
		RoundDuration: r.RoundDuration,
		Creator:       model.Username(r.RoomCreator),
		GameStarted:   r.GameStarted,
		RoundWord:     r.RoundWord,
		EmojisSent:    r.EmojisSent,
		EmojisSentAt:  r.EmojisSentAt,
		RoundEnded:    r.RoundEnded,
		CurrentRound:  r.CurrentRound,
		Version:       r.Version,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	for i := range members {
		m := &members[i]
		room.Members = append(room.Members, model.RoomMember{
			Username:     model.Username(m.Username),
			Role:         model.MemberRole(m.Role),
			GameScore:    m.GameScore,
			GuessedRight: m.GuessedRight,
			GuessedWord:  m.GuessedWord,
			JoinedAt:     m.JoinedAt,
		})
	}
	return room
}

func rowsFromRoom(room *model.Room, version int) (*roomRow, []roomMemberRow) {
	r := &roomRow{
		RoomCode:      string(room.Code),
		RoomName:      room.Name,
		CategoryID:    string(room.CategoryID),
		Rounds:        room.Rounds,
		RoundDuration: room.RoundDuration,
		RoomCreator:   string(room.Creator),
		GameStarted:   room.GameStarted,
		RoundWord:     room.RoundWord,
		EmojisSent:    room.EmojisSent,
		EmojisSentAt:  room.EmojisSentAt,
		RoundEnded:    room.RoundEnded,
		CurrentRound:  room.CurrentRound,
		Version:       version,
		CreatedAt:     room.CreatedAt,
		UpdatedAt:     room.UpdatedAt,
	}
	members := make([]roomMemberRow, 0, len(room.Members))
	for i := range room.Members {
		m := &room.Members[i]
		members = append(members, roomMemberRow{
			RoomCode:     string(room.Code),
			Username:     string(m.Username),
			Role:         string(m.Role),
			GameScore:    m.GameScore,
			GuessedRight: m.GuessedRight,
			GuessedWord:  m.GuessedWord,
			JoinedAt:     m.JoinedAt,
		})
	}
	return r, members
}
