package model

import "time"

// RoomCode is the 6-character identifier for joining rooms.
// It doubles as the broadcast group key.
type RoomCode string

// MemberRole distinguishes the per-round commander from regular players
type MemberRole string

const (
	RolePlayer    MemberRole = "player"
	RoleCommander MemberRole = "commander"
)

// Game rule bounds
const (
	MinRounds        = 10
	MaxRounds        = 30
	MinRoundDuration = 15
	MaxRoundDuration = 45
	MinPlayers       = 3

	// CorrectGuessScore is the fixed score increment for a correct guess
	CorrectGuessScore = 100
)

// RoomMember represents a user's membership in a room.
// GuessedWord and GuessedRight are round-transient and reset at round end.
type RoomMember struct {
	Username     Username
	Role         MemberRole
	GameScore    int
	GuessedRight bool
	GuessedWord  string // verbatim as submitted
	JoinedAt     time.Time
}

// HasGuessed reports whether the member has submitted a guess this round
func (m *RoomMember) HasGuessed() bool {
	return m.GuessedWord != ""
}

// Room is the aggregate for one game session. Members live inside the
// aggregate so that Version guards the whole room: concurrent mutations
// are serialized by a compare-and-swap on Version at the storage layer.
type Room struct {
	Code          RoomCode
	Name          string
	CategoryID    CategoryID
	Rounds        int
	RoundDuration int // seconds, advisory only; never enforced server-side
	Creator       Username
	GameStarted   bool
	RoundWord     string // current round's secret, empty until GetWord
	EmojisSent    bool
	EmojisSentAt  *time.Time
	RoundEnded    bool
	CurrentRound  int // starts at 0, incremented on commander selection
	Members       []RoomMember

	// Version is the optimistic concurrency token, incremented on every save
	Version int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetMember returns the member with the given username, or nil if not found
func (r *Room) GetMember(username Username) *RoomMember {
	for i := range r.Members {
		if r.Members[i].Username == username {
			return &r.Members[i]
		}
	}
	return nil
}

// Commander returns the current round's commander, or nil if none is assigned
func (r *Room) Commander() *RoomMember {
	for i := range r.Members {
		if r.Members[i].Role == RoleCommander {
			return &r.Members[i]
		}
	}
	return nil
}

// RemoveMember removes the member with the given username.
// Returns false if they were not a member.
func (r *Room) RemoveMember(username Username) bool {
	for i := range r.Members {
		if r.Members[i].Username == username {
			r.Members = append(r.Members[:i], r.Members[i+1:]...)
			return true
		}
	}
	return false
}

// AllPlayersGuessed reports whether every non-commander member has
// submitted a guess this round
func (r *Room) AllPlayersGuessed() bool {
	for i := range r.Members {
		m := &r.Members[i]
		if m.Role == RoleCommander {
			continue
		}
		if !m.HasGuessed() {
			return false
		}
	}
	return true
}

// ResetRound clears all round-transient state on the room and its members,
// readying the aggregate for the next commander selection
func (r *Room) ResetRound() {
	r.RoundWord = ""
	r.EmojisSent = false
	r.EmojisSentAt = nil
	r.RoundEnded = false
	for i := range r.Members {
		r.Members[i].Role = RolePlayer
		r.Members[i].GuessedRight = false
		r.Members[i].GuessedWord = ""
	}
}

// MemberResult is one leaderboard row returned by GetResults
type MemberResult struct {
	Username     Username `json:"username"`
	GameScore    int      `json:"game_score"`
	GuessedRight bool     `json:"guessed_right"`
	GuessedWord  string   `json:"guessed_word"`
}
