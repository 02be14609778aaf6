package response

import (
	"github.com/mcoot/emojiguess-go/internal/model"
)

// AuthResponse is the response for registration and login. The connection id
// doubles as the bearer token for subsequent requests.
type AuthResponse struct {
	Username     string `json:"username"`
	ConnectionID string `json:"connection_id"`
}

// AuthResponseFromUser creates an AuthResponse from a user
func AuthResponseFromUser(u *model.User) AuthResponse {
	return AuthResponse{
		Username:     string(u.Username),
		ConnectionID: string(u.ConnectionID),
	}
}

// CurrentUserData is the response for the caller's own user data
type CurrentUserData struct {
	Username string `json:"username"`
	RoomCode string `json:"room_code"`
}

// UserData is the response for looking up another user
type UserData struct {
	Username string `json:"username"`
}

// RoomMember represents a room member in API responses
type RoomMember struct {
	Username     string `json:"username"`
	Role         string `json:"role"`
	GameScore    int    `json:"game_score"`
	GuessedRight bool   `json:"guessed_right"`
	HasGuessed   bool   `json:"has_guessed"`
}

// RoomMemberFromModel converts a model.RoomMember
func RoomMemberFromModel(m model.RoomMember) RoomMember {
	return RoomMember{
		Username:     string(m.Username),
		Role:         string(m.Role),
		GameScore:    m.GameScore,
		GuessedRight: m.GuessedRight,
		HasGuessed:   m.HasGuessed(),
	}
}

// Room represents a room in API responses. The round word is never included;
// the commander retrieves it through its own endpoint.
type Room struct {
	Code          string       `json:"code"`
	Name          string       `json:"name"`
	Category      string       `json:"category"`
	Rounds        int          `json:"rounds"`
	RoundDuration int          `json:"round_duration"`
	Creator       string       `json:"creator"`
	GameStarted   bool         `json:"game_started"`
	EmojisSent    bool         `json:"emojis_sent"`
	RoundEnded    bool         `json:"round_ended"`
	CurrentRound  int          `json:"current_round"`
	Members       []RoomMember `json:"members"`
}

// RoomFromModel converts a model.Room
func RoomFromModel(r *model.Room) Room {
	members := make([]RoomMember, len(r.Members))
	for i, m := range r.Members {
		members[i] = RoomMemberFromModel(m)
	}

	return Room{
		Code:          string(r.Code),
		Name:          r.Name,
		Category:      string(r.CategoryID),
		Rounds:        r.Rounds,
		RoundDuration: r.RoundDuration,
		Creator:       string(r.Creator),
		GameStarted:   r.GameStarted,
		EmojisSent:    r.EmojisSent,
		RoundEnded:    r.RoundEnded,
		CurrentRound:  r.CurrentRound,
		Members:       members,
	}
}

// CreatedRoom is the response after creating a room
type CreatedRoom struct {
	RoomCode string `json:"room_code"`
}

// Commander is the response after commander selection
type Commander struct {
	Username string `json:"username"`
	Round    int    `json:"round"`
}

// Word is the commander's round word
type Word struct {
	Word string `json:"word"`
}

// CheckedWord is the response after a guess is scored
type CheckedWord struct {
	IsCorrect bool `json:"is_correct"`
}

// MemberResult is one leaderboard row
type MemberResult struct {
	Username     string `json:"username"`
	GameScore    int    `json:"game_score"`
	GuessedRight bool   `json:"guessed_right"`
	GuessedWord  string `json:"guessed_word"`
}

// RoundResults is the response after closing a round
type RoundResults struct {
	Results   []MemberResult `json:"results"`
	NextRound bool           `json:"next_round"`
}

// RoundResultsFromModel converts the leaderboard
func RoundResultsFromModel(results []model.MemberResult, nextRound bool) RoundResults {
	rows := make([]MemberResult, len(results))
	for i, r := range results {
		rows[i] = MemberResult{
			Username:     string(r.Username),
			GameScore:    r.GameScore,
			GuessedRight: r.GuessedRight,
			GuessedWord:  r.GuessedWord,
		}
	}
	return RoundResults{Results: rows, NextRound: nextRound}
}

// Health is the health check response
type Health struct {
	Status string `json:"status"`
}
