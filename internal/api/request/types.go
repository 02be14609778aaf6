package request

// CreateUserRequest is the request body for registering a user
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateRoomRequest is the request body for creating a room
type CreateRoomRequest struct {
	Name          string `json:"name"`
	Category      string `json:"category"`
	Rounds        int    `json:"rounds"`
	RoundDuration int    `json:"round_duration"`
}

// SendEmojisRequest is the request body for broadcasting emoji clues
type SendEmojisRequest struct {
	Emojis []string `json:"emojis"`
}

// CheckWordRequest is the request body for submitting a guess
type CheckWordRequest struct {
	Guess string `json:"guess"`
}
