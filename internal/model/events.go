package model

// Event names on the wire. These are matched verbatim by deployed clients,
// misspellings included, so they must not be "fixed".
const (
	EventCreatedUser        = "createdUser"
	EventUserLoggedIn       = "userLoggedIn"
	EventCurrentUserData    = "currentUserData"
	EventUserData           = "userData"
	EventCreatedRoom        = "createdRoom"
	EventJoinedRoom         = "joinedRoom"
	EventPlayerJoined       = "playerJoined"
	EventPlayerLeft         = "playerLeft"
	EventGameEnded          = "gameEnded"
	EventGameStarted        = "gameStarted"
	EventCommanderSelected  = "commanderSelected"
	EventCommanderAnnounced = "commanderAnnounced"
	EventReceivedWord       = "recivedWord"
	EventEmojisReceived     = "emojisRecieved"
	EventReceiveEmojis      = "recieveEmojis"
	EventWordChecked        = "wordChecked"
	EventRoundEnded         = "roundEnded"
	EventRoundStarted       = "roundStarted"
	EventError              = "error"
)

// PlayerJoinedPayload announces a new member to the rest of the room
type PlayerJoinedPayload struct {
	Username Username `json:"username"`
}

// PlayerLeftPayload announces a departure to the rest of the room
type PlayerLeftPayload struct {
	Username    Username `json:"username"`
	IsGameEnded bool     `json:"is_game_ended"`
}

// CommanderAnnouncedPayload tells the room who commands this round
type CommanderAnnouncedPayload struct {
	Username Username `json:"username"`
	Round    int      `json:"round"`
}

// EmojisPayload carries the commander's emoji clues to the rest of the room
type EmojisPayload struct {
	Emojis []string `json:"emojis"`
}

// RoundEndedPayload carries the leaderboard and whether another round follows
type RoundEndedPayload struct {
	Results   []MemberResult `json:"results"`
	NextRound bool           `json:"next_round"`
}
