package cli

import (
	"encoding/json"
	"fmt"
	"os"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case AuthResult:
		o.printAuthResult(v)
	case CurrentUser:
		o.printCurrentUser(v)
	case Room:
		o.printRoom(v)
	case CommanderResult:
		o.printCommanderResult(v)
	case WordResult:
		o.printWordResult(v)
	case CheckedWordResult:
		o.printCheckedWordResult(v)
	case RoundResults:
		o.printRoundResults(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// AuthResult response type (matches API)
type AuthResult struct {
	Username     string `json:"username"`
	ConnectionID string `json:"connection_id"`
}

// CurrentUser response type
type CurrentUser struct {
	Username string `json:"username"`
	RoomCode string `json:"room_code"`
}

// RoomMember response type
type RoomMember struct {
	Username     string `json:"username"`
	Role         string `json:"role"`
	GameScore    int    `json:"game_score"`
	GuessedRight bool   `json:"guessed_right"`
	HasGuessed   bool   `json:"has_guessed"`
}

// Room response type
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

// CommanderResult response type
type CommanderResult struct {
	Username string `json:"username"`
	Round    int    `json:"round"`
}

// WordResult response type
type WordResult struct {
	Word string `json:"word"`
}

// CheckedWordResult response type
type CheckedWordResult struct {
	IsCorrect bool `json:"is_correct"`
}

// MemberResult response type
type MemberResult struct {
	Username     string `json:"username"`
	GameScore    int    `json:"game_score"`
	GuessedRight bool   `json:"guessed_right"`
	GuessedWord  string `json:"guessed_word"`
}

// RoundResults response type
type RoundResults struct {
	Results   []MemberResult `json:"results"`
	NextRound bool           `json:"next_round"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printAuthResult(a AuthResult) {
	fmt.Printf("User: %s\n", a.Username)
	fmt.Printf("Token: %s\n", a.ConnectionID)
}

func (o *Output) printCurrentUser(u CurrentUser) {
	fmt.Printf("User: %s\n", u.Username)
	if u.RoomCode == "-1" {
		fmt.Println("Room: none")
	} else {
		fmt.Printf("Room: %s\n", u.RoomCode)
	}
}

func (o *Output) printRoom(r Room) {
	fmt.Printf("Room: %s (%s)\n", r.Name, r.Code)
	fmt.Printf("Category: %s\n", r.Category)
	fmt.Printf("Rounds: %d x %ds\n", r.Rounds, r.RoundDuration)
	fmt.Printf("Creator: %s\n", r.Creator)
	if r.GameStarted {
		fmt.Printf("Round: %d/%d\n", r.CurrentRound, r.Rounds)
	} else {
		fmt.Println("State: waiting to start")
	}
	fmt.Printf("Members (%d):\n", len(r.Members))
	for _, m := range r.Members {
		roleStr := ""
		if m.Role == "commander" {
			roleStr = " [commander]"
		}
		guessStr := ""
		if m.HasGuessed {
			guessStr = " (guessed)"
		}
		fmt.Printf("  - %s: %d pts%s%s\n", m.Username, m.GameScore, roleStr, guessStr)
	}
}

func (o *Output) printCommanderResult(c CommanderResult) {
	fmt.Printf("Commander for round %d: %s\n", c.Round, c.Username)
}

func (o *Output) printWordResult(w WordResult) {
	fmt.Printf("Your word: %s\n", w.Word)
}

func (o *Output) printCheckedWordResult(c CheckedWordResult) {
	if c.IsCorrect {
		fmt.Println("Correct!")
	} else {
		fmt.Println("Wrong guess")
	}
}

func (o *Output) printRoundResults(r RoundResults) {
	fmt.Println("Leaderboard:")
	for i, row := range r.Results {
		marker := ""
		if row.GuessedRight {
			marker = " *"
		}
		fmt.Printf("  %d. %s: %d pts%s\n", i+1, row.Username, row.GameScore, marker)
	}
	if r.NextRound {
		fmt.Println("Next round starting")
	} else {
		fmt.Println("Game over")
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
