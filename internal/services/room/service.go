package room

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/mcoot/emojiguess-go/internal/dependencies/clock"
	"github.com/mcoot/emojiguess-go/internal/dependencies/random"
	"github.com/mcoot/emojiguess-go/internal/model"
	"github.com/mcoot/emojiguess-go/internal/services/identity"
	"github.com/mcoot/emojiguess-go/internal/services/words"
	"github.com/mcoot/emojiguess-go/internal/storage"
)

const (
	// RoomCodeLength is the length of generated room codes
	RoomCodeLength = 6
	// RoomCodeAlphabet is the characters used in room codes
	RoomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var roomNameRe = regexp.MustCompile(`^[A-Za-z0-9_ ]{3,32}$`)

// Service is the room lifecycle manager: it owns room and member state,
// enforces validation and phase invariants, and executes the game
// operations. Every mutating operation is one bounded read-modify-write
// against storage; a concurrent writer loses with model.ErrConflict and
// may safely retry. There are no background loops and no server-side
// round timers: RoundDuration is advisory metadata for clients.
type Service struct {
	storage  storage.Storage
	identity *identity.Service
	words    *words.Service
	clock    clock.Clock
	random   random.Random
	logger   *slog.Logger
}

// New creates a new room Service
func New(
	storage storage.Storage,
	identity *identity.Service,
	words *words.Service,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage:  storage,
		identity: identity,
		words:    words,
		clock:    clock,
		random:   random,
		logger:   logger,
	}
}

// GetCurrentUserData resolves a connection to its username and current room
// code, using the sentinel model.NoRoomCode when the user has no membership
func (s *Service) GetCurrentUserData(ctx context.Context, connID model.ConnectionID) (model.Username, model.RoomCode, error) {
	user, err := s.identity.ResolveConnection(ctx, connID)
	if err != nil {
		return "", "", err
	}

	code, err := s.storage.GetRoomCodeForUser(ctx, user.Username)
	if err != nil {
		if errors.Is(err, model.ErrNotInRoom) {
			return user.Username, model.NoRoomCode, nil
		}
		return "", "", err
	}
	return user.Username, code, nil
}

// GetUserData confirms that the target user is a co-member of the caller's
// room. Any failure along the way is deliberately collapsed to Forbidden so
// the operation leaks nothing about rooms the caller is not in.
func (s *Service) GetUserData(ctx context.Context, connID model.ConnectionID, target model.Username) (model.Username, error) {
	_, room, err := s.callerRoom(ctx, connID)
	if err != nil {
		return "", model.ErrForbidden
	}

	if room.GetMember(target) == nil {
		return "", model.ErrForbidden
	}
	return target, nil
}

// CreateRoom validates the configuration, creates the room with the caller
// as its only member, and preloads one word per round from the category
func (s *Service) CreateRoom(ctx context.Context, connID model.ConnectionID, roomName, categoryName string, rounds, roundDuration int) (*model.Room, error) {
	user, err := s.identity.ResolveConnection(ctx, connID)
	if err != nil {
		return nil, model.ErrForbidden
	}

	if _, err := s.storage.GetRoomCodeForUser(ctx, user.Username); err == nil {
		return nil, model.ErrJoinedDifferentRoom
	} else if !errors.Is(err, model.ErrNotInRoom) {
		return nil, err
	}

	if !roomNameRe.MatchString(roomName) {
		return nil, model.ErrInvalidRoomName
	}

	category, err := s.words.GetCategoryByName(ctx, categoryName)
	if err != nil {
		return nil, err
	}

	if rounds < model.MinRounds || rounds > model.MaxRounds {
		return nil, model.ErrInvalidRoundAmount
	}
	if roundDuration < model.MinRoundDuration || roundDuration > model.MaxRoundDuration {
		return nil, model.ErrInvalidRoundDuration
	}

	now := s.clock.Now()

	// Generate a unique room code, retrying on collision
	var code model.RoomCode
	for {
		code = model.RoomCode(s.random.String(RoomCodeLength, RoomCodeAlphabet))
		exists, err := s.storage.RoomExists(ctx, code)
		if err != nil {
			return nil, err
		}
		if !exists {
			break
		}
	}

	room := &model.Room{
		Code:          code,
		Name:          roomName,
		CategoryID:    category.ID,
		Rounds:        rounds,
		RoundDuration: roundDuration,
		Creator:       user.Username,
		Members: []model.RoomMember{
			{
				Username: user.Username,
				Role:     model.RolePlayer,
				JoinedAt: now,
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	if err := s.words.Preload(ctx, code, category.ID, rounds); err != nil {
		// Roll back the room so the code is not left unplayable
		_ = s.storage.DeleteRoom(ctx, code)
		return nil, err
	}

	s.logger.Info("room created",
		slog.String("room_code", string(code)),
		slog.String("creator", string(user.Username)),
		slog.Int("rounds", rounds),
	)
	return room, nil
}

// JoinRoom adds the caller to a room that has not yet started
func (s *Service) JoinRoom(ctx context.Context, connID model.ConnectionID, code model.RoomCode) (*model.Room, error) {
	user, err := s.identity.ResolveConnection(ctx, connID)
	if err != nil {
		return nil, model.ErrForbidden
	}

	if _, err := s.storage.GetRoomCodeForUser(ctx, user.Username); err == nil {
		return nil, model.ErrJoinedDifferentRoom
	} else if !errors.Is(err, model.ErrNotInRoom) {
		return nil, err
	}

	room, err := s.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if room.GameStarted {
		return nil, model.ErrGameAlreadyStarted
	}

	room.Members = append(room.Members, model.RoomMember{
		Username: user.Username,
		Role:     model.RolePlayer,
		JoinedAt: s.clock.Now(),
	})
	room.UpdatedAt = s.clock.Now()

	if err := s.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// LeftRoom removes the caller from their room. The room is destroyed when
// the creator leaves before the game starts, or when a mid-game departure
// drops membership below the playable minimum.
func (s *Service) LeftRoom(ctx context.Context, connID model.ConnectionID) (model.Username, model.RoomCode, bool, error) {
	user, room, err := s.callerRoom(ctx, connID)
	if err != nil {
		return "", "", false, model.ErrForbidden
	}

	room.RemoveMember(user.Username)

	gameEnded := (user.Username == room.Creator && !room.GameStarted) ||
		(room.GameStarted && len(room.Members) < model.MinPlayers)

	if gameEnded {
		if err := s.storage.DeleteRoom(ctx, room.Code); err != nil {
			return "", "", false, err
		}
		if err := s.words.Discard(ctx, room.Code); err != nil {
			return "", "", false, err
		}
		s.logger.Info("room deleted",
			slog.String("room_code", string(room.Code)),
			slog.String("left_by", string(user.Username)),
		)
		return user.Username, room.Code, true, nil
	}

	room.UpdatedAt = s.clock.Now()
	if err := s.storage.SaveRoom(ctx, room); err != nil {
		return "", "", false, err
	}
	return user.Username, room.Code, false, nil
}

// StartGame begins the game. Only the room creator may start, only once,
// and only with enough players.
func (s *Service) StartGame(ctx context.Context, connID model.ConnectionID) (model.RoomCode, error) {
	user, room, err := s.callerRoom(ctx, connID)
	if err != nil {
		return "", model.ErrForbidden
	}

	if user.Username != room.Creator {
		return "", model.ErrForbidden
	}
	if room.GameStarted {
		return "", model.ErrGameAlreadyStarted
	}
	if len(room.Members) < model.MinPlayers {
		return "", model.ErrNotEnoughPlayers
	}

	room.GameStarted = true
	room.UpdatedAt = s.clock.Now()

	if err := s.storage.SaveRoom(ctx, room); err != nil {
		return "", err
	}

	s.logger.Info("game started",
		slog.String("room_code", string(room.Code)),
		slog.Int("players", len(room.Members)),
	)
	return room.Code, nil
}

// GetCommander returns the round's commander, selecting one uniformly at
// random and opening the next round if none is assigned yet. Repeated calls
// within a round return the same username, so reconnecting clients can
// re-query safely. Also reports which round the commander owns.
func (s *Service) GetCommander(ctx context.Context, connID model.ConnectionID) (model.Username, int, model.RoomCode, error) {
	_, room, err := s.callerRoom(ctx, connID)
	if err != nil {
		return "", 0, "", model.ErrForbidden
	}
	if !room.GameStarted {
		return "", 0, "", model.ErrForbidden
	}

	if commander := room.Commander(); commander != nil {
		return commander.Username, room.CurrentRound, room.Code, nil
	}

	// All rounds have been played; there is no next commander
	if room.CurrentRound >= room.Rounds {
		return "", 0, "", model.ErrForbidden
	}

	idx := s.random.Intn(len(room.Members))
	for i := range room.Members {
		if i == idx {
			room.Members[i].Role = model.RoleCommander
		} else {
			room.Members[i].Role = model.RolePlayer
		}
	}

	room.RoundWord = ""
	room.EmojisSent = false
	room.EmojisSentAt = nil
	room.RoundEnded = false
	room.CurrentRound++
	room.UpdatedAt = s.clock.Now()

	if err := s.storage.SaveRoom(ctx, room); err != nil {
		return "", 0, "", err
	}

	commander := room.Members[idx].Username
	s.logger.Info("commander selected",
		slog.String("room_code", string(room.Code)),
		slog.String("commander", string(commander)),
		slog.Int("round", room.CurrentRound),
	)
	return commander, room.CurrentRound, room.Code, nil
}

// GetWord hands the round's secret word to the commander, dequeuing the
// next preloaded word on first call and returning the stored word on
// re-query. Only the commander ever sees it.
func (s *Service) GetWord(ctx context.Context, connID model.ConnectionID) (string, model.RoomCode, error) {
	user, room, err := s.callerRoom(ctx, connID)
	if err != nil {
		return "", "", model.ErrForbidden
	}
	if !room.GameStarted {
		return "", "", model.ErrForbidden
	}
	member := room.GetMember(user.Username)
	if member == nil || member.Role != model.RoleCommander {
		return "", "", model.ErrForbidden
	}

	if room.RoundWord != "" {
		return room.RoundWord, room.Code, nil
	}

	word, err := s.words.Dequeue(ctx, room.Code)
	if err != nil {
		return "", "", err
	}

	room.RoundWord = word
	room.UpdatedAt = s.clock.Now()
	if err := s.storage.SaveRoom(ctx, room); err != nil {
		return "", "", err
	}
	return word, room.Code, nil
}

// SendEmojis records that the commander has broadcast their clues, opening
// the guessing phase. The emoji payload itself is relayed by the caller
// through the broadcast gateway; the core only tracks the phase change.
func (s *Service) SendEmojis(ctx context.Context, connID model.ConnectionID) (model.RoomCode, error) {
	user, room, err := s.callerRoom(ctx, connID)
	if err != nil {
		return "", model.ErrForbidden
	}
	if !room.GameStarted {
		return "", model.ErrForbidden
	}
	member := room.GetMember(user.Username)
	if member == nil || member.Role != model.RoleCommander {
		return "", model.ErrForbidden
	}

	now := s.clock.Now()
	room.EmojisSent = true
	room.EmojisSentAt = &now
	room.UpdatedAt = now

	if err := s.storage.SaveRoom(ctx, room); err != nil {
		return "", err
	}
	return room.Code, nil
}

// CheckWord scores a player's guess against the round word, comparing
// ordinally case-insensitively. Each member guesses at most once per round;
// a correct guess adds exactly the fixed increment to their score.
func (s *Service) CheckWord(ctx context.Context, connID model.ConnectionID, guess string) (bool, model.RoomCode, error) {
	user, room, err := s.callerRoom(ctx, connID)
	if err != nil {
		return false, "", model.ErrForbidden
	}

	member := room.GetMember(user.Username)
	switch {
	case member == nil,
		member.Role == model.RoleCommander,
		!room.GameStarted,
		!room.EmojisSent,
		room.RoundEnded,
		member.HasGuessed():
		return false, "", model.ErrForbidden
	}

	correct := strings.EqualFold(guess, room.RoundWord)
	member.GuessedWord = guess
	member.GuessedRight = correct
	if correct {
		member.GameScore += model.CorrectGuessScore
	}
	room.UpdatedAt = s.clock.Now()

	if err := s.storage.SaveRoom(ctx, room); err != nil {
		return false, "", err
	}
	return correct, room.Code, nil
}

// GetResults closes the round once every player has guessed (or it was
// already marked ended), returning the leaderboard and whether another
// round follows. Round-transient state is always reset afterwards, even on
// the final round, so the room never ends holding a commander.
func (s *Service) GetResults(ctx context.Context, connID model.ConnectionID) ([]model.MemberResult, bool, model.RoomCode, error) {
	_, room, err := s.callerRoom(ctx, connID)
	if err != nil {
		return nil, false, "", model.ErrForbidden
	}
	if !room.GameStarted {
		return nil, false, "", model.ErrForbidden
	}
	if !room.RoundEnded && !room.AllPlayersGuessed() {
		return nil, false, "", model.ErrForbidden
	}

	room.RoundEnded = true

	results := make([]model.MemberResult, 0, len(room.Members))
	for i := range room.Members {
		m := &room.Members[i]
		results = append(results, model.MemberResult{
			Username:     m.Username,
			GameScore:    m.GameScore,
			GuessedRight: m.GuessedRight,
			GuessedWord:  m.GuessedWord,
		})
	}
	// Score descending, ties by username ascending for determinism
	sort.Slice(results, func(i, j int) bool {
		if results[i].GameScore != results[j].GameScore {
			return results[i].GameScore > results[j].GameScore
		}
		return results[i].Username < results[j].Username
	})

	nextRound := room.CurrentRound < room.Rounds

	room.ResetRound()
	room.UpdatedAt = s.clock.Now()

	if err := s.storage.SaveRoom(ctx, room); err != nil {
		return nil, false, "", err
	}

	s.logger.Info("round ended",
		slog.String("room_code", string(room.Code)),
		slog.Int("round", room.CurrentRound),
		slog.Bool("next_round", nextRound),
	)
	return results, nextRound, room.Code, nil
}

// callerRoom resolves the caller's connection and loads the room they are
// currently a member of
func (s *Service) callerRoom(ctx context.Context, connID model.ConnectionID) (*model.User, *model.Room, error) {
	user, err := s.identity.ResolveConnection(ctx, connID)
	if err != nil {
		return nil, nil, err
	}

	code, err := s.storage.GetRoomCodeForUser(ctx, user.Username)
	if err != nil {
		return nil, nil, err
	}

	room, err := s.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	return user, room, nil
}
