package room

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/emojiguess-go/internal/dependencies/mocks"
	"github.com/mcoot/emojiguess-go/internal/model"
	"github.com/mcoot/emojiguess-go/internal/services/identity"
	"github.com/mcoot/emojiguess-go/internal/services/words"
	"github.com/mcoot/emojiguess-go/internal/storage/memory"
	"github.com/mcoot/emojiguess-go/internal/testutil"
)

var animalPool = []string{
	"cat", "dog", "fox", "owl", "bat", "bee", "ant", "elk", "hen", "pig",
	"cow", "ram", "rat", "emu", "yak", "koala", "panda", "tiger", "zebra",
	"horse", "sheep", "goose", "snake", "whale", "shark", "otter", "llama",
	"camel", "bison", "moose", "lemur", "sloth", "gecko", "hyena", "raven",
}

type ServiceSuite struct {
	suite.Suite
	storage  *memory.Storage
	clock    *mocks.MockClock
	random   *mocks.MockRandom
	identity *identity.Service
	words    *words.Service
	service  *Service
	ctx      context.Context

	conns map[string]model.ConnectionID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	logger := testutil.NopLogger()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.identity = identity.New(s.storage, s.clock, logger)
	s.words = words.New(s.storage, s.random, logger)
	s.service = New(s.storage, s.identity, s.words, s.clock, s.random, logger)
	s.ctx = context.Background()

	s.Require().NoError(s.words.LoadCategory(s.ctx, "Animals", animalPool))

	s.conns = make(map[string]model.ConnectionID)
	for _, name := range []string{"alice", "bob", "carol", "dave"} {
		user, err := s.identity.CreateUser(s.ctx, name, "password123")
		s.Require().NoError(err)
		s.conns[name] = user.ConnectionID
	}
}

// createRoom creates a room as alice with the default configuration
func (s *ServiceSuite) createRoom() *model.Room {
	s.random.QueueString("ROOM01")
	room, err := s.service.CreateRoom(s.ctx, s.conns["alice"], "Room1", "Animals", 10, 30)
	s.Require().NoError(err)
	return room
}

// startedRoom creates a room and brings it to a started three-player state
func (s *ServiceSuite) startedRoom() *model.Room {
	room := s.createRoom()
	_, err := s.service.JoinRoom(s.ctx, s.conns["bob"], room.Code)
	s.Require().NoError(err)
	_, err = s.service.JoinRoom(s.ctx, s.conns["carol"], room.Code)
	s.Require().NoError(err)
	_, err = s.service.StartGame(s.ctx, s.conns["alice"])
	s.Require().NoError(err)
	current, err := s.storage.GetRoom(s.ctx, room.Code)
	s.Require().NoError(err)
	return current
}

// openRound advances a started room into the guessing phase with alice as
// commander. The identity permutation preloads pool words in order, so the
// first round word is "cat".
func (s *ServiceSuite) openRound() *model.Room {
	room := s.startedRoom()
	s.random.QueueIntn(0) // member 0 is alice
	commander, round, _, err := s.service.GetCommander(s.ctx, s.conns["bob"])
	s.Require().NoError(err)
	s.Require().Equal(model.Username("alice"), commander)
	s.Require().Equal(1, round)

	_, _, err = s.service.GetWord(s.ctx, s.conns["alice"])
	s.Require().NoError(err)
	_, err = s.service.SendEmojis(s.ctx, s.conns["alice"])
	s.Require().NoError(err)

	current, err := s.storage.GetRoom(s.ctx, room.Code)
	s.Require().NoError(err)
	return current
}

// GetCurrentUserData tests

func (s *ServiceSuite) TestCurrentUserDataOutsideRoom() {
	username, code, err := s.service.GetCurrentUserData(s.ctx, s.conns["alice"])
	s.Require().NoError(err)
	s.Equal(model.Username("alice"), username)
	s.Equal(model.NoRoomCode, code)
}

func (s *ServiceSuite) TestCurrentUserDataInRoom() {
	room := s.createRoom()

	_, code, err := s.service.GetCurrentUserData(s.ctx, s.conns["alice"])
	s.Require().NoError(err)
	s.Equal(room.Code, code)
}

func (s *ServiceSuite) TestCurrentUserDataBadConnection() {
	_, _, err := s.service.GetCurrentUserData(s.ctx, "conn_nope")
	s.ErrorIs(err, model.ErrInvalidConnection)
}

// GetUserData tests

func (s *ServiceSuite) TestUserDataCollapsesFailures() {
	// Unknown target and unknown caller both surface the same way
	_, err := s.service.GetUserData(s.ctx, s.conns["alice"], "nobody")
	s.ErrorIs(err, model.ErrForbidden)

	_, err = s.service.GetUserData(s.ctx, "conn_nope", "alice")
	s.ErrorIs(err, model.ErrForbidden)
}

// CreateRoom tests

func (s *ServiceSuite) TestCreateRoomSucceeds() {
	room := s.createRoom()

	s.Equal(model.RoomCode("ROOM01"), room.Code)
	s.Equal("Room1", room.Name)
	s.Equal(model.Username("alice"), room.Creator)
	s.False(room.GameStarted)
	s.Equal(0, room.CurrentRound)
	s.Require().Len(room.Members, 1)
	s.Equal(model.RolePlayer, room.Members[0].Role)
}

func (s *ServiceSuite) TestCreateRoomPreloadsOneWordPerRound() {
	room := s.createRoom()

	for i := 0; i < 10; i++ {
		word, err := s.words.Dequeue(s.ctx, room.Code)
		s.Require().NoError(err)
		s.Equal(animalPool[i], word)
	}
	_, err := s.words.Dequeue(s.ctx, room.Code)
	s.ErrorIs(err, model.ErrNoWordsAvailable)
}

func (s *ServiceSuite) TestCreateRoomInvalidName() {
	_, err := s.service.CreateRoom(s.ctx, s.conns["alice"], "x", "Animals", 10, 30)
	s.ErrorIs(err, model.ErrInvalidRoomName)

	_, err = s.service.CreateRoom(s.ctx, s.conns["alice"], "bad!name", "Animals", 10, 30)
	s.ErrorIs(err, model.ErrInvalidRoomName)
}

func (s *ServiceSuite) TestCreateRoomUnknownCategory() {
	_, err := s.service.CreateRoom(s.ctx, s.conns["alice"], "Room1", "Plants", 10, 30)
	s.ErrorIs(err, model.ErrCategoryNotFound)
}

func (s *ServiceSuite) TestCreateRoomRoundBounds() {
	_, err := s.service.CreateRoom(s.ctx, s.conns["alice"], "Room1", "Animals", 9, 30)
	s.ErrorIs(err, model.ErrInvalidRoundAmount)

	_, err = s.service.CreateRoom(s.ctx, s.conns["alice"], "Room1", "Animals", 31, 30)
	s.ErrorIs(err, model.ErrInvalidRoundAmount)

	_, err = s.service.CreateRoom(s.ctx, s.conns["alice"], "Room1", "Animals", 10, 14)
	s.ErrorIs(err, model.ErrInvalidRoundDuration)

	_, err = s.service.CreateRoom(s.ctx, s.conns["alice"], "Room1", "Animals", 10, 46)
	s.ErrorIs(err, model.ErrInvalidRoundDuration)
}

func (s *ServiceSuite) TestCreateRoomWhileInAnotherRoom() {
	s.createRoom()

	s.random.QueueString("ROOM02")
	_, err := s.service.CreateRoom(s.ctx, s.conns["alice"], "Room2", "Animals", 10, 30)
	s.ErrorIs(err, model.ErrJoinedDifferentRoom)
}

func (s *ServiceSuite) TestCreateRoomCategoryTooSmall() {
	s.Require().NoError(s.words.LoadCategory(s.ctx, "Tiny", []string{"one", "two"}))

	s.random.QueueString("ROOM02")
	_, err := s.service.CreateRoom(s.ctx, s.conns["alice"], "Room2", "Tiny", 10, 30)
	s.ErrorIs(err, model.ErrNoWordsAvailable)

	// The room must not survive the failed preload
	_, err = s.storage.GetRoom(s.ctx, "ROOM02")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

// JoinRoom tests

func (s *ServiceSuite) TestJoinRoomSucceeds() {
	room := s.createRoom()

	joined, err := s.service.JoinRoom(s.ctx, s.conns["bob"], room.Code)
	s.Require().NoError(err)
	s.Len(joined.Members, 2)
	s.NotNil(joined.GetMember("bob"))
}

func (s *ServiceSuite) TestJoinRoomUnknownCode() {
	_, err := s.service.JoinRoom(s.ctx, s.conns["bob"], "NOSUCH")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *ServiceSuite) TestJoinRoomAfterStart() {
	room := s.startedRoom()

	_, err := s.service.JoinRoom(s.ctx, s.conns["dave"], room.Code)
	s.ErrorIs(err, model.ErrGameAlreadyStarted)
}

func (s *ServiceSuite) TestJoinRoomWhileInAnotherRoom() {
	room := s.createRoom()
	_, err := s.service.JoinRoom(s.ctx, s.conns["bob"], room.Code)
	s.Require().NoError(err)

	_, err = s.service.JoinRoom(s.ctx, s.conns["bob"], room.Code)
	s.ErrorIs(err, model.ErrJoinedDifferentRoom)
}

func (s *ServiceSuite) TestUserInAtMostOneRoom() {
	room := s.createRoom()
	_, err := s.service.JoinRoom(s.ctx, s.conns["bob"], room.Code)
	s.Require().NoError(err)

	code, err := s.storage.GetRoomCodeForUser(s.ctx, "bob")
	s.Require().NoError(err)
	s.Equal(room.Code, code)

	_, _, _, err = s.service.LeftRoom(s.ctx, s.conns["bob"])
	s.Require().NoError(err)

	_, err = s.storage.GetRoomCodeForUser(s.ctx, "bob")
	s.ErrorIs(err, model.ErrNotInRoom)
}

// LeftRoom tests

func (s *ServiceSuite) TestCreatorLeavingBeforeStartDeletesRoom() {
	room := s.createRoom()
	_, err := s.service.JoinRoom(s.ctx, s.conns["bob"], room.Code)
	s.Require().NoError(err)

	username, code, gameEnded, err := s.service.LeftRoom(s.ctx, s.conns["alice"])
	s.Require().NoError(err)
	s.Equal(model.Username("alice"), username)
	s.Equal(room.Code, code)
	s.True(gameEnded)

	_, err = s.service.JoinRoom(s.ctx, s.conns["dave"], room.Code)
	s.ErrorIs(err, model.ErrRoomNotFound)

	// The word queue goes with the room
	_, err = s.words.Dequeue(s.ctx, room.Code)
	s.ErrorIs(err, model.ErrNoWordsAvailable)
}

func (s *ServiceSuite) TestNonCreatorLeavingBeforeStartKeepsRoom() {
	room := s.createRoom()
	_, err := s.service.JoinRoom(s.ctx, s.conns["bob"], room.Code)
	s.Require().NoError(err)

	_, _, gameEnded, err := s.service.LeftRoom(s.ctx, s.conns["bob"])
	s.Require().NoError(err)
	s.False(gameEnded)

	current, err := s.storage.GetRoom(s.ctx, room.Code)
	s.Require().NoError(err)
	s.Len(current.Members, 1)
}

func (s *ServiceSuite) TestMidGameLeaveBelowMinimumEndsGame() {
	room := s.startedRoom()

	_, _, gameEnded, err := s.service.LeftRoom(s.ctx, s.conns["carol"])
	s.Require().NoError(err)
	s.True(gameEnded)

	_, err = s.storage.GetRoom(s.ctx, room.Code)
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *ServiceSuite) TestLeftRoomNotInRoom() {
	_, _, _, err := s.service.LeftRoom(s.ctx, s.conns["alice"])
	s.ErrorIs(err, model.ErrForbidden)
}

// StartGame tests

func (s *ServiceSuite) TestStartGameRequiresMinimumPlayers() {
	room := s.createRoom()
	_, err := s.service.JoinRoom(s.ctx, s.conns["bob"], room.Code)
	s.Require().NoError(err)

	_, err = s.service.StartGame(s.ctx, s.conns["alice"])
	s.ErrorIs(err, model.ErrNotEnoughPlayers)
}

func (s *ServiceSuite) TestStartGameCreatorOnly() {
	room := s.createRoom()
	_, err := s.service.JoinRoom(s.ctx, s.conns["bob"], room.Code)
	s.Require().NoError(err)
	_, err = s.service.JoinRoom(s.ctx, s.conns["carol"], room.Code)
	s.Require().NoError(err)

	_, err = s.service.StartGame(s.ctx, s.conns["bob"])
	s.ErrorIs(err, model.ErrForbidden)
}

func (s *ServiceSuite) TestStartGameTwice() {
	s.startedRoom()

	_, err := s.service.StartGame(s.ctx, s.conns["alice"])
	s.ErrorIs(err, model.ErrGameAlreadyStarted)
}

// GetCommander tests

func (s *ServiceSuite) TestGetCommanderSelectsAndIncrementsRound() {
	room := s.startedRoom()

	s.random.QueueIntn(1) // member 1 is bob
	commander, round, code, err := s.service.GetCommander(s.ctx, s.conns["alice"])
	s.Require().NoError(err)
	s.Equal(model.Username("bob"), commander)
	s.Equal(1, round)
	s.Equal(room.Code, code)

	current, err := s.storage.GetRoom(s.ctx, room.Code)
	s.Require().NoError(err)
	s.Equal(1, current.CurrentRound)
}

func (s *ServiceSuite) TestGetCommanderIdempotentWithinRound() {
	s.startedRoom()

	s.random.QueueIntn(1)
	first, _, _, err := s.service.GetCommander(s.ctx, s.conns["alice"])
	s.Require().NoError(err)

	// No more queued randomness: repeats must not re-roll
	for i := 0; i < 3; i++ {
		again, round, _, err := s.service.GetCommander(s.ctx, s.conns["carol"])
		s.Require().NoError(err)
		s.Equal(first, again)
		s.Equal(1, round)
	}
}

func (s *ServiceSuite) TestExactlyOneCommander() {
	room := s.startedRoom()

	s.random.QueueIntn(2)
	_, _, _, err := s.service.GetCommander(s.ctx, s.conns["alice"])
	s.Require().NoError(err)

	current, err := s.storage.GetRoom(s.ctx, room.Code)
	s.Require().NoError(err)
	commanders := 0
	for _, m := range current.Members {
		if m.Role == model.RoleCommander {
			commanders++
		}
	}
	s.Equal(1, commanders)
}

func (s *ServiceSuite) TestGetCommanderBeforeStart() {
	s.createRoom()

	_, _, _, err := s.service.GetCommander(s.ctx, s.conns["alice"])
	s.ErrorIs(err, model.ErrForbidden)
}

// GetWord tests

func (s *ServiceSuite) TestGetWordCommanderOnly() {
	s.startedRoom()
	s.random.QueueIntn(0) // alice commands
	_, _, _, err := s.service.GetCommander(s.ctx, s.conns["alice"])
	s.Require().NoError(err)

	_, _, err = s.service.GetWord(s.ctx, s.conns["bob"])
	s.ErrorIs(err, model.ErrForbidden)

	word, _, err := s.service.GetWord(s.ctx, s.conns["alice"])
	s.Require().NoError(err)
	s.Equal("cat", word)
}

func (s *ServiceSuite) TestGetWordIdempotent() {
	s.startedRoom()
	s.random.QueueIntn(0)
	_, _, _, err := s.service.GetCommander(s.ctx, s.conns["alice"])
	s.Require().NoError(err)

	first, _, err := s.service.GetWord(s.ctx, s.conns["alice"])
	s.Require().NoError(err)

	// Re-query returns the stored word without consuming the queue
	again, _, err := s.service.GetWord(s.ctx, s.conns["alice"])
	s.Require().NoError(err)
	s.Equal(first, again)
}

// SendEmojis tests

func (s *ServiceSuite) TestSendEmojisCommanderOnly() {
	s.startedRoom()
	s.random.QueueIntn(0)
	_, _, _, err := s.service.GetCommander(s.ctx, s.conns["alice"])
	s.Require().NoError(err)

	_, err = s.service.SendEmojis(s.ctx, s.conns["bob"])
	s.ErrorIs(err, model.ErrForbidden)

	code, err := s.service.SendEmojis(s.ctx, s.conns["alice"])
	s.Require().NoError(err)

	current, err := s.storage.GetRoom(s.ctx, code)
	s.Require().NoError(err)
	s.True(current.EmojisSent)
	s.NotNil(current.EmojisSentAt)
}

// CheckWord tests

func (s *ServiceSuite) TestCheckWordCaseInsensitiveScoring() {
	room := s.openRound()

	correct, _, err := s.service.CheckWord(s.ctx, s.conns["bob"], "CAT")
	s.Require().NoError(err)
	s.True(correct)

	current, err := s.storage.GetRoom(s.ctx, room.Code)
	s.Require().NoError(err)
	member := current.GetMember("bob")
	s.Require().NotNil(member)
	s.True(member.GuessedRight)
	s.Equal(model.CorrectGuessScore, member.GameScore)
	s.Equal("CAT", member.GuessedWord)
}

func (s *ServiceSuite) TestCheckWordWrongGuess() {
	room := s.openRound()

	correct, _, err := s.service.CheckWord(s.ctx, s.conns["bob"], "dog")
	s.Require().NoError(err)
	s.False(correct)

	current, err := s.storage.GetRoom(s.ctx, room.Code)
	s.Require().NoError(err)
	member := current.GetMember("bob")
	s.False(member.GuessedRight)
	s.Equal(0, member.GameScore)
	s.Equal("dog", member.GuessedWord)
}

func (s *ServiceSuite) TestCheckWordOncePerRound() {
	s.openRound()

	_, _, err := s.service.CheckWord(s.ctx, s.conns["bob"], "dog")
	s.Require().NoError(err)

	_, _, err = s.service.CheckWord(s.ctx, s.conns["bob"], "cat")
	s.ErrorIs(err, model.ErrForbidden)
}

func (s *ServiceSuite) TestCheckWordGates() {
	s.startedRoom()
	s.random.QueueIntn(0)
	_, _, _, err := s.service.GetCommander(s.ctx, s.conns["alice"])
	s.Require().NoError(err)
	_, _, err = s.service.GetWord(s.ctx, s.conns["alice"])
	s.Require().NoError(err)

	// Before emojis are out, guessing is premature
	_, _, err = s.service.CheckWord(s.ctx, s.conns["bob"], "cat")
	s.ErrorIs(err, model.ErrForbidden)

	_, err = s.service.SendEmojis(s.ctx, s.conns["alice"])
	s.Require().NoError(err)

	// The commander never guesses their own word
	_, _, err = s.service.CheckWord(s.ctx, s.conns["alice"], "cat")
	s.ErrorIs(err, model.ErrForbidden)
}

// GetResults tests

func (s *ServiceSuite) TestGetResultsBeforeAllGuessed() {
	s.openRound()

	_, _, err := s.service.CheckWord(s.ctx, s.conns["bob"], "cat")
	s.Require().NoError(err)

	_, _, _, err = s.service.GetResults(s.ctx, s.conns["bob"])
	s.ErrorIs(err, model.ErrForbidden)
}

func (s *ServiceSuite) TestGetResultsLeaderboardAndReset() {
	room := s.openRound()

	_, _, err := s.service.CheckWord(s.ctx, s.conns["bob"], "cat")
	s.Require().NoError(err)
	_, _, err = s.service.CheckWord(s.ctx, s.conns["carol"], "dog")
	s.Require().NoError(err)

	results, nextRound, code, err := s.service.GetResults(s.ctx, s.conns["alice"])
	s.Require().NoError(err)
	s.Equal(room.Code, code)
	s.True(nextRound)

	// Score descending, ties by username ascending
	s.Require().Len(results, 3)
	s.Equal(model.Username("bob"), results[0].Username)
	s.Equal(model.CorrectGuessScore, results[0].GameScore)
	s.Equal(model.Username("alice"), results[1].Username)
	s.Equal(model.Username("carol"), results[2].Username)

	// Round-transient state is gone
	current, err := s.storage.GetRoom(s.ctx, room.Code)
	s.Require().NoError(err)
	s.Nil(current.Commander())
	s.False(current.EmojisSent)
	s.False(current.RoundEnded)
	s.Empty(current.RoundWord)
	for _, m := range current.Members {
		s.False(m.HasGuessed())
	}

	// Scores persist across the reset
	s.Equal(model.CorrectGuessScore, current.GetMember("bob").GameScore)
}

func (s *ServiceSuite) TestGetResultsAgainAfterReset() {
	s.openRound()

	_, _, err := s.service.CheckWord(s.ctx, s.conns["bob"], "cat")
	s.Require().NoError(err)
	_, _, err = s.service.CheckWord(s.ctx, s.conns["carol"], "cat")
	s.Require().NoError(err)

	_, _, _, err = s.service.GetResults(s.ctx, s.conns["alice"])
	s.Require().NoError(err)

	// The reset reopened the round; results need a fresh set of guesses
	_, _, _, err = s.service.GetResults(s.ctx, s.conns["alice"])
	s.ErrorIs(err, model.ErrForbidden)
}

func (s *ServiceSuite) TestNextRoundFalseOnFinalRound() {
	room := s.startedRoom()

	// Fast-forward to the final round
	current, err := s.storage.GetRoom(s.ctx, room.Code)
	s.Require().NoError(err)
	current.CurrentRound = current.Rounds - 1
	s.Require().NoError(s.storage.SaveRoom(s.ctx, current))

	s.random.QueueIntn(0)
	_, round, _, err := s.service.GetCommander(s.ctx, s.conns["alice"])
	s.Require().NoError(err)
	s.Equal(current.Rounds, round)

	_, _, err = s.service.GetWord(s.ctx, s.conns["alice"])
	s.Require().NoError(err)
	_, err = s.service.SendEmojis(s.ctx, s.conns["alice"])
	s.Require().NoError(err)
	_, _, err = s.service.CheckWord(s.ctx, s.conns["bob"], "cat")
	s.Require().NoError(err)
	_, _, err = s.service.CheckWord(s.ctx, s.conns["carol"], "cat")
	s.Require().NoError(err)

	_, nextRound, _, err := s.service.GetResults(s.ctx, s.conns["bob"])
	s.Require().NoError(err)
	s.False(nextRound)

	// No further commander after the last round
	_, _, _, err = s.service.GetCommander(s.ctx, s.conns["alice"])
	s.ErrorIs(err, model.ErrForbidden)
}

// Full-game scenario

func (s *ServiceSuite) TestFullRoundScenario() {
	room := s.createRoom()
	s.Len(string(room.Code), RoomCodeLength)

	_, err := s.service.JoinRoom(s.ctx, s.conns["bob"], room.Code)
	s.Require().NoError(err)
	_, err = s.service.JoinRoom(s.ctx, s.conns["carol"], room.Code)
	s.Require().NoError(err)

	_, err = s.service.StartGame(s.ctx, s.conns["alice"])
	s.Require().NoError(err)

	s.random.QueueIntn(0)
	commander, _, _, err := s.service.GetCommander(s.ctx, s.conns["bob"])
	s.Require().NoError(err)
	s.Contains([]model.Username{"alice", "bob", "carol"}, commander)

	// Non-commander cannot fetch the word
	_, _, err = s.service.GetWord(s.ctx, s.conns["carol"])
	s.ErrorIs(err, model.ErrForbidden)

	word, _, err := s.service.GetWord(s.ctx, s.conns["alice"])
	s.Require().NoError(err)
	s.Equal("cat", word)

	_, err = s.service.SendEmojis(s.ctx, s.conns["alice"])
	s.Require().NoError(err)

	correct, _, err := s.service.CheckWord(s.ctx, s.conns["bob"], "CAT")
	s.Require().NoError(err)
	s.True(correct)

	current, err := s.storage.GetRoom(s.ctx, room.Code)
	s.Require().NoError(err)
	s.Equal(model.CorrectGuessScore, current.GetMember("bob").GameScore)
}
