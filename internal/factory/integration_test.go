package factory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/emojiguess-go/internal/model"
)

// IntegrationSuite plays full games through the wired services
type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context

	conns map[string]model.ConnectionID
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
	s.Require().NoError(s.app.LoadTestCategories(s.ctx))

	s.conns = make(map[string]model.ConnectionID)
	for _, name := range []string{"alice", "bob", "carol"} {
		user, err := s.app.IdentityService.CreateUser(s.ctx, name, "password123")
		s.Require().NoError(err)
		s.conns[name] = user.ConnectionID
	}
}

func (s *IntegrationSuite) TestTestCategoriesCoverMaxRounds() {
	for _, name := range []string{"Animals", "Food", "Movies"} {
		category, err := s.app.WordsService.GetCategoryByName(s.ctx, name)
		s.Require().NoError(err)

		words, err := s.app.Storage.GetCategoryWords(s.ctx, category.ID)
		s.Require().NoError(err)
		s.GreaterOrEqual(len(words), model.MaxRounds, "category %s", name)
	}
}

func (s *IntegrationSuite) TestTwoFullRounds() {
	s.app.MockRandom.QueueString("GAME01")
	room, err := s.app.RoomService.CreateRoom(s.ctx, s.conns["alice"], "Game Night", "Food", 10, 30)
	s.Require().NoError(err)

	_, err = s.app.RoomService.JoinRoom(s.ctx, s.conns["bob"], room.Code)
	s.Require().NoError(err)
	_, err = s.app.RoomService.JoinRoom(s.ctx, s.conns["carol"], room.Code)
	s.Require().NoError(err)

	_, err = s.app.RoomService.StartGame(s.ctx, s.conns["alice"])
	s.Require().NoError(err)

	scores := map[model.Username]int{}
	for round := 1; round <= 2; round++ {
		s.app.MockRandom.QueueIntn(0) // alice commands both rounds
		commander, got, _, err := s.app.RoomService.GetCommander(s.ctx, s.conns["bob"])
		s.Require().NoError(err)
		s.Equal(model.Username("alice"), commander)
		s.Equal(round, got)

		word, _, err := s.app.RoomService.GetWord(s.ctx, s.conns["alice"])
		s.Require().NoError(err)
		s.NotEmpty(word)

		_, err = s.app.RoomService.SendEmojis(s.ctx, s.conns["alice"])
		s.Require().NoError(err)

		// bob guesses right, carol wrong
		correct, _, err := s.app.RoomService.CheckWord(s.ctx, s.conns["bob"], word)
		s.Require().NoError(err)
		s.True(correct)
		correct, _, err = s.app.RoomService.CheckWord(s.ctx, s.conns["carol"], "definitely wrong")
		s.Require().NoError(err)
		s.False(correct)

		results, nextRound, _, err := s.app.RoomService.GetResults(s.ctx, s.conns["carol"])
		s.Require().NoError(err)
		s.True(nextRound)
		for _, r := range results {
			scores[r.Username] = r.GameScore
		}
	}

	// Scores accumulate across rounds
	s.Equal(2*model.CorrectGuessScore, scores["bob"])
	s.Equal(0, scores["alice"])
	s.Equal(0, scores["carol"])
}

func (s *IntegrationSuite) TestWordsAreDrawnWithoutReplacement() {
	s.app.MockRandom.QueueString("GAME01")
	room, err := s.app.RoomService.CreateRoom(s.ctx, s.conns["alice"], "Game Night", "Animals", 10, 30)
	s.Require().NoError(err)

	_, err = s.app.RoomService.JoinRoom(s.ctx, s.conns["bob"], room.Code)
	s.Require().NoError(err)
	_, err = s.app.RoomService.JoinRoom(s.ctx, s.conns["carol"], room.Code)
	s.Require().NoError(err)
	_, err = s.app.RoomService.StartGame(s.ctx, s.conns["alice"])
	s.Require().NoError(err)

	seen := map[string]bool{}
	for round := 1; round <= 3; round++ {
		s.app.MockRandom.QueueIntn(0)
		_, _, _, err := s.app.RoomService.GetCommander(s.ctx, s.conns["alice"])
		s.Require().NoError(err)

		word, _, err := s.app.RoomService.GetWord(s.ctx, s.conns["alice"])
		s.Require().NoError(err)
		s.False(seen[word], "word %q repeated", word)
		seen[word] = true

		_, err = s.app.RoomService.SendEmojis(s.ctx, s.conns["alice"])
		s.Require().NoError(err)
		_, _, err = s.app.RoomService.CheckWord(s.ctx, s.conns["bob"], word)
		s.Require().NoError(err)
		_, _, err = s.app.RoomService.CheckWord(s.ctx, s.conns["carol"], word)
		s.Require().NoError(err)
		_, _, _, err = s.app.RoomService.GetResults(s.ctx, s.conns["bob"])
		s.Require().NoError(err)
	}
}

func TestFactoryRequiresConfig(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}
