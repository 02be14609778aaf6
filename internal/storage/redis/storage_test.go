package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/emojiguess-go/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.RoomTTL = time.Hour
	cfg.RoomWordsTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) newRoom(code model.RoomCode, members ...model.Username) *model.Room {
	room := &model.Room{
		Code:          code,
		Name:          "Room1",
		CategoryID:    "animals",
		Rounds:        10,
		RoundDuration: 30,
		CreatedAt:     time.Now().UTC(),
	}
	if len(members) > 0 {
		room.Creator = members[0]
	}
	for _, m := range members {
		room.Members = append(room.Members, model.RoomMember{
			Username: m,
			Role:     model.RolePlayer,
		})
	}
	return room
}

// User tests

func (s *StorageSuite) TestCreateAndGetUser() {
	user := &model.User{
		Username:     "alice",
		PasswordHash: "hash123",
		ConnectionID: "conn_1",
		CreatedAt:    time.Now().UTC(),
	}

	err := s.storage.CreateUser(s.ctx, user)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetUser(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(user.Username, retrieved.Username)
	s.Equal(user.PasswordHash, retrieved.PasswordHash)
}

func (s *StorageSuite) TestCreateUserDuplicate() {
	s.Require().NoError(s.storage.CreateUser(s.ctx, &model.User{Username: "alice", ConnectionID: "conn_1"}))

	err := s.storage.CreateUser(s.ctx, &model.User{Username: "alice", ConnectionID: "conn_2"})
	s.ErrorIs(err, model.ErrUsernameTaken)
}

func (s *StorageSuite) TestGetUserNotFound() {
	_, err := s.storage.GetUser(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *StorageSuite) TestUpdateUserConnection() {
	s.Require().NoError(s.storage.CreateUser(s.ctx, &model.User{Username: "alice", ConnectionID: "conn_1"}))

	err := s.storage.UpdateUserConnection(s.ctx, "alice", "conn_2")
	s.Require().NoError(err)

	_, err = s.storage.GetUserByConnection(s.ctx, "conn_1")
	s.ErrorIs(err, model.ErrUserNotFound)

	retrieved, err := s.storage.GetUserByConnection(s.ctx, "conn_2")
	s.Require().NoError(err)
	s.Equal(model.Username("alice"), retrieved.Username)
}

// Room tests

func (s *StorageSuite) TestSaveRoomInsertAndVersion() {
	room := s.newRoom("ROOM01", "alice")

	err := s.storage.SaveRoom(s.ctx, room)
	s.Require().NoError(err)
	s.Equal(1, room.Version)

	retrieved, err := s.storage.GetRoom(s.ctx, "ROOM01")
	s.Require().NoError(err)
	s.Equal(1, retrieved.Version)
	s.Equal(room.Name, retrieved.Name)
}

func (s *StorageSuite) TestSaveRoomInsertConflict() {
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.newRoom("ROOM01", "alice")))

	err := s.storage.SaveRoom(s.ctx, s.newRoom("ROOM01", "bob"))
	s.ErrorIs(err, model.ErrConflict)
}

func (s *StorageSuite) TestSaveRoomStaleVersion() {
	room := s.newRoom("ROOM01", "alice")
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	first, err := s.storage.GetRoom(s.ctx, "ROOM01")
	s.Require().NoError(err)
	second, err := s.storage.GetRoom(s.ctx, "ROOM01")
	s.Require().NoError(err)

	first.GameStarted = true
	s.Require().NoError(s.storage.SaveRoom(s.ctx, first))

	second.Name = "Renamed"
	err = s.storage.SaveRoom(s.ctx, second)
	s.ErrorIs(err, model.ErrConflict)
}

func (s *StorageSuite) TestMemberIndexFollowsMembership() {
	room := s.newRoom("ROOM01", "alice", "bob")
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	code, err := s.storage.GetRoomCodeForUser(s.ctx, "bob")
	s.Require().NoError(err)
	s.Equal(model.RoomCode("ROOM01"), code)

	room.RemoveMember("bob")
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	_, err = s.storage.GetRoomCodeForUser(s.ctx, "bob")
	s.ErrorIs(err, model.ErrNotInRoom)

	_, err = s.storage.GetRoomCodeForUser(s.ctx, "alice")
	s.NoError(err)
}

func (s *StorageSuite) TestDeleteRoomClearsIndex() {
	room := s.newRoom("ROOM01", "alice", "bob")
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	s.Require().NoError(s.storage.DeleteRoom(s.ctx, "ROOM01"))

	_, err := s.storage.GetRoom(s.ctx, "ROOM01")
	s.ErrorIs(err, model.ErrRoomNotFound)

	_, err = s.storage.GetRoomCodeForUser(s.ctx, "alice")
	s.ErrorIs(err, model.ErrNotInRoom)
}

func (s *StorageSuite) TestRoomExists() {
	exists, err := s.storage.RoomExists(s.ctx, "ROOM01")
	s.Require().NoError(err)
	s.False(exists)

	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.newRoom("ROOM01", "alice")))

	exists, err = s.storage.RoomExists(s.ctx, "ROOM01")
	s.Require().NoError(err)
	s.True(exists)
}

func (s *StorageSuite) TestRoomExpiry() {
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.newRoom("ROOM01", "alice")))

	s.mini.FastForward(2 * time.Hour)

	_, err := s.storage.GetRoom(s.ctx, "ROOM01")
	s.ErrorIs(err, model.ErrRoomNotFound)
	_, err = s.storage.GetRoomCodeForUser(s.ctx, "alice")
	s.ErrorIs(err, model.ErrNotInRoom)
}

// Category tests

func (s *StorageSuite) TestSaveAndGetCategory() {
	category := &model.Category{ID: "animals", Name: "Animals"}
	err := s.storage.SaveCategory(s.ctx, category, []string{"cat", "dog"})
	s.Require().NoError(err)

	retrieved, err := s.storage.GetCategoryByName(s.ctx, "Animals")
	s.Require().NoError(err)
	s.Equal(model.CategoryID("animals"), retrieved.ID)

	words, err := s.storage.GetCategoryWords(s.ctx, "animals")
	s.Require().NoError(err)
	s.Equal([]string{"cat", "dog"}, words)
}

func (s *StorageSuite) TestGetCategoryNotFound() {
	_, err := s.storage.GetCategoryByName(s.ctx, "Plants")
	s.ErrorIs(err, model.ErrCategoryNotFound)

	_, err = s.storage.GetCategoryWords(s.ctx, "plants")
	s.ErrorIs(err, model.ErrCategoryNotFound)
}

// Room word queue tests

func (s *StorageSuite) TestRoomWordQueueFIFO() {
	s.Require().NoError(s.storage.PushRoomWords(s.ctx, "ROOM01", []string{"cat", "dog"}))

	word, err := s.storage.PopRoomWord(s.ctx, "ROOM01")
	s.Require().NoError(err)
	s.Equal("cat", word)

	word, err = s.storage.PopRoomWord(s.ctx, "ROOM01")
	s.Require().NoError(err)
	s.Equal("dog", word)

	_, err = s.storage.PopRoomWord(s.ctx, "ROOM01")
	s.ErrorIs(err, model.ErrNoWordsAvailable)
}

func (s *StorageSuite) TestDeleteRoomWords() {
	s.Require().NoError(s.storage.PushRoomWords(s.ctx, "ROOM01", []string{"cat"}))
	s.Require().NoError(s.storage.DeleteRoomWords(s.ctx, "ROOM01"))

	_, err := s.storage.PopRoomWord(s.ctx, "ROOM01")
	s.ErrorIs(err, model.ErrNoWordsAvailable)
}
