package memory

import (
	"context"
	"sync"

	"github.com/mcoot/emojiguess-go/internal/model"
	"github.com/mcoot/emojiguess-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	users           map[model.Username]*model.User
	connectionIndex map[model.ConnectionID]model.Username
	rooms           map[model.RoomCode]*model.Room
	memberIndex     map[model.Username]model.RoomCode
	categories      map[model.CategoryID]*model.Category
	categoryNames   map[string]model.CategoryID
	categoryWords   map[model.CategoryID][]string
	roomWords       map[model.RoomCode][]string
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:           make(map[model.Username]*model.User),
		connectionIndex: make(map[model.ConnectionID]model.Username),
		rooms:           make(map[model.RoomCode]*model.Room),
		memberIndex:     make(map[model.Username]model.RoomCode),
		categories:      make(map[model.CategoryID]*model.Category),
		categoryNames:   make(map[string]model.CategoryID),
		categoryWords:   make(map[model.CategoryID][]string),
		roomWords:       make(map[model.RoomCode][]string),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Username]; ok {
		return model.ErrUsernameTaken
	}
	u := *user
	s.users[user.Username] = &u
	s.connectionIndex[user.ConnectionID] = user.Username
	return nil
}

func (s *Storage) GetUser(ctx context.Context, username model.Username) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[username]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

func (s *Storage) GetUserByConnection(ctx context.Context, connID model.ConnectionID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	username, ok := s.connectionIndex[connID]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	user, ok := s.users[username]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

func (s *Storage) UpdateUserConnection(ctx context.Context, username model.Username, connID model.ConnectionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[username]
	if !ok {
		return model.ErrUserNotFound
	}
	delete(s.connectionIndex, user.ConnectionID)
	user.ConnectionID = connID
	s.connectionIndex[connID] = username
	return nil
}

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.rooms[room.Code]
	if room.Version == 0 {
		if exists {
			return model.ErrConflict
		}
	} else {
		if !exists || stored.Version != room.Version {
			return model.ErrConflict
		}
	}

	// Drop index entries for members no longer in the room
	if exists {
		for i := range stored.Members {
			if room.GetMember(stored.Members[i].Username) == nil {
				delete(s.memberIndex, stored.Members[i].Username)
			}
		}
	}

	room.Version++
	s.rooms[room.Code] = copyRoom(room)
	for i := range room.Members {
		s.memberIndex[room.Members[i].Username] = room.Code
	}
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[code]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return copyRoom(room), nil
}

func (s *Storage) DeleteRoom(ctx context.Context, code model.RoomCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[code]
	if !ok {
		return nil
	}
	for i := range room.Members {
		delete(s.memberIndex, room.Members[i].Username)
	}
	delete(s.rooms, code)
	return nil
}

func (s *Storage) RoomExists(ctx context.Context, code model.RoomCode) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[code]
	return ok, nil
}

func (s *Storage) GetRoomCodeForUser(ctx context.Context, username model.Username) (model.RoomCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	code, ok := s.memberIndex[username]
	if !ok {
		return "", model.ErrNotInRoom
	}
	return code, nil
}

// Category operations

func (s *Storage) SaveCategory(ctx context.Context, category *model.Category, words []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *category
	s.categories[category.ID] = &c
	s.categoryNames[category.Name] = category.ID
	s.categoryWords[category.ID] = append([]string(nil), words...)
	return nil
}

func (s *Storage) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.categoryNames[name]
	if !ok {
		return nil, model.ErrCategoryNotFound
	}
	c := *s.categories[id]
	return &c, nil
}

func (s *Storage) GetCategoryWords(ctx context.Context, id model.CategoryID) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	words, ok := s.categoryWords[id]
	if !ok {
		return nil, model.ErrCategoryNotFound
	}
	return append([]string(nil), words...), nil
}

// Room word queue operations

func (s *Storage) PushRoomWords(ctx context.Context, code model.RoomCode, words []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roomWords[code] = append(s.roomWords[code], words...)
	return nil
}

func (s *Storage) PopRoomWord(ctx context.Context, code model.RoomCode) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	queue := s.roomWords[code]
	if len(queue) == 0 {
		return "", model.ErrNoWordsAvailable
	}
	word := queue[0]
	s.roomWords[code] = queue[1:]
	return word, nil
}

func (s *Storage) DeleteRoomWords(ctx context.Context, code model.RoomCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.roomWords, code)
	return nil
}

// copyRoom returns a deep copy so callers cannot mutate stored state and
// bypass the version check on SaveRoom
func copyRoom(room *model.Room) *model.Room {
	r := *room
	r.Members = append([]model.RoomMember(nil), room.Members...)
	if room.EmojisSentAt != nil {
		t := *room.EmojisSentAt
		r.EmojisSentAt = &t
	}
	return &r
}
