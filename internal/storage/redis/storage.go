package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/emojiguess-go/internal/model"
	"github.com/mcoot/emojiguess-go/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	// SETNX guards username uniqueness
	ok, err := s.client.SetNX(ctx, userKey(user.Username), data, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrUsernameTaken
	}

	return s.client.Set(ctx, connectionIndexKey(user.ConnectionID), string(user.Username), 0).Err()
}

func (s *Storage) GetUser(ctx context.Context, username model.Username) (*model.User, error) {
	data, err := s.client.Get(ctx, userKey(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Storage) GetUserByConnection(ctx context.Context, connID model.ConnectionID) (*model.User, error) {
	username, err := s.client.Get(ctx, connectionIndexKey(connID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	return s.GetUser(ctx, model.Username(username))
}

func (s *Storage) UpdateUserConnection(ctx context.Context, username model.Username, connID model.ConnectionID) error {
	key := userKey(username)

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return model.ErrUserNotFound
			}
			return err
		}

		var user model.User
		if err := json.Unmarshal(data, &user); err != nil {
			return err
		}

		oldConn := user.ConnectionID
		user.ConnectionID = connID

		updated, err := json.Marshal(&user)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			if oldConn != "" && oldConn != connID {
				pipe.Del(ctx, connectionIndexKey(oldConn))
			}
			pipe.Set(ctx, connectionIndexKey(connID), string(username), 0)
			return nil
		})
		return err
	}

	err := s.client.Watch(ctx, txf, key)
	if errors.Is(err, redis.TxFailedErr) {
		return model.ErrConflict
	}
	return err
}

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	key := roomKey(room.Code)
	next := room.Version + 1

	txf := func(tx *redis.Tx) error {
		var oldMembers []model.RoomMember

		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			if room.Version != 0 {
				return model.ErrConflict
			}
		case err != nil:
			return err
		default:
			var stored model.Room
			if err := json.Unmarshal(data, &stored); err != nil {
				return err
			}
			if stored.Version != room.Version {
				return model.ErrConflict
			}
			oldMembers = stored.Members
		}

		toSave := *room
		toSave.Version = next
		updated, err := json.Marshal(&toSave)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, s.cfg.RoomTTL)
			for i := range oldMembers {
				if room.GetMember(oldMembers[i].Username) == nil {
					pipe.Del(ctx, memberIndexKey(oldMembers[i].Username))
				}
			}
			for i := range room.Members {
				pipe.Set(ctx, memberIndexKey(room.Members[i].Username), string(room.Code), s.cfg.RoomTTL)
			}
			return nil
		})
		return err
	}

	err := s.client.Watch(ctx, txf, key)
	if errors.Is(err, redis.TxFailedErr) {
		return model.ErrConflict
	}
	if err != nil {
		return err
	}

	room.Version = next
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	data, err := s.client.Get(ctx, roomKey(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRoomNotFound
		}
		return nil, err
	}

	var room model.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *Storage) DeleteRoom(ctx context.Context, code model.RoomCode) error {
	room, err := s.GetRoom(ctx, code)
	if err != nil {
		if errors.Is(err, model.ErrRoomNotFound) {
			return nil
		}
		return err
	}

	pipe := s.client.Pipeline()
	for i := range room.Members {
		pipe.Del(ctx, memberIndexKey(room.Members[i].Username))
	}
	pipe.Del(ctx, roomKey(code))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) RoomExists(ctx context.Context, code model.RoomCode) (bool, error) {
	exists, err := s.client.Exists(ctx, roomKey(code)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

func (s *Storage) GetRoomCodeForUser(ctx context.Context, username model.Username) (model.RoomCode, error) {
	code, err := s.client.Get(ctx, memberIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", model.ErrNotInRoom
		}
		return "", err
	}
	return model.RoomCode(code), nil
}

// Category operations

func (s *Storage) SaveCategory(ctx context.Context, category *model.Category, words []string) error {
	data, err := json.Marshal(category)
	if err != nil {
		return err
	}

	wordsKey := categoryWordsKey(category.ID)

	pipe := s.client.Pipeline()
	pipe.Set(ctx, categoryKey(category.ID), data, 0)
	pipe.Set(ctx, categoryNameIndexKey(category.Name), string(category.ID), 0)
	pipe.Del(ctx, wordsKey)
	if len(words) > 0 {
		members := make([]interface{}, len(words))
		for i, w := range words {
			members[i] = w
		}
		pipe.RPush(ctx, wordsKey, members...)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	id, err := s.client.Get(ctx, categoryNameIndexKey(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrCategoryNotFound
		}
		return nil, err
	}

	data, err := s.client.Get(ctx, categoryKey(model.CategoryID(id))).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrCategoryNotFound
		}
		return nil, err
	}

	var category model.Category
	if err := json.Unmarshal(data, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *Storage) GetCategoryWords(ctx context.Context, id model.CategoryID) ([]string, error) {
	words, err := s.client.LRange(ctx, categoryWordsKey(id), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, model.ErrCategoryNotFound
	}
	return words, nil
}

// Room word queue operations

func (s *Storage) PushRoomWords(ctx context.Context, code model.RoomCode, words []string) error {
	if len(words) == 0 {
		return nil
	}
	members := make([]interface{}, len(words))
	for i, w := range words {
		members[i] = w
	}

	key := roomWordsKey(code)
	pipe := s.client.Pipeline()
	pipe.RPush(ctx, key, members...)
	pipe.Expire(ctx, key, s.cfg.RoomWordsTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) PopRoomWord(ctx context.Context, code model.RoomCode) (string, error) {
	word, err := s.client.LPop(ctx, roomWordsKey(code)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", model.ErrNoWordsAvailable
		}
		return "", err
	}
	return word, nil
}

func (s *Storage) DeleteRoomWords(ctx context.Context, code model.RoomCode) error {
	return s.client.Del(ctx, roomWordsKey(code)).Err()
}
