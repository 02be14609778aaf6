package words

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mcoot/emojiguess-go/internal/dependencies/random"
	"github.com/mcoot/emojiguess-go/internal/model"
	"github.com/mcoot/emojiguess-go/internal/storage"
)

// Service is the word supply: it owns category word pools and the per-room
// queues of preloaded round words. Each word in a room's queue is distinct
// and consumed at most once per room across the game.
type Service struct {
	storage storage.Storage
	random  random.Random
	logger  *slog.Logger
}

// New creates a new words Service
func New(storage storage.Storage, random random.Random, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		random:  random,
		logger:  logger,
	}
}

// GetCategoryByName looks up a category, returning model.ErrCategoryNotFound
// for unknown names
func (s *Service) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	return s.storage.GetCategoryByName(ctx, name)
}

// Preload draws count distinct words uniformly at random from the category
// pool and queues them for the room. Fails with model.ErrNoWordsAvailable
// if the pool is smaller than count.
func (s *Service) Preload(ctx context.Context, code model.RoomCode, categoryID model.CategoryID, count int) error {
	pool, err := s.storage.GetCategoryWords(ctx, categoryID)
	if err != nil {
		return err
	}
	if len(pool) < count {
		return model.ErrNoWordsAvailable
	}

	perm := s.random.Perm(len(pool))
	selected := make([]string, 0, count)
	for _, idx := range perm[:count] {
		selected = append(selected, pool[idx])
	}

	if err := s.storage.PushRoomWords(ctx, code, selected); err != nil {
		return err
	}

	s.logger.Info("words preloaded",
		slog.String("room_code", string(code)),
		slog.String("category_id", string(categoryID)),
		slog.Int("count", count),
	)
	return nil
}

// Dequeue pops the next round word for a room, failing with
// model.ErrNoWordsAvailable when the queue is exhausted or never preloaded
func (s *Service) Dequeue(ctx context.Context, code model.RoomCode) (string, error) {
	return s.storage.PopRoomWord(ctx, code)
}

// Discard drops any remaining queued words for a room (room deletion)
func (s *Service) Discard(ctx context.Context, code model.RoomCode) error {
	return s.storage.DeleteRoomWords(ctx, code)
}

// LoadCategory stores a named word pool, replacing any previous pool
func (s *Service) LoadCategory(ctx context.Context, name string, pool []string) error {
	category := &model.Category{
		ID:   model.CategoryID(strings.ToLower(name)),
		Name: name,
	}
	return s.storage.SaveCategory(ctx, category, pool)
}

// LoadFromFile loads one category from a file (one word per line), named
// after the file's base name
func (s *Service) LoadFromFile(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var pool []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word != "" {
			pool = append(pool, word)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return s.LoadCategory(ctx, name, pool)
}

// LoadDir loads every *.txt file in dir as a category
func (s *Service) LoadDir(ctx context.Context, dir string) error {
	paths, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return err
	}
	for _, path := range paths {
		if err := s.LoadFromFile(ctx, path); err != nil {
			return err
		}
	}
	s.logger.Info("categories loaded", slog.String("dir", dir), slog.Int("count", len(paths)))
	return nil
}
