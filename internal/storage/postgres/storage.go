package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mcoot/emojiguess-go/internal/model"
	"github.com/mcoot/emojiguess-go/internal/storage"
)

// Storage is a Postgres-backed implementation of the storage interface.
// Room mutations run in a transaction with an UPDATE ... WHERE version = ?
// guard; a losing writer sees zero affected rows and gets ErrConflict.
type Storage struct {
	db *gorm.DB
}

// New connects to Postgres and runs migrations
func New(dsn string) (*Storage, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&userRow{}, &categoryRow{}, &wordRow{},
		&roomRow{}, &roomMemberRow{}, &roomWordRow{},
	); err != nil {
		return nil, err
	}

	return &Storage{db: db}, nil
}

// NewWithDB wraps an existing gorm.DB (for testing)
func NewWithDB(db *gorm.DB) (*Storage, error) {
	if err := db.AutoMigrate(
		&userRow{}, &categoryRow{}, &wordRow{},
		&roomRow{}, &roomMemberRow{}, &roomWordRow{},
	); err != nil {
		return nil, err
	}
	return &Storage{db: db}, nil
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	err := s.db.WithContext(ctx).Create(rowFromUser(user)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return model.ErrUsernameTaken
	}
	return err
}

func (s *Storage) GetUser(ctx context.Context, username model.Username) (*model.User, error) {
	var row userRow
	err := s.db.WithContext(ctx).First(&row, "username = ?", string(username)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return userFromRow(&row), nil
}

func (s *Storage) GetUserByConnection(ctx context.Context, connID model.ConnectionID) (*model.User, error) {
	var row userRow
	err := s.db.WithContext(ctx).First(&row, "connection_id = ?", string(connID)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return userFromRow(&row), nil
}

func (s *Storage) UpdateUserConnection(ctx context.Context, username model.Username, connID model.ConnectionID) error {
	res := s.db.WithContext(ctx).Model(&userRow{}).
		Where("username = ?", string(username)).
		Update("connection_id", string(connID))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	next := room.Version + 1
	row, members := rowsFromRoom(room, next)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if room.Version == 0 {
			if err := tx.Create(row).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return model.ErrConflict
				}
				return err
			}
		} else {
			res := tx.Model(&roomRow{}).
				Where("room_code = ? AND version = ?", row.RoomCode, room.Version).
				Select("*").Omit("room_code", "created_at").
				Updates(row)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return model.ErrConflict
			}
			if err := tx.Where("room_code = ?", row.RoomCode).Delete(&roomMemberRow{}).Error; err != nil {
				return err
			}
		}
		if len(members) > 0 {
			if err := tx.Create(&members).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	room.Version = next
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	var row roomRow
	err := s.db.WithContext(ctx).First(&row, "room_code = ?", string(code)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}

	var members []roomMemberRow
	if err := s.db.WithContext(ctx).
		Where("room_code = ?", string(code)).
		Order("joined_at").
		Find(&members).Error; err != nil {
		return nil, err
	}

	return roomFromRows(&row, members), nil
}

func (s *Storage) DeleteRoom(ctx context.Context, code model.RoomCode) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_code = ?", string(code)).Delete(&roomMemberRow{}).Error; err != nil {
			return err
		}
		return tx.Where("room_code = ?", string(code)).Delete(&roomRow{}).Error
	})
}

func (s *Storage) RoomExists(ctx context.Context, code model.RoomCode) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&roomRow{}).
		Where("room_code = ?", string(code)).
		Count(&count).Error
	return count > 0, err
}

func (s *Storage) GetRoomCodeForUser(ctx context.Context, username model.Username) (model.RoomCode, error) {
	var row roomMemberRow
	err := s.db.WithContext(ctx).First(&row, "username = ?", string(username)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", model.ErrNotInRoom
	}
	if err != nil {
		return "", err
	}
	return model.RoomCode(row.RoomCode), nil
}

// Category operations

func (s *Storage) SaveCategory(ctx context.Context, category *model.Category, words []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := categoryRow{
			ID:        string(category.ID),
			Name:      category.Name,
			CreatedAt: category.CreatedAt,
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
			return err
		}
		if err := tx.Where("category_id = ?", row.ID).Delete(&wordRow{}).Error; err != nil {
			return err
		}
		if len(words) == 0 {
			return nil
		}
		rows := make([]wordRow, 0, len(words))
		for _, w := range words {
			rows = append(rows, wordRow{CategoryID: row.ID, Text: w})
		}
		return tx.Create(&rows).Error
	})
}

func (s *Storage) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	var row categoryRow
	err := s.db.WithContext(ctx).First(&row, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &model.Category{
		ID:        model.CategoryID(row.ID),
		Name:      row.Name,
		CreatedAt: row.CreatedAt,
	}, nil
}

func (s *Storage) GetCategoryWords(ctx context.Context, id model.CategoryID) ([]string, error) {
	var rows []wordRow
	if err := s.db.WithContext(ctx).
		Where("category_id = ?", string(id)).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, model.ErrCategoryNotFound
	}
	words := make([]string, 0, len(rows))
	for _, r := range rows {
		words = append(words, r.Text)
	}
	return words, nil
}

// Room word queue operations

func (s *Storage) PushRoomWords(ctx context.Context, code model.RoomCode, words []string) error {
	if len(words) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxPos int
		if err := tx.Model(&roomWordRow{}).
			Where("room_code = ?", string(code)).
			Select("COALESCE(MAX(position), -1)").
			Scan(&maxPos).Error; err != nil {
			return err
		}
		rows := make([]roomWordRow, 0, len(words))
		for i, w := range words {
			rows = append(rows, roomWordRow{
				RoomCode: string(code),
				Position: maxPos + 1 + i,
				Text:     w,
			})
		}
		return tx.Create(&rows).Error
	})
}

func (s *Storage) PopRoomWord(ctx context.Context, code model.RoomCode) (string, error) {
	var word string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row roomWordRow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("room_code = ?", string(code)).
			Order("position").
			First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.ErrNoWordsAvailable
		}
		if err != nil {
			return err
		}
		word = row.Text
		return tx.Delete(&roomWordRow{}, row.ID).Error
	})
	if err != nil {
		return "", err
	}
	return word, nil
}

func (s *Storage) DeleteRoomWords(ctx context.Context, code model.RoomCode) error {
	return s.db.WithContext(ctx).
		Where("room_code = ?", string(code)).
		Delete(&roomWordRow{}).Error
}

// Ping verifies database connectivity
func (s *Storage) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
