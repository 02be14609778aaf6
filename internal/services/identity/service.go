package identity

import (
	"context"
	"errors"
	"log/slog"
	"regexp"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/emojiguess-go/internal/dependencies/clock"
	"github.com/mcoot/emojiguess-go/internal/model"
	"github.com/mcoot/emojiguess-go/internal/storage"
)

// Errors
var (
	// ErrInvalidCredentials covers both unknown username and wrong password
	// on login, so callers cannot probe which usernames exist
	ErrInvalidCredentials = errors.New("invalid username or password")
)

var (
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,32}$`)
	passwordRe = regexp.MustCompile(`^[A-Za-z0-9@$!%*?&_-]{8,32}$`)
)

// Service is the identity bridge: it maps live connections to durable
// usernames and validates credentials. Room membership is keyed by
// Username, so rebinding a connection on login never disturbs it.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new identity Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// CreateUser registers a new account and binds it to a fresh connection id.
// The stored password is a bcrypt hash, never the plaintext.
func (s *Service) CreateUser(ctx context.Context, username, password string) (*model.User, error) {
	if !usernameRe.MatchString(username) {
		return nil, model.ErrInvalidUsername
	}
	if !passwordRe.MatchString(password) {
		return nil, model.ErrInvalidPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	user := &model.User{
		Username:     model.Username(username),
		PasswordHash: string(hash),
		ConnectionID: newConnectionID(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storage.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user created", slog.String("username", username))
	return user, nil
}

// Login verifies credentials and rebinds the user to a fresh connection id,
// supporting reconnect without losing room membership
func (s *Service) Login(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.storage.GetUser(ctx, model.Username(username))
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	connID := newConnectionID()
	if err := s.storage.UpdateUserConnection(ctx, user.Username, connID); err != nil {
		return nil, err
	}
	user.ConnectionID = connID

	s.logger.Info("user logged in", slog.String("username", username))
	return user, nil
}

// ResolveConnection maps a live connection id to its user.
// An unresolvable connection is a distinct failure from business-rule errors.
func (s *Service) ResolveConnection(ctx context.Context, connID model.ConnectionID) (*model.User, error) {
	user, err := s.storage.GetUserByConnection(ctx, connID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, model.ErrInvalidConnection
		}
		return nil, err
	}
	return user, nil
}

// GetUser looks up a user by username
func (s *Service) GetUser(ctx context.Context, username model.Username) (*model.User, error) {
	return s.storage.GetUser(ctx, username)
}

// newConnectionID generates a fresh connection binding token
func newConnectionID() model.ConnectionID {
	return model.ConnectionID("conn_" + uuid.NewString())
}
