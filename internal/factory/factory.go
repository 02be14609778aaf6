package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/mcoot/emojiguess-go/internal/api/handler"
	"github.com/mcoot/emojiguess-go/internal/config"
	"github.com/mcoot/emojiguess-go/internal/dependencies/clock"
	"github.com/mcoot/emojiguess-go/internal/dependencies/random"
	"github.com/mcoot/emojiguess-go/internal/gateway"
	natsgateway "github.com/mcoot/emojiguess-go/internal/gateway/nats"
	"github.com/mcoot/emojiguess-go/internal/gateway/sse"
	"github.com/mcoot/emojiguess-go/internal/services/identity"
	"github.com/mcoot/emojiguess-go/internal/services/room"
	"github.com/mcoot/emojiguess-go/internal/services/words"
	"github.com/mcoot/emojiguess-go/internal/storage"
	"github.com/mcoot/emojiguess-go/internal/storage/memory"
	"github.com/mcoot/emojiguess-go/internal/storage/postgres"
	redisstorage "github.com/mcoot/emojiguess-go/internal/storage/redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	IdentityService *identity.Service
	WordsService    *words.Service
	RoomService     *room.Service

	// Event delivery. HubManager always serves the SSE edge; Gateway is
	// either the hub manager itself or a NATS publisher, in which case
	// Subscriber relays remote events back into the hub manager.
	Gateway    gateway.Gateway
	HubManager *sse.HubManager
	Subscriber handler.RoomSubscriber

	natsGateway *natsgateway.Gateway
	wordsDir    string
}

// Config holds configuration for the application factory
type Config struct {
	// App is the full application configuration
	App *config.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.App == nil {
		return nil, errors.New("app config is required")
	}

	store, err := newStorage(cfg.App.Storage)
	if err != nil {
		return nil, err
	}

	clk := clock.New()
	rnd := random.New()

	app := newWithDependencies(store, clk, rnd, logger)
	app.wordsDir = cfg.App.Words.Dir

	if cfg.App.Gateway.Type == config.GatewayNATS {
		natsGW, err := natsgateway.New(natsgateway.Config{
			URL:           cfg.App.Gateway.NATSURL,
			MaxReconnects: cfg.App.Gateway.NATSMaxReconnects,
			ReconnectWait: cfg.App.Gateway.NATSReconnectWait,
		}, logger)
		if err != nil {
			return nil, err
		}
		app.natsGateway = natsGW
		app.Gateway = natsGW
		app.Subscriber = natsGW
	}

	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, logger *slog.Logger) *App {
	identityService := identity.New(store, clk, logger)
	wordsService := words.New(store, rnd, logger)
	roomService := room.New(store, identityService, wordsService, clk, rnd, logger)
	hubManager := sse.NewHubManager(logger)

	return &App{
		Storage:         store,
		Clock:           clk,
		Random:          rnd,
		IdentityService: identityService,
		WordsService:    wordsService,
		RoomService:     roomService,
		Gateway:         hubManager,
		HubManager:      hubManager,
	}
}

// LoadWords loads all category files from the configured directory, if any
func (a *App) LoadWords(ctx context.Context) error {
	if a.wordsDir == "" {
		return nil
	}
	return a.WordsService.LoadDir(ctx, a.wordsDir)
}

// Close releases external connections held by the app
func (a *App) Close() {
	if a.natsGateway != nil {
		a.natsGateway.Close()
	}
}

func newStorage(cfg config.StorageConfig) (storage.Storage, error) {
	switch cfg.Type {
	case config.StorageMemory, "":
		return memory.New(), nil
	case config.StorageRedis:
		redisCfg := redisstorage.DefaultConfig()
		if cfg.RedisURL != "" {
			redisCfg.URL = cfg.RedisURL
		}
		if cfg.RedisPoolSize > 0 {
			redisCfg.PoolSize = cfg.RedisPoolSize
		}
		return redisstorage.New(redisCfg)
	case config.StoragePostgres:
		return postgres.New(cfg.PostgresDSN)
	default:
		return nil, errors.New("invalid storage type: must be 'memory', 'redis' or 'postgres'")
	}
}
