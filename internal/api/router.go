package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/emojiguess-go/internal/api/handler"
	"github.com/mcoot/emojiguess-go/internal/api/middleware"
	"github.com/mcoot/emojiguess-go/internal/gateway"
	"github.com/mcoot/emojiguess-go/internal/gateway/sse"
	basemiddleware "github.com/mcoot/emojiguess-go/internal/middleware"
	"github.com/mcoot/emojiguess-go/internal/services/identity"
	"github.com/mcoot/emojiguess-go/internal/services/room"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger          *slog.Logger
	IdentityService *identity.Service
	RoomService     *room.Service
	Gateway         gateway.Gateway
	HubManager      *sse.HubManager

	// Subscriber bridges a remote event feed into the local hub manager.
	// Nil when the hub manager is itself the gateway.
	Subscriber handler.RoomSubscriber
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	userHandler := handler.NewUserHandler(cfg.IdentityService, cfg.RoomService, cfg.Gateway)
	roomHandler := handler.NewRoomHandler(cfg.RoomService, cfg.Gateway)
	gameHandler := handler.NewGameHandler(cfg.RoomService, cfg.IdentityService, cfg.Gateway)
	eventsHandler := handler.NewEventsHandler(cfg.RoomService, cfg.HubManager, cfg.Subscriber)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.IdentityService)
	loggingMiddleware := basemiddleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// User routes (no auth required for registering/logging in)
	api.HandleFunc("/users", userHandler.CreateUser).Methods(http.MethodPost)
	api.HandleFunc("/users/login", userHandler.Login).Methods(http.MethodPost)

	// Protected user routes
	userProtected := api.PathPrefix("/users").Subrouter()
	userProtected.Use(authMiddleware)
	userProtected.HandleFunc("/me", userHandler.GetMe).Methods(http.MethodGet)
	userProtected.HandleFunc("/{username}", userHandler.GetUser).Methods(http.MethodGet)

	// Room routes (all require auth). Mutating in-game routes address the
	// caller's current room implicitly; only join names a code.
	rooms := api.PathPrefix("/rooms").Subrouter()
	rooms.Use(authMiddleware)
	rooms.HandleFunc("", roomHandler.Create).Methods(http.MethodPost)
	rooms.HandleFunc("/leave", roomHandler.Leave).Methods(http.MethodPost)
	rooms.HandleFunc("/start", gameHandler.Start).Methods(http.MethodPost)
	rooms.HandleFunc("/commander", gameHandler.Commander).Methods(http.MethodPost)
	rooms.HandleFunc("/word", gameHandler.Word).Methods(http.MethodPost)
	rooms.HandleFunc("/emojis", gameHandler.SendEmojis).Methods(http.MethodPost)
	rooms.HandleFunc("/guess", gameHandler.Guess).Methods(http.MethodPost)
	rooms.HandleFunc("/results", gameHandler.Results).Methods(http.MethodPost)
	rooms.HandleFunc("/events", eventsHandler.Subscribe).Methods(http.MethodGet)
	rooms.HandleFunc("/{code}/join", roomHandler.Join).Methods(http.MethodPost)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
