package server

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/rakshit0111/chat-app/internal/auth"
	"github.com/rakshit0111/chat-app/internal/config"
	"github.com/rakshit0111/chat-app/internal/logging"
	"github.com/rakshit0111/chat-app/internal/pubsub"
	"github.com/rakshit0111/chat-app/internal/realtime"
	"github.com/rakshit0111/chat-app/internal/store"
)

// Server holds the dependencies for the HTTP server and the realtime layer.
type Server struct {
	E        *echo.Echo
	Cfg      *config.Config
	Mongo    *store.Mongo
	Bus      *pubsub.WatermillBridge
	Realtime *realtime.Service

	tokens   *auth.TokenManager
	users    *store.UserStore
	messages *store.MessageStore
	groups   *store.GroupStore
}

// New creates a fully wired Server instance.
func New() *Server {
	logging.New()
	cfg := config.New()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mongo, err := store.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}

	users := store.NewUserStore(mongo)
	messages := store.NewMessageStore(mongo, users)
	groups := store.NewGroupStore(mongo, users)

	// One in-memory bus instance connects the REST layer to the realtime
	// router; the router is the only subscriber per topic, which keeps
	// delivery order aligned with publish order.
	bus := pubsub.NewWatermillBridge()
	rt := realtime.NewService()
	if _, err := realtime.NewRouter(context.Background(), rt, bus); err != nil {
		slog.Error("Failed to subscribe realtime router", "error", err)
		os.Exit(1)
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = newRequestValidator()
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.AllowOrigin},
		AllowCredentials: true,
	}))

	s := &Server{
		E:        e,
		Cfg:      cfg,
		Mongo:    mongo,
		Bus:      bus,
		Realtime: rt,
		tokens:   auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL),
		users:    users,
		messages: messages,
		groups:   groups,
	}
	s.RegisterRoutes()
	return s
}

// UserStore is a getter for the server's user store, useful for testing.
func (s *Server) UserStore() *store.UserStore {
	return s.users
}
