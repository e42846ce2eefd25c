package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rakshit0111/chat-app/internal/handlers"
	"github.com/rakshit0111/chat-app/internal/middleware"
	"github.com/rakshit0111/chat-app/internal/realtime"
)

// RegisterRoutes sets up all the application routes.
func (s *Server) RegisterRoutes() {
	authHandler := handlers.NewAuthHandler(s.users, s.tokens, s.Cfg.CookieName)
	messageHandler := handlers.NewMessageHandler(s.users, s.messages, s.groups, s.Bus)
	groupHandler := handlers.NewGroupHandler(s.groups, s.Bus)
	gateway := realtime.NewGateway(s.Realtime)

	requireAuth := middleware.Auth(s.tokens, s.Cfg.CookieName, s.users)

	api := s.E.Group("/api")

	authAPI := api.Group("/auth")
	authAPI.POST("/signup", authHandler.Signup)
	authAPI.POST("/login", authHandler.Login)
	authAPI.POST("/logout", authHandler.Logout)
	authAPI.GET("/check", authHandler.Check, requireAuth)
	authAPI.PUT("/profile", authHandler.UpdateProfile, requireAuth)

	messagesAPI := api.Group("/messages", requireAuth)
	messagesAPI.GET("/users", messageHandler.Sidebar)
	messagesAPI.GET("/:id", messageHandler.History)
	messagesAPI.POST("/send/:id", messageHandler.Send)
	messagesAPI.POST("/send", messageHandler.Send) // group messages carry groupId in the body

	groupsAPI := api.Group("/groups", requireAuth)
	groupsAPI.POST("", groupHandler.Create)
	groupsAPI.GET("", groupHandler.List)
	groupsAPI.GET("/:id", groupHandler.Get)
	groupsAPI.PUT("/:id", groupHandler.Update)
	groupsAPI.POST("/:id/members", groupHandler.AddMember)
	groupsAPI.DELETE("/:id/members", groupHandler.RemoveMember)
	groupsAPI.GET("/:id/messages", messageHandler.GroupHistory)

	s.E.GET("/ws", gateway.Handler(), requireAuth)

	s.E.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
}
