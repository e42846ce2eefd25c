package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rakshit0111/chat-app/internal/domain"
	"github.com/rakshit0111/chat-app/internal/middleware"
)

// errorResponse is the uniform error body for the API.
type errorResponse struct {
	Message string `json:"message"`
}

// respondError maps domain sentinel errors to status codes. Anything
// unrecognized is logged and answered as a 500 without leaking internals.
func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, errorResponse{Message: err.Error()})
	case errors.Is(err, domain.ErrUserAlreadyExists),
		errors.Is(err, domain.ErrAlreadyMember),
		errors.Is(err, domain.ErrAdminRemoval):
		return c.JSON(http.StatusBadRequest, errorResponse{Message: err.Error()})
	case errors.Is(err, domain.ErrNotGroupMember),
		errors.Is(err, domain.ErrNotGroupAdmin):
		return c.JSON(http.StatusForbidden, errorResponse{Message: err.Error()})
	default:
		slog.Error("request failed", "path", c.Path(), "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "internal server error"})
	}
}

// currentUser pulls the authenticated user the middleware put on the
// context. Handlers behind the auth middleware can rely on it being set.
func currentUser(c echo.Context) *domain.User {
	user, _ := c.Get(middleware.UserContextKey).(*domain.User)
	return user
}
