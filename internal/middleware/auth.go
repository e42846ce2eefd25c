package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rakshit0111/chat-app/internal/auth"
	"github.com/rakshit0111/chat-app/internal/domain"
)

// UserContextKey is where the authenticated user is stored on the echo
// context for downstream handlers.
const UserContextKey = "user"

// UserGetter is the slice of the user store the middleware needs.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// Auth protects routes that require an authenticated user. It validates the
// JWT from the auth cookie and loads the user it names. Failures answer 401;
// this is an API, not a browser flow, so there is no redirect.
func Auth(tokens *auth.TokenManager, cookieName string, users UserGetter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"message": "not authenticated"})
			}

			claims, err := tokens.Validate(cookie.Value)
			if err != nil {
				// Clear the invalid cookie so the client stops sending it.
				c.SetCookie(&http.Cookie{
					Name:     cookieName,
					Value:    "",
					Path:     "/",
					MaxAge:   -1,
					HttpOnly: true,
				})
				return c.JSON(http.StatusUnauthorized, map[string]string{"message": "invalid or expired token"})
			}

			user, err := users.GetByID(c.Request().Context(), claims.UserID)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"message": "user no longer exists"})
			}

			c.Set(UserContextKey, user)
			return next(c)
		}
	}
}
