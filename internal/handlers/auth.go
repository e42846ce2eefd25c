package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rakshit0111/chat-app/internal/auth"
	"github.com/rakshit0111/chat-app/internal/domain"
)

// UserStore is the slice of the store layer the auth handler needs.
type UserStore interface {
	Create(ctx context.Context, user *domain.User, password string) error
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	ListOthers(ctx context.Context, excludeID string) ([]domain.User, error)
	UpdateProfile(ctx context.Context, id, fullName, profilePic string) (*domain.User, error)
}

// AuthHandler handles signup, login and profile requests.
type AuthHandler struct {
	users      UserStore
	tokens     *auth.TokenManager
	cookieName string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users UserStore, tokens *auth.TokenManager, cookieName string) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, cookieName: cookieName}
}

type signupRequest struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Signup creates an account and logs the new user straight in.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: err.Error()})
	}

	user := &domain.User{FullName: req.FullName, Email: req.Email}
	if err := h.users.Create(c.Request().Context(), user, req.Password); err != nil {
		return respondError(c, err)
	}

	if err := h.issueCookie(c, user.ID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login verifies credentials and sets the auth cookie.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: err.Error()})
	}

	user, err := h.users.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.issueCookie(c, user.ID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// Logout clears the auth cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	return c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}

// Check returns the authenticated user, letting clients restore a session.
func (h *AuthHandler) Check(c echo.Context) error {
	return c.JSON(http.StatusOK, currentUser(c))
}

type updateProfileRequest struct {
	FullName   string `json:"fullName"`
	ProfilePic string `json:"profilePic" validate:"omitempty,url"`
}

// UpdateProfile updates the caller's profile fields. The picture is an
// opaque URL; this service never hosts images.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: err.Error()})
	}

	user, err := h.users.UpdateProfile(c.Request().Context(), currentUser(c).ID, req.FullName, req.ProfilePic)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) issueCookie(c echo.Context, userID string) error {
	token, err := h.tokens.Generate(userID)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.tokens.TTL()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
