package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rakshit0111/chat-app/internal/domain"
	"github.com/rakshit0111/chat-app/internal/pubsub"
	"github.com/rakshit0111/chat-app/internal/realtime"
)

// GroupStore is the slice of the store layer the group handler needs.
type GroupStore interface {
	Create(ctx context.Context, g *domain.Group) error
	ForUser(ctx context.Context, userID string) ([]domain.Group, error)
	GetByID(ctx context.Context, id string) (*domain.Group, error)
	Update(ctx context.Context, id, name, description, profilePic string) (*domain.Group, error)
	AddMember(ctx context.Context, groupID, memberID string) (*domain.Group, error)
	RemoveMember(ctx context.Context, groupID, memberID string) (*domain.Group, error)
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
}

// GroupHandler serves group CRUD and membership changes. Every mutation
// publishes the updated record after the write so subscribed members see the
// change live.
type GroupHandler struct {
	groups    GroupStore
	publisher pubsub.Publisher
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(groups GroupStore, publisher pubsub.Publisher) *GroupHandler {
	return &GroupHandler{groups: groups, publisher: publisher}
}

type createGroupRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Members     []string `json:"members"`
	ProfilePic  string   `json:"profilePic" validate:"omitempty,url"`
}

// Create creates a group with the caller as admin.
func (h *GroupHandler) Create(c echo.Context) error {
	var req createGroupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: err.Error()})
	}

	group := &domain.Group{
		Name:        req.Name,
		Description: req.Description,
		Members:     req.Members,
		Admin:       currentUser(c).ID,
		ProfilePic:  req.ProfilePic,
	}
	if err := h.groups.Create(c.Request().Context(), group); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, group)
}

// List returns every group the caller belongs to.
func (h *GroupHandler) List(c echo.Context) error {
	groups, err := h.groups.ForUser(c.Request().Context(), currentUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, groups)
}

// Get returns one group. Non-members get a 404, not a membership hint.
func (h *GroupHandler) Get(c echo.Context) error {
	group, err := h.groups.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	if !group.HasMember(currentUser(c).ID) {
		return respondError(c, domain.ErrNotFound)
	}
	return c.JSON(http.StatusOK, group)
}

type updateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ProfilePic  string `json:"profilePic" validate:"omitempty,url"`
}

// Update changes group metadata. Admin only.
func (h *GroupHandler) Update(c echo.Context) error {
	var req updateGroupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: err.Error()})
	}

	ctx := c.Request().Context()
	group, err := h.requireAdmin(ctx, c.Param("id"), currentUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}

	updated, err := h.groups.Update(ctx, group.ID, req.Name, req.Description, req.ProfilePic)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.publishUpdated(ctx, updated); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

type memberRequest struct {
	MemberID string `json:"memberId" validate:"required"`
}

// AddMember adds a user to the group. Admin only.
func (h *GroupHandler) AddMember(c echo.Context) error {
	var req memberRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: err.Error()})
	}

	ctx := c.Request().Context()
	group, err := h.requireAdmin(ctx, c.Param("id"), currentUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	if group.HasMember(req.MemberID) {
		return respondError(c, domain.ErrAlreadyMember)
	}

	updated, err := h.groups.AddMember(ctx, group.ID, req.MemberID)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.publishUpdated(ctx, updated); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// RemoveMember removes a user from the group. The admin can remove anyone
// but themselves; everyone else can only remove themselves.
func (h *GroupHandler) RemoveMember(c echo.Context) error {
	var req memberRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: err.Error()})
	}

	ctx := c.Request().Context()
	callerID := currentUser(c).ID

	group, err := h.groups.GetByID(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	isAdmin := group.Admin == callerID
	isSelfRemoval := req.MemberID == callerID
	if !isAdmin && !isSelfRemoval {
		return respondError(c, domain.ErrNotGroupAdmin)
	}
	if req.MemberID == group.Admin {
		return respondError(c, domain.ErrAdminRemoval)
	}

	updated, err := h.groups.RemoveMember(ctx, group.ID, req.MemberID)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.publishUpdated(ctx, updated); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *GroupHandler) requireAdmin(ctx context.Context, groupID, userID string) (*domain.Group, error) {
	group, err := h.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.Admin != userID {
		return nil, domain.ErrNotGroupAdmin
	}
	return group, nil
}

func (h *GroupHandler) publishUpdated(ctx context.Context, group *domain.Group) error {
	payload, err := json.Marshal(group)
	if err != nil {
		return err
	}
	return h.publisher.Publish(ctx, pubsub.Message{
		Topic:   realtime.TopicGroupUpdated,
		Payload: payload,
	})
}
