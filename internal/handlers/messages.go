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

// MessageStore is the slice of the store layer the message handler needs.
type MessageStore interface {
	Insert(ctx context.Context, msg *domain.Message) error
	Conversation(ctx context.Context, userA, userB string) ([]domain.Message, error)
	GroupHistory(ctx context.Context, groupID string) ([]domain.Message, error)
}

// GroupMembership answers durable-membership checks for authorization.
type GroupMembership interface {
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
}

// MessageHandler serves conversation history and message sends. Sends are
// persisted first and only then published to the bus, so realtime delivery
// never outruns the durable record.
type MessageHandler struct {
	users     UserStore
	messages  MessageStore
	groups    GroupMembership
	publisher pubsub.Publisher
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(users UserStore, messages MessageStore, groups GroupMembership, publisher pubsub.Publisher) *MessageHandler {
	return &MessageHandler{users: users, messages: messages, groups: groups, publisher: publisher}
}

// Sidebar lists every other user for the contact list.
func (h *MessageHandler) Sidebar(c echo.Context) error {
	users, err := h.users.ListOthers(c.Request().Context(), currentUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// History returns the direct conversation between the caller and the user in
// the path.
func (h *MessageHandler) History(c echo.Context) error {
	msgs, err := h.messages.Conversation(c.Request().Context(), currentUser(c).ID, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, msgs)
}

type sendMessageRequest struct {
	Text    string `json:"text" validate:"required_without=Image"`
	Image   string `json:"image" validate:"omitempty,url"`
	GroupID string `json:"groupId"`
}

// Send persists a message and publishes it for realtime fan-out. The path
// parameter is the receiver for a direct message; a groupId in the body
// makes it a group message instead.
func (h *MessageHandler) Send(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: err.Error()})
	}

	ctx := c.Request().Context()
	sender := currentUser(c)

	msg := &domain.Message{
		SenderID: sender.ID,
		Text:     req.Text,
		Image:    req.Image,
	}
	topic := realtime.TopicDirectMessage
	if req.GroupID != "" {
		ok, err := h.groups.IsMember(ctx, req.GroupID, sender.ID)
		if err != nil {
			return respondError(c, err)
		}
		if !ok {
			return respondError(c, domain.ErrNotGroupMember)
		}
		msg.GroupID = req.GroupID
		topic = realtime.TopicGroupMessage
	} else {
		receiverID := c.Param("id")
		if receiverID == "" {
			return c.JSON(http.StatusBadRequest, errorResponse{Message: "receiver id required"})
		}
		if _, err := h.users.GetByID(ctx, receiverID); err != nil {
			return respondError(c, err)
		}
		msg.ReceiverID = receiverID
	}

	if err := h.messages.Insert(ctx, msg); err != nil {
		return respondError(c, err)
	}

	sndr := sender.Public()
	msg.Sender = &sndr

	if err := h.publish(ctx, topic, sender.ID, msg); err != nil {
		// The message is durable; the client will see it on its next fetch
		// even though realtime fan-out was lost.
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, msg)
}

func (h *MessageHandler) publish(ctx context.Context, topic, senderID string, msg *domain.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return h.publisher.Publish(ctx, pubsub.Message{
		Topic:   topic,
		UserID:  senderID,
		Payload: payload,
	})
}

// GroupHistory returns a group's messages for its members.
func (h *MessageHandler) GroupHistory(c echo.Context) error {
	ctx := c.Request().Context()
	groupID := c.Param("id")

	ok, err := h.groups.IsMember(ctx, groupID, currentUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	if !ok {
		return respondError(c, domain.ErrNotGroupMember)
	}

	msgs, err := h.messages.GroupHistory(ctx, groupID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, msgs)
}
