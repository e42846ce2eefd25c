package testutils

import (
	"time"

	"github.com/google/uuid"

	"github.com/rakshit0111/chat-app/internal/domain"
)

// NewUser builds a user record with a unique ID and email for tests.
func NewUser(fullName string) *domain.User {
	id := uuid.NewString()
	return &domain.User{
		ID:        id,
		FullName:  fullName,
		Email:     id + "@example.com",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// NewGroup builds a group with the given admin and members.
func NewGroup(name, adminID string, memberIDs ...string) *domain.Group {
	return &domain.Group{
		ID:        uuid.NewString(),
		Name:      name,
		Admin:     adminID,
		Members:   append([]string{adminID}, memberIDs...),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// NewDirectMessage builds a direct message between two users.
func NewDirectMessage(senderID, receiverID, text string) *domain.Message {
	return &domain.Message{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		CreatedAt:  time.Now(),
	}
}

// NewGroupMessage builds a message addressed to a group.
func NewGroupMessage(senderID, groupID, text string) *domain.Message {
	return &domain.Message{
		ID:        uuid.NewString(),
		SenderID:  senderID,
		GroupID:   groupID,
		Text:      text,
		CreatedAt: time.Now(),
	}
}
