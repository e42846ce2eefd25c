package domain

import "time"

// Message is a persisted chat message. Exactly one of ReceiverID (direct
// message) or GroupID (group message) is set.
type Message struct {
	ID         string    `json:"id" bson:"_id,omitempty"`
	SenderID   string    `json:"senderId" bson:"senderId"`
	ReceiverID string    `json:"receiverId,omitempty" bson:"receiverId,omitempty"`
	GroupID    string    `json:"groupId,omitempty" bson:"groupId,omitempty"`
	Text       string    `json:"text,omitempty" bson:"text,omitempty"`
	Image      string    `json:"image,omitempty" bson:"image,omitempty"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`

	// Sender carries the denormalized sender profile when the message is
	// returned to clients. Not written back to the store.
	Sender *PublicUser `json:"sender,omitempty" bson:"-"`
}

// IsGroup reports whether the message targets a group room rather than a
// single recipient.
func (m *Message) IsGroup() bool {
	return m.GroupID != ""
}
