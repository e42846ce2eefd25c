package store

import (
	"context"
	"time"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rakshit0111/chat-app/internal/domain"
)

// MessageStore persists chat messages, direct and group alike.
type MessageStore struct {
	coll  *mongo.Collection
	users profileDirectory
}

// NewMessageStore creates a MessageStore on the shared database.
func NewMessageStore(m *Mongo, users *UserStore) *MessageStore {
	return &MessageStore{coll: m.db.Collection(collMessages), users: users}
}

// Insert assigns an ID and creation time and writes the message.
func (s *MessageStore) Insert(ctx context.Context, msg *domain.Message) error {
	msg.ID = primitive.NewObjectID().Hex()
	msg.CreatedAt = time.Now().UTC()

	_, err := s.coll.InsertOne(ctx, msg)
	return err
}

// Conversation returns the direct-message history between two users in
// chronological order, with sender profiles attached.
func (s *MessageStore) Conversation(ctx context.Context, userA, userB string) ([]domain.Message, error) {
	filter := bson.M{"$or": []bson.M{
		{"senderId": userA, "receiverId": userB},
		{"senderId": userB, "receiverId": userA},
	}}
	return s.find(ctx, filter)
}

// GroupHistory returns a group's messages in chronological order, with
// sender profiles attached.
func (s *MessageStore) GroupHistory(ctx context.Context, groupID string) ([]domain.Message, error) {
	return s.find(ctx, bson.M{"groupId": groupID})
}

func (s *MessageStore) find(ctx context.Context, filter bson.M) ([]domain.Message, error) {
	cursor, err := s.coll.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}

	msgs := []domain.Message{}
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, err
	}
	return msgs, s.attachSenders(ctx, msgs)
}

// attachSenders resolves the distinct sender IDs in one query and
// denormalizes each sender's public profile onto the messages.
func (s *MessageStore) attachSenders(ctx context.Context, msgs []domain.Message) error {
	senderIDs := lo.Uniq(lo.Map(msgs, func(m domain.Message, _ int) string {
		return m.SenderID
	}))

	profiles, err := s.users.PublicByIDs(ctx, senderIDs)
	if err != nil {
		return err
	}

	for i := range msgs {
		if p, ok := profiles[msgs[i].SenderID]; ok {
			sender := p
			msgs[i].Sender = &sender
		}
	}
	return nil
}
