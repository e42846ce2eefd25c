package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/rakshit0111/chat-app/internal/domain"
)

// UserStore persists user accounts and verifies credentials.
type UserStore struct {
	coll *mongo.Collection
}

// NewUserStore creates a UserStore on the shared database.
func NewUserStore(m *Mongo) *UserStore {
	return &UserStore{coll: m.db.Collection(collUsers)}
}

// Create hashes the password and inserts a new user. Returns
// domain.ErrUserAlreadyExists when the email is taken.
func (s *UserStore) Create(ctx context.Context, user *domain.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	user.ID = primitive.NewObjectID().Hex()
	user.Password = string(hash)
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := s.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

// Authenticate verifies an email/password pair and returns the matching
// user. Wrong email and wrong password both map to
// domain.ErrInvalidCredentials so callers cannot probe for accounts.
func (s *UserStore) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// GetByEmail looks a user up by email.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

// GetByID looks a user up by ID.
func (s *UserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var user domain.User
	if err := s.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ListOthers returns every user except the given one, for the sidebar.
func (s *UserStore) ListOthers(ctx context.Context, excludeID string) ([]domain.User, error) {
	cursor, err := s.coll.Find(ctx,
		bson.M{"_id": bson.M{"$ne": excludeID}},
		options.Find().SetSort(bson.D{{Key: "fullName", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}

	users := []domain.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateProfile updates the mutable profile fields and returns the fresh
// record.
func (s *UserStore) UpdateProfile(ctx context.Context, id, fullName, profilePic string) (*domain.User, error) {
	update := bson.M{"updatedAt": time.Now().UTC()}
	if fullName != "" {
		update["fullName"] = fullName
	}
	if profilePic != "" {
		update["profilePic"] = profilePic
	}

	var user domain.User
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// profileDirectory resolves user IDs to their public profiles. Satisfied by
// UserStore; the other stores hold it as an interface so their
// denormalization logic is testable without a database.
type profileDirectory interface {
	PublicByIDs(ctx context.Context, ids []string) (map[string]domain.PublicUser, error)
}

// PublicByIDs returns the client-safe projection for a set of user IDs,
// keyed by ID. Used to denormalize senders onto message histories and
// rosters onto groups.
func (s *UserStore) PublicByIDs(ctx context.Context, ids []string) (map[string]domain.PublicUser, error) {
	if len(ids) == 0 {
		return map[string]domain.PublicUser{}, nil
	}

	cursor, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}

	var users []domain.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}

	out := make(map[string]domain.PublicUser, len(users))
	for _, u := range users {
		out[u.ID] = u.Public()
	}
	return out, nil
}
