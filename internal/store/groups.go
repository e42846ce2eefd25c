package store

import (
	"context"
	"errors"
	"time"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rakshit0111/chat-app/internal/domain"
)

// GroupStore persists durable group membership and metadata. This is the
// authoritative record; live room subscription is tracked separately by the
// realtime layer. Reads denormalize each member's public profile so clients
// render rosters without extra lookups.
type GroupStore struct {
	coll  *mongo.Collection
	users profileDirectory
}

// NewGroupStore creates a GroupStore on the shared database.
func NewGroupStore(m *Mongo, users *UserStore) *GroupStore {
	return &GroupStore{coll: m.db.Collection(collGroups), users: users}
}

// Create inserts a new group. The admin is always included in the member
// list and members are de-duplicated.
func (s *GroupStore) Create(ctx context.Context, g *domain.Group) error {
	now := time.Now().UTC()
	g.ID = primitive.NewObjectID().Hex()
	g.Members = lo.Uniq(append(g.Members, g.Admin))
	g.CreatedAt = now
	g.UpdatedAt = now

	if _, err := s.coll.InsertOne(ctx, g); err != nil {
		return err
	}
	return s.attachRoster(ctx, g)
}

// ForUser lists every group the user is a member of.
func (s *GroupStore) ForUser(ctx context.Context, userID string) ([]domain.Group, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"members": userID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}

	groups := []domain.Group{}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, s.attachRosters(ctx, groups)
}

// GetByID returns a group by ID. Returns domain.ErrNotFound when it does
// not exist.
func (s *GroupStore) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	var g domain.Group
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &g, s.attachRoster(ctx, &g)
}

// IsMember reports whether the user is in the group's durable member list.
func (s *GroupStore) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	err := s.coll.FindOne(ctx, bson.M{"_id": groupID, "members": userID},
		options.FindOne().SetProjection(bson.M{"_id": 1}),
	).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Update sets the group's mutable metadata and returns the fresh record.
func (s *GroupStore) Update(ctx context.Context, id, name, description, profilePic string) (*domain.Group, error) {
	update := bson.M{"updatedAt": time.Now().UTC()}
	if name != "" {
		update["name"] = name
	}
	if description != "" {
		update["description"] = description
	}
	if profilePic != "" {
		update["profilePic"] = profilePic
	}
	return s.findOneAndUpdate(ctx, id, bson.M{"$set": update})
}

// AddMember adds a user to the member list. $addToSet keeps the operation
// idempotent at the store level.
func (s *GroupStore) AddMember(ctx context.Context, groupID, memberID string) (*domain.Group, error) {
	return s.findOneAndUpdate(ctx, groupID, bson.M{
		"$addToSet": bson.M{"members": memberID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	})
}

// RemoveMember removes a user from the member list.
func (s *GroupStore) RemoveMember(ctx context.Context, groupID, memberID string) (*domain.Group, error) {
	return s.findOneAndUpdate(ctx, groupID, bson.M{
		"$pull": bson.M{"members": memberID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
}

func (s *GroupStore) findOneAndUpdate(ctx context.Context, id string, update bson.M) (*domain.Group, error) {
	var g domain.Group
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&g)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &g, s.attachRoster(ctx, &g)
}

// attachRoster resolves the group's member and admin profiles in one query
// and denormalizes them onto the record.
func (s *GroupStore) attachRoster(ctx context.Context, g *domain.Group) error {
	groups := []domain.Group{*g}
	if err := s.attachRosters(ctx, groups); err != nil {
		return err
	}
	*g = groups[0]
	return nil
}

// attachRosters does the same for a batch with a single profile lookup.
// Members the user store no longer knows are kept in Members but skipped in
// MemberProfiles.
func (s *GroupStore) attachRosters(ctx context.Context, groups []domain.Group) error {
	var ids []string
	for _, g := range groups {
		ids = append(ids, g.Members...)
		ids = append(ids, g.Admin)
	}

	profiles, err := s.users.PublicByIDs(ctx, lo.Uniq(ids))
	if err != nil {
		return err
	}

	for i := range groups {
		roster := make([]domain.PublicUser, 0, len(groups[i].Members))
		for _, memberID := range groups[i].Members {
			if p, ok := profiles[memberID]; ok {
				roster = append(roster, p)
			}
		}
		groups[i].MemberProfiles = roster

		if p, ok := profiles[groups[i].Admin]; ok {
			admin := p
			groups[i].AdminProfile = &admin
		}
	}
	return nil
}
