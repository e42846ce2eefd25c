package domain

import "time"

// Group is a durable group conversation. Members is the authoritative
// membership record; realtime room subscription is tracked separately by the
// realtime layer and may be a subset of this list.
type Group struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Members     []string  `json:"members" bson:"members"`
	Admin       string    `json:"admin" bson:"admin"`
	ProfilePic  string    `json:"profilePic,omitempty" bson:"profilePic,omitempty"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`

	// MemberProfiles and AdminProfile carry the denormalized public profiles
	// when the group is returned to clients. Not written back to the store.
	MemberProfiles []PublicUser `json:"memberProfiles,omitempty" bson:"-"`
	AdminProfile   *PublicUser  `json:"adminProfile,omitempty" bson:"-"`
}

// HasMember reports whether userID is in the durable membership list.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}
