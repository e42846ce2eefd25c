package domain

import "time"

// User is an account in the durable store. The password hash is never
// serialized to clients.
type User struct {
	ID         string    `json:"id" bson:"_id,omitempty"`
	FullName   string    `json:"fullName" bson:"fullName"`
	Email      string    `json:"email" bson:"email"`
	Password   string    `json:"-" bson:"password"`
	ProfilePic string    `json:"profilePic,omitempty" bson:"profilePic,omitempty"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updatedAt"`
}

// PublicUser is the reduced shape embedded in messages and group rosters.
type PublicUser struct {
	ID         string `json:"id" bson:"_id,omitempty"`
	FullName   string `json:"fullName" bson:"fullName"`
	ProfilePic string `json:"profilePic,omitempty" bson:"profilePic,omitempty"`
}

// Public returns the client-safe projection of a user.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, FullName: u.FullName, ProfilePic: u.ProfilePic}
}
