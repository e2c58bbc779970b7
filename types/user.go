package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account in the system.
// It contains identity, profile, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID primitive.ObjectID `json:"id" bson:"_id,omitempty"`

	// Username is the unique name chosen by the user. Followers and likes
	// reference users by this value.
	Username string `json:"username" bson:"username"`

	// Email is the user's email address, unique across accounts.
	Email string `json:"email" bson:"email"`

	// PasswordHash stores the hashed representation of the user's password.
	// It is empty for accounts created through federated sign-in and is
	// never exposed in API responses.
	PasswordHash string `json:"-" bson:"password_hash,omitempty"`

	// Description is the free-form profile text.
	Description string `json:"description" bson:"description,omitempty"`

	// Image is the URL of the user's profile picture.
	Image string `json:"image" bson:"image"`

	// Followers holds the usernames of users following this account.
	// It never contains the account's own username.
	Followers []string `json:"followers" bson:"followers"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" bson:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}
