package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a published blog entry.
type Post struct {
	// ID is the unique identifier of the post.
	ID primitive.ObjectID `json:"id" bson:"_id,omitempty"`

	// Username is the author's username.
	Username string `json:"username" bson:"username"`

	// Title is the post headline.
	Title string `json:"title" bson:"title"`

	// Message is the post body.
	Message string `json:"message" bson:"message"`

	// Image is an optional URL of an attached picture.
	Image string `json:"image" bson:"image,omitempty"`

	// Date is the publication time.
	Date time.Time `json:"date" bson:"date"`

	// Category is an optional category name.
	Category string `json:"category" bson:"category,omitempty"`

	// Likes holds the usernames of users that liked the post. A username
	// appears at most once.
	Likes []string `json:"likes" bson:"likes"`

	// Comments is the append-only list of free-form comment records.
	Comments []Comment `json:"comments" bson:"comments"`
}

// Comment is a free-form comment record. Clients control its shape; the
// server only appends it to a post.
type Comment map[string]any

// PostUpdate carries the editable fields of a post.
type PostUpdate struct {
	Title    string `json:"title" bson:"title"`
	Message  string `json:"message" bson:"message"`
	Image    string `json:"image" bson:"image,omitempty"`
	Category string `json:"category" bson:"category,omitempty"`
}
