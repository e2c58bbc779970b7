package types

import "go.mongodb.org/mongo-driver/bson/primitive"

// Category is read-only reference data describing a post category.
type Category struct {
	ID primitive.ObjectID `json:"id" bson:"_id,omitempty"`

	// Category is the category name.
	Category string `json:"category" bson:"category"`

	// Image is the URL of the category's illustration.
	Image string `json:"image" bson:"image"`
}
