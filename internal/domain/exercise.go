package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise represents a single exercise definition in the bank.
type Exercise struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty"` // e.g. "Legs", "Core"
	Description string             `bson:"description,omitempty" json:"description,omitempty"`

	// VideoObjectKey is the demo video's key in object storage. Internal;
	// handlers expose presigned URLs instead.
	VideoObjectKey string `bson:"videoObjectKey,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
