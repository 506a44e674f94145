package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Instructor is a trainer record linked 1:1 to a User. A user can hold a
// client login profile and an instructor record at the same time.
type Instructor struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID `bson:"userId" json:"userId"` // Unique, 1:1 with User
	Specialty      string             `bson:"specialty" json:"specialty"`
	Bio            string             `bson:"bio,omitempty" json:"bio,omitempty"`
	PhotoObjectKey string             `bson:"photoObjectKey,omitempty" json:"-"` // S3 key, internal use
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
