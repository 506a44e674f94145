package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Routine is an instructor-owned workout program composed of Exercises.
// ClientIDs holds the profile IDs of enrolled clients; this enrollment set
// is independent of the Membership entity despite the naming overlap in
// the studio's vocabulary.
type Routine struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name            string               `bson:"name" json:"name"`
	Description     string               `bson:"description" json:"description"`
	InstructorID    primitive.ObjectID   `bson:"instructorId" json:"instructorId"`
	DurationMinutes int                  `bson:"durationMinutes" json:"durationMinutes"`
	ClientIDs       []primitive.ObjectID `bson:"clientIds,omitempty" json:"clientIds,omitempty"`
	CreatedAt       time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// HasClient reports whether the profile is in the routine's enrollment set.
func (r *Routine) HasClient(profileID primitive.ObjectID) bool {
	for _, id := range r.ClientIDs {
		if id == profileID {
			return true
		}
	}
	return false
}
