package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanType enumerates the membership plans on offer.
type PlanType string

const (
	PlanBasic   PlanType = "basic"
	PlanPremium PlanType = "premium"
	PlanVIP     PlanType = "vip"
)

// ValidPlan reports whether p is one of the offered plans.
func ValidPlan(p PlanType) bool {
	switch p {
	case PlanBasic, PlanPremium, PlanVIP:
		return true
	}
	return false
}

// PlanDurations are the durations offered by the self-serve membership form.
// The stored value is a plain integer; admin edits may set other values.
var PlanDurations = []int{30, 90, 365}

// Membership is a user's paid-plan record. A user has at most one; the
// store enforces this with a unique index on userId.
type Membership struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"` // Unique, 1:1 with User
	PlanType     PlanType           `bson:"planType" json:"planType"`
	StartDate    time.Time          `bson:"startDate" json:"startDate"` // Set at creation, immutable thereafter
	DurationDays int                `bson:"durationDays" json:"durationDays"`
	IsActive     bool               `bson:"isActive" json:"isActive"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ExpirationDate is the calendar date the membership lapses.
func (m *Membership) ExpirationDate() time.Time {
	return dateOnly(m.StartDate).AddDate(0, 0, m.DurationDays)
}

// DaysRemaining reports whole days left until expiration, measured in
// calendar days. An explicit IsActive=false overrides any time remaining
// and forces 0; the result is never negative.
func (m *Membership) DaysRemaining(now time.Time) int {
	if !m.IsActive {
		return 0
	}
	days := int(m.ExpirationDate().Sub(dateOnly(now)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// Expired reports whether the membership is observably inactive, by either
// trigger: wall-clock expiry or the administrative IsActive flip.
func (m *Membership) Expired(now time.Time) bool {
	return m.DaysRemaining(now) == 0
}

func dateOnly(t time.Time) time.Time {
	y, mo, d := t.UTC().Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}
