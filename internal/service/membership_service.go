package service

import (
	"context"
	"errors"
	"time"

	"fitstudio/studio-app/internal/domain"
	"fitstudio/studio-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrMembershipExists   = errors.New("user already has a membership")
	ErrMembershipNotFound = errors.New("membership not found")
	ErrInvalidPlan        = errors.New("plan type must be basic, premium or vip")
	ErrInvalidDuration    = errors.New("duration must be one of the offered values")
)

type MembershipService interface {
	Create(ctx context.Context, userID primitive.ObjectID, plan domain.PlanType, durationDays int) (*domain.Membership, error)
	GetForUser(ctx context.Context, userID primitive.ObjectID) (*domain.Membership, error)
	Update(ctx context.Context, userID primitive.ObjectID, plan domain.PlanType, durationDays int, isActive bool) (*domain.Membership, error)
}

// membershipService implements the MembershipService interface.
type membershipService struct {
	membershipRepo repository.MembershipRepository
}

// NewMembershipService creates a new instance of membershipService.
func NewMembershipService(membershipRepo repository.MembershipRepository) MembershipService {
	return &membershipService{membershipRepo: membershipRepo}
}

// Create starts a membership for the user. Exclusivity rides on the store's
// unique constraint: a concurrent second attempt surfaces as
// ErrMembershipExists, never as a duplicate record.
func (s *membershipService) Create(ctx context.Context, userID primitive.ObjectID, plan domain.PlanType, durationDays int) (*domain.Membership, error) {
	if userID == primitive.NilObjectID {
		return nil, errors.New("user ID is required to create a membership")
	}
	if !domain.ValidPlan(plan) {
		return nil, ErrInvalidPlan
	}
	if !offeredDuration(durationDays) {
		return nil, ErrInvalidDuration
	}

	membership := &domain.Membership{
		UserID:       userID,
		PlanType:     plan,
		StartDate:    time.Now().UTC(),
		DurationDays: durationDays,
		IsActive:     true,
	}

	id, err := s.membershipRepo.Create(ctx, membership)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrMembershipExists
		}
		return nil, err
	}
	membership.ID = id
	return membership, nil
}

// GetForUser retrieves the user's membership, if any.
func (s *membershipService) GetForUser(ctx context.Context, userID primitive.ObjectID) (*domain.Membership, error) {
	membership, err := s.membershipRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMembershipNotFound
		}
		return nil, err
	}
	return membership, nil
}

// Update is the administrative edit of plan, duration and active flag.
// Unlike self-serve creation the duration may be any positive integer;
// the start date never changes.
func (s *membershipService) Update(ctx context.Context, userID primitive.ObjectID, plan domain.PlanType, durationDays int, isActive bool) (*domain.Membership, error) {
	if !domain.ValidPlan(plan) {
		return nil, ErrInvalidPlan
	}
	if durationDays <= 0 {
		return nil, ErrInvalidDuration
	}

	membership, err := s.membershipRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMembershipNotFound
		}
		return nil, err
	}

	membership.PlanType = plan
	membership.DurationDays = durationDays
	membership.IsActive = isActive

	if err := s.membershipRepo.Update(ctx, membership); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMembershipNotFound
		}
		return nil, err
	}
	return membership, nil
}

func offeredDuration(days int) bool {
	for _, d := range domain.PlanDurations {
		if days == d {
			return true
		}
	}
	return false
}
