package service

import (
	"context"
	"errors"

	"fitstudio/studio-app/internal/domain"
	"fitstudio/studio-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrRoutineNotFound = errors.New("routine not found")
)

// EnrolledRoutine pairs a routine with the viewing client's enrollment state
// for the browsing page.
type EnrolledRoutine struct {
	Routine  domain.Routine
	Enrolled bool
}

type EnrollmentService interface {
	// Toggle joins the profile to the routine if absent, leaves if present.
	// joined reports the direction taken.
	Toggle(ctx context.Context, profileID, routineID primitive.ObjectID) (joined bool, err error)
	BrowseForClient(ctx context.Context, profileID primitive.ObjectID) ([]EnrolledRoutine, error)
}

// enrollmentService implements the EnrollmentService interface.
type enrollmentService struct {
	routineRepo repository.RoutineRepository
}

// NewEnrollmentService creates a new instance of enrollmentService.
func NewEnrollmentService(routineRepo repository.RoutineRepository) EnrollmentService {
	return &enrollmentService{routineRepo: routineRepo}
}

// Toggle flips the (profile, routine) enrollment pair. Direction is inferred
// from current state; each underlying write is a single atomic
// add-if-absent / remove-if-present, so concurrent retries from a
// double-click cannot double-add or double-remove.
func (s *enrollmentService) Toggle(ctx context.Context, profileID, routineID primitive.ObjectID) (bool, error) {
	if profileID == primitive.NilObjectID || routineID == primitive.NilObjectID {
		return false, errors.New("profile ID and routine ID are required")
	}

	added, err := s.routineRepo.AddClientIfAbsent(ctx, routineID, profileID)
	if err != nil {
		return false, err
	}
	if added {
		return true, nil
	}

	removed, err := s.routineRepo.RemoveClientIfPresent(ctx, routineID, profileID)
	if err != nil {
		return false, err
	}
	if removed {
		return false, nil
	}

	// Neither write matched: either the routine is gone, or a concurrent
	// toggle removed the pair between the two steps. The latter leaves the
	// pair absent, which is the "left" outcome.
	exists, err := s.routineRepo.Exists(ctx, routineID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, ErrRoutineNotFound
	}
	return false, nil
}

// BrowseForClient lists every routine with the client's enrollment state.
func (s *enrollmentService) BrowseForClient(ctx context.Context, profileID primitive.ObjectID) ([]EnrolledRoutine, error) {
	routines, err := s.routineRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]EnrolledRoutine, 0, len(routines))
	for i := range routines {
		result = append(result, EnrolledRoutine{
			Routine:  routines[i],
			Enrolled: routines[i].HasClient(profileID),
		})
	}
	return result, nil
}
