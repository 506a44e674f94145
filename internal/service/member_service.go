package service

import (
	"context"
	"errors"

	"fitstudio/studio-app/internal/domain"
	"fitstudio/studio-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Member joins a user with their profile and membership for the roster.
// Profile and Membership may be nil when the user never acquired one.
type Member struct {
	User       domain.User
	Profile    *domain.UserProfile
	Membership *domain.Membership
}

type MemberService interface {
	ListMembers(ctx context.Context) ([]Member, error)
	GetMember(ctx context.Context, userID primitive.ObjectID) (*Member, error)
	// ProfileForEdit returns the user's profile, creating a blank one when
	// missing. Admin edit flows rely on these get-or-create semantics.
	ProfileForEdit(ctx context.Context, userID primitive.ObjectID) (*domain.UserProfile, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, phone string, isAdmin bool) (*domain.UserProfile, error)
	// DeleteUser removes the user and everything hanging off them as one
	// transactional unit.
	DeleteUser(ctx context.Context, userID primitive.ObjectID) error
}

// memberService implements the MemberService interface.
type memberService struct {
	userRepo       repository.UserRepository
	profileRepo    repository.ProfileRepository
	membershipRepo repository.MembershipRepository
	instructorRepo repository.InstructorRepository
	routineRepo    repository.RoutineRepository
	exerciseRepo   repository.ExerciseRepository
	txn            repository.TxnRunner
}

// NewMemberService creates a new instance of memberService.
func NewMemberService(
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	membershipRepo repository.MembershipRepository,
	instructorRepo repository.InstructorRepository,
	routineRepo repository.RoutineRepository,
	exerciseRepo repository.ExerciseRepository,
	txn repository.TxnRunner,
) MemberService {
	return &memberService{
		userRepo:       userRepo,
		profileRepo:    profileRepo,
		membershipRepo: membershipRepo,
		instructorRepo: instructorRepo,
		routineRepo:    routineRepo,
		exerciseRepo:   exerciseRepo,
		txn:            txn,
	}
}

// ListMembers builds the roster with profiles and memberships joined in
// three queries total, not one per row.
func (s *memberService) ListMembers(ctx context.Context) ([]Member, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	profiles, err := s.profileRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	profileByUser := make(map[primitive.ObjectID]*domain.UserProfile, len(profiles))
	for i := range profiles {
		profileByUser[profiles[i].UserID] = &profiles[i]
	}

	userIDs := make([]primitive.ObjectID, len(users))
	for i := range users {
		userIDs[i] = users[i].ID
	}
	memberships, err := s.membershipRepo.GetByUserIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	membershipByUser := make(map[primitive.ObjectID]*domain.Membership, len(memberships))
	for i := range memberships {
		membershipByUser[memberships[i].UserID] = &memberships[i]
	}

	members := make([]Member, 0, len(users))
	for i := range users {
		members = append(members, Member{
			User:       users[i],
			Profile:    profileByUser[users[i].ID],
			Membership: membershipByUser[users[i].ID],
		})
	}
	return members, nil
}

// GetMember retrieves a single user with profile and membership attached.
func (s *memberService) GetMember(ctx context.Context, userID primitive.ObjectID) (*Member, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	member := &Member{User: *user}

	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err == nil {
		member.Profile = profile
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	membership, err := s.membershipRepo.GetByUserID(ctx, userID)
	if err == nil {
		member.Membership = membership
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	return member, nil
}

// ProfileForEdit fetches the profile, creating a blank one when the user
// never got one. Creation races are resolved by the unique userId index:
// on conflict the winner's document is fetched.
func (s *memberService) ProfileForEdit(ctx context.Context, userID primitive.ObjectID) (*domain.UserProfile, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	fresh := &domain.UserProfile{UserID: userID}
	if _, err := s.profileRepo.Create(ctx, fresh); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return s.profileRepo.GetByUserID(ctx, userID)
		}
		return nil, err
	}
	return fresh, nil
}

// UpdateProfile applies the admin edit, creating the profile first when needed.
func (s *memberService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, phone string, isAdmin bool) (*domain.UserProfile, error) {
	profile, err := s.ProfileForEdit(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile.Phone = phone
	profile.IsAdmin = isAdmin
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// DeleteUser removes the user, their profile, membership and instructor
// record (cascading to the instructor's routines and exercises), and pulls
// the profile from every routine's enrollment set — all inside one
// transaction. Returns ErrUserNotFound for an already-deleted target so the
// handler can downgrade it to a notice.
func (s *memberService) DeleteUser(ctx context.Context, userID primitive.ObjectID) error {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	return s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		profile, err := s.profileRepo.GetByUserID(ctx, userID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if profile != nil {
			if err := s.routineRepo.RemoveClientFromAll(ctx, profile.ID); err != nil {
				return err
			}
		}

		instructor, err := s.instructorRepo.GetByUserID(ctx, userID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if instructor != nil {
			routines, err := s.routineRepo.ListByInstructorID(ctx, instructor.ID)
			if err != nil {
				return err
			}
			routineIDs := make([]primitive.ObjectID, len(routines))
			for i := range routines {
				routineIDs[i] = routines[i].ID
			}
			if err := s.exerciseRepo.DeleteByRoutineIDs(ctx, routineIDs); err != nil {
				return err
			}
			if err := s.routineRepo.DeleteByInstructorID(ctx, instructor.ID); err != nil {
				return err
			}
			if err := s.instructorRepo.DeleteByUserID(ctx, userID); err != nil {
				return err
			}
		}

		if err := s.membershipRepo.DeleteByUserID(ctx, userID); err != nil {
			return err
		}
		if err := s.profileRepo.DeleteByUserID(ctx, userID); err != nil {
			return err
		}
		err = s.userRepo.Delete(ctx, userID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	})
}
