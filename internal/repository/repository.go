package repository

import (
	"context"

	"fitstudio/studio-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrConflict     = RepositoryError("already exists")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// TxnRunner executes fn as a single transactional unit. Deletion cascades
// run inside it so a partially applied cascade cannot be observed.
type TxnRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository defines the interface for interacting with user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ProfileRepository defines the interface for interacting with user profiles.
type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.UserProfile) (primitive.ObjectID, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.UserProfile, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.UserProfile, error)
	List(ctx context.Context) ([]domain.UserProfile, error)
	Update(ctx context.Context, profile *domain.UserProfile) error
	DeleteByUserID(ctx context.Context, userID primitive.ObjectID) error
}

// InstructorRepository defines the interface for interacting with instructors.
type InstructorRepository interface {
	Create(ctx context.Context, instructor *domain.Instructor) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Instructor, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Instructor, error)
	List(ctx context.Context) ([]domain.Instructor, error)
	Update(ctx context.Context, instructor *domain.Instructor) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByUserID(ctx context.Context, userID primitive.ObjectID) error
}

// MembershipRepository defines the interface for interacting with memberships.
// Create must fail with ErrConflict when the user already has one; the store
// enforces this with a unique constraint, not a read-then-write check.
type MembershipRepository interface {
	Create(ctx context.Context, membership *domain.Membership) (primitive.ObjectID, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Membership, error)
	GetByUserIDs(ctx context.Context, userIDs []primitive.ObjectID) ([]domain.Membership, error)
	Update(ctx context.Context, membership *domain.Membership) error
	DeleteByUserID(ctx context.Context, userID primitive.ObjectID) error
}

// RoutineRepository defines the interface for interacting with routines and
// their client enrollment sets. AddClientIfAbsent and RemoveClientIfPresent
// are each a single atomic store operation, so a double-clicked toggle can
// never double-add or double-remove.
type RoutineRepository interface {
	Create(ctx context.Context, routine *domain.Routine) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Routine, error)
	List(ctx context.Context) ([]domain.Routine, error)
	ListByInstructorID(ctx context.Context, instructorID primitive.ObjectID) ([]domain.Routine, error)
	ListByClientID(ctx context.Context, profileID primitive.ObjectID) ([]domain.Routine, error)
	Update(ctx context.Context, routine *domain.Routine) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByInstructorID(ctx context.Context, instructorID primitive.ObjectID) error
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
	AddClientIfAbsent(ctx context.Context, routineID, profileID primitive.ObjectID) (bool, error)
	RemoveClientIfPresent(ctx context.Context, routineID, profileID primitive.ObjectID) (bool, error)
	RemoveClientFromAll(ctx context.Context, profileID primitive.ObjectID) error
}

// ExerciseRepository defines the interface for interacting with exercises.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	List(ctx context.Context) ([]domain.Exercise, error)
	ListByRoutineID(ctx context.Context, routineID primitive.ObjectID) ([]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByRoutineID(ctx context.Context, routineID primitive.ObjectID) error
	DeleteByRoutineIDs(ctx context.Context, routineIDs []primitive.ObjectID) error
}
