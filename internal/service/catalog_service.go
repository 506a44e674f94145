package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"fitstudio/studio-app/internal/domain"
	"fitstudio/studio-app/internal/repository"
	"fitstudio/studio-app/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrInstructorNotFound  = errors.New("instructor not found")
	ErrExerciseNotFound    = errors.New("exercise not found")
	ErrValidationFailed    = errors.New("validation failed")
	ErrInstructorHasUser   = errors.New("user is already registered as an instructor")
	ErrUserNotFound        = errors.New("user not found")
	ErrPhotoURLError       = errors.New("failed to generate photo upload URL")
	ErrInvalidPhotoContent = errors.New("photo content type must be an image")
)

// InstructorDetail joins an instructor with its user's username for lists,
// fetched in one pass instead of per row.
type InstructorDetail struct {
	domain.Instructor
	Username string
	PhotoURL string
}

// RoutineDetail joins a routine with its instructor's specialty/name and its
// enrollment count.
type RoutineDetail struct {
	domain.Routine
	InstructorName string
	EnrolledCount  int
}

// ExerciseDetail joins an exercise with its routine's name.
type ExerciseDetail struct {
	domain.Exercise
	RoutineName string
}

// PhotoUploadGrant carries a presigned PUT URL and the object key the
// caller must report back.
type PhotoUploadGrant struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

type CatalogService interface {
	// Instructors
	ListInstructors(ctx context.Context) ([]InstructorDetail, error)
	GetInstructor(ctx context.Context, id primitive.ObjectID) (*domain.Instructor, error)
	CreateInstructor(ctx context.Context, userID primitive.ObjectID, specialty, bio string) (*domain.Instructor, error)
	UpdateInstructor(ctx context.Context, id primitive.ObjectID, specialty, bio string) (*domain.Instructor, error)
	DeleteInstructor(ctx context.Context, id primitive.ObjectID) error
	RequestPhotoUploadURL(ctx context.Context, instructorID primitive.ObjectID, contentType string) (*PhotoUploadGrant, error)
	ConfirmPhotoUpload(ctx context.Context, instructorID primitive.ObjectID, objectKey string) error

	// Routines
	ListRoutines(ctx context.Context) ([]RoutineDetail, error)
	GetRoutine(ctx context.Context, id primitive.ObjectID) (*domain.Routine, error)
	CreateRoutine(ctx context.Context, name, description string, instructorID primitive.ObjectID, durationMinutes int) (*domain.Routine, error)
	UpdateRoutine(ctx context.Context, id primitive.ObjectID, name, description string, instructorID primitive.ObjectID, durationMinutes int) (*domain.Routine, error)
	DeleteRoutine(ctx context.Context, id primitive.ObjectID) error

	// Exercises
	ListExercises(ctx context.Context) ([]ExerciseDetail, error)
	GetExercise(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	CreateExercise(ctx context.Context, routineID primitive.ObjectID, name, description, repetitions string) (*domain.Exercise, error)
	UpdateExercise(ctx context.Context, id, routineID primitive.ObjectID, name, description, repetitions string) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, id primitive.ObjectID) error
}

// catalogService implements the CatalogService interface.
type catalogService struct {
	userRepo       repository.UserRepository
	instructorRepo repository.InstructorRepository
	routineRepo    repository.RoutineRepository
	exerciseRepo   repository.ExerciseRepository
	txn            repository.TxnRunner
	fileStorage    storage.FileStorage
}

// NewCatalogService creates a new instance of catalogService.
func NewCatalogService(
	userRepo repository.UserRepository,
	instructorRepo repository.InstructorRepository,
	routineRepo repository.RoutineRepository,
	exerciseRepo repository.ExerciseRepository,
	txn repository.TxnRunner,
	fileStorage storage.FileStorage,
) CatalogService {
	return &catalogService{
		userRepo:       userRepo,
		instructorRepo: instructorRepo,
		routineRepo:    routineRepo,
		exerciseRepo:   exerciseRepo,
		txn:            txn,
		fileStorage:    fileStorage,
	}
}

// === Instructors ===

// ListInstructors returns all instructors with their usernames resolved in a
// single batch.
func (s *catalogService) ListInstructors(ctx context.Context) ([]InstructorDetail, error) {
	instructors, err := s.instructorRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	usernames := make(map[primitive.ObjectID]string, len(users))
	for i := range users {
		usernames[users[i].ID] = users[i].Username
	}

	details := make([]InstructorDetail, 0, len(instructors))
	for i := range instructors {
		detail := InstructorDetail{
			Instructor: instructors[i],
			Username:   usernames[instructors[i].UserID],
		}
		if key := instructors[i].PhotoObjectKey; key != "" && s.fileStorage != nil {
			if url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, key, storage.DefaultPresignedURLExpiry); err == nil {
				detail.PhotoURL = url
			}
		}
		details = append(details, detail)
	}
	return details, nil
}

func (s *catalogService) GetInstructor(ctx context.Context, id primitive.ObjectID) (*domain.Instructor, error) {
	instructor, err := s.instructorRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInstructorNotFound
		}
		return nil, err
	}
	return instructor, nil
}

// CreateInstructor promotes an existing user to instructor.
func (s *catalogService) CreateInstructor(ctx context.Context, userID primitive.ObjectID, specialty, bio string) (*domain.Instructor, error) {
	if specialty == "" {
		return nil, ErrValidationFailed
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	instructor := &domain.Instructor{
		UserID:    userID,
		Specialty: specialty,
		Bio:       bio,
	}
	id, err := s.instructorRepo.Create(ctx, instructor)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrInstructorHasUser
		}
		return nil, err
	}
	instructor.ID = id
	return instructor, nil
}

func (s *catalogService) UpdateInstructor(ctx context.Context, id primitive.ObjectID, specialty, bio string) (*domain.Instructor, error) {
	if specialty == "" {
		return nil, ErrValidationFailed
	}

	instructor, err := s.GetInstructor(ctx, id)
	if err != nil {
		return nil, err
	}

	instructor.Specialty = specialty
	instructor.Bio = bio
	if err := s.instructorRepo.Update(ctx, instructor); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInstructorNotFound
		}
		return nil, err
	}
	return instructor, nil
}

// DeleteInstructor removes the instructor, their routines and those
// routines' exercises as one transactional unit. A half-applied cascade
// (instructor gone, routines orphaned) must never be observable.
func (s *catalogService) DeleteInstructor(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.GetInstructor(ctx, id); err != nil {
		return err
	}

	return s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		routines, err := s.routineRepo.ListByInstructorID(ctx, id)
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
		if err := s.routineRepo.DeleteByInstructorID(ctx, id); err != nil {
			return err
		}
		return s.instructorRepo.Delete(ctx, id)
	})
}

// RequestPhotoUploadURL generates a presigned URL for uploading an
// instructor portrait directly to object storage.
func (s *catalogService) RequestPhotoUploadURL(ctx context.Context, instructorID primitive.ObjectID, contentType string) (*PhotoUploadGrant, error) {
	if contentType == "" || !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return nil, ErrInvalidPhotoContent
	}
	if _, err := s.GetInstructor(ctx, instructorID); err != nil {
		return nil, err
	}

	ext := ""
	if parts := strings.Split(contentType, "/"); len(parts) == 2 {
		ext = parts[1]
	}
	objectKey := path.Join("instructors", instructorID.Hex(), fmt.Sprintf("%s.%s", uuid.NewString(), ext))

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, ErrPhotoURLError
	}

	return &PhotoUploadGrant{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}

// ConfirmPhotoUpload records the uploaded object key on the instructor and
// removes the previous photo, if any.
func (s *catalogService) ConfirmPhotoUpload(ctx context.Context, instructorID primitive.ObjectID, objectKey string) error {
	if objectKey == "" {
		return ErrValidationFailed
	}

	instructor, err := s.GetInstructor(ctx, instructorID)
	if err != nil {
		return err
	}

	previous := instructor.PhotoObjectKey
	instructor.PhotoObjectKey = objectKey
	if err := s.instructorRepo.Update(ctx, instructor); err != nil {
		return err
	}

	if previous != "" && previous != objectKey {
		// Best effort; a stale object is not worth failing the request.
		_ = s.fileStorage.DeleteObject(ctx, previous)
	}
	return nil
}

// === Routines ===

// ListRoutines returns all routines with instructor names and enrollment
// counts resolved in a single batch.
func (s *catalogService) ListRoutines(ctx context.Context) ([]RoutineDetail, error) {
	routines, err := s.routineRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	instructors, err := s.ListInstructors(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[primitive.ObjectID]string, len(instructors))
	for i := range instructors {
		names[instructors[i].ID] = instructors[i].Username
	}

	details := make([]RoutineDetail, 0, len(routines))
	for i := range routines {
		details = append(details, RoutineDetail{
			Routine:        routines[i],
			InstructorName: names[routines[i].InstructorID],
			EnrolledCount:  len(routines[i].ClientIDs),
		})
	}
	return details, nil
}

func (s *catalogService) GetRoutine(ctx context.Context, id primitive.ObjectID) (*domain.Routine, error) {
	routine, err := s.routineRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoutineNotFound
		}
		return nil, err
	}
	return routine, nil
}

func (s *catalogService) CreateRoutine(ctx context.Context, name, description string, instructorID primitive.ObjectID, durationMinutes int) (*domain.Routine, error) {
	if name == "" || durationMinutes <= 0 {
		return nil, ErrValidationFailed
	}
	if _, err := s.GetInstructor(ctx, instructorID); err != nil {
		return nil, err
	}

	routine := &domain.Routine{
		Name:            name,
		Description:     description,
		InstructorID:    instructorID,
		DurationMinutes: durationMinutes,
	}
	id, err := s.routineRepo.Create(ctx, routine)
	if err != nil {
		return nil, err
	}
	routine.ID = id
	return routine, nil
}

func (s *catalogService) UpdateRoutine(ctx context.Context, id primitive.ObjectID, name, description string, instructorID primitive.ObjectID, durationMinutes int) (*domain.Routine, error) {
	if name == "" || durationMinutes <= 0 {
		return nil, ErrValidationFailed
	}
	if _, err := s.GetInstructor(ctx, instructorID); err != nil {
		return nil, err
	}

	routine, err := s.GetRoutine(ctx, id)
	if err != nil {
		return nil, err
	}

	routine.Name = name
	routine.Description = description
	routine.InstructorID = instructorID
	routine.DurationMinutes = durationMinutes
	if err := s.routineRepo.Update(ctx, routine); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoutineNotFound
		}
		return nil, err
	}
	return routine, nil
}

// DeleteRoutine removes the routine and its exercises transactionally.
func (s *catalogService) DeleteRoutine(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.GetRoutine(ctx, id); err != nil {
		return err
	}

	return s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.exerciseRepo.DeleteByRoutineID(ctx, id); err != nil {
			return err
		}
		return s.routineRepo.Delete(ctx, id)
	})
}

// === Exercises ===

// ListExercises returns all exercises with routine names resolved in a
// single batch.
func (s *catalogService) ListExercises(ctx context.Context) ([]ExerciseDetail, error) {
	exercises, err := s.exerciseRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	routines, err := s.routineRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[primitive.ObjectID]string, len(routines))
	for i := range routines {
		names[routines[i].ID] = routines[i].Name
	}

	details := make([]ExerciseDetail, 0, len(exercises))
	for i := range exercises {
		details = append(details, ExerciseDetail{
			Exercise:    exercises[i],
			RoutineName: names[exercises[i].RoutineID],
		})
	}
	return details, nil
}

func (s *catalogService) GetExercise(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

func (s *catalogService) CreateExercise(ctx context.Context, routineID primitive.ObjectID, name, description, repetitions string) (*domain.Exercise, error) {
	if name == "" {
		return nil, ErrValidationFailed
	}
	if _, err := s.GetRoutine(ctx, routineID); err != nil {
		return nil, err
	}

	exercise := &domain.Exercise{
		RoutineID:   routineID,
		Name:        name,
		Description: description,
		Repetitions: repetitions,
	}
	id, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		return nil, err
	}
	exercise.ID = id
	return exercise, nil
}

func (s *catalogService) UpdateExercise(ctx context.Context, id, routineID primitive.ObjectID, name, description, repetitions string) (*domain.Exercise, error) {
	if name == "" {
		return nil, ErrValidationFailed
	}
	if _, err := s.GetRoutine(ctx, routineID); err != nil {
		return nil, err
	}

	exercise, err := s.GetExercise(ctx, id)
	if err != nil {
		return nil, err
	}

	exercise.RoutineID = routineID
	exercise.Name = name
	exercise.Description = description
	exercise.Repetitions = repetitions
	if err := s.exerciseRepo.Update(ctx, exercise); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

func (s *catalogService) DeleteExercise(ctx context.Context, id primitive.ObjectID) error {
	err := s.exerciseRepo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrExerciseNotFound
	}
	return err
}
