package service

import (
	"context"
	"sync"

	"fitstudio/studio-app/internal/domain"
	"fitstudio/studio-app/internal/repository"
	"fitstudio/studio-app/internal/storage"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes. They honor the same contracts as the mongo
// implementations (unique constraints surfaced as ErrConflict, atomic
// guarded enrollment writes) so the services can be exercised without a
// running store.

type fakeTxnRunner struct{}

func (fakeTxnRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// --- users ---

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]domain.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username {
			return primitive.NilObjectID, repository.ErrConflict
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = *user
	return user.ID, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			out := u
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := u
	return &out, nil
}

func (r *fakeUserRepo) List(ctx context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

// --- profiles ---

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[primitive.ObjectID]domain.UserProfile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[primitive.ObjectID]domain.UserProfile)}
}

func (r *fakeProfileRepo) Create(ctx context.Context, profile *domain.UserProfile) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if p.UserID == profile.UserID {
			return primitive.NilObjectID, repository.ErrConflict
		}
	}
	profile.ID = primitive.NewObjectID()
	r.profiles[profile.ID] = *profile
	return profile.ID, nil
}

func (r *fakeProfileRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if p.UserID == userID {
			out := p
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeProfileRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.UserProfile
	for _, id := range ids {
		if p, ok := r.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProfileRepo) List(ctx context.Context) ([]domain.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.UserProfile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeProfileRepo) Update(ctx context.Context, profile *domain.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.profiles[profile.ID]
	if !ok {
		return repository.ErrNotFound
	}
	// Mirror the store: only the mutable fields move, and the store owns
	// the updatedAt stamp.
	stored.Phone = profile.Phone
	stored.IsAdmin = profile.IsAdmin
	stored.UpdatedAt = time.Now().UTC()
	r.profiles[profile.ID] = stored
	*profile = stored
	return nil
}

func (r *fakeProfileRepo) DeleteByUserID(ctx context.Context, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, p := range r.profiles {
		if p.UserID == userID {
			delete(r.profiles, id)
		}
	}
	return nil
}

// --- instructors ---

type fakeInstructorRepo struct {
	mu          sync.Mutex
	instructors map[primitive.ObjectID]domain.Instructor
}

func newFakeInstructorRepo() *fakeInstructorRepo {
	return &fakeInstructorRepo{instructors: make(map[primitive.ObjectID]domain.Instructor)}
}

func (r *fakeInstructorRepo) Create(ctx context.Context, instructor *domain.Instructor) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, in := range r.instructors {
		if in.UserID == instructor.UserID {
			return primitive.NilObjectID, repository.ErrConflict
		}
	}
	instructor.ID = primitive.NewObjectID()
	r.instructors[instructor.ID] = *instructor
	return instructor.ID, nil
}

func (r *fakeInstructorRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Instructor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	in, ok := r.instructors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := in
	return &out, nil
}

func (r *fakeInstructorRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Instructor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, in := range r.instructors {
		if in.UserID == userID {
			out := in
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeInstructorRepo) List(ctx context.Context) ([]domain.Instructor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Instructor, 0, len(r.instructors))
	for _, in := range r.instructors {
		out = append(out, in)
	}
	return out, nil
}

func (r *fakeInstructorRepo) Update(ctx context.Context, instructor *domain.Instructor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.instructors[instructor.ID]; !ok {
		return repository.ErrNotFound
	}
	r.instructors[instructor.ID] = *instructor
	return nil
}

func (r *fakeInstructorRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.instructors[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.instructors, id)
	return nil
}

func (r *fakeInstructorRepo) DeleteByUserID(ctx context.Context, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, in := range r.instructors {
		if in.UserID == userID {
			delete(r.instructors, id)
		}
	}
	return nil
}

// --- memberships ---

type fakeMembershipRepo struct {
	mu          sync.Mutex
	memberships map[primitive.ObjectID]domain.Membership
}

func newFakeMembershipRepo() *fakeMembershipRepo {
	return &fakeMembershipRepo{memberships: make(map[primitive.ObjectID]domain.Membership)}
}

func (r *fakeMembershipRepo) Create(ctx context.Context, membership *domain.Membership) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.memberships {
		if m.UserID == membership.UserID {
			return primitive.NilObjectID, repository.ErrConflict
		}
	}
	membership.ID = primitive.NewObjectID()
	if membership.StartDate.IsZero() {
		membership.StartDate = time.Now().UTC()
	}
	r.memberships[membership.ID] = *membership
	return membership.ID, nil
}

func (r *fakeMembershipRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.memberships {
		if m.UserID == userID {
			out := m
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeMembershipRepo) GetByUserIDs(ctx context.Context, userIDs []primitive.ObjectID) ([]domain.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Membership
	for _, m := range r.memberships {
		for _, id := range userIDs {
			if m.UserID == id {
				out = append(out, m)
			}
		}
	}
	return out, nil
}

func (r *fakeMembershipRepo) Update(ctx context.Context, membership *domain.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.memberships[membership.ID]; !ok {
		return repository.ErrNotFound
	}
	r.memberships[membership.ID] = *membership
	return nil
}

func (r *fakeMembershipRepo) DeleteByUserID(ctx context.Context, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, m := range r.memberships {
		if m.UserID == userID {
			delete(r.memberships, id)
		}
	}
	return nil
}

// --- routines ---

type fakeRoutineRepo struct {
	mu       sync.Mutex
	routines map[primitive.ObjectID]domain.Routine
}

func newFakeRoutineRepo() *fakeRoutineRepo {
	return &fakeRoutineRepo{routines: make(map[primitive.ObjectID]domain.Routine)}
}

func (r *fakeRoutineRepo) Create(ctx context.Context, routine *domain.Routine) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	routine.ID = primitive.NewObjectID()
	r.routines[routine.ID] = *routine
	return routine.ID, nil
}

func (r *fakeRoutineRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Routine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.routines[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := rt
	return &out, nil
}

func (r *fakeRoutineRepo) List(ctx context.Context) ([]domain.Routine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Routine, 0, len(r.routines))
	for _, rt := range r.routines {
		out = append(out, rt)
	}
	return out, nil
}

func (r *fakeRoutineRepo) ListByInstructorID(ctx context.Context, instructorID primitive.ObjectID) ([]domain.Routine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Routine
	for _, rt := range r.routines {
		if rt.InstructorID == instructorID {
			out = append(out, rt)
		}
	}
	return out, nil
}

func (r *fakeRoutineRepo) ListByClientID(ctx context.Context, profileID primitive.ObjectID) ([]domain.Routine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Routine
	for _, rt := range r.routines {
		if rt.HasClient(profileID) {
			out = append(out, rt)
		}
	}
	return out, nil
}

func (r *fakeRoutineRepo) Update(ctx context.Context, routine *domain.Routine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.routines[routine.ID]
	if !ok {
		return repository.ErrNotFound
	}
	routine.ClientIDs = existing.ClientIDs
	r.routines[routine.ID] = *routine
	return nil
}

func (r *fakeRoutineRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.routines[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.routines, id)
	return nil
}

func (r *fakeRoutineRepo) DeleteByInstructorID(ctx context.Context, instructorID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, rt := range r.routines {
		if rt.InstructorID == instructorID {
			delete(r.routines, id)
		}
	}
	return nil
}

func (r *fakeRoutineRepo) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.routines[id]
	return ok, nil
}

func (r *fakeRoutineRepo) AddClientIfAbsent(ctx context.Context, routineID, profileID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.routines[routineID]
	if !ok || rt.HasClient(profileID) {
		return false, nil
	}
	rt.ClientIDs = append(rt.ClientIDs, profileID)
	r.routines[routineID] = rt
	return true, nil
}

func (r *fakeRoutineRepo) RemoveClientIfPresent(ctx context.Context, routineID, profileID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.routines[routineID]
	if !ok || !rt.HasClient(profileID) {
		return false, nil
	}
	kept := rt.ClientIDs[:0]
	for _, id := range rt.ClientIDs {
		if id != profileID {
			kept = append(kept, id)
		}
	}
	rt.ClientIDs = kept
	r.routines[routineID] = rt
	return true, nil
}

func (r *fakeRoutineRepo) RemoveClientFromAll(ctx context.Context, profileID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, rt := range r.routines {
		kept := make([]primitive.ObjectID, 0, len(rt.ClientIDs))
		for _, cid := range rt.ClientIDs {
			if cid != profileID {
				kept = append(kept, cid)
			}
		}
		rt.ClientIDs = kept
		r.routines[id] = rt
	}
	return nil
}

// --- exercises ---

type fakeExerciseRepo struct {
	mu        sync.Mutex
	exercises map[primitive.ObjectID]domain.Exercise
}

func newFakeExerciseRepo() *fakeExerciseRepo {
	return &fakeExerciseRepo{exercises: make(map[primitive.ObjectID]domain.Exercise)}
}

func (r *fakeExerciseRepo) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	exercise.ID = primitive.NewObjectID()
	r.exercises[exercise.ID] = *exercise
	return exercise.ID, nil
}

func (r *fakeExerciseRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ex, ok := r.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := ex
	return &out, nil
}

func (r *fakeExerciseRepo) List(ctx context.Context) ([]domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Exercise, 0, len(r.exercises))
	for _, ex := range r.exercises {
		out = append(out, ex)
	}
	return out, nil
}

func (r *fakeExerciseRepo) ListByRoutineID(ctx context.Context, routineID primitive.ObjectID) ([]domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Exercise
	for _, ex := range r.exercises {
		if ex.RoutineID == routineID {
			out = append(out, ex)
		}
	}
	return out, nil
}

func (r *fakeExerciseRepo) Update(ctx context.Context, exercise *domain.Exercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.exercises[exercise.ID]; !ok {
		return repository.ErrNotFound
	}
	r.exercises[exercise.ID] = *exercise
	return nil
}

func (r *fakeExerciseRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.exercises[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.exercises, id)
	return nil
}

func (r *fakeExerciseRepo) DeleteByRoutineID(ctx context.Context, routineID primitive.ObjectID) error {
	return r.DeleteByRoutineIDs(ctx, []primitive.ObjectID{routineID})
}

func (r *fakeExerciseRepo) DeleteByRoutineIDs(ctx context.Context, routineIDs []primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, ex := range r.exercises {
		for _, rid := range routineIDs {
			if ex.RoutineID == rid {
				delete(r.exercises, id)
			}
		}
	}
	return nil
}

// --- storage ---

type fakeFileStorage struct {
	deleted []string
}

func (s *fakeFileStorage) GeneratePresignedUploadURL(ctx context.Context, objectKey, contentType string, expires time.Duration) (string, error) {
	return "https://storage.test/put/" + objectKey, nil
}

func (s *fakeFileStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	return "https://storage.test/get/" + objectKey, nil
}

func (s *fakeFileStorage) DeleteObject(ctx context.Context, objectKey string) error {
	s.deleted = append(s.deleted, objectKey)
	return nil
}

var _ storage.FileStorage = (*fakeFileStorage)(nil)
