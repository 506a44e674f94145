package service

import (
	"context"
	"testing"

	"fitstudio/studio-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func seedRoutine(t *testing.T, repo *fakeRoutineRepo, name string) primitive.ObjectID {
	t.Helper()
	id, err := repo.Create(context.Background(), &domain.Routine{
		Name:            name,
		InstructorID:    primitive.NewObjectID(),
		DurationMinutes: 60,
	})
	if err != nil {
		t.Fatalf("seed routine: %v", err)
	}
	return id
}

func TestToggleJoinsWhenAbsent(t *testing.T) {
	routineRepo := newFakeRoutineRepo()
	svc := NewEnrollmentService(routineRepo)
	routineID := seedRoutine(t, routineRepo, "Yoga for Beginners")
	profileID := primitive.NewObjectID()

	joined, err := svc.Toggle(context.Background(), profileID, routineID)
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if !joined {
		t.Fatal("first toggle should join")
	}

	routine, _ := routineRepo.GetByID(context.Background(), routineID)
	if !routine.HasClient(profileID) {
		t.Fatal("profile should be in the enrollment set after join")
	}
}

func TestToggleLeavesWhenPresent(t *testing.T) {
	routineRepo := newFakeRoutineRepo()
	svc := NewEnrollmentService(routineRepo)
	routineID := seedRoutine(t, routineRepo, "Pilates")
	profileID := primitive.NewObjectID()

	if _, err := svc.Toggle(context.Background(), profileID, routineID); err != nil {
		t.Fatalf("join: %v", err)
	}
	joined, err := svc.Toggle(context.Background(), profileID, routineID)
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if joined {
		t.Fatal("second toggle should leave")
	}

	routine, _ := routineRepo.GetByID(context.Background(), routineID)
	if routine.HasClient(profileID) {
		t.Fatal("profile should be gone from the enrollment set after leave")
	}
}

func TestToggleIsAnInvolution(t *testing.T) {
	routineRepo := newFakeRoutineRepo()
	svc := NewEnrollmentService(routineRepo)
	routineID := seedRoutine(t, routineRepo, "Functional")
	profileID := primitive.NewObjectID()

	// From both starting states, two toggles restore the original state.
	for _, startEnrolled := range []bool{false, true} {
		if startEnrolled {
			if _, err := routineRepo.AddClientIfAbsent(context.Background(), routineID, profileID); err != nil {
				t.Fatalf("seed enrollment: %v", err)
			}
		}
		before, _ := routineRepo.GetByID(context.Background(), routineID)
		wasEnrolled := before.HasClient(profileID)

		for i := 0; i < 2; i++ {
			if _, err := svc.Toggle(context.Background(), profileID, routineID); err != nil {
				t.Fatalf("toggle %d: %v", i, err)
			}
		}

		after, _ := routineRepo.GetByID(context.Background(), routineID)
		if after.HasClient(profileID) != wasEnrolled {
			t.Fatalf("start enrolled=%v: double toggle changed enrollment state", startEnrolled)
		}

		// Reset for the next round.
		_, _ = routineRepo.RemoveClientIfPresent(context.Background(), routineID, profileID)
	}
}

func TestToggleMissingRoutine(t *testing.T) {
	svc := NewEnrollmentService(newFakeRoutineRepo())

	_, err := svc.Toggle(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
	if err != ErrRoutineNotFound {
		t.Fatalf("Toggle on missing routine = %v, want ErrRoutineNotFound", err)
	}
}

func TestBrowseForClientFlagsEnrollment(t *testing.T) {
	routineRepo := newFakeRoutineRepo()
	svc := NewEnrollmentService(routineRepo)
	enrolledID := seedRoutine(t, routineRepo, "Yoga")
	otherID := seedRoutine(t, routineRepo, "Spin")
	profileID := primitive.NewObjectID()

	if _, err := routineRepo.AddClientIfAbsent(context.Background(), enrolledID, profileID); err != nil {
		t.Fatalf("seed enrollment: %v", err)
	}

	listing, err := svc.BrowseForClient(context.Background(), profileID)
	if err != nil {
		t.Fatalf("BrowseForClient: %v", err)
	}
	if len(listing) != 2 {
		t.Fatalf("listing has %d routines, want 2", len(listing))
	}
	for _, entry := range listing {
		switch entry.Routine.ID {
		case enrolledID:
			if !entry.Enrolled {
				t.Error("enrolled routine not flagged")
			}
		case otherID:
			if entry.Enrolled {
				t.Error("unenrolled routine flagged as enrolled")
			}
		}
	}
}
