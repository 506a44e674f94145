package api

import (
	"errors"
	"net/http"

	"fitstudio/studio-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CatalogHandler serves the admin CRUD pages for instructors, routines and
// exercises.
type CatalogHandler struct {
	catalogService service.CatalogService
	memberService  service.MemberService
	renderer       *Renderer
}

// NewCatalogHandler creates a new CatalogHandler. The member service feeds
// the user picker on the instructor form.
func NewCatalogHandler(catalogService service.CatalogService, memberService service.MemberService, renderer *Renderer) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService, memberService: memberService, renderer: renderer}
}

// --- Form Structs ---

type InstructorForm struct {
	UserID    string `form:"user_id" json:"user_id" binding:"required"`
	Specialty string `form:"specialty" json:"specialty" binding:"required"`
	Bio       string `form:"bio" json:"bio"`
}

// InstructorEditForm omits the user link, which is immutable after creation.
type InstructorEditForm struct {
	Specialty string `form:"specialty" json:"specialty" binding:"required"`
	Bio       string `form:"bio" json:"bio"`
}

type RoutineForm struct {
	Name            string `form:"name" json:"name" binding:"required"`
	Description     string `form:"description" json:"description"`
	InstructorID    string `form:"instructor_id" json:"instructor_id" binding:"required"`
	DurationMinutes int    `form:"duration_minutes" json:"duration_minutes" binding:"required,gt=0"`
}

type ExerciseForm struct {
	RoutineID   string `form:"routine_id" json:"routine_id" binding:"required"`
	Name        string `form:"name" json:"name" binding:"required"`
	Description string `form:"description" json:"description"`
	Repetitions string `form:"repetitions" json:"repetitions"`
}

type PhotoUploadForm struct {
	ContentType string `form:"content_type" json:"content_type"`
	ObjectKey   string `form:"object_key" json:"object_key"`
}

func pathID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusNotFound, "invalid identifier")
		return primitive.NilObjectID, false
	}
	return id, true
}

// === Instructors ===

// ListInstructors renders the instructor roster with usernames and photo
// links resolved.
func (h *CatalogHandler) ListInstructors(c *gin.Context) {
	instructors, err := h.catalogService.ListInstructors(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not load instructors")
		return
	}
	h.renderer.Page(c, http.StatusOK, "instructor_list", gin.H{"instructors": instructors})
}

func (h *CatalogHandler) instructorFormContext(c *gin.Context) gin.H {
	ctx := gin.H{}
	if members, err := h.memberService.ListMembers(c.Request.Context()); err == nil {
		ctx["users"] = members
	}
	return ctx
}

// ShowAddInstructor renders the blank instructor form.
func (h *CatalogHandler) ShowAddInstructor(c *gin.Context) {
	h.renderer.Page(c, http.StatusOK, "instructor_form", h.instructorFormContext(c))
}

// AddInstructor creates an instructor from the posted form.
func (h *CatalogHandler) AddInstructor(c *gin.Context) {
	var form InstructorForm
	if err := c.ShouldBind(&form); err != nil {
		ctx := h.instructorFormContext(c)
		ctx["errors"] = fieldErrors(err)
		h.renderer.Page(c, http.StatusBadRequest, "instructor_form", ctx)
		return
	}

	userID, err := primitive.ObjectIDFromHex(form.UserID)
	if err != nil {
		ctx := h.instructorFormContext(c)
		ctx["errors"] = map[string]string{"UserID": "invalid user"}
		h.renderer.Page(c, http.StatusBadRequest, "instructor_form", ctx)
		return
	}

	_, err = h.catalogService.CreateInstructor(c.Request.Context(), userID, form.Specialty, form.Bio)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			ctx := h.instructorFormContext(c)
			ctx["errors"] = map[string]string{"UserID": "user does not exist"}
			h.renderer.Page(c, http.StatusBadRequest, "instructor_form", ctx)
		case errors.Is(err, service.ErrInstructorHasUser):
			ctx := h.instructorFormContext(c)
			ctx["errors"] = map[string]string{"UserID": "user is already an instructor"}
			h.renderer.Page(c, http.StatusConflict, "instructor_form", ctx)
		default:
			abortWithError(c, http.StatusInternalServerError, "Could not create instructor")
		}
		return
	}

	redirectWithFlash(c, "/instructors/", "Instructor added.")
}

// ShowEditInstructor renders the pre-filled instructor form.
func (h *CatalogHandler) ShowEditInstructor(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	instructor, err := h.catalogService.GetInstructor(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrInstructorNotFound) {
			abortWithError(c, http.StatusNotFound, "instructor not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Could not load instructor")
		return
	}
	ctx := h.instructorFormContext(c)
	ctx["instructor"] = instructor
	h.renderer.Page(c, http.StatusOK, "instructor_form", ctx)
}

// EditInstructor applies the posted changes. The linked user is immutable.
func (h *CatalogHandler) EditInstructor(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var form InstructorEditForm
	if err := c.ShouldBind(&form); err != nil {
		ctx := h.instructorFormContext(c)
		ctx["errors"] = fieldErrors(err)
		h.renderer.Page(c, http.StatusBadRequest, "instructor_form", ctx)
		return
	}

	_, err := h.catalogService.UpdateInstructor(c.Request.Context(), id, form.Specialty, form.Bio)
	if err != nil {
		if errors.Is(err, service.ErrInstructorNotFound) {
			abortWithError(c, http.StatusNotFound, "instructor not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Could not update instructor")
		return
	}

	redirectWithFlash(c, "/instructors/", "Instructor updated.")
}

// ShowDeleteInstructor renders the delete confirmation page.
func (h *CatalogHandler) ShowDeleteInstructor(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	instructor, err := h.catalogService.GetInstructor(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrInstructorNotFound) {
			abortWithError(c, http.StatusNotFound, "instructor not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Could not load instructor")
		return
	}
	h.renderer.Page(c, http.StatusOK, "confirm_delete", gin.H{
		"kind":   "instructor",
		"name":   instructor.Specialty,
		"action": "/instructors/delete/" + id.Hex() + "/",
	})
}

// DeleteInstructor removes the instructor and cascades to their routines and
// exercises.
func (h *CatalogHandler) DeleteInstructor(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteInstructor(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrInstructorNotFound) {
			abortWithError(c, http.StatusNotFound, "instructor not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Could not delete instructor")
		return
	}
	redirectWithFlash(c, "/instructors/", "Instructor deleted.")
}

// PhotoUpload is the two-step presigned upload flow. A post with a content
// type returns a presigned PUT URL; a post with the object key confirms the
// upload and replaces any previous photo.
func (h *CatalogHandler) PhotoUpload(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var form PhotoUploadForm
	if err := c.ShouldBind(&form); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid photo upload request")
		return
	}

	if form.ObjectKey != "" {
		if err := h.catalogService.ConfirmPhotoUpload(c.Request.Context(), id, form.ObjectKey); err != nil {
			if errors.Is(err, service.ErrInstructorNotFound) {
				abortWithError(c, http.StatusNotFound, "instructor not found")
				return
			}
			abortWithError(c, http.StatusInternalServerError, "Could not confirm photo upload")
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "confirmed"})
		return
	}

	grant, err := h.catalogService.RequestPhotoUploadURL(c.Request.Context(), id, form.ContentType)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInstructorNotFound):
			abortWithError(c, http.StatusNotFound, "instructor not found")
		case errors.Is(err, service.ErrInvalidPhotoContent):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Could not generate upload URL")
		}
		return
	}
	c.JSON(http.StatusOK, grant)
}

// === Routines ===

// ListRoutines renders the routine list with instructor names and enrollment
// counts.
func (h *CatalogHandler) ListRoutines(c *gin.Context) {
	routines, err := h.catalogService.ListRoutines(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not load routines")
		return
	}
	h.renderer.Page(c, http.StatusOK, "routine_list", gin.H{"routines": routines})
}

func (h *CatalogHandler) routineFormContext(c *gin.Context) gin.H {
	ctx := gin.H{}
	if instructors, err := h.catalogService.ListInstructors(c.Request.Context()); err == nil {
		ctx["instructors"] = instructors
	}
	return ctx
}

// ShowAddRoutine renders the blank routine form.
func (h *CatalogHandler) ShowAddRoutine(c *gin.Context) {
	h.renderer.Page(c, http.StatusOK, "routine_form", h.routineFormContext(c))
}

// AddRoutine creates a routine from the posted form.
func (h *CatalogHandler) AddRoutine(c *gin.Context) {
	var form RoutineForm
	if err := c.ShouldBind(&form); err != nil {
		ctx := h.routineFormContext(c)
		ctx["errors"] = fieldErrors(err)
		h.renderer.Page(c, http.StatusBadRequest, "routine_form", ctx)
		return
	}

	instructorID, err := primitive.ObjectIDFromHex(form.InstructorID)
	if err != nil {
		ctx := h.routineFormContext(c)
		ctx["errors"] = map[string]string{"InstructorID": "invalid instructor"}
		h.renderer.Page(c, http.StatusBadRequest, "routine_form", ctx)
		return
	}

	_, err = h.catalogService.CreateRoutine(c.Request.Context(), form.Name, form.Description, instructorID, form.DurationMinutes)
	if err != nil {
		if errors.Is(err, service.ErrInstructorNotFound) {
			ctx := h.routineFormContext(c)
			ctx["errors"] = map[string]string{"InstructorID": "instructor does not exist"}
			h.renderer.Page(c, http.StatusBadRequest, "routine_form", ctx)
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Could not create routine")
		return
	}

	redirectWithFlash(c, "/routines/", "Routine added.")
}

// ShowEditRoutine renders the pre-filled routine form.
func (h *CatalogHandler) ShowEditRoutine(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	routine, err := h.catalogService.GetRoutine(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrRoutineNotFound) {
			abortWithError(c, http.StatusNotFound, "routine not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Could not load routine")
		return
	}
	ctx := h.routineFormContext(c)
	ctx["routine"] = routine
	h.renderer.Page(c, http.StatusOK, "routine_form", ctx)
}

// EditRoutine applies the posted changes.
func (h *CatalogHandler) EditRoutine(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var form RoutineForm
	if err := c.ShouldBind(&form); err != nil {
		ctx := h.routineFormContext(c)
		ctx["errors"] = fieldErrors(err)
		h.renderer.Page(c, http.StatusBadRequest, "routine_form", ctx)
		return
	}

	instructorID, err := primitive.ObjectIDFromHex(form.InstructorID)
	if err != nil {
		ctx := h.routineFormContext(c)
		ctx["errors"] = map[string]string{"InstructorID": "invalid instructor"}
		h.renderer.Page(c, http.StatusBadRequest, "routine_form", ctx)
		return
	}

	_, err = h.catalogService.UpdateRoutine(c.Request.Context(), id, form.Name, form.Description, instructorID, form.DurationMinutes)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRoutineNotFound):
			abortWithError(c, http.StatusNotFound, "routine not found")
		case errors.Is(err, service.ErrInstructorNotFound):
			ctx := h.routineFormContext(c)
			ctx["errors"] = map[string]string{"InstructorID": "instructor does not exist"}
			h.renderer.Page(c, http.StatusBadRequest, "routine_form", ctx)
		default:
			abortWithError(c, http.StatusInternalServerError, "Could not update routine")
		}
		return
	}

	redirectWithFlash(c, "/routines/", "Routine updated.")
}

// ShowDeleteRoutine renders the delete confirmation page.
func (h *CatalogHandler) ShowDeleteRoutine(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	routine, err := h.catalogService.GetRoutine(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrRoutineNotFound) {
			abortWithError(c, http.StatusNotFound, "routine not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Could not load routine")
		return
	}
	h.renderer.Page(c, http.StatusOK, "confirm_delete", gin.H{
		"kind":   "routine",
		"name":   routine.Name,
		"action": "/routines/delete/" + id.Hex() + "/",
	})
}

// DeleteRoutine removes the routine and its exercises.
func (h *CatalogHandler) DeleteRoutine(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteRoutine(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrRoutineNotFound) {
			abortWithError(c, http.StatusNotFound, "routine not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Could not delete routine")
		return
	}
	redirectWithFlash(c, "/routines/", "Routine deleted.")
}

// === Exercises ===

// ListExercises renders the exercise list with routine names resolved.
func (h *CatalogHandler) ListExercises(c *gin.Context) {
	exercises, err := h.catalogService.ListExercises(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not load exercises")
		return
	}
	h.renderer.Page(c, http.StatusOK, "exercise_list", gin.H{"exercises": exercises})
}

func (h *CatalogHandler) exerciseFormContext(c *gin.Context) gin.H {
	ctx := gin.H{}
	if routines, err := h.catalogService.ListRoutines(c.Request.Context()); err == nil {
		ctx["routines"] = routines
	}
	return ctx
}

// ShowAddExercise renders the blank exercise form.
func (h *CatalogHandler) ShowAddExercise(c *gin.Context) {
	h.renderer.Page(c, http.StatusOK, "exercise_form", h.exerciseFormContext(c))
}

// AddExercise creates an exercise from the posted form.
func (h *CatalogHandler) AddExercise(c *gin.Context) {
	var form ExerciseForm
	if err := c.ShouldBind(&form); err != nil {
		ctx := h.exerciseFormContext(c)
		ctx["errors"] = fieldErrors(err)
		h.renderer.Page(c, http.StatusBadRequest, "exercise_form", ctx)
		return
	}

	routineID, err := primitive.ObjectIDFromHex(form.RoutineID)
	if err != nil {
		ctx := h.exerciseFormContext(c)
		ctx["errors"] = map[string]string{"RoutineID": "invalid routine"}
		h.renderer.Page(c, http.StatusBadRequest, "exercise_form", ctx)
		return
	}

	_, err = h.catalogService.CreateExercise(c.Request.Context(), routineID, form.Name, form.Description, form.Repetitions)
	if err != nil {
		if errors.Is(err, service.ErrRoutineNotFound) {
			ctx := h.exerciseFormContext(c)
			ctx["errors"] = map[string]string{"RoutineID": "routine does not exist"}
			h.renderer.Page(c, http.StatusBadRequest, "exercise_form", ctx)
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Could not create exercise")
		return
	}

	redirectWithFlash(c, "/exercises/", "Exercise added.")
}

// ShowEditExercise renders the pre-filled exercise form.
func (h *CatalogHandler) ShowEditExercise(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	exercise, err := h.catalogService.GetExercise(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, "exercise not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Could not load exercise")
		return
	}
	ctx := h.exerciseFormContext(c)
	ctx["exercise"] = exercise
	h.renderer.Page(c, http.StatusOK, "exercise_form", ctx)
}

// EditExercise applies the posted changes.
func (h *CatalogHandler) EditExercise(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var form ExerciseForm
	if err := c.ShouldBind(&form); err != nil {
		ctx := h.exerciseFormContext(c)
		ctx["errors"] = fieldErrors(err)
		h.renderer.Page(c, http.StatusBadRequest, "exercise_form", ctx)
		return
	}

	routineID, err := primitive.ObjectIDFromHex(form.RoutineID)
	if err != nil {
		ctx := h.exerciseFormContext(c)
		ctx["errors"] = map[string]string{"RoutineID": "invalid routine"}
		h.renderer.Page(c, http.StatusBadRequest, "exercise_form", ctx)
		return
	}

	_, err = h.catalogService.UpdateExercise(c.Request.Context(), id, routineID, form.Name, form.Description, form.Repetitions)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExerciseNotFound):
			abortWithError(c, http.StatusNotFound, "exercise not found")
		case errors.Is(err, service.ErrRoutineNotFound):
			ctx := h.exerciseFormContext(c)
			ctx["errors"] = map[string]string{"RoutineID": "routine does not exist"}
			h.renderer.Page(c, http.StatusBadRequest, "exercise_form", ctx)
		default:
			abortWithError(c, http.StatusInternalServerError, "Could not update exercise")
		}
		return
	}

	redirectWithFlash(c, "/exercises/", "Exercise updated.")
}

// ShowDeleteExercise renders the delete confirmation page.
func (h *CatalogHandler) ShowDeleteExercise(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	exercise, err := h.catalogService.GetExercise(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, "exercise not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Could not load exercise")
		return
	}
	h.renderer.Page(c, http.StatusOK, "confirm_delete", gin.H{
		"kind":   "exercise",
		"name":   exercise.Name,
		"action": "/exercises/delete/" + id.Hex() + "/",
	})
}

// DeleteExercise removes the exercise.
func (h *CatalogHandler) DeleteExercise(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteExercise(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, "exercise not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Could not delete exercise")
		return
	}
	redirectWithFlash(c, "/exercises/", "Exercise deleted.")
}
