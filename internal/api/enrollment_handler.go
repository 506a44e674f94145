package api

import (
	"errors"
	"net/http"

	"fitstudio/studio-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EnrollmentHandler serves the client-facing routine browsing and the
// enrollment toggle.
type EnrollmentHandler struct {
	enrollmentService service.EnrollmentService
	memberService     service.MemberService
	renderer          *Renderer
}

// NewEnrollmentHandler creates a new EnrollmentHandler.
func NewEnrollmentHandler(enrollmentService service.EnrollmentService, memberService service.MemberService, renderer *Renderer) *EnrollmentHandler {
	return &EnrollmentHandler{
		enrollmentService: enrollmentService,
		memberService:     memberService,
		renderer:          renderer,
	}
}

// clientProfileID resolves the acting client's profile, creating a blank one
// for accounts that predate profiles. Returns false after writing the
// response when the actor is not a client.
func (h *EnrollmentHandler) clientProfileID(c *gin.Context) (primitive.ObjectID, bool) {
	actor := actorFrom(c)
	if actor.Role.IsAdmin() {
		// Admins manage routines elsewhere; guide them there.
		redirectWithFlash(c, "/routines/", "Admins manage routines from the admin section.")
		return primitive.NilObjectID, false
	}

	if actor.Profile != nil {
		return actor.Profile.ID, true
	}
	profile, err := h.memberService.ProfileForEdit(c.Request.Context(), actor.User.ID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not load profile")
		return primitive.NilObjectID, false
	}
	return profile.ID, true
}

// MyRoutines renders every routine with the viewer's enrollment state.
func (h *EnrollmentHandler) MyRoutines(c *gin.Context) {
	profileID, ok := h.clientProfileID(c)
	if !ok {
		return
	}

	routines, err := h.enrollmentService.BrowseForClient(c.Request.Context(), profileID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not load routines")
		return
	}

	h.renderer.Page(c, http.StatusOK, "my_routines", gin.H{"routines": routines})
}

// Toggle flips the viewer's enrollment in the routine. One post joins, the
// next leaves; the store keeps concurrent retries from double-applying.
func (h *EnrollmentHandler) Toggle(c *gin.Context) {
	profileID, ok := h.clientProfileID(c)
	if !ok {
		return
	}

	routineID, ok := pathID(c, "id")
	if !ok {
		return
	}

	joined, err := h.enrollmentService.Toggle(c.Request.Context(), profileID, routineID)
	if err != nil {
		if errors.Is(err, service.ErrRoutineNotFound) {
			abortWithError(c, http.StatusNotFound, "routine not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Could not update enrollment")
		return
	}

	if joined {
		redirectWithFlash(c, "/my-routines/", "You joined the routine.")
	} else {
		redirectWithFlash(c, "/my-routines/", "You left the routine.")
	}
}
