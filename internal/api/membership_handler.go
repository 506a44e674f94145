package api

import (
	"errors"
	"net/http"

	"fitstudio/studio-app/internal/domain"
	"fitstudio/studio-app/internal/service"

	"github.com/gin-gonic/gin"
)

// MembershipHandler serves the membership signup flow.
type MembershipHandler struct {
	membershipService service.MembershipService
	renderer          *Renderer
}

// NewMembershipHandler creates a new MembershipHandler.
func NewMembershipHandler(membershipService service.MembershipService, renderer *Renderer) *MembershipHandler {
	return &MembershipHandler{membershipService: membershipService, renderer: renderer}
}

type MembershipForm struct {
	Plan         domain.PlanType `form:"plan" json:"plan" binding:"required,oneof=basic premium vip"`
	DurationDays int             `form:"duration_days" json:"duration_days" binding:"required,oneof=30 90 365"`
}

// membershipFormContext is the selectable options the form page offers.
func membershipFormContext() gin.H {
	return gin.H{
		"plans":     []domain.PlanType{domain.PlanBasic, domain.PlanPremium, domain.PlanVIP},
		"durations": domain.PlanDurations,
	}
}

// ShowAdd renders the signup form. Users who already hold a membership are
// guided back to the dashboard instead of being refused.
func (h *MembershipHandler) ShowAdd(c *gin.Context) {
	actor := actorFrom(c)

	_, err := h.membershipService.GetForUser(c.Request.Context(), actor.User.ID)
	if err == nil {
		redirectWithFlash(c, "/dashboard/", "You already have a membership.")
		return
	}
	if !errors.Is(err, service.ErrMembershipNotFound) {
		abortWithError(c, http.StatusInternalServerError, "Could not check membership state")
		return
	}

	h.renderer.Page(c, http.StatusOK, "membership_form", membershipFormContext())
}

// Add creates the membership for the logged-in user. Exclusivity is enforced
// by the store, so a concurrent double-submit surfaces here as a conflict and
// is treated the same as the pre-check.
func (h *MembershipHandler) Add(c *gin.Context) {
	actor := actorFrom(c)

	var form MembershipForm
	if err := c.ShouldBind(&form); err != nil {
		ctx := membershipFormContext()
		ctx["errors"] = fieldErrors(err)
		h.renderer.Page(c, http.StatusBadRequest, "membership_form", ctx)
		return
	}

	_, err := h.membershipService.Create(c.Request.Context(), actor.User.ID, form.Plan, form.DurationDays)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMembershipExists):
			redirectWithFlash(c, "/dashboard/", "You already have a membership.")
		case errors.Is(err, service.ErrInvalidPlan), errors.Is(err, service.ErrInvalidDuration):
			ctx := membershipFormContext()
			ctx["errors"] = map[string]string{"form": err.Error()}
			h.renderer.Page(c, http.StatusBadRequest, "membership_form", ctx)
		default:
			abortWithError(c, http.StatusInternalServerError, "Could not create membership")
		}
		return
	}

	redirectWithFlash(c, "/dashboard/", "Membership created. Welcome aboard!")
}
