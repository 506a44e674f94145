package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"fitstudio/studio-app/internal/domain"
	"fitstudio/studio-app/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemberHandler serves the admin member-management pages.
type MemberHandler struct {
	memberService     service.MemberService
	membershipService service.MembershipService
	renderer          *Renderer
	now               func() time.Time
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(memberService service.MemberService, membershipService service.MembershipService, renderer *Renderer) *MemberHandler {
	return &MemberHandler{
		memberService:     memberService,
		membershipService: membershipService,
		renderer:          renderer,
		now:               time.Now,
	}
}

type MemberEditForm struct {
	Phone   string `form:"phone" json:"phone"`
	IsAdmin bool   `form:"is_admin" json:"is_admin"`

	// Membership fields are only applied when the member holds one and the
	// form posts a plan.
	Plan         domain.PlanType `form:"plan" json:"plan"`
	DurationDays int             `form:"duration_days" json:"duration_days"`
	IsActive     bool            `form:"is_active" json:"is_active"`
}

// memberRow flattens a member for the roster page and the export.
type memberRow struct {
	UserID        string `json:"userId"`
	Username      string `json:"username"`
	Phone         string `json:"phone"`
	IsAdmin       bool   `json:"isAdmin"`
	Plan          string `json:"plan"`
	StartDate     string `json:"startDate"`
	DurationDays  int    `json:"durationDays"`
	IsActive      bool   `json:"isActive"`
	DaysRemaining int    `json:"daysRemaining"`
}

func (h *MemberHandler) memberRows(members []service.Member) []memberRow {
	now := h.now()
	rows := make([]memberRow, 0, len(members))
	for _, m := range members {
		row := memberRow{
			UserID:   m.User.ID.Hex(),
			Username: m.User.Username,
		}
		if m.Profile != nil {
			row.Phone = m.Profile.Phone
			row.IsAdmin = m.Profile.IsAdmin
		}
		if m.Membership != nil {
			row.Plan = string(m.Membership.PlanType)
			row.StartDate = m.Membership.StartDate.Format("2006-01-02")
			row.DurationDays = m.Membership.DurationDays
			row.IsActive = m.Membership.IsActive
			row.DaysRemaining = m.Membership.DaysRemaining(now)
		}
		rows = append(rows, row)
	}
	return rows
}

// List renders the member roster with membership state resolved.
func (h *MemberHandler) List(c *gin.Context) {
	members, err := h.memberService.ListMembers(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not load members")
		return
	}
	h.renderer.Page(c, http.StatusOK, "member_list", gin.H{"members": h.memberRows(members)})
}

// Export streams the roster as an xlsx workbook.
func (h *MemberHandler) Export(c *gin.Context) {
	members, err := h.memberService.ListMembers(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not load members")
		return
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{
		"username", "phone", "is_admin", "plan", "start_date",
		"duration_days", "is_active", "days_remaining",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not build export")
		return
	}

	row := 2
	for _, m := range h.memberRows(members) {
		excelRow := []interface{}{
			m.Username, m.Phone, m.IsAdmin, m.Plan, m.StartDate,
			m.DurationDays, m.IsActive, m.DaysRemaining,
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, "Could not build export")
			return
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			abortWithError(c, http.StatusInternalServerError, "Could not build export")
			return
		}
		row++
	}

	fileName := fmt.Sprintf("members_%s.xlsx", h.now().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		// Headers are already out; nothing sensible left to send.
		c.Abort()
	}
}

// ShowEdit renders the member edit form. The profile is created on first
// edit when the member never had one.
func (h *MemberHandler) ShowEdit(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	profile, err := h.memberService.ProfileForEdit(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, "user not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Could not load member")
		return
	}

	ctx := gin.H{"profile": profile, "user_id": userID.Hex()}

	membership, err := h.membershipService.GetForUser(c.Request.Context(), userID)
	if err == nil {
		ctx["membership"] = membership
		ctx["days_remaining"] = membership.DaysRemaining(h.now())
	}
	ctx["plans"] = []domain.PlanType{domain.PlanBasic, domain.PlanPremium, domain.PlanVIP}

	h.renderer.Page(c, http.StatusOK, "member_form", ctx)
}

// Edit applies profile changes and, when the member holds a membership and
// the form posts membership fields, membership changes as well. Admins may
// set any positive duration here; the start date stays immutable.
func (h *MemberHandler) Edit(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	var form MemberEditForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderer.Page(c, http.StatusBadRequest, "member_form", gin.H{
			"errors":  fieldErrors(err),
			"user_id": userID.Hex(),
		})
		return
	}

	// Validate the membership half up front so a bad plan or duration
	// re-renders before anything has been written.
	if form.Plan != "" {
		memberErrors := map[string]string{}
		if !domain.ValidPlan(form.Plan) {
			memberErrors["Plan"] = "not one of the offered values"
		}
		if form.DurationDays <= 0 {
			memberErrors["DurationDays"] = "must be greater than zero"
		}
		if len(memberErrors) > 0 {
			h.renderer.Page(c, http.StatusBadRequest, "member_form", gin.H{
				"errors":  memberErrors,
				"user_id": userID.Hex(),
			})
			return
		}
	}

	if _, err := h.memberService.UpdateProfile(c.Request.Context(), userID, form.Phone, form.IsAdmin); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, "user not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Could not update member")
		return
	}

	if form.Plan != "" {
		_, err := h.membershipService.Update(c.Request.Context(), userID, form.Plan, form.DurationDays, form.IsActive)
		if err != nil && !errors.Is(err, service.ErrMembershipNotFound) {
			switch {
			case errors.Is(err, service.ErrInvalidPlan), errors.Is(err, service.ErrInvalidDuration):
				h.renderer.Page(c, http.StatusBadRequest, "member_form", gin.H{
					"errors":  map[string]string{"form": err.Error()},
					"user_id": userID.Hex(),
				})
			default:
				abortWithError(c, http.StatusInternalServerError, "Could not update membership")
			}
			return
		}
	}

	redirectWithFlash(c, "/members/", "Member updated.")
}

// Delete removes the user and everything attached to them. An already
// missing target is reported with a notice, not an error page. Registered
// for both GET and POST.
func (h *MemberHandler) Delete(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		redirectWithFlash(c, "/members/", "That user no longer exists.")
		return
	}

	if err := h.memberService.DeleteUser(c.Request.Context(), userID); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			redirectWithFlash(c, "/members/", "That user no longer exists.")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Could not delete user")
		return
	}

	redirectWithFlash(c, "/members/", "User deleted.")
}
