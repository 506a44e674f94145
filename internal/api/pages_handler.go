package api

import (
	"errors"
	"net/http"
	"time"

	"fitstudio/studio-app/internal/service"
	"fitstudio/studio-app/internal/weather"

	"github.com/gin-gonic/gin"
)

// PagesHandler serves the public pages and the role-dispatched dashboard.
type PagesHandler struct {
	weatherClient     *weather.Client
	membershipService service.MembershipService
	enrollmentService service.EnrollmentService
	memberService     service.MemberService
	catalogService    service.CatalogService
	renderer          *Renderer
	now               func() time.Time
}

// NewPagesHandler creates a new PagesHandler. weatherClient may be nil when
// no provider is configured; the pages then render without weather.
func NewPagesHandler(
	weatherClient *weather.Client,
	membershipService service.MembershipService,
	enrollmentService service.EnrollmentService,
	memberService service.MemberService,
	catalogService service.CatalogService,
	renderer *Renderer,
) *PagesHandler {
	return &PagesHandler{
		weatherClient:     weatherClient,
		membershipService: membershipService,
		enrollmentService: enrollmentService,
		memberService:     memberService,
		catalogService:    catalogService,
		renderer:          renderer,
		now:               time.Now,
	}
}

// Home renders the landing page with a current-weather snapshot. Weather
// failures degrade to a notice in the context and never block the page.
func (h *PagesHandler) Home(c *gin.Context) {
	ctx := gin.H{"actor_role": actorFrom(c).Role}

	if h.weatherClient != nil {
		current, err := h.weatherClient.CurrentConditions(c.Request.Context())
		if err != nil {
			ctx["weather_error"] = "weather is currently unavailable"
		} else {
			ctx["weather"] = current
		}
	}

	h.renderer.Page(c, http.StatusOK, "home", ctx)
}

// About renders the static about page.
func (h *PagesHandler) About(c *gin.Context) {
	h.renderer.Page(c, http.StatusOK, "about", gin.H{"actor_role": actorFrom(c).Role})
}

// Contact renders the static contact page.
func (h *PagesHandler) Contact(c *gin.Context) {
	h.renderer.Page(c, http.StatusOK, "contact", gin.H{"actor_role": actorFrom(c).Role})
}

// Dashboard renders the authenticated landing page. Clients see their
// membership state and enrollments, admins see studio totals. Both get the
// five-day forecast when the provider answers. A client without a membership
// is guided straight to the signup form; a fresh registration lands here and
// follows that redirect into membership creation.
func (h *PagesHandler) Dashboard(c *gin.Context) {
	actor := actorFrom(c)
	ctx := gin.H{
		"actor_role": actor.Role,
		"username":   actor.User.Username,
	}

	if !actor.Role.IsAdmin() {
		if done := h.fillClientDashboard(c, actor, ctx); done {
			return
		}
	}

	if h.weatherClient != nil {
		daily, err := h.weatherClient.DailyForecast(c.Request.Context())
		if err != nil {
			ctx["forecast_error"] = "forecast is currently unavailable"
		} else {
			ctx["forecast"] = daily
		}
	}

	if actor.Role.IsAdmin() {
		h.fillAdminDashboard(c, ctx)
	}

	h.renderer.Page(c, http.StatusOK, "dashboard", ctx)
}

// fillClientDashboard loads the client's membership state into ctx. It
// reports true when it already wrote the response, which happens when the
// client holds no membership and is redirected to signup.
func (h *PagesHandler) fillClientDashboard(c *gin.Context, actor *service.Actor, ctx gin.H) bool {
	membership, err := h.membershipService.GetForUser(c.Request.Context(), actor.User.ID)
	switch {
	case err == nil:
		ctx["membership"] = membership
		ctx["days_remaining"] = membership.DaysRemaining(h.now())
		ctx["expired"] = membership.Expired(h.now())
	case errors.Is(err, service.ErrMembershipNotFound):
		redirectWithFlash(c, "/add-membership/", "Pick a membership plan to get started.")
		return true
	default:
		ctx["membership_error"] = "could not load membership"
	}

	if actor.Profile != nil {
		routines, err := h.enrollmentService.BrowseForClient(c.Request.Context(), actor.Profile.ID)
		if err == nil {
			enrolled := 0
			for _, r := range routines {
				if r.Enrolled {
					enrolled++
				}
			}
			ctx["enrolled_count"] = enrolled
		}
	}
	return false
}

func (h *PagesHandler) fillAdminDashboard(c *gin.Context, ctx gin.H) {
	if members, err := h.memberService.ListMembers(c.Request.Context()); err == nil {
		ctx["member_count"] = len(members)
		active := 0
		for _, m := range members {
			if m.Membership != nil && m.Membership.DaysRemaining(h.now()) > 0 {
				active++
			}
		}
		ctx["active_membership_count"] = active
	}
	if routines, err := h.catalogService.ListRoutines(c.Request.Context()); err == nil {
		ctx["routine_count"] = len(routines)
	}
	if instructors, err := h.catalogService.ListInstructors(c.Request.Context()); err == nil {
		ctx["instructor_count"] = len(instructors)
	}
}

// AdminPanel renders the admin landing page with links to the management
// sections.
func (h *PagesHandler) AdminPanel(c *gin.Context) {
	ctx := gin.H{"actor_role": actorFrom(c).Role}
	h.fillAdminDashboard(c, ctx)
	h.renderer.Page(c, http.StatusOK, "admin_panel", ctx)
}

// Health reports process liveness.
func (h *PagesHandler) Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}
