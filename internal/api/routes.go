package api

import (
	"time"

	"fitstudio/studio-app/internal/domain"
	"fitstudio/studio-app/internal/metrics"
	"fitstudio/studio-app/internal/service"
	"fitstudio/studio-app/internal/weather"

	"github.com/gin-gonic/gin"
)

// SetupRoutes registers the whole HTTP surface on the router. weatherClient
// may be nil; exposeMetrics controls the /metrics endpoint.
func SetupRoutes(
	router *gin.Engine,
	renderer *Renderer,
	authService service.AuthService,
	membershipService service.MembershipService,
	enrollmentService service.EnrollmentService,
	catalogService service.CatalogService,
	memberService service.MemberService,
	weatherClient *weather.Client,
	tokenTTL time.Duration,
	exposeMetrics bool,
) {
	authHandler := NewAuthHandler(authService, renderer, tokenTTL)
	pagesHandler := NewPagesHandler(weatherClient, membershipService, enrollmentService, memberService, catalogService, renderer)
	membershipHandler := NewMembershipHandler(membershipService, renderer)
	catalogHandler := NewCatalogHandler(catalogService, memberService, renderer)
	memberHandler := NewMemberHandler(memberService, membershipService, renderer)
	enrollmentHandler := NewEnrollmentHandler(enrollmentService, memberService, renderer)

	router.Use(metrics.Middleware())
	router.Use(AuthMiddleware(authService))

	// Ops endpoints.
	router.GET("/health", pagesHandler.Health)
	if exposeMetrics {
		router.GET("/metrics", metrics.Handler())
	}

	// Public pages.
	router.GET("/", pagesHandler.Home)
	router.GET("/about/", pagesHandler.About)
	router.GET("/contact/", pagesHandler.Contact)
	router.GET("/login/", authHandler.ShowLogin)
	router.POST("/login/", authHandler.Login)
	router.GET("/register/", authHandler.ShowRegister)
	router.POST("/register/", authHandler.Register)

	// Authenticated pages.
	authed := router.Group("")
	authed.Use(RequireAuthenticated())
	{
		authed.GET("/logout/", authHandler.Logout)
		authed.GET("/dashboard/", pagesHandler.Dashboard)
		authed.GET("/add-membership/", membershipHandler.ShowAdd)
		authed.POST("/add-membership/", membershipHandler.Add)

		// Client routine browsing and enrollment. Admins are guided away
		// inside the handlers.
		authed.GET("/my-routines/", enrollmentHandler.MyRoutines)
		authed.POST("/my-routines/:id/toggle/", enrollmentHandler.Toggle)
	}

	// Admin browsing pages. A logged-in client who lands on one of these is
	// guided back to their dashboard; everything else admin-side stays a
	// hard 403.
	browsing := router.Group("")
	browsing.Use(AdminBrowsing())
	{
		browsing.GET("/admin-panel/", pagesHandler.AdminPanel)
		browsing.GET("/routines/", catalogHandler.ListRoutines)
		browsing.GET("/exercises/", catalogHandler.ListExercises)
		browsing.GET("/instructors/", catalogHandler.ListInstructors)
		browsing.GET("/members/", memberHandler.List)
	}

	// Admin mutations and drill-down pages. These refuse with 403 rather
	// than redirecting.
	admin := router.Group("")
	admin.Use(RequireRole(domain.RoleAdmin))
	{
		admin.GET("/routines/add/", catalogHandler.ShowAddRoutine)
		admin.POST("/routines/add/", catalogHandler.AddRoutine)
		admin.GET("/routines/edit/:id/", catalogHandler.ShowEditRoutine)
		admin.POST("/routines/edit/:id/", catalogHandler.EditRoutine)
		admin.GET("/routines/delete/:id/", catalogHandler.ShowDeleteRoutine)
		admin.POST("/routines/delete/:id/", catalogHandler.DeleteRoutine)

		admin.GET("/exercises/add/", catalogHandler.ShowAddExercise)
		admin.POST("/exercises/add/", catalogHandler.AddExercise)
		admin.GET("/exercises/edit/:id/", catalogHandler.ShowEditExercise)
		admin.POST("/exercises/edit/:id/", catalogHandler.EditExercise)
		admin.GET("/exercises/delete/:id/", catalogHandler.ShowDeleteExercise)
		admin.POST("/exercises/delete/:id/", catalogHandler.DeleteExercise)

		admin.GET("/instructors/add/", catalogHandler.ShowAddInstructor)
		admin.POST("/instructors/add/", catalogHandler.AddInstructor)
		admin.GET("/instructors/edit/:id/", catalogHandler.ShowEditInstructor)
		admin.POST("/instructors/edit/:id/", catalogHandler.EditInstructor)
		admin.GET("/instructors/delete/:id/", catalogHandler.ShowDeleteInstructor)
		admin.POST("/instructors/delete/:id/", catalogHandler.DeleteInstructor)
		admin.POST("/instructors/:id/photo-upload/", catalogHandler.PhotoUpload)

		admin.GET("/members/export/", memberHandler.Export)
		admin.GET("/members/:userId/edit/", memberHandler.ShowEdit)
		admin.POST("/members/:userId/edit/", memberHandler.Edit)

		// Both methods perform the delete; the historical surface had no
		// method guard here and callers rely on the GET form.
		admin.GET("/delete-user/:userId/", memberHandler.Delete)
		admin.POST("/delete-user/:userId/", memberHandler.Delete)
	}
}
