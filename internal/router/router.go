package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/dang0801205/volunteerhub-sub000/internal/handler"
	"github.com/dang0801205/volunteerhub-sub000/internal/middleware"
	"github.com/dang0801205/volunteerhub-sub000/internal/model"
)

// Handlers bundles everything the route table needs.
type Handlers struct {
	Auth          *handler.AuthHandler
	Events        *handler.EventHandler
	Approvals     *handler.ApprovalHandler
	Registrations *handler.RegistrationHandler
	Attendances   *handler.AttendanceHandler
}

// Register wires the whole route table onto the Echo instance.  /healthz
// and /v1/auth are open; everything else requires a valid access token,
// with the admin-only routes further guarded by role.
func Register(e *echo.Echo, h Handlers, jwtSecret string) {
	e.GET("/healthz", handler.Health)

	// Session endpoints: no JWT required.
	authGroup := e.Group("/v1/auth")
	authGroup.POST("/register", h.Auth.Register)
	authGroup.POST("/login", h.Auth.Login)
	authGroup.POST("/refresh", h.Auth.Refresh)
	authGroup.POST("/logout", h.Auth.Logout)

	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(jwtSecret))
	v1.Use(middleware.RequireRole(model.RoleVolunteer, model.RoleOrganizer, model.RoleAdmin))
	v1.GET("/me", h.Auth.Me)

	// Events.
	v1.GET("/events", h.Events.List)
	v1.GET("/events/:id", h.Events.Get)
	v1.POST("/events", h.Events.Create,
		middleware.RequireRole(model.RoleOrganizer, model.RoleAdmin))
	v1.POST("/events/:id/cancel-request", h.Events.RequestCancel,
		middleware.RequireRole(model.RoleOrganizer, model.RoleAdmin))
	v1.POST("/events/:id/force-cancel", h.Events.ForceCancel,
		middleware.RequireRole(model.RoleAdmin))
	v1.POST("/events/:id/reconcile", h.Events.Reconcile,
		middleware.RequireRole(model.RoleAdmin))

	// Registrations.
	v1.POST("/events/:id/register", h.Registrations.Register)
	v1.GET("/events/:id/registrations", h.Registrations.ListByEvent,
		middleware.RequireRole(model.RoleOrganizer, model.RoleAdmin))
	v1.POST("/registrations/:id/admit", h.Registrations.Admit,
		middleware.RequireRole(model.RoleOrganizer, model.RoleAdmin))
	v1.POST("/registrations/:id/reject", h.Registrations.Reject,
		middleware.RequireRole(model.RoleOrganizer, model.RoleAdmin))
	v1.POST("/registrations/:id/cancel", h.Registrations.Cancel)

	// Attendances.
	v1.GET("/attendances/:id", h.Attendances.Get)
	v1.POST("/attendances/:id/checkout", h.Attendances.CheckOut)
	v1.POST("/attendances/:id/feedback", h.Attendances.SubmitFeedback)

	// Approval queue.
	v1.POST("/approvals", h.Approvals.SubmitPromotion)
	v1.GET("/approvals", h.Approvals.List,
		middleware.RequireRole(model.RoleAdmin))
	v1.GET("/approvals/:id", h.Approvals.Get,
		middleware.RequireRole(model.RoleAdmin))
	v1.POST("/approvals/:id/resolve", h.Approvals.Resolve,
		middleware.RequireRole(model.RoleAdmin))
}
