package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/handler"
	"fieldpilot/internal/middleware"
	"fieldpilot/internal/service"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth        *handler.AuthHandler
	Tenant      *handler.TenantHandler
	User        *handler.UserHandler
	Client      *handler.ClientHandler
	Job         *handler.JobHandler
	Proposal    *handler.ProposalHandler
	Incident    *handler.IncidentHandler
	WorkSession *handler.WorkSessionHandler
	Media       *handler.MediaHandler
	Dashboard   *handler.DashboardHandler
	Export      *handler.ExportHandler
	Health      *handler.HealthHandler
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	authSvc service.AuthService,
	h Handlers,
	allowedOrigins []string,
	draftLimiter *middleware.TenantLimiter,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/signup", h.Auth.Signup)
	auth.POST("/session", h.Auth.Session)
	auth.POST("/refresh", h.Auth.RefreshToken)
	auth.POST("/signout", h.Auth.Signout)

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))
	protected.Use(middleware.TenantGuard())

	manager := middleware.RequireManager()
	staff := middleware.RequireRole(domain.RoleOwner, domain.RoleAdmin, domain.RoleOperator)
	drafts := draftLimiter.Middleware()

	protected.GET("/auth/me", h.Auth.Me)
	protected.GET("/flows", h.Job.Flows)
	protected.GET("/dashboard", h.Dashboard.Get)

	// Tenant and branding
	tenant := protected.Group("/tenant")
	tenant.GET("", h.Tenant.Get)
	tenant.PUT("", middleware.RequireRole(domain.RoleOwner), h.Tenant.Update)
	tenant.GET("/branding", h.Tenant.GetBranding)
	tenant.PUT("/branding", manager, h.Tenant.SaveBranding)

	// Team management
	users := protected.Group("/users")
	users.POST("", manager, h.User.Invite)
	users.GET("", manager, h.User.List)
	users.GET("/:id", h.User.GetByID)
	users.PUT("/:id", manager, h.User.Update)
	users.DELETE("/:id", manager, h.User.Disable)

	// Clients
	clients := protected.Group("/clients")
	clients.POST("", manager, h.Client.Create)
	clients.GET("", h.Client.List)
	clients.POST("/reconcile", manager, h.Client.ReconcileLinks)
	clients.GET("/:id", h.Client.GetByID)
	clients.PUT("/:id", manager, h.Client.Update)
	clients.DELETE("/:id", manager, h.Client.Delete)
	clients.POST("/:id/link", manager, h.Client.LinkUser)
	clients.DELETE("/:id/link", manager, h.Client.UnlinkUser)

	// Jobs
	jobs := protected.Group("/jobs")
	jobs.POST("", manager, h.Job.Create)
	jobs.GET("", h.Job.List)
	jobs.GET("/needs-assignment", manager, h.Job.NeedingAssignment)
	jobs.GET("/overdue", staff, h.Job.Overdue)
	jobs.GET("/:id", h.Job.GetByID)
	jobs.PUT("/:id", manager, h.Job.Update)
	jobs.DELETE("/:id", manager, h.Job.Delete)
	jobs.POST("/:id/advance", staff, h.Job.Advance)
	jobs.POST("/:id/operators", manager, h.Job.ToggleOperator)

	// Proposals
	proposals := protected.Group("/proposals")
	proposals.POST("", manager, h.Proposal.Create)
	proposals.GET("", h.Proposal.List)
	proposals.GET("/:id", h.Proposal.GetByID)
	proposals.PUT("/:id", manager, h.Proposal.Edit)
	proposals.DELETE("/:id", manager, h.Proposal.Delete)
	proposals.GET("/:id/versions", h.Proposal.Versions)
	proposals.POST("/:id/send", manager, h.Proposal.Send)
	proposals.POST("/:id/approve", h.Proposal.Approve)
	proposals.POST("/:id/reject", h.Proposal.Reject)
	proposals.POST("/:id/convert", manager, h.Proposal.Convert)
	proposals.POST("/:id/draft", manager, drafts, h.Proposal.GenerateDraft)

	// Incidents
	incidents := protected.Group("/incidents")
	incidents.POST("", staff, h.Incident.Create)
	incidents.GET("", h.Incident.List)
	incidents.GET("/:id", h.Incident.GetByID)
	incidents.PUT("/:id", staff, h.Incident.Edit)
	incidents.DELETE("/:id", manager, h.Incident.Delete)
	incidents.PUT("/:id/review", manager, h.Incident.SetReviewNotes)
	incidents.POST("/:id/narrative", staff, drafts, h.Incident.GenerateNarrative)
	incidents.POST("/:id/advance", manager, h.Incident.Advance)

	// Work sessions
	sessions := protected.Group("/sessions")
	sessions.POST("", staff, h.WorkSession.Start)
	sessions.GET("", h.WorkSession.List)
	sessions.GET("/active", staff, h.WorkSession.Active)
	sessions.GET("/:id", h.WorkSession.GetByID)
	sessions.POST("/:id/end", staff, h.WorkSession.End)

	// Media
	media := protected.Group("/media")
	media.GET("/url", h.Media.DownloadURL)
	media.POST("/:owner/:id", h.Media.Upload)

	// Exports
	exports := protected.Group("/exports")
	exports.Use(manager)
	exports.GET("/jobs.csv", h.Export.JobsCSV)
	exports.GET("/timesheet.xlsx", h.Export.TimesheetXLSX)

	return r
}
