package handler

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/sooryaakilesh10/place-pro-platform-88/internal/middleware"
	"github.com/sooryaakilesh10/place-pro-platform-88/internal/policy"
)

// Handlers groups every HTTP handler mounted by RegisterRoutes.
type Handlers struct {
	Auth         *AuthHandler
	Users        *UserHandler
	Companies    *CompanyHandler
	PendingEdits *PendingEditHandler
	Calendar     *CalendarHandler
	Dashboard    *DashboardHandler
	Reports      *ReportHandler
	Ops          *MetricsHandler
}

// RouterConfig controls route mounting.
type RouterConfig struct {
	APIPrefix  string
	EnableDocs bool
}

// RegisterRoutes mounts ops endpoints at the root and the API under cfg.APIPrefix.
// auth must authenticate the request and attach JWT claims.
func RegisterRoutes(r *gin.Engine, cfg RouterConfig, h Handlers, auth gin.HandlerFunc) {
	r.GET("/health", h.Ops.Health)
	r.GET("/ready", h.Ops.Ready)
	r.GET("/metrics", h.Ops.Prometheus)
	if cfg.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	prefix := cfg.APIPrefix
	if prefix == "" {
		prefix = "/api/v1"
	}
	api := r.Group(prefix)
	api.Use(middleware.WithResponseMeta())

	authGroup := api.Group("/auth")
	authGroup.POST("/login", h.Auth.Login)
	authGroup.POST("/refresh", h.Auth.Refresh)
	authGroup.POST("/logout", auth, h.Auth.Logout)
	authGroup.GET("/me", auth, h.Auth.Me)
	authGroup.POST("/change-password", auth, h.Auth.ChangePassword)

	api.GET("/export/:token", h.Reports.Download)

	secured := api.Group("")
	secured.Use(auth)

	companies := secured.Group("/companies")
	companies.GET("", h.Companies.List)
	companies.GET("/:id", h.Companies.Get)
	companies.POST("", middleware.RequirePermission(policy.OpCreate), h.Companies.Create)
	companies.PATCH("/:id", middleware.RequirePermission(policy.OpDirectEdit, policy.OpProposeEdit), h.Companies.Update)
	companies.DELETE("/:id", middleware.RequirePermission(policy.OpDelete), h.Companies.Delete)
	companies.POST("/:id/officers", middleware.RequirePermission(policy.OpAssignOfficer), h.Companies.AssignOfficer)
	companies.DELETE("/:id/officers/:officerId", middleware.RequirePermission(policy.OpAssignOfficer), h.Companies.UnassignOfficer)

	edits := secured.Group("/pending-edits")
	edits.GET("", middleware.RequirePermission(policy.OpApprove), h.PendingEdits.List)
	edits.GET("/mine", middleware.RequirePermission(policy.OpProposeEdit), h.PendingEdits.Mine)
	edits.GET("/:id", h.PendingEdits.Get)
	edits.POST("/:id/approve", middleware.RequirePermission(policy.OpApprove), h.PendingEdits.Approve)
	edits.POST("/:id/reject", middleware.RequirePermission(policy.OpReject), h.PendingEdits.Reject)

	secured.GET("/dashboard", h.Dashboard.Stats)
	secured.GET("/dashboard/system", middleware.RequirePermission(policy.OpManageUsers), h.Dashboard.System)

	events := secured.Group("/events")
	viewEvents := middleware.RequirePermission(policy.OpViewEvents)
	manageEvents := middleware.RequirePermission(policy.OpManageEvents)
	events.GET("", viewEvents, h.Calendar.List)
	events.GET("/date/:date", viewEvents, h.Calendar.ByDate)
	events.GET("/type/:type", viewEvents, h.Calendar.ByType)
	events.GET("/:id", viewEvents, h.Calendar.Get)
	events.POST("", manageEvents, h.Calendar.Create)
	events.PUT("/:id", manageEvents, h.Calendar.Update)
	events.DELETE("/:id", manageEvents, h.Calendar.Delete)

	reports := secured.Group("/reports", middleware.RequirePermission(policy.OpViewReports))
	reports.GET("/companies", h.Reports.Companies)
	reports.POST("/companies/export", h.Reports.Export)

	users := secured.Group("/users")
	manageUsers := middleware.RequirePermission(policy.OpManageUsers)
	users.GET("/officers", middleware.RequirePermission(policy.OpAssignOfficer), h.Users.Officers)
	users.GET("", manageUsers, h.Users.List)
	users.GET("/:id", manageUsers, h.Users.Get)
	users.POST("", manageUsers, h.Users.Create)
	users.PUT("/:id", manageUsers, h.Users.Update)
	users.DELETE("/:id", manageUsers, h.Users.Delete)
}
