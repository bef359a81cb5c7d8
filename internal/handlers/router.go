package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/wooglin/roster-api/internal/metrics"
	"github.com/wooglin/roster-api/internal/middleware"
	"github.com/wooglin/roster-api/internal/services"
)

// Routes bundles what RegisterRoutes wires onto the engine.
type Routes struct {
	AuthService *services.AuthService
	APIKeys     []string
	Metrics     *metrics.Metrics

	Auth    *AuthHandler
	Members *MemberHandler
	Shifts  *ShiftHandler
	Events  *EventHandler
	Health  *HealthHandler
}

// RegisterRoutes mounts the API on r. Session middleware must already be
// installed.
func RegisterRoutes(r *gin.Engine, rt Routes) {
	if rt.Health != nil {
		r.GET("/health", rt.Health.Health)
	}
	if rt.Metrics != nil {
		r.GET("/metrics", gin.WrapH(rt.Metrics.Handler()))
	}

	requireAuth := middleware.RequireAuth(rt.AuthService)
	requireAdmin := middleware.RequireAdmin()

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", rt.Auth.Login)
			auth.POST("/logout", rt.Auth.Logout)
			auth.GET("/me", requireAuth, rt.Auth.GetCurrentUser)
			auth.POST("/password", requireAuth, rt.Auth.ChangePassword)
		}

		members := api.Group("/members")
		members.Use(requireAuth)
		{
			members.GET("", rt.Members.ListMembers)
			members.POST("", requireAdmin, rt.Members.CreateMember)
			members.DELETE("", requireAdmin, rt.Members.DeleteMember)
			members.GET("/:id", rt.Members.GetMember)
			members.PUT("/:id", requireAdmin, rt.Members.ReplaceMember)
			members.PATCH("/:id", requireAdmin, rt.Members.UpdateMember)
			members.DELETE("/:id", requireAdmin, rt.Members.DeleteMember)
		}

		api.GET("/shifts/upcoming", middleware.RequireAPIKeyOrAuth(rt.APIKeys, rt.AuthService), rt.Shifts.UpcomingShifts)

		shifts := api.Group("/shifts")
		shifts.Use(requireAuth)
		{
			shifts.GET("", rt.Shifts.ListShifts)
			shifts.POST("", requireAdmin, rt.Shifts.CreateShift)
			shifts.GET("/:id", rt.Shifts.GetShift)
			shifts.PUT("/:id", requireAdmin, rt.Shifts.ReplaceShift)
			shifts.PATCH("/:id", requireAdmin, rt.Shifts.UpdateShift)
			shifts.DELETE("/:id", requireAdmin, rt.Shifts.DeleteShift)
			shifts.GET("/:id/brothers", rt.Shifts.ListBrothers)
			shifts.POST("/:id/brothers", rt.Shifts.AddBrother)
			shifts.DELETE("/:id/brothers", rt.Shifts.RemoveBrother)
		}

		events := api.Group("/events")
		events.Use(requireAuth)
		{
			events.GET("", rt.Events.ListEvents)
			events.POST("", requireAdmin, rt.Events.CreateEvent)
			events.GET("/:id", rt.Events.GetEvent)
			events.DELETE("/:id", requireAdmin, rt.Events.DeleteEvent)
			events.POST("/:id/checkins", rt.Events.CheckIn)
			events.GET("/:id/checkins", requireAdmin, rt.Events.ListCheckIns)
			events.POST("/:id/checkins/:guest_id/help", rt.Events.RaiseHelp)
		}
	}
}
