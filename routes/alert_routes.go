package routes

import (
	handlers "lifeline/internal/handlers/shared"
	"lifeline/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupAlertRoutes sets up routes for the alert lifecycle. Listing,
// stats, and status changes are dashboard operations behind the admin
// gate.
func SetupAlertRoutes(r *gin.RouterGroup, alertHandler *handlers.AlertHandler, jwtSecret string) {
	alerts := r.Group("/alerts")
	alerts.Use(middleware.AuthRequired(jwtSecret))
	{
		alerts.POST("", alertHandler.CreateAlert)
		alerts.GET("/my-alerts", alertHandler.GetMyAlerts)
		alerts.GET("/:id", alertHandler.GetAlert)

		alerts.GET("", middleware.AdminRequired(), alertHandler.ListAlerts)
		alerts.GET("/stats", middleware.AdminRequired(), alertHandler.GetAlertStats)
		alerts.PATCH("/:id", middleware.AdminRequired(), alertHandler.UpdateAlertStatus)
	}
}
