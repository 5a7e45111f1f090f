package routes

import (
	handlers "lifeline/internal/handlers/shared"
	"lifeline/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupResponderRoutes sets up location pings and device registration
// feeding the notification fan-out.
func SetupResponderRoutes(r *gin.RouterGroup, responderHandler *handlers.ResponderHandler, jwtSecret string) {
	responders := r.Group("/responders")
	responders.Use(middleware.AuthRequired(jwtSecret))
	{
		responders.PUT("/location", responderHandler.UpdateLocation)
		responders.POST("/devices", responderHandler.RegisterDevice)
	}
}
