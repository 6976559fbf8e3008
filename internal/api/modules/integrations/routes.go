package integrations_module

import (
	"github.com/gin-gonic/gin"

	auth_module "github.com/launchkite/launchkite/internal/api/modules/auth"
)

// Register routes for the integrations module
func RegisterRoutes(g *gin.RouterGroup) {
	// Create base group for integration routes; everything requires a session
	group := g.Group("/integrations")
	group.Use(auth_module.RequireSession())

	group.GET("", GetAllStatuses)

	// Canva OAuth flow; registered before the :service routes so gin does
	// not treat "canva" as a service parameter for these paths
	group.GET("/canva/authorize", CanvaAuthorize)
	group.GET("/canva/callback", CanvaCallback)

	group.GET("/:service", GetStatus)
	group.POST("/:service", Connect)
	group.POST("/:service/test", Test)
	group.DELETE("/:service", Disconnect)
}
