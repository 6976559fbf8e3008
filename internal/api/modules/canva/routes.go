package canva_module

import (
	"github.com/gin-gonic/gin"

	auth_module "github.com/launchkite/launchkite/internal/api/modules/auth"
)

// Register routes for the canva module
func RegisterRoutes(g *gin.RouterGroup) {
	// Create base group for design routes; everything requires a session
	group := g.Group("/canva")
	group.Use(auth_module.RequireSession())

	group.GET("/designs", ListDesigns)
	group.POST("/designs/:id/export", ExportDesign)
}
