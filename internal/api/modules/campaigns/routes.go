package campaigns_module

import (
	"github.com/gin-gonic/gin"

	auth_module "github.com/launchkite/launchkite/internal/api/modules/auth"
)

// Register routes for the campaigns module
func RegisterRoutes(g *gin.RouterGroup) {
	// Create base group for campaign routes; everything requires a session
	group := g.Group("/campaigns")
	group.Use(auth_module.RequireSession())

	group.GET("", ListCampaigns)
	group.POST("", CreateCampaign)
	group.GET("/:id", GetCampaign)
	group.DELETE("/:id", DeleteCampaign)

	// Orchestration actions
	group.POST("/:id/generate-copy", GenerateCopy)
	group.POST("/:id/landing-page", PublishLandingPage)
	group.POST("/:id/docs", CreateDocsPage)
	group.POST("/:id/send-email", SendEmail)
	group.POST("/:id/sync-analytics", SyncAnalytics)
	group.GET("/:id/analytics", GetAnalytics)
}
