package auth_module

import (
	"github.com/gin-gonic/gin"
)

// Register routes for the auth module
func RegisterRoutes(g *gin.RouterGroup) {
	// Create base group for auth routes
	group := g.Group("/auth")

	// Public routes (account creation and login)
	group.POST("/signup", Signup)
	group.POST("/login", Login)

	// Protected routes (require a session)
	protected := group.Group("/")
	protected.Use(RequireSession())
	protected.POST("/logout", Logout)
	protected.GET("/me", Me)
}
