package health_module

import (
	"github.com/gin-gonic/gin"

	"github.com/launchkite/launchkite/pkg/sdk"
)

// getStatus handles GET requests for the liveness probe
func getStatus(c *gin.Context) {
	c.JSON(sdk.NewSuccessResponse("Service is healthy", map[string]string{"status": "ok"}).AsGinResponse())
}
