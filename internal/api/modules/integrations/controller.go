package integrations_module

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	auth_module "github.com/launchkite/launchkite/internal/api/modules/auth"
	"github.com/launchkite/launchkite/internal/integrations/canva"
	"github.com/launchkite/launchkite/internal/stores/credential"
	"github.com/launchkite/launchkite/internal/tokens"
	"github.com/launchkite/launchkite/pkg/sdk"
	"github.com/launchkite/launchkite/pkg/utils"
)

// integrationsService is the module-level service instance, set by Init
var integrationsService *Service

// Init wires the integrations module to its dependencies
func Init(cfg *utils.Config, manager *tokens.Manager, creds credential.Store) {
	oauth := canva.NewOAuth(
		cfg.Get("CANVA_CLIENT_ID"),
		cfg.Get("CANVA_CLIENT_SECRET"),
		cfg.Get("CANVA_REDIRECT_URL"),
	)

	// Canva issues expiring tokens, so the token manager needs its refresh
	// exchange. The other services use static credentials
	manager.RegisterRefresher(credential.ServiceCanva, tokens.RefresherFunc(
		func(ctx context.Context, refreshToken string) (*tokens.RefreshResult, error) {
			tok, err := oauth.Refresh(ctx, refreshToken)
			if err != nil {
				return nil, err
			}
			return &tokens.RefreshResult{
				AccessToken:  tok.AccessToken,
				RefreshToken: tok.RefreshToken,
				ExpiresAt:    tok.ExpiresAt,
			}, nil
		}))

	integrationsService = NewService(manager, creds, oauth)
}

// serviceParam parses and validates the :service path parameter
func serviceParam(c *gin.Context) (credential.Service, bool) {
	service, err := credential.ParseService(c.Param("service"))
	if err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Unknown service", err).AsGinResponse())
		return "", false
	}
	return service, true
}

// GetAllStatuses handles GET requests for every service's connection state
func GetAllStatuses(c *gin.Context) {
	statuses, err := integrationsService.StatusAll(c.Request.Context(), auth_module.CurrentUserID(c))
	if err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to get integration statuses", err).AsGinResponse())
		return
	}

	c.JSON(sdk.NewSuccessResponse("Integration statuses retrieved successfully", statuses).AsGinResponse())
}

// GetStatus handles GET requests for one service's connection state
func GetStatus(c *gin.Context) {
	service, ok := serviceParam(c)
	if !ok {
		return
	}

	status, err := integrationsService.Status(c.Request.Context(), auth_module.CurrentUserID(c), service)
	if err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to get integration status", err).AsGinResponse())
		return
	}

	c.JSON(sdk.NewSuccessResponse("Integration status retrieved successfully", status).AsGinResponse())
}

// Connect handles POST requests to save credentials for a service
func Connect(c *gin.Context) {
	service, ok := serviceParam(c)
	if !ok {
		return
	}

	// Parse request body
	var req sdk.ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Could not parse request body", err).AsGinResponse())
		return
	}

	err := integrationsService.Connect(c.Request.Context(), auth_module.CurrentUserID(c), service, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingMetadata):
			c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Missing required settings", err).AsGinResponse())
		case errors.Is(err, ErrOAuthOnly):
			c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Connect this service through its OAuth flow", err).AsGinResponse())
		default:
			c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to save credentials", err).AsGinResponse())
		}
		return
	}

	status, err := integrationsService.Status(c.Request.Context(), auth_module.CurrentUserID(c), service)
	if err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to get integration status", err).AsGinResponse())
		return
	}

	c.JSON(sdk.NewSuccessResponse("Credentials saved successfully", status).AsGinResponse())
}

// Test handles POST requests to run a service's connectivity probe
func Test(c *gin.Context) {
	service, ok := serviceParam(c)
	if !ok {
		return
	}

	result := integrationsService.Test(c.Request.Context(), auth_module.CurrentUserID(c), service)
	c.JSON(sdk.NewSuccessResponse("Connection test completed", result).AsGinResponse())
}

// Disconnect handles DELETE requests to remove a service's credentials
func Disconnect(c *gin.Context) {
	service, ok := serviceParam(c)
	if !ok {
		return
	}

	err := integrationsService.Disconnect(c.Request.Context(), auth_module.CurrentUserID(c), service)
	if err != nil {
		if errors.Is(err, credential.ErrNotFound) {
			c.JSON(sdk.NewErrorResponse(http.StatusNotFound, "Service is not connected", nil).AsGinResponse())
			return
		}
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to disconnect service", err).AsGinResponse())
		return
	}

	c.JSON(sdk.NewSuccess("Service disconnected successfully").AsGinResponse())
}

// CanvaAuthorize handles GET requests to start the Canva OAuth flow
func CanvaAuthorize(c *gin.Context) {
	url := integrationsService.AuthorizeURL(auth_module.CurrentUserID(c))
	c.JSON(sdk.NewSuccessResponse("Authorization URL created", sdk.AuthorizeURLResponse{URL: url}).AsGinResponse())
}

// CanvaCallback handles the GET redirect finishing the Canva OAuth flow
func CanvaCallback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Missing state or code", nil).AsGinResponse())
		return
	}

	err := integrationsService.HandleCallback(c.Request.Context(), auth_module.CurrentUserID(c), state, code)
	if err != nil {
		if errors.Is(err, ErrBadState) {
			c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "OAuth state is unknown or expired", nil).AsGinResponse())
			return
		}
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to complete OAuth flow", err).AsGinResponse())
		return
	}

	status, err := integrationsService.Status(c.Request.Context(), auth_module.CurrentUserID(c), credential.ServiceCanva)
	if err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to get integration status", err).AsGinResponse())
		return
	}

	c.JSON(sdk.NewSuccessResponse("Canva connected successfully", status).AsGinResponse())
}
