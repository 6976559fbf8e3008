package canva_module

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	auth_module "github.com/launchkite/launchkite/internal/api/modules/auth"
	"github.com/launchkite/launchkite/internal/integrations"
	"github.com/launchkite/launchkite/internal/integrations/canva"
	"github.com/launchkite/launchkite/internal/stores/credential"
	"github.com/launchkite/launchkite/internal/tokens"
	"github.com/launchkite/launchkite/pkg/sdk"
)

// tokenManager resolves Canva access tokens per request, set by Init
var tokenManager *tokens.Manager

// newClient builds a Canva client for an access token; replaceable in tests
var newClient = func(token string) *canva.Client {
	return canva.NewClient(token)
}

// Init wires the canva module to the token lifecycle manager
func Init(manager *tokens.Manager) {
	tokenManager = manager
}

// clientForRequest resolves the current user's Canva token into a client
func clientForRequest(c *gin.Context) (*canva.Client, bool) {
	ctx := c.Request.Context()

	token, err := tokenManager.GetValidToken(ctx, auth_module.CurrentUserID(c), credential.ServiceCanva)
	if err != nil {
		if errors.Is(err, tokens.ErrNotConnected) {
			c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Canva is not connected", nil).AsGinResponse())
			return nil, false
		}
		if errors.Is(err, tokens.ErrRefreshFailed) {
			c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Canva authorization expired, please reconnect", err).AsGinResponse())
			return nil, false
		}
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to resolve Canva credentials", err).AsGinResponse())
		return nil, false
	}

	return newClient(token), true
}

// respondProviderError maps a Canva client failure onto the response taxonomy
func respondProviderError(c *gin.Context, err error, fallback string) {
	if provErr, ok := integrations.AsError(err); ok {
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, provErr.Message, provErr).AsGinResponse())
		return
	}
	c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, fallback, err).AsGinResponse())
}

// ListDesigns handles GET requests for one page of the user's designs
func ListDesigns(c *gin.Context) {
	client, ok := clientForRequest(c)
	if !ok {
		return
	}

	list, err := client.ListDesigns(c.Request.Context(), c.Query("continuation"))
	if err != nil {
		respondProviderError(c, err, "Failed to list designs")
		return
	}

	designs := make([]sdk.DesignResponse, 0, len(list.Items))
	for _, d := range list.Items {
		designs = append(designs, sdk.DesignResponse{
			ID:           d.ID,
			Title:        d.Title,
			ThumbnailURL: d.Thumbnail.URL,
			EditURL:      d.URLs.EditURL,
			UpdatedAt:    d.UpdatedAt,
		})
	}

	c.JSON(sdk.NewSuccessResponse("Designs retrieved successfully", sdk.DesignListResponse{
		Designs:      designs,
		Continuation: list.Continuation,
	}).AsGinResponse())
}

// ExportDesign handles POST requests to export a design and waits for the
// exported asset URL
func ExportDesign(c *gin.Context) {
	client, ok := clientForRequest(c)
	if !ok {
		return
	}

	// Parse request body; the body itself is optional
	var req sdk.ExportRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Could not parse request body", err).AsGinResponse())
			return
		}
	}

	url, err := client.ExportDesign(c.Request.Context(), c.Param("id"), req.Format)
	if err != nil {
		switch {
		case errors.Is(err, canva.ErrExportFailed):
			c.JSON(sdk.NewErrorResponse(http.StatusBadGateway, "Design export failed", err).AsGinResponse())
		case errors.Is(err, canva.ErrExportTimeout):
			c.JSON(sdk.NewErrorResponse(http.StatusGatewayTimeout, "Design export timed out", err).AsGinResponse())
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			c.JSON(sdk.NewErrorResponse(http.StatusGatewayTimeout, "Design export cancelled", err).AsGinResponse())
		default:
			respondProviderError(c, err, "Failed to export design")
		}
		return
	}

	c.JSON(sdk.NewSuccessResponse("Design exported successfully", sdk.ExportResponse{URL: url}).AsGinResponse())
}
