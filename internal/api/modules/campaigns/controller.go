package campaigns_module

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	auth_module "github.com/launchkite/launchkite/internal/api/modules/auth"
	"github.com/launchkite/launchkite/internal/integrations"
	"github.com/launchkite/launchkite/internal/stores/campaign"
	"github.com/launchkite/launchkite/internal/tokens"
	"github.com/launchkite/launchkite/pkg/sdk"
	"github.com/launchkite/launchkite/pkg/utils"
)

// campaignService is the module-level service instance, set by Init
var campaignService *Service

// Init wires the campaigns module to its dependencies
func Init(cfg *utils.Config, campaigns campaign.Store, manager *tokens.Manager) {
	campaignService = NewService(campaigns, manager, SenderConfig{
		FromName: cfg.GetWithDefault("EMAIL_FROM_NAME", "Launchkite"),
		ReplyTo:  cfg.Get("EMAIL_REPLY_TO"),
	})
}

// GetService returns the module-level service instance. Used by the
// background analytics refresher
func GetService() *Service {
	return campaignService
}

// respondError maps service errors onto the response taxonomy. Cross-user
// lookups surface as not found, never as forbidden; provider failures keep
// their human-readable message
func respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, campaign.ErrNotFound):
		c.JSON(sdk.NewErrorResponse(http.StatusNotFound, "Campaign not found", nil).AsGinResponse())
	case errors.Is(err, tokens.ErrNotConnected):
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Required service is not connected", err).AsGinResponse())
	case errors.Is(err, tokens.ErrRefreshFailed):
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Service authorization expired, please reconnect", err).AsGinResponse())
	case errors.Is(err, ErrInvalidChannel),
		errors.Is(err, ErrNotDraft),
		errors.Is(err, ErrMissingAudience),
		errors.Is(err, ErrNoEmailCampaign):
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, err.Error(), nil).AsGinResponse())
	default:
		if provErr, ok := integrations.AsError(err); ok {
			c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, provErr.Message, provErr).AsGinResponse())
			return
		}
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, fallback, err).AsGinResponse())
	}
}

func toCampaignResponse(c *campaign.Campaign) sdk.CampaignResponse {
	return sdk.CampaignResponse{
		ID:                  c.ID,
		Name:                c.Name,
		DesignID:            c.DesignID,
		DesignTitle:         c.DesignTitle,
		ThumbnailURL:        c.ThumbnailURL,
		AssetURL:            c.AssetURL,
		Channels:            []string(c.Channels),
		Subject:             c.Subject,
		Copy:                c.Copy,
		NotionPageID:        c.NotionPageID,
		GithubPageURL:       c.GithubPageURL,
		MailchimpCampaignID: c.MailchimpCampaignID,
		Status:              string(c.Status),
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	}
}

func toAnalyticsResponse(a *campaign.Analytics) sdk.AnalyticsResponse {
	return sdk.AnalyticsResponse{
		CampaignID:    a.CampaignID,
		EmailsSent:    a.EmailsSent,
		EmailsOpened:  a.EmailsOpened,
		EmailsClicked: a.EmailsClicked,
		OpenRate:      a.OpenRate,
		ClickRate:     a.ClickRate,
		BounceRate:    a.BounceRate,
		Unsubscribes:  a.Unsubscribes,
		Complaints:    a.Complaints,
		LastSyncedAt:  a.LastSyncedAt,
	}
}

// ListCampaigns handles GET requests to list the user's campaigns
func ListCampaigns(c *gin.Context) {
	campaigns, err := campaignService.List(c.Request.Context(), auth_module.CurrentUserID(c))
	if err != nil {
		respondError(c, err, "Failed to list campaigns")
		return
	}

	responses := make([]sdk.CampaignResponse, 0, len(campaigns))
	for _, item := range campaigns {
		responses = append(responses, toCampaignResponse(item))
	}

	c.JSON(sdk.NewSuccessResponse("Campaigns retrieved successfully", sdk.CampaignListResponse{
		Campaigns: responses,
		Count:     len(responses),
	}).AsGinResponse())
}

// CreateCampaign handles POST requests to create a draft campaign
func CreateCampaign(c *gin.Context) {
	// Parse request body
	var req sdk.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Could not parse request body", err).AsGinResponse())
		return
	}

	created, err := campaignService.Create(c.Request.Context(), auth_module.CurrentUserID(c), req)
	if err != nil {
		respondError(c, err, "Failed to create campaign")
		return
	}

	c.JSON(sdk.NewSuccessResponse("Campaign created successfully", toCampaignResponse(created)).AsGinResponse())
}

// GetCampaign handles GET requests to retrieve one campaign
func GetCampaign(c *gin.Context) {
	found, err := campaignService.Get(c.Request.Context(), auth_module.CurrentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to get campaign")
		return
	}

	c.JSON(sdk.NewSuccessResponse("Campaign retrieved successfully", toCampaignResponse(found)).AsGinResponse())
}

// DeleteCampaign handles DELETE requests to remove a draft campaign
func DeleteCampaign(c *gin.Context) {
	err := campaignService.Delete(c.Request.Context(), auth_module.CurrentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to delete campaign")
		return
	}

	c.JSON(sdk.NewSuccess("Campaign deleted successfully").AsGinResponse())
}

// GenerateCopy handles POST requests to generate marketing copy for a campaign
func GenerateCopy(c *gin.Context) {
	// Parse request body; the body itself is optional
	var req sdk.GenerateCopyRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Could not parse request body", err).AsGinResponse())
			return
		}
	}

	result, err := campaignService.GenerateCopy(c.Request.Context(), auth_module.CurrentUserID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err, "Failed to generate copy")
		return
	}

	c.JSON(sdk.NewSuccessResponse("Copy generated successfully", result).AsGinResponse())
}

// PublishLandingPage handles POST requests to publish a campaign landing page
func PublishLandingPage(c *gin.Context) {
	updated, err := campaignService.PublishLandingPage(c.Request.Context(), auth_module.CurrentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to publish landing page")
		return
	}

	c.JSON(sdk.NewSuccessResponse("Landing page published successfully", toCampaignResponse(updated)).AsGinResponse())
}

// CreateDocsPage handles POST requests to mirror a campaign into Notion
func CreateDocsPage(c *gin.Context) {
	updated, err := campaignService.CreateDocsPage(c.Request.Context(), auth_module.CurrentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to create docs page")
		return
	}

	c.JSON(sdk.NewSuccessResponse("Docs page created successfully", toCampaignResponse(updated)).AsGinResponse())
}

// SendEmail handles POST requests to deliver a campaign by email
func SendEmail(c *gin.Context) {
	updated, err := campaignService.SendEmail(c.Request.Context(), auth_module.CurrentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to send campaign")
		return
	}

	c.JSON(sdk.NewSuccessResponse("Campaign sent successfully", toCampaignResponse(updated)).AsGinResponse())
}

// SyncAnalytics handles POST requests to refresh a campaign's analytics
func SyncAnalytics(c *gin.Context) {
	analytics, err := campaignService.SyncAnalytics(c.Request.Context(), auth_module.CurrentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to sync analytics")
		return
	}

	c.JSON(sdk.NewSuccessResponse("Analytics synced successfully", toAnalyticsResponse(analytics)).AsGinResponse())
}

// GetAnalytics handles GET requests for a campaign's analytics snapshot
func GetAnalytics(c *gin.Context) {
	analytics, err := campaignService.GetAnalytics(c.Request.Context(), auth_module.CurrentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to get analytics")
		return
	}

	c.JSON(sdk.NewSuccessResponse("Analytics retrieved successfully", toAnalyticsResponse(analytics)).AsGinResponse())
}
