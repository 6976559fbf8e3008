package campaigns_module

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/launchkite/launchkite/internal/integrations/aicopy"
	"github.com/launchkite/launchkite/internal/integrations/githubpages"
	"github.com/launchkite/launchkite/internal/integrations/mailchimp"
	"github.com/launchkite/launchkite/internal/integrations/notiondocs"
	"github.com/launchkite/launchkite/internal/stores/campaign"
	"github.com/launchkite/launchkite/internal/stores/credential"
	"github.com/launchkite/launchkite/internal/tokens"
	"github.com/launchkite/launchkite/pkg/sdk"
)

var (
	// ErrInvalidChannel is returned when a create request names an
	// unsupported distribution channel
	ErrInvalidChannel = errors.New("invalid distribution channel")

	// ErrNotDraft is returned when deleting a campaign that has already
	// been distributed
	ErrNotDraft = errors.New("only draft campaigns can be deleted")

	// ErrMissingAudience is returned when sending email without an
	// audience configured on the Mailchimp connection
	ErrMissingAudience = errors.New("no mailchimp audience configured")

	// ErrNoEmailCampaign is returned when syncing analytics for a campaign
	// that has never been pushed to the email provider
	ErrNoEmailCampaign = errors.New("campaign has not been sent by email")
)

// Notion status select values mirrored onto campaign doc pages
const (
	docStatusDistributed = "Distributed"
	docStatusSent        = "Sent"
)

// MailClient is the slice of the Mailchimp client the orchestration uses
type MailClient interface {
	CreateCampaign(ctx context.Context, audienceID string, settings mailchimp.CampaignSettings) (string, error)
	SetContent(ctx context.Context, campaignID, html string) error
	Send(ctx context.Context, campaignID string) error
	GetReport(ctx context.Context, campaignID string) (*mailchimp.Report, error)
}

// DocsClient is the slice of the Notion client the orchestration uses
type DocsClient interface {
	CreateCampaignPage(ctx context.Context, page notiondocs.CampaignPage) (string, string, error)
	MarkPageStatus(ctx context.Context, pageID, status string) error
}

// PagesClient is the slice of the GitHub client the orchestration uses
type PagesClient interface {
	PublishLandingPage(ctx context.Context, slug, html string) (string, error)
}

// CopyClient is the slice of the AI copy client the orchestration uses
type CopyClient interface {
	GenerateCopy(ctx context.Context, req aicopy.Request) (*aicopy.Result, error)
}

// SenderConfig carries the email sender identity applied to new campaigns
type SenderConfig struct {
	FromName string
	ReplyTo  string
}

// Service composes the credential lifecycle, the integration clients and the
// campaign store into the user-visible campaign actions. Handlers are short
// sequential pipelines; secondary side effects are best-effort and logged
type Service struct {
	campaigns campaign.Store
	manager   *tokens.Manager
	sender    SenderConfig

	// Client factories, replaceable in tests
	newMail  func(apiKey, serverPrefix string) MailClient
	newDocs  func(token, databaseID string) DocsClient
	newPages func(token, owner, repo string) PagesClient
	newCopy  func(apiKey, baseURL, model string) CopyClient
}

// NewService creates a campaign service backed by the real integration clients
func NewService(campaigns campaign.Store, manager *tokens.Manager, sender SenderConfig) *Service {
	return &Service{
		campaigns: campaigns,
		manager:   manager,
		sender:    sender,
		newMail: func(apiKey, serverPrefix string) MailClient {
			return mailchimp.NewClient(apiKey, serverPrefix)
		},
		newDocs: func(token, databaseID string) DocsClient {
			return notiondocs.NewClient(token, databaseID)
		},
		newPages: func(token, owner, repo string) PagesClient {
			return githubpages.NewClient(token, owner, repo)
		},
		newCopy: func(apiKey, baseURL, model string) CopyClient {
			return aicopy.NewClient(apiKey, baseURL, aicopy.WithModel(model))
		},
	}
}

// Create validates and stores a new draft campaign
func (s *Service) Create(ctx context.Context, userID string, req sdk.CreateCampaignRequest) (*campaign.Campaign, error) {
	for _, ch := range req.Channels {
		if !campaign.ValidChannel(ch) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidChannel, ch)
		}
	}

	c := &campaign.Campaign{
		ID:           uuid.NewString(),
		UserID:       userID,
		Name:         req.Name,
		DesignID:     req.DesignID,
		DesignTitle:  req.DesignTitle,
		ThumbnailURL: req.ThumbnailURL,
		AssetURL:     req.AssetURL,
		Channels:     campaign.Channels(req.Channels),
		Subject:      req.Subject,
		Copy:         req.Copy,
		Status:       campaign.StatusDraft,
	}

	if err := s.campaigns.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Get retrieves one campaign scoped to its owner
func (s *Service) Get(ctx context.Context, userID, id string) (*campaign.Campaign, error) {
	return s.campaigns.Get(ctx, userID, id)
}

// List retrieves a user's campaigns
func (s *Service) List(ctx context.Context, userID string) ([]*campaign.Campaign, error) {
	return s.campaigns.List(ctx, userID)
}

// Delete removes a draft campaign
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	c, err := s.campaigns.Get(ctx, userID, id)
	if err != nil {
		return err
	}

	if c.Status != campaign.StatusDraft {
		return ErrNotDraft
	}

	return s.campaigns.Delete(ctx, userID, id)
}

// GenerateCopy produces marketing copy for a campaign and stores the subject
// and body on the campaign record
func (s *Service) GenerateCopy(ctx context.Context, userID, id string, req sdk.GenerateCopyRequest) (*sdk.GeneratedCopyResponse, error) {
	c, err := s.campaigns.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	apiKey, meta, err := s.manager.Resolve(ctx, userID, credential.ServiceOpenai)
	if err != nil {
		return nil, err
	}

	client := s.newCopy(apiKey, meta[credential.MetaBaseURL], meta[credential.MetaModel])
	result, err := client.GenerateCopy(ctx, aicopy.Request{
		CampaignName: c.Name,
		DesignTitle:  c.DesignTitle,
		Tone:         req.Tone,
		Audience:     req.Audience,
		Notes:        req.Notes,
	})
	if err != nil {
		return nil, err
	}

	c.Subject = result.Copy.Subject
	c.Copy = result.Copy.Body
	if err := s.campaigns.Update(ctx, c); err != nil {
		return nil, err
	}

	return &sdk.GeneratedCopyResponse{
		Subject:  result.Copy.Subject,
		Headline: result.Copy.Headline,
		Body:     result.Copy.Body,
		CTA:      result.Copy.CTA,
		Fallback: result.Fallback,
	}, nil
}

// PublishLandingPage renders the campaign as a static page and commits it to
// the user's GitHub Pages repository
func (s *Service) PublishLandingPage(ctx context.Context, userID, id string) (*campaign.Campaign, error) {
	c, err := s.campaigns.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	token, meta, err := s.manager.Resolve(ctx, userID, credential.ServiceGithub)
	if err != nil {
		return nil, err
	}

	html, err := renderLandingPage(c)
	if err != nil {
		return nil, err
	}

	client := s.newPages(token, meta[credential.MetaOwner], meta[credential.MetaRepo])
	url, err := client.PublishLandingPage(ctx, landingSlug(c), html)
	if err != nil {
		return nil, err
	}

	c.GithubPageURL = url
	c.Status = c.Status.Advance(campaign.StatusDistributed)
	if err := s.campaigns.Update(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// CreateDocsPage mirrors the campaign as a page in the user's Notion database
func (s *Service) CreateDocsPage(ctx context.Context, userID, id string) (*campaign.Campaign, error) {
	c, err := s.campaigns.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	token, meta, err := s.manager.Resolve(ctx, userID, credential.ServiceNotion)
	if err != nil {
		return nil, err
	}

	client := s.newDocs(token, meta[credential.MetaDatabaseID])
	pageID, _, err := client.CreateCampaignPage(ctx, notiondocs.CampaignPage{
		Name:     c.Name,
		Status:   docStatusDistributed,
		Subject:  c.Subject,
		Copy:     c.Copy,
		AssetURL: c.AssetURL,
	})
	if err != nil {
		return nil, err
	}

	c.NotionPageID = pageID
	c.Status = c.Status.Advance(campaign.StatusDistributed)
	if err := s.campaigns.Update(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// SendEmail pushes the campaign to Mailchimp and triggers delivery. A
// provider report that the campaign was already sent counts as success. The
// follow-up Notion status update is a best-effort step: its failure is
// logged and never rolls back the send
func (s *Service) SendEmail(ctx context.Context, userID, id string) (*campaign.Campaign, error) {
	c, err := s.campaigns.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	apiKey, meta, err := s.manager.Resolve(ctx, userID, credential.ServiceMailchimp)
	if err != nil {
		return nil, err
	}

	client := s.newMail(apiKey, meta[credential.MetaServerPrefix])

	// Create the provider campaign on first send
	if c.MailchimpCampaignID == "" {
		audienceID := meta[credential.MetaAudienceID]
		if audienceID == "" {
			return nil, ErrMissingAudience
		}

		subject := c.Subject
		if subject == "" {
			subject = c.Name
		}

		campaignID, err := client.CreateCampaign(ctx, audienceID, mailchimp.CampaignSettings{
			SubjectLine: subject,
			Title:       c.Name,
			FromName:    s.sender.FromName,
			ReplyTo:     s.sender.ReplyTo,
		})
		if err != nil {
			return nil, err
		}

		c.MailchimpCampaignID = campaignID

		// Persist the provider id before content and send so a retry after
		// a failed send reuses this campaign instead of creating another
		if err := s.campaigns.Update(ctx, c); err != nil {
			return nil, err
		}

		html, err := renderEmail(c)
		if err != nil {
			return nil, err
		}
		if err := client.SetContent(ctx, c.MailchimpCampaignID, html); err != nil {
			return nil, err
		}
	}

	if err := client.Send(ctx, c.MailchimpCampaignID); err != nil {
		// The provider reporting the campaign already sent means delivery
		// happened; treat it as success
		if !mailchimp.IsAlreadySent(err) {
			return nil, err
		}
		log.Printf("[CAMPAIGNS]: Campaign %s already sent by provider, recording as sent", c.ID)
	}

	c.Status = c.Status.Advance(campaign.StatusSent)
	if err := s.campaigns.Update(ctx, c); err != nil {
		return nil, err
	}

	// Best-effort: reflect the send on the campaign's Notion page
	if c.NotionPageID != "" {
		s.markDocsSent(ctx, userID, c)
	}

	return c, nil
}

// markDocsSent updates the Notion page status after a send. Failures are
// logged only
func (s *Service) markDocsSent(ctx context.Context, userID string, c *campaign.Campaign) {
	token, meta, err := s.manager.Resolve(ctx, userID, credential.ServiceNotion)
	if err != nil {
		log.Printf("[CAMPAIGNS]: Skipping Notion status update for campaign %s: %v", c.ID, err)
		return
	}

	client := s.newDocs(token, meta[credential.MetaDatabaseID])
	if err := client.MarkPageStatus(ctx, c.NotionPageID, docStatusSent); err != nil {
		log.Printf("[CAMPAIGNS]: Failed to update Notion page for campaign %s: %v", c.ID, err)
	}
}

// SyncAnalytics pulls the provider report for a sent campaign and upserts
// the local analytics snapshot. Repeated syncs are idempotent
func (s *Service) SyncAnalytics(ctx context.Context, userID, id string) (*campaign.Analytics, error) {
	c, err := s.campaigns.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if c.MailchimpCampaignID == "" {
		return nil, ErrNoEmailCampaign
	}

	apiKey, meta, err := s.manager.Resolve(ctx, userID, credential.ServiceMailchimp)
	if err != nil {
		return nil, err
	}

	client := s.newMail(apiKey, meta[credential.MetaServerPrefix])
	report, err := client.GetReport(ctx, c.MailchimpCampaignID)
	if err != nil {
		return nil, err
	}

	analytics := &campaign.Analytics{
		CampaignID:    c.ID,
		EmailsSent:    report.EmailsSent,
		EmailsOpened:  report.Opens.UniqueOpens,
		EmailsClicked: report.Clicks.UniqueSubscriberClicks,
		OpenRate:      report.Opens.OpenRate,
		ClickRate:     report.Clicks.ClickRate,
		BounceRate:    report.BounceRate(),
		Unsubscribes:  report.Unsubscribed,
		Complaints:    report.AbuseReports,
		LastSyncedAt:  time.Now(),
	}

	if err := s.campaigns.UpsertAnalytics(ctx, analytics); err != nil {
		return nil, err
	}

	return analytics, nil
}

// GetAnalytics retrieves the stored analytics snapshot for a campaign
func (s *Service) GetAnalytics(ctx context.Context, userID, id string) (*campaign.Analytics, error) {
	// Scope the lookup to the owner before touching the analytics table
	c, err := s.campaigns.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	return s.campaigns.GetAnalytics(ctx, c.ID)
}
