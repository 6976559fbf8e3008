package sdk

import "time"

/** Auth Module DTOs */

// SignupRequest represents the request body for creating an account
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
}

// LoginRequest represents the request body for starting a session
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserResponse represents an account in API responses
type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

/** Integrations Module DTOs */

// ConnectRequest represents the request body for saving service credentials.
// Secret carries the provider secret (API key, token); Metadata carries
// service-specific settings such as server_prefix or database_id
type ConnectRequest struct {
	Secret   string            `json:"secret" binding:"required"`
	Metadata map[string]string `json:"metadata"`
}

// IntegrationStatus represents the connection state of one service
type IntegrationStatus struct {
	Service   string            `json:"service"`
	Connected bool              `json:"connected"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// TestConnectionResponse represents the result of a connectivity probe
type TestConnectionResponse struct {
	Service string `json:"service"`
	Ok      bool   `json:"ok"`
	Detail  string `json:"detail,omitempty"`
}

// AuthorizeURLResponse represents the provider consent URL for an OAuth flow
type AuthorizeURLResponse struct {
	URL string `json:"url"`
}

/** Canva Module DTOs */

// DesignResponse represents a Canva design in API responses
type DesignResponse struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	EditURL      string `json:"edit_url,omitempty"`
	UpdatedAt    int64  `json:"updated_at,omitempty"`
}

// DesignListResponse represents one page of Canva designs
type DesignListResponse struct {
	Designs      []DesignResponse `json:"designs"`
	Continuation string           `json:"continuation,omitempty"`
}

// ExportRequest represents the request body for exporting a design
type ExportRequest struct {
	Format string `json:"format"` // png, jpg or pdf; defaults to png
}

// ExportResponse represents the exported asset location
type ExportResponse struct {
	URL string `json:"url"`
}

/** Campaigns Module DTOs */

// CreateCampaignRequest represents the request body for creating a campaign
type CreateCampaignRequest struct {
	Name         string   `json:"name" binding:"required"`
	DesignID     string   `json:"design_id"`
	DesignTitle  string   `json:"design_title"`
	ThumbnailURL string   `json:"thumbnail_url"`
	AssetURL     string   `json:"asset_url"`
	Channels     []string `json:"channels" binding:"required"`
	Subject      string   `json:"subject"`
	Copy         string   `json:"copy"`
}

// CampaignResponse represents a campaign in API responses
type CampaignResponse struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	DesignID            string    `json:"design_id,omitempty"`
	DesignTitle         string    `json:"design_title,omitempty"`
	ThumbnailURL        string    `json:"thumbnail_url,omitempty"`
	AssetURL            string    `json:"asset_url,omitempty"`
	Channels            []string  `json:"channels"`
	Subject             string    `json:"subject,omitempty"`
	Copy                string    `json:"copy,omitempty"`
	NotionPageID        string    `json:"notion_page_id,omitempty"`
	GithubPageURL       string    `json:"github_page_url,omitempty"`
	MailchimpCampaignID string    `json:"mailchimp_campaign_id,omitempty"`
	Status              string    `json:"status"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// CampaignListResponse represents the response for listing campaigns
type CampaignListResponse struct {
	Campaigns []CampaignResponse `json:"campaigns"`
	Count     int                `json:"count"`
}

// GenerateCopyRequest represents the request body for AI copy generation
type GenerateCopyRequest struct {
	Tone     string `json:"tone"`
	Audience string `json:"audience"`
	Notes    string `json:"notes"`
}

// GeneratedCopyResponse represents generated marketing copy
type GeneratedCopyResponse struct {
	Subject  string `json:"subject"`
	Headline string `json:"headline"`
	Body     string `json:"body"`
	CTA      string `json:"cta"`
	Fallback bool   `json:"fallback"` // true when the templated default was used
}

// AnalyticsResponse represents a denormalized analytics snapshot
type AnalyticsResponse struct {
	CampaignID    string    `json:"campaign_id"`
	EmailsSent    int       `json:"emails_sent"`
	EmailsOpened  int       `json:"emails_opened"`
	EmailsClicked int       `json:"emails_clicked"`
	OpenRate      float64   `json:"open_rate"`
	ClickRate     float64   `json:"click_rate"`
	BounceRate    float64   `json:"bounce_rate"`
	Unsubscribes  int       `json:"unsubscribes"`
	Complaints    int       `json:"complaints"`
	LastSyncedAt  time.Time `json:"last_synced_at"`
}
