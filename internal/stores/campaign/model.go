package campaign

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Status tracks a campaign through its lifecycle. Transitions only move
// forward: draft -> distributed -> sent. There is no regression path
type Status string

const (
	StatusDraft       Status = "draft"
	StatusDistributed Status = "distributed"
	StatusSent        Status = "sent"
)

// rank orders statuses for forward-only transitions
func (s Status) rank() int {
	switch s {
	case StatusDraft:
		return 0
	case StatusDistributed:
		return 1
	case StatusSent:
		return 2
	}
	return -1
}

// Advance returns the further-along of the current and proposed status,
// enforcing the forward-only transition rule
func (s Status) Advance(to Status) Status {
	if to.rank() > s.rank() {
		return to
	}
	return s
}

// Distribution channels a campaign can target
const (
	ChannelEmail       = "email"
	ChannelLandingPage = "landing_page"
	ChannelDocs        = "docs"
)

// ValidChannel reports whether a raw channel name is supported
func ValidChannel(raw string) bool {
	switch raw {
	case ChannelEmail, ChannelLandingPage, ChannelDocs:
		return true
	}
	return false
}

// Channels is the distribution channel set, stored as a JSON column
type Channels []string

// Value implements driver.Valuer for database serialization
func (c Channels) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for database deserialization
func (c *Channels) Scan(value any) error {
	if value == nil {
		*c = Channels{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Channels", value)
	}

	if len(raw) == 0 {
		*c = Channels{}
		return nil
	}

	return json.Unmarshal(raw, c)
}

// Has reports whether the channel set contains the given channel
func (c Channels) Has(channel string) bool {
	for _, ch := range c {
		if ch == channel {
			return true
		}
	}
	return false
}

// Campaign represents a user's marketing artifact: a design asset plus the
// channels it is distributed through and the external ids created per channel
type Campaign struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`

	UserID string `json:"user_id" gorm:"column:user_id;size:36;not null;index"`
	Name   string `json:"name" gorm:"column:name;not null;size:255"`

	// Design reference fields filled from Canva
	DesignID     string `json:"design_id" gorm:"column:design_id;size:255"`
	DesignTitle  string `json:"design_title" gorm:"column:design_title;size:255"`
	ThumbnailURL string `json:"thumbnail_url" gorm:"column:thumbnail_url;size:1024"`
	AssetURL     string `json:"asset_url" gorm:"column:asset_url;size:1024"`

	Channels Channels `json:"channels" gorm:"column:channels;type:json"`
	Subject  string   `json:"subject" gorm:"column:subject;size:255"`
	Copy     string   `json:"copy" gorm:"column:copy;type:text"`

	// Per-channel external ids
	NotionPageID        string `json:"notion_page_id" gorm:"column:notion_page_id;size:64"`
	GithubPageURL       string `json:"github_page_url" gorm:"column:github_page_url;size:1024"`
	MailchimpCampaignID string `json:"mailchimp_campaign_id" gorm:"column:mailchimp_campaign_id;size:64"`

	Status Status `json:"status" gorm:"column:status;size:16;not null;default:draft"`
}

// TableName overrides the default GORM table name
func (Campaign) TableName() string {
	return "campaigns"
}

// Analytics represents the denormalized email analytics snapshot for one
// campaign, derived entirely from the email provider's report
type Analytics struct {
	CampaignID string    `json:"campaign_id" gorm:"primaryKey;size:36"`
	CreatedAt  time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"column:updated_at"`

	EmailsSent    int     `json:"emails_sent" gorm:"column:emails_sent"`
	EmailsOpened  int     `json:"emails_opened" gorm:"column:emails_opened"`
	EmailsClicked int     `json:"emails_clicked" gorm:"column:emails_clicked"`
	OpenRate      float64 `json:"open_rate" gorm:"column:open_rate"`
	ClickRate     float64 `json:"click_rate" gorm:"column:click_rate"`
	BounceRate    float64 `json:"bounce_rate" gorm:"column:bounce_rate"`
	Unsubscribes  int     `json:"unsubscribes" gorm:"column:unsubscribes"`
	Complaints    int     `json:"complaints" gorm:"column:complaints"`

	LastSyncedAt time.Time `json:"last_synced_at" gorm:"column:last_synced_at"`
}

// TableName overrides the default GORM table name
func (Analytics) TableName() string {
	return "campaign_analytics"
}
