// Package notiondocs wraps the Notion API for the docs distribution channel.
// Campaigns are mirrored as pages in a user-chosen Notion database with a
// title, status select and summary content
package notiondocs

import (
	"context"
	"fmt"
	"net/http"
	"time"

	notionapi "github.com/dstotijn/go-notion"

	"github.com/launchkite/launchkite/internal/integrations"
)

const serviceName = "notion"

// Database column names the integration expects in the target database
const (
	columnTitle  = "Name"
	columnStatus = "Status"
)

// Client mirrors campaigns into one Notion database
type Client struct {
	notion     *notionapi.Client
	databaseID string
}

// NewClient creates a Notion client for the given integration token and
// target database
func NewClient(token, databaseID string) *Client {
	return &Client{
		notion: notionapi.NewClient(token, notionapi.WithHTTPClient(&http.Client{
			Timeout: 30 * time.Second,
		})),
		databaseID: databaseID,
	}
}

// CampaignPage is the projection of a campaign written to Notion
type CampaignPage struct {
	Name     string
	Status   string
	Subject  string
	Copy     string
	AssetURL string
}

// wrapErr normalizes go-notion failures into the shared provider error type
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	if apiErr, ok := err.(*notionapi.APIError); ok {
		return integrations.NewError(serviceName, apiErr.Status, apiErr.Message)
	}
	return fmt.Errorf("notion request failed: %w", err)
}

// TestConnection verifies the token can reach the configured database
func (c *Client) TestConnection(ctx context.Context) error {
	_, err := c.notion.FindDatabaseByID(ctx, c.databaseID)
	return wrapErr(err)
}

// CreateCampaignPage creates a page for a campaign and returns its id and URL
func (c *Client) CreateCampaignPage(ctx context.Context, page CampaignPage) (string, string, error) {
	properties := notionapi.DatabasePageProperties{
		columnTitle: notionapi.DatabasePageProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.RichTextTypeText,
					Text: &notionapi.Text{Content: page.Name},
				},
			},
		},
		columnStatus: notionapi.DatabasePageProperty{
			Select: &notionapi.SelectOptions{Name: page.Status},
		},
	}

	// Page body: subject heading, copy paragraph, asset link
	children := []notionapi.Block{}
	if page.Subject != "" {
		children = append(children, notionapi.Heading2Block{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.RichTextTypeText,
					Text: &notionapi.Text{Content: page.Subject},
				},
			},
		})
	}
	if page.Copy != "" {
		children = append(children, notionapi.ParagraphBlock{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.RichTextTypeText,
					Text: &notionapi.Text{Content: page.Copy},
				},
			},
		})
	}
	if page.AssetURL != "" {
		children = append(children, notionapi.ParagraphBlock{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.RichTextTypeText,
					Text: &notionapi.Text{
						Content: page.AssetURL,
						Link:    &notionapi.Link{URL: page.AssetURL},
					},
				},
			},
		})
	}

	created, err := c.notion.CreatePage(ctx, notionapi.CreatePageParams{
		ParentType:             notionapi.ParentTypeDatabase,
		ParentID:               c.databaseID,
		DatabasePageProperties: &properties,
		Children:               children,
	})
	if err != nil {
		return "", "", wrapErr(err)
	}

	return created.ID, created.URL, nil
}

// MarkPageStatus updates the status select of an existing campaign page
func (c *Client) MarkPageStatus(ctx context.Context, pageID, status string) error {
	properties := notionapi.DatabasePageProperties{
		columnStatus: notionapi.DatabasePageProperty{
			Select: &notionapi.SelectOptions{Name: status},
		},
	}

	_, err := c.notion.UpdatePage(ctx, pageID, notionapi.UpdatePageParams{
		DatabasePageProperties: properties,
	})
	return wrapErr(err)
}

// QueryCampaignPages lists the campaign pages currently in the database
func (c *Client) QueryCampaignPages(ctx context.Context) ([]notionapi.Page, error) {
	response, err := c.notion.QueryDatabase(ctx, c.databaseID, &notionapi.DatabaseQuery{
		Sorts: []notionapi.DatabaseQuerySort{
			{
				Timestamp: notionapi.SortTimeStampCreatedTime,
				Direction: notionapi.SortDirDesc,
			},
		},
	})
	if err != nil {
		return nil, wrapErr(err)
	}

	return response.Results, nil
}
