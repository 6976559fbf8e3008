// Package githubpages publishes campaign landing pages as static HTML files
// in a GitHub Pages repository
package githubpages

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"

	"github.com/launchkite/launchkite/internal/integrations"
)

const serviceName = "github"

// Client publishes landing pages into one user-owned repository
type Client struct {
	gh    *github.Client
	owner string
	repo  string
}

// NewClient creates a GitHub client from a personal access token. Owner and
// repo identify the Pages repository landing pages are committed to
func NewClient(token, owner, repo string) *Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(context.Background(), src)

	return &Client{
		gh:    github.NewClient(httpClient),
		owner: owner,
		repo:  repo,
	}
}

// NewClientWithBaseURL creates a client against a non-default API host (used
// by tests)
func NewClientWithBaseURL(token, owner, repo, baseURL string) (*Client, error) {
	client := NewClient(token, owner, repo)

	gh, err := client.gh.WithEnterpriseURLs(baseURL, baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to set github base URL: %w", err)
	}
	client.gh = gh

	return client, nil
}

// wrapErr normalizes go-github failures into the shared provider error type
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	if ghErr, ok := err.(*github.ErrorResponse); ok {
		status := 0
		if ghErr.Response != nil {
			status = ghErr.Response.StatusCode
		}
		return integrations.NewError(serviceName, status, ghErr.Message)
	}
	return fmt.Errorf("github request failed: %w", err)
}

// TestConnection verifies the token by fetching the authenticated user
func (c *Client) TestConnection(ctx context.Context) error {
	_, _, err := c.gh.Users.Get(ctx, "")
	return wrapErr(err)
}

// ListRepos returns the names of the user's repositories
func (c *Client) ListRepos(ctx context.Context) ([]string, error) {
	repos, _, err := c.gh.Repositories.ListByAuthenticatedUser(ctx, &github.RepositoryListByAuthenticatedUserOptions{
		Sort:        "updated",
		ListOptions: github.ListOptions{PerPage: 100},
	})
	if err != nil {
		return nil, wrapErr(err)
	}

	names := make([]string, 0, len(repos))
	for _, r := range repos {
		names = append(names, r.GetName())
	}
	return names, nil
}

// PublishLandingPage commits the landing page HTML to the Pages repository
// under <slug>/index.html and returns the public page URL. Republishing an
// existing page updates the file in place
func (c *Client) PublishLandingPage(ctx context.Context, slug, html string) (string, error) {
	path := fmt.Sprintf("%s/index.html", slug)
	message := fmt.Sprintf("Publish landing page %s", slug)

	opts := &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: []byte(html),
	}

	_, resp, err := c.gh.Repositories.CreateFile(ctx, c.owner, c.repo, path, opts)
	if err != nil {
		// A 422 means the file exists; fetch its SHA and update instead
		if resp == nil || resp.StatusCode != http.StatusUnprocessableEntity {
			return "", wrapErr(err)
		}

		existing, _, _, getErr := c.gh.Repositories.GetContents(ctx, c.owner, c.repo, path, nil)
		if getErr != nil {
			return "", wrapErr(getErr)
		}

		opts.SHA = existing.SHA
		if _, _, updateErr := c.gh.Repositories.UpdateFile(ctx, c.owner, c.repo, path, opts); updateErr != nil {
			return "", wrapErr(updateErr)
		}
	}

	return c.PageURL(slug), nil
}

// PageURL builds the public GitHub Pages URL for a slug
func (c *Client) PageURL(slug string) string {
	return fmt.Sprintf("https://%s.github.io/%s/%s/", strings.ToLower(c.owner), c.repo, slug)
}
