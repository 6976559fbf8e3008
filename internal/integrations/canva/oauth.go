package canva

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/launchkite/launchkite/internal/integrations"
)

const (
	defaultAuthURL  = "https://www.canva.com/api/oauth/authorize"
	defaultTokenURL = "https://api.canva.com/rest/v1/oauth/token"
)

// OAuth drives the Canva OAuth2 flow. The consent redirect and the
// authorization-code exchange go through x/oauth2 with PKCE; the refresh
// exchange is a plain form POST so the token manager controls persistence
type OAuth struct {
	config     *oauth2.Config
	tokenURL   string
	httpClient *http.Client
}

// OAuthOption customizes an OAuth instance
type OAuthOption func(*OAuth)

// WithTokenURL overrides the token endpoint
func WithTokenURL(tokenURL string) OAuthOption {
	return func(o *OAuth) {
		o.tokenURL = tokenURL
		o.config.Endpoint.TokenURL = tokenURL
	}
}

// WithOAuthHTTPClient overrides the HTTP client used for token exchanges
func WithOAuthHTTPClient(httpClient *http.Client) OAuthOption {
	return func(o *OAuth) {
		o.httpClient = httpClient
	}
}

// NewOAuth creates the OAuth driver for the Canva connect flow
func NewOAuth(clientID, clientSecret, redirectURL string, opts ...OAuthOption) *OAuth {
	o := &OAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"design:meta:read",
				"design:content:read",
				"asset:read",
				"profile:read",
			},
			Endpoint: oauth2.Endpoint{
				AuthURL:   defaultAuthURL,
				TokenURL:  defaultTokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		tokenURL:   defaultTokenURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// GenerateVerifier returns a fresh PKCE verifier for one authorize round trip
func (o *OAuth) GenerateVerifier() string {
	return oauth2.GenerateVerifier()
}

// AuthorizeURL builds the consent URL for the given state and PKCE verifier
func (o *OAuth) AuthorizeURL(state, verifier string) string {
	return o.config.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
}

// Exchange swaps an authorization code for a token
func (o *OAuth) Exchange(ctx context.Context, code, verifier string) (*Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, o.httpClient)

	tok, err := o.config.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, integrations.NewError(serviceName, http.StatusUnauthorized, "authorization code exchange failed: "+err.Error())
	}

	return &Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	}, nil
}

// Token is the result of a Canva token exchange
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Refresh presents a refresh token to the provider token endpoint and returns
// the replacement token. Callers persist the result; failures are terminal
// and mean the user must reconnect
func (o *OAuth) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(o.config.ClientID, o.config.ClientSecret)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, integrations.ErrorFromResponse(serviceName, resp)
	}

	var body struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	return &Token{
		AccessToken:  body.AccessToken,
		RefreshToken: body.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(body.ExpiresIn) * time.Second),
	}, nil
}
