package integrations_module

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/launchkite/launchkite/internal/integrations/aicopy"
	"github.com/launchkite/launchkite/internal/integrations/canva"
	"github.com/launchkite/launchkite/internal/integrations/githubpages"
	"github.com/launchkite/launchkite/internal/integrations/mailchimp"
	"github.com/launchkite/launchkite/internal/integrations/notiondocs"
	"github.com/launchkite/launchkite/internal/stores/credential"
	"github.com/launchkite/launchkite/internal/tokens"
	"github.com/launchkite/launchkite/pkg/sdk"
)

var (
	// ErrMissingMetadata is returned when a connect request lacks a field
	// the service requires
	ErrMissingMetadata = errors.New("missing required metadata")

	// ErrOAuthOnly is returned when a service can only be connected through
	// its OAuth flow
	ErrOAuthOnly = errors.New("service is connected through OAuth")

	// ErrBadState is returned when an OAuth callback carries an unknown or
	// expired state value
	ErrBadState = errors.New("unknown or expired OAuth state")
)

// requiredMetadata lists the metadata keys each service's connect request
// must carry
var requiredMetadata = map[credential.Service][]string{
	credential.ServiceMailchimp: {credential.MetaServerPrefix},
	credential.ServiceNotion:    {credential.MetaDatabaseID},
	credential.ServiceGithub:    {credential.MetaOwner, credential.MetaRepo},
	credential.ServiceOpenai:    {},
}

// Probe is a connectivity self-test for one service, built from the
// resolved secret and metadata
type Probe func(ctx context.Context, secret string, meta credential.Metadata) error

// pendingAuth tracks one in-flight OAuth round trip
type pendingAuth struct {
	userID    string
	verifier  string
	expiresAt time.Time
}

// Service implements integration connect, status, test and disconnect flows
type Service struct {
	manager *tokens.Manager
	creds   credential.Store
	oauth   *canva.OAuth

	probes map[credential.Service]Probe

	mu      sync.Mutex
	pending map[string]pendingAuth
}

// NewService creates an integrations service with the default connectivity
// probes
func NewService(manager *tokens.Manager, creds credential.Store, oauth *canva.OAuth) *Service {
	s := &Service{
		manager: manager,
		creds:   creds,
		oauth:   oauth,
		probes:  make(map[credential.Service]Probe),
		pending: make(map[string]pendingAuth),
	}

	s.probes[credential.ServiceCanva] = func(ctx context.Context, secret string, meta credential.Metadata) error {
		return canva.NewClient(secret).TestConnection(ctx)
	}
	s.probes[credential.ServiceMailchimp] = func(ctx context.Context, secret string, meta credential.Metadata) error {
		return mailchimp.NewClient(secret, meta[credential.MetaServerPrefix]).TestConnection(ctx)
	}
	s.probes[credential.ServiceNotion] = func(ctx context.Context, secret string, meta credential.Metadata) error {
		return notiondocs.NewClient(secret, meta[credential.MetaDatabaseID]).TestConnection(ctx)
	}
	s.probes[credential.ServiceGithub] = func(ctx context.Context, secret string, meta credential.Metadata) error {
		return githubpages.NewClient(secret, meta[credential.MetaOwner], meta[credential.MetaRepo]).TestConnection(ctx)
	}
	s.probes[credential.ServiceOpenai] = func(ctx context.Context, secret string, meta credential.Metadata) error {
		return aicopy.NewClient(secret, meta[credential.MetaBaseURL], aicopy.WithModel(meta[credential.MetaModel])).TestConnection(ctx)
	}

	return s
}

// SetProbe replaces the connectivity probe for a service (used by tests)
func (s *Service) SetProbe(service credential.Service, probe Probe) {
	s.probes[service] = probe
}

// Connect validates and saves credentials for a service
func (s *Service) Connect(ctx context.Context, userID string, service credential.Service, req sdk.ConnectRequest) error {
	if service == credential.ServiceCanva {
		// Canva tokens expire; the only supported connect path is the OAuth
		// flow, which stores the refresh credential alongside
		return ErrOAuthOnly
	}

	meta := credential.Metadata{}
	for k, v := range req.Metadata {
		meta[k] = v
	}

	for _, key := range requiredMetadata[service] {
		if meta[key] == "" {
			return fmt.Errorf("%w: %s", ErrMissingMetadata, key)
		}
	}

	return s.manager.SaveSecret(ctx, &credential.Credential{
		UserID:   userID,
		Service:  service,
		Metadata: meta,
	}, req.Secret)
}

// Status reports the connection state of one service
func (s *Service) Status(ctx context.Context, userID string, service credential.Service) (sdk.IntegrationStatus, error) {
	cred, err := s.creds.Get(ctx, userID, service)
	if err != nil {
		if errors.Is(err, credential.ErrNotFound) {
			return sdk.IntegrationStatus{Service: string(service), Connected: false}, nil
		}
		return sdk.IntegrationStatus{}, err
	}

	return sdk.IntegrationStatus{
		Service:   string(service),
		Connected: true,
		Metadata:  cred.Metadata.Public(),
	}, nil
}

// StatusAll reports the connection state of every supported service
func (s *Service) StatusAll(ctx context.Context, userID string) ([]sdk.IntegrationStatus, error) {
	statuses := make([]sdk.IntegrationStatus, 0, len(credential.Services))
	for _, service := range credential.Services {
		status, err := s.Status(ctx, userID, service)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// Test runs the connectivity probe for a service. Failures are reported in
// the response body, not as request errors
func (s *Service) Test(ctx context.Context, userID string, service credential.Service) sdk.TestConnectionResponse {
	resp := sdk.TestConnectionResponse{Service: string(service)}

	secret, meta, err := s.manager.Resolve(ctx, userID, service)
	if err != nil {
		resp.Detail = err.Error()
		return resp
	}

	if err := s.probes[service](ctx, secret, meta); err != nil {
		resp.Detail = err.Error()
		return resp
	}

	resp.Ok = true
	return resp
}

// Disconnect deletes the stored credential for a service
func (s *Service) Disconnect(ctx context.Context, userID string, service credential.Service) error {
	return s.creds.Delete(ctx, userID, service)
}

// AuthorizeURL starts the Canva OAuth flow for a user and returns the
// provider consent URL
func (s *Service) AuthorizeURL(userID string) string {
	state := uuid.NewString()
	verifier := s.oauth.GenerateVerifier()

	s.mu.Lock()
	// Drop abandoned flows so the pending map stays bounded
	now := time.Now()
	for old, auth := range s.pending {
		if now.After(auth.expiresAt) {
			delete(s.pending, old)
		}
	}
	s.pending[state] = pendingAuth{
		userID:    userID,
		verifier:  verifier,
		expiresAt: now.Add(10 * time.Minute),
	}
	s.mu.Unlock()

	return s.oauth.AuthorizeURL(state, verifier)
}

// HandleCallback finishes the Canva OAuth flow: it validates the state,
// exchanges the code and persists the resulting credential
func (s *Service) HandleCallback(ctx context.Context, userID, state, code string) error {
	s.mu.Lock()
	auth, exists := s.pending[state]
	delete(s.pending, state)
	s.mu.Unlock()

	if !exists || auth.userID != userID || time.Now().After(auth.expiresAt) {
		return ErrBadState
	}

	token, err := s.oauth.Exchange(ctx, code, auth.verifier)
	if err != nil {
		return err
	}

	return s.manager.SaveSecret(ctx, &credential.Credential{
		UserID:  userID,
		Service: credential.ServiceCanva,
		Metadata: credential.Metadata{
			credential.MetaRefreshToken: token.RefreshToken,
			credential.MetaExpiresAt:    token.ExpiresAt.Format(time.RFC3339),
		},
	}, token.AccessToken)
}
