package mailchimp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchkite/launchkite/internal/integrations"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient("test-api-key", "us1", WithBaseURL(server.URL))
}

func TestTestConnection_SendsBasicAuth(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ping", r.URL.Path)

		_, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "test-api-key", pass)

		w.Write([]byte(`{"health_status":"Everything's Chimpy!"}`))
	})

	require.NoError(t, client.TestConnection(context.Background()))
}

func TestCreateCampaign(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/campaigns", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "regular", body["type"])

		recipients := body["recipients"].(map[string]any)
		assert.Equal(t, "aud-1", recipients["list_id"])

		settings := body["settings"].(map[string]any)
		assert.Equal(t, "Summer is here", settings["subject_line"])

		w.Write([]byte(`{"id":"mc-123"}`))
	})

	id, err := client.CreateCampaign(context.Background(), "aud-1", CampaignSettings{
		SubjectLine: "Summer is here",
		Title:       "Summer Launch",
		FromName:    "Launchkite",
		ReplyTo:     "hello@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "mc-123", id)
}

func TestSend_MapsProviderError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"title":"Bad Request","detail":"This campaign was already sent."}`))
	})

	err := client.Send(context.Background(), "mc-123")
	require.Error(t, err)

	provErr, ok := integrations.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "mailchimp", provErr.Service)
	assert.Equal(t, http.StatusBadRequest, provErr.StatusCode)
	assert.True(t, IsAlreadySent(err))
}

func TestIsAlreadySent(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"already sent from mailchimp", integrations.NewError("mailchimp", 400, "This campaign was Already Sent."), true},
		{"other mailchimp error", integrations.NewError("mailchimp", 400, "Invalid list id"), false},
		{"other service", integrations.NewError("canva", 400, "already sent"), false},
		{"plain error", errors.New("already sent"), false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, IsAlreadySent(test.err))
		})
	}
}

func TestGetReport(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reports/mc-123", r.URL.Path)
		w.Write([]byte(`{
			"emails_sent": 100,
			"unsubscribed": 2,
			"abuse_reports": 1,
			"opens": {"opens_total": 80, "unique_opens": 40, "open_rate": 0.4},
			"clicks": {"clicks_total": 15, "unique_subscriber_clicks": 10, "click_rate": 0.1},
			"bounces": {"hard_bounces": 3, "soft_bounces": 2}
		}`))
	})

	report, err := client.GetReport(context.Background(), "mc-123")
	require.NoError(t, err)

	assert.Equal(t, 100, report.EmailsSent)
	assert.Equal(t, 40, report.Opens.UniqueOpens)
	assert.Equal(t, 10, report.Clicks.UniqueSubscriberClicks)
	assert.InDelta(t, 0.05, report.BounceRate(), 0.0001)
}

func TestBounceRate_ZeroSends(t *testing.T) {
	var report Report
	assert.Zero(t, report.BounceRate())
}
