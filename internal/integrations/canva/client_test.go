package canva

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchkite/launchkite/internal/integrations"
)

// newExportServer returns a provider fake whose export job endpoint answers
// with the given handler, plus a client pointed at it with no poll delay
func newExportServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient("token", WithBaseURL(server.URL), WithPolling(0, exportPollAttempts))
	return server, client
}

func TestWaitForExport_Success(t *testing.T) {
	polls := 0
	_, client := newExportServer(t, func(w http.ResponseWriter, r *http.Request) {
		polls++
		status := "in_progress"
		urls := []string{}
		if polls >= 3 {
			status = "success"
			urls = []string{"https://export.example.com/design.png"}
		}
		json.NewEncoder(w).Encode(map[string]any{
			"job": map[string]any{"id": "job-1", "status": status, "urls": urls},
		})
	})

	url, err := client.WaitForExport(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, "https://export.example.com/design.png", url)
	assert.Equal(t, 3, polls)
}

func TestWaitForExport_FailedOnFirstAttempt(t *testing.T) {
	polls := 0
	_, client := newExportServer(t, func(w http.ResponseWriter, r *http.Request) {
		polls++
		json.NewEncoder(w).Encode(map[string]any{
			"job": map[string]any{
				"id":     "job-1",
				"status": "failed",
				"error":  map[string]string{"code": "export_error", "message": "render failed"},
			},
		})
	})

	_, err := client.WaitForExport(context.Background(), "job-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExportFailed)
	assert.Equal(t, 1, polls)
}

func TestWaitForExport_TimeoutAfterThirtyAttempts(t *testing.T) {
	polls := 0
	_, client := newExportServer(t, func(w http.ResponseWriter, r *http.Request) {
		polls++
		json.NewEncoder(w).Encode(map[string]any{
			"job": map[string]any{"id": "job-1", "status": "in_progress"},
		})
	})

	_, err := client.WaitForExport(context.Background(), "job-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExportTimeout)
	assert.Equal(t, exportPollAttempts, polls)
}

func TestWaitForExport_ContextCancelled(t *testing.T) {
	_, client := newExportServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"job": map[string]any{"id": "job-1", "status": "in_progress"},
		})
	})
	client.pollInterval = 50 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := client.WaitForExport(ctx, "job-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestListDesigns(t *testing.T) {
	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.RequestURI()
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{
				{"id": "d1", "title": "Spring Sale", "thumbnail": map[string]string{"url": "https://thumb/1"}},
			},
			"continuation": "next-page",
		})
	}))
	defer server.Close()

	client := NewClient("secret-token", WithBaseURL(server.URL))

	list, err := client.ListDesigns(context.Background(), "page-2")
	require.NoError(t, err)
	assert.Equal(t, "/v1/designs?continuation=page-2", gotPath)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Spring Sale", list.Items[0].Title)
	assert.Equal(t, "next-page", list.Continuation)
}

func TestGetDesign(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(map[string]any{
			"design": map[string]any{
				"id":         "d1",
				"title":      "Spring Sale",
				"updated_at": 1700000000,
				"thumbnail":  map[string]string{"url": "https://thumb/1"},
				"urls":       map[string]string{"edit_url": "https://canva.example.com/edit/d1"},
			},
		})
	}))
	defer server.Close()

	client := NewClient("token", WithBaseURL(server.URL))

	design, err := client.GetDesign(context.Background(), "d1")
	require.NoError(t, err)
	assert.Equal(t, "/v1/designs/d1", gotPath)
	assert.Equal(t, "d1", design.ID)
	assert.Equal(t, "Spring Sale", design.Title)
	assert.Equal(t, "https://thumb/1", design.Thumbnail.URL)
	assert.Equal(t, "https://canva.example.com/edit/d1", design.URLs.EditURL)
}

func TestDo_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"message": "missing scope"})
	}))
	defer server.Close()

	client := NewClient("token", WithBaseURL(server.URL))

	err := client.TestConnection(context.Background())
	require.Error(t, err)

	var provErr *integrations.Error
	require.True(t, errors.As(err, &provErr))
	assert.Equal(t, "canva", provErr.Service)
	assert.Equal(t, http.StatusForbidden, provErr.StatusCode)
	assert.Equal(t, "missing scope", provErr.Message)
}
