package analytics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchkite/launchkite/internal/stores/campaign"
)

func seedCampaign(t *testing.T, store campaign.Store, id string, status campaign.Status, mailchimpID string) {
	t.Helper()

	err := store.Create(context.Background(), &campaign.Campaign{
		ID:                  id,
		UserID:              "user-1",
		Name:                "Campaign " + id,
		Channels:            campaign.Channels{campaign.ChannelEmail},
		MailchimpCampaignID: mailchimpID,
		Status:              status,
	})
	require.NoError(t, err)
}

func TestRunOnce_RefreshesSentCampaignsOnly(t *testing.T) {
	store := campaign.NewInMemoryStore()
	seedCampaign(t, store, "c1", campaign.StatusSent, "mc-1")
	seedCampaign(t, store, "c2", campaign.StatusDraft, "")
	seedCampaign(t, store, "c3", campaign.StatusSent, "mc-3")

	var synced []string
	refresher := NewRefresher(store, func(ctx context.Context, userID, campaignID string) error {
		synced = append(synced, campaignID)
		return nil
	}, "@hourly")

	refresher.RunOnce()

	assert.ElementsMatch(t, []string{"c1", "c3"}, synced)
}

func TestRunOnce_SkipsSentCampaignsWithoutProviderID(t *testing.T) {
	store := campaign.NewInMemoryStore()
	seedCampaign(t, store, "c1", campaign.StatusSent, "")

	calls := 0
	refresher := NewRefresher(store, func(ctx context.Context, userID, campaignID string) error {
		calls++
		return nil
	}, "@hourly")

	refresher.RunOnce()
	assert.Zero(t, calls)
}

func TestRunOnce_ContinuesPastFailures(t *testing.T) {
	store := campaign.NewInMemoryStore()
	seedCampaign(t, store, "c1", campaign.StatusSent, "mc-1")
	seedCampaign(t, store, "c2", campaign.StatusSent, "mc-2")

	var synced []string
	refresher := NewRefresher(store, func(ctx context.Context, userID, campaignID string) error {
		synced = append(synced, campaignID)
		if campaignID == "c1" {
			return errors.New("provider unavailable")
		}
		return nil
	}, "@hourly")

	refresher.RunOnce()

	// One campaign failing does not stop the sweep
	assert.Len(t, synced, 2)
}

func TestStart_RejectsBadSchedule(t *testing.T) {
	refresher := NewRefresher(campaign.NewInMemoryStore(), func(ctx context.Context, userID, campaignID string) error {
		return nil
	}, "not a schedule")

	assert.Error(t, refresher.Start())
}
