// Package analytics runs the background analytics refresh: a single cron
// entry that re-syncs email analytics for sent campaigns. This is not a job
// queue; the loop is sequential and every failure is logged per campaign
// and otherwise ignored
package analytics

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/launchkite/launchkite/internal/stores/campaign"
)

// SyncFunc re-syncs analytics for one campaign on behalf of its owner
type SyncFunc func(ctx context.Context, userID, campaignID string) error

// Refresher periodically refreshes analytics for all sent campaigns
type Refresher struct {
	campaigns campaign.Store
	sync      SyncFunc
	schedule  string
	cron      *cron.Cron
}

// NewRefresher creates a refresher with the given cron schedule
// ("@hourly", "*/30 * * * *", ...)
func NewRefresher(campaigns campaign.Store, sync SyncFunc, schedule string) *Refresher {
	return &Refresher{
		campaigns: campaigns,
		sync:      sync,
		schedule:  schedule,
		cron:      cron.New(),
	}
}

// Start schedules the refresh job and starts the cron runner
func (r *Refresher) Start() error {
	if _, err := r.cron.AddFunc(r.schedule, r.RunOnce); err != nil {
		return err
	}

	r.cron.Start()
	log.Printf("[ANALYTICS]: Background refresh scheduled (%s)", r.schedule)
	return nil
}

// Stop stops the cron runner and waits for a running refresh to finish
func (r *Refresher) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}

// RunOnce refreshes analytics for every sent campaign, best-effort
func (r *Refresher) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	campaigns, err := r.campaigns.ListByStatus(ctx, campaign.StatusSent)
	if err != nil {
		log.Printf("[ANALYTICS]: Failed to list sent campaigns: %v", err)
		return
	}

	refreshed := 0
	for _, c := range campaigns {
		if c.MailchimpCampaignID == "" {
			continue
		}

		if err := r.sync(ctx, c.UserID, c.ID); err != nil {
			log.Printf("[ANALYTICS]: Failed to refresh campaign %s: %v", c.ID, err)
			continue
		}
		refreshed++
	}

	if refreshed > 0 {
		log.Printf("[ANALYTICS]: Refreshed analytics for %d campaigns", refreshed)
	}
}
