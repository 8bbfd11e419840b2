package bot

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

const defaultGiveawaySweepInterval = time.Minute

// StartGiveawayExpiryWorker starts a background worker that ends giveaways whose time is up.
// Winners are announced by the GiveawayEnded subscription.
// Returns a cleanup function to stop the worker gracefully
func (b *Bot) StartGiveawayExpiryWorker(ctx context.Context) func() {
	interval := b.config.GiveawaySweepInterval
	if interval <= 0 {
		interval = defaultGiveawaySweepInterval
	}
	ticker := time.NewTicker(interval)
	stopChan := make(chan struct{})

	processExpired := func() {
		ended, err := b.services.Giveaways.EndExpired(ctx, b.now())
		if err != nil {
			log.Errorf("Error ending expired giveaways: %v", err)
			return
		}
		if len(ended) > 0 {
			log.WithField("count", len(ended)).Info("Ended expired giveaways")
		}
	}

	go func() {
		log.WithField("interval", interval).Info("Giveaway expiry worker started")

		// Run immediately on startup
		processExpired()

		for {
			select {
			case <-ctx.Done():
				log.Info("Giveaway expiry worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Giveaway expiry worker shutting down (stop requested)...")
				return
			case <-ticker.C:
				processExpired()
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(stopChan)
	}
}
