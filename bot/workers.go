package bot

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// StartLeaderboardWorker refreshes the leaderboard message every interval.
// Returns a cleanup function to stop the worker gracefully.
func (b *Bot) StartLeaderboardWorker(ctx context.Context, interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	stopChan := make(chan struct{})

	go func() {
		log.WithField("interval", interval).Info("Leaderboard worker started")

		for {
			select {
			case <-ctx.Done():
				log.Info("Leaderboard worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Leaderboard worker shutting down (stop requested)...")
				return
			case <-ticker.C:
				result := b.refresher.Refresh(ctx)
				log.WithField("result", result).Debug("Periodic leaderboard refresh finished")
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(stopChan)
	}
}
