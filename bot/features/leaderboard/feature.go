package leaderboard

import (
	"context"
	"time"

	"predictor/application"
	"predictor/bot/common"
	"predictor/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Ranking is what the /leaderboard command needs from the refresher
type Ranking interface {
	Refresh(ctx context.Context) application.RefreshResult
	Top(ctx context.Context) ([]models.LeaderboardEntry, error)
}

// Feature represents the leaderboard feature
type Feature struct {
	ranking Ranking
	now     func() time.Time
}

// NewFeature creates a new leaderboard feature instance
func NewFeature(ranking Ranking) *Feature {
	return &Feature{ranking: ranking, now: time.Now}
}

// HandleCommand handles /leaderboard: refreshes the channel post and shows the ranking
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	if err := common.DeferResponse(s, i, true); err != nil {
		log.Errorf("Error deferring leaderboard response: %v", err)
		return
	}

	if result := f.ranking.Refresh(ctx); result == application.RefreshFailed {
		log.Warn("Leaderboard channel refresh failed while serving /leaderboard")
	}

	entries, err := f.ranking.Top(ctx)
	if err != nil {
		common.HandleError(s, i, err, true)
		return
	}

	if _, err := common.FollowUpWithEmbed(s, i, Embed(entries, f.now()), true); err != nil {
		log.Errorf("Error sending leaderboard: %v", err)
	}
}
