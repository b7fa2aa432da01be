package leaderboard

import (
	"context"
	"fmt"
	"time"

	"predictor/application"
	"predictor/models"
	"predictor/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// scanDepth is how many recent channel messages are searched for the canonical one
const scanDepth = 10

type messageClient interface {
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditEmbed(channelID, messageID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Poster keeps a single leaderboard message current in the leaderboard channel
type Poster struct {
	client    messageClient
	channelID string
	botUserID func() string
	now       func() time.Time
}

// NewPoster creates a poster. botUserID is read on every post since the session
// user is only known after the gateway is ready.
func NewPoster(client messageClient, channelID string, botUserID func() string) *Poster {
	return &Poster{
		client:    client,
		channelID: channelID,
		botUserID: botUserID,
		now:       time.Now,
	}
}

// PostLeaderboard edits the bot's last leaderboard message, or sends a new one
func (p *Poster) PostLeaderboard(ctx context.Context, entries []models.LeaderboardEntry) (bool, error) {
	embed := Embed(entries, p.now())

	existing, err := p.findExisting()
	if err != nil {
		return false, err
	}

	if existing != nil {
		_, err := p.client.ChannelMessageEditEmbed(p.channelID, existing.ID, embed)
		if err == nil {
			return false, nil
		}
		// The message may have been deleted between the scan and the edit
		log.WithFields(log.Fields{
			"channelID": p.channelID,
			"messageID": existing.ID,
		}).WithError(err).Warn("Failed to edit leaderboard message, posting a new one")
	}

	if _, err := p.client.ChannelMessageSendEmbed(p.channelID, embed); err != nil {
		return false, fmt.Errorf("%w: failed to post leaderboard in %s: %w", service.ErrChannelUnavailable, p.channelID, err)
	}
	return true, nil
}

func (p *Poster) findExisting() (*discordgo.Message, error) {
	messages, err := p.client.ChannelMessages(p.channelID, scanDepth, "", "", "")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read leaderboard channel %s: %w", service.ErrChannelUnavailable, p.channelID, err)
	}

	botID := p.botUserID()
	for _, m := range messages {
		if m.Author == nil || m.Author.ID != botID {
			continue
		}
		if len(m.Embeds) > 0 && m.Embeds[0].Title == Title {
			return m, nil
		}
	}
	return nil, nil
}

var _ application.LeaderboardPoster = (*Poster)(nil)
