package leaderboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"predictor/models"
	"predictor/service"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	history []*discordgo.Message
	listErr error
	editErr error
	sendErr error

	edited []string
	sent   []*discordgo.MessageEmbed
}

func (f *fakeClient) ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.history) > limit {
		return f.history[:limit], nil
	}
	return f.history, nil
}

func (f *fakeClient) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, embed)
	return &discordgo.Message{ID: "new"}, nil
}

func (f *fakeClient) ChannelMessageEditEmbed(channelID, messageID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.editErr != nil {
		return nil, f.editErr
	}
	f.edited = append(f.edited, messageID)
	return &discordgo.Message{ID: messageID}, nil
}

func message(id, authorID, title string) *discordgo.Message {
	m := &discordgo.Message{ID: id, Author: &discordgo.User{ID: authorID}}
	if title != "" {
		m.Embeds = []*discordgo.MessageEmbed{{Title: title}}
	}
	return m
}

func player(externalID string, xp, correct int64) *models.User {
	return &models.User{
		ID:                 "u_" + externalID,
		Identities:         []models.PlatformIdentity{{Platform: models.PlatformDiscord, ExternalID: externalID}},
		XP:                 xp,
		CorrectPredictions: correct,
	}
}

func botID() string { return "bot" }

func TestPoster_PostLeaderboard(t *testing.T) {
	ctx := context.Background()
	entries := models.RankUsers([]*models.User{player("1", 30, 3)})

	t.Run("edits the bot's leaderboard message", func(t *testing.T) {
		client := &fakeClient{history: []*discordgo.Message{
			message("m1", "someone", Title),
			message("m2", "bot", "Something else"),
			message("m3", "bot", Title),
		}}
		p := NewPoster(client, "lb", botID)

		created, err := p.PostLeaderboard(ctx, entries)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, []string{"m3"}, client.edited)
		assert.Empty(t, client.sent)
	})

	t.Run("sends a new message when none is found", func(t *testing.T) {
		client := &fakeClient{history: []*discordgo.Message{message("m1", "someone", Title)}}
		p := NewPoster(client, "lb", botID)

		created, err := p.PostLeaderboard(ctx, entries)
		require.NoError(t, err)
		assert.True(t, created)
		require.Len(t, client.sent, 1)
		assert.Equal(t, Title, client.sent[0].Title)
	})

	t.Run("only the recent history is scanned", func(t *testing.T) {
		history := make([]*discordgo.Message, 0, scanDepth+1)
		for i := 0; i < scanDepth; i++ {
			history = append(history, message("chat", "someone", ""))
		}
		history = append(history, message("old", "bot", Title))
		client := &fakeClient{history: history}

		created, err := NewPoster(client, "lb", botID).PostLeaderboard(ctx, entries)
		require.NoError(t, err)
		assert.True(t, created)
	})

	t.Run("falls back to sending when the edit fails", func(t *testing.T) {
		client := &fakeClient{
			history: []*discordgo.Message{message("m1", "bot", Title)},
			editErr: errors.New("unknown message"),
		}

		created, err := NewPoster(client, "lb", botID).PostLeaderboard(ctx, entries)
		require.NoError(t, err)
		assert.True(t, created)
	})

	t.Run("channel unavailable", func(t *testing.T) {
		client := &fakeClient{listErr: errors.New("missing access")}

		_, err := NewPoster(client, "lb", botID).PostLeaderboard(ctx, entries)
		assert.ErrorIs(t, err, service.ErrChannelUnavailable)
	})

	t.Run("send failure", func(t *testing.T) {
		client := &fakeClient{sendErr: errors.New("missing permissions")}

		_, err := NewPoster(client, "lb", botID).PostLeaderboard(ctx, entries)
		assert.ErrorIs(t, err, service.ErrChannelUnavailable)
	})
}

func TestEmbed(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("ranks with medals", func(t *testing.T) {
		entries := models.RankUsers([]*models.User{
			player("1", 1500, 150),
			player("2", 40, 4),
			player("3", 30, 3),
			player("4", 10, 1),
		})

		embed := Embed(entries, now)
		assert.Equal(t, Title, embed.Title)
		assert.Equal(t, "Top players ranked by XP", embed.Description)
		assert.Equal(t, now.Format(time.RFC3339), embed.Timestamp)
		require.Len(t, embed.Fields, 1)
		assert.Equal(t, "Rankings", embed.Fields[0].Name)
		assert.Equal(t,
			"🥇 <@1>: **1,500** XP (150 correct predictions)\n"+
				"🥈 <@2>: **40** XP (4 correct predictions)\n"+
				"🥉 <@3>: **30** XP (3 correct predictions)\n"+
				"4. <@4>: **10** XP (1 correct predictions)",
			embed.Fields[0].Value)
	})

	t.Run("empty", func(t *testing.T) {
		embed := Embed(nil, now)
		require.Len(t, embed.Fields, 1)
		assert.Contains(t, embed.Fields[0].Value, "No players yet")
	})
}
