package leaderboard

import (
	"fmt"
	"strings"
	"time"

	"predictor/bot/common"
	"predictor/models"

	"github.com/bwmarrin/discordgo"
)

// Title identifies the canonical leaderboard message in the channel
const Title = "🏆 Prediction Game Leaderboard"

var medals = map[int]string{1: "🥇", 2: "🥈", 3: "🥉"}

// Embed renders the ranking
func Embed(entries []models.LeaderboardEntry, now time.Time) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       Title,
		Description: "Top players ranked by XP",
		Color:       common.ColorInfo,
		Timestamp:   now.UTC().Format(time.RFC3339),
	}

	if len(entries) == 0 {
		embed.Fields = []*discordgo.MessageEmbedField{
			{Name: "Rankings", Value: "No players yet. Make a prediction to get on the board!"},
		}
		return embed
	}

	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, rankLine(entry))
	}

	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Rankings", Value: strings.Join(lines, "\n")},
	}
	return embed
}

func rankLine(entry models.LeaderboardEntry) string {
	rank, ok := medals[entry.Rank]
	if !ok {
		rank = fmt.Sprintf("%d.", entry.Rank)
	}

	u := entry.User
	return fmt.Sprintf("%s %s: **%s** XP (%s correct predictions)",
		rank,
		common.UserMention(u.ExternalID(models.PlatformDiscord)),
		common.FormatNumber(u.XP),
		common.FormatNumber(u.CorrectPredictions),
	)
}
