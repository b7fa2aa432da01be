package predictions

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"predictor/bot/common"
	"predictor/models"

	"github.com/bwmarrin/discordgo"
)

// Embed text shared by every rendering of a question
const (
	QuestionTitle = "📊 Yes or No Prediction"
	ResolvedTitle = "📊 Prediction Resolved"

	StatusOpen    = "⏳ Open for predictions"
	StatusExpired = "⏰ Expired (waiting for resolution)"

	activeListLimit = 25
	activeTextLimit = 100
	embedCharLimit  = 6000
)

// QuestionEmbed renders an unresolved question in its open or expired state
func QuestionEmbed(q *models.Question, status string) *discordgo.MessageEmbed {
	counts := q.VoteCounts()
	return &discordgo.MessageEmbed{
		Title:       QuestionTitle,
		Description: fmt.Sprintf("**%s**", q.Text),
		Color:       common.ColorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Created By", Value: common.UserMention(q.CreatedBy), Inline: true},
			{Name: "Ends At", Value: common.FormatDiscordTimestamp(q.EndTime, "R"), Inline: true},
			{Name: "Status", Value: status, Inline: true},
			{Name: "Yes Votes", Value: strconv.Itoa(counts.Yes), Inline: true},
			{Name: "No Votes", Value: strconv.Itoa(counts.No), Inline: true},
			{Name: "\u200b", Value: "\u200b", Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Question ID: %s • Vote with the buttons below", q.ID),
		},
		Timestamp: q.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// OpenEmbed renders a question that still accepts votes
func OpenEmbed(q *models.Question) *discordgo.MessageEmbed {
	return QuestionEmbed(q, StatusOpen)
}

// ExpiredEmbed renders a question waiting for its creator
func ExpiredEmbed(q *models.Question) *discordgo.MessageEmbed {
	return QuestionEmbed(q, StatusExpired)
}

// ResolvedEmbed renders the final state of a question
func ResolvedEmbed(q *models.Question, xpAward int64) *discordgo.MessageEmbed {
	outcome := q.Outcome != nil && *q.Outcome

	outcomeText, color := "❌ No", common.ColorFailure
	if outcome {
		outcomeText, color = "✅ Yes", common.ColorSuccess
	}

	resolvedBy := "Unknown"
	if q.ResolvedBy != nil {
		resolvedBy = common.UserMention(*q.ResolvedBy)
	}

	resolvedAt := time.Now().UTC()
	if q.ResolvedAt != nil {
		resolvedAt = q.ResolvedAt.UTC()
	}

	counts := q.VoteCounts()
	return &discordgo.MessageEmbed{
		Title:       ResolvedTitle,
		Description: fmt.Sprintf("**%s**", q.Text),
		Color:       color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Created By", Value: common.UserMention(q.CreatedBy), Inline: true},
			{Name: "Resolved By", Value: resolvedBy, Inline: true},
			{Name: "Outcome", Value: outcomeText, Inline: true},
			{Name: "Yes Votes", Value: strconv.Itoa(counts.Yes), Inline: true},
			{Name: "No Votes", Value: strconv.Itoa(counts.No), Inline: true},
			{Name: "XP Awarded", Value: fmt.Sprintf("%s XP to each correct predictor", common.FormatNumber(xpAward)), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Question ID: %s", q.ID),
		},
		Timestamp: resolvedAt.Format(time.RFC3339),
	}
}

// ActiveQuestionsEmbed lists questions that still accept votes. Fields are added
// while the embed stays inside Discord's total size limit.
func ActiveQuestionsEmbed(questions []*models.Question, now time.Time) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "📊 Active Predictions",
		Color: common.ColorInfo,
	}

	open := make([]*models.Question, 0, len(questions))
	for _, q := range questions {
		if q.IsOpen(now) {
			open = append(open, q)
		}
	}

	if len(open) == 0 {
		embed.Description = "No predictions are open right now. Start one with `/create`."
		return embed
	}

	// Reserve room for the footer before spending the budget on fields
	budget := embedCharLimit - utf8.RuneCountInString(embed.Title) - len(footerText(len(open), len(open)))
	for _, q := range open {
		if len(embed.Fields) == activeListLimit {
			break
		}
		field := activeQuestionField(q)
		size := utf8.RuneCountInString(field.Name) + utf8.RuneCountInString(field.Value)
		if size > budget {
			break
		}
		budget -= size
		embed.Fields = append(embed.Fields, field)
	}

	if len(open) > len(embed.Fields) {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: footerText(len(embed.Fields), len(open))}
	}
	return embed
}

func activeQuestionField(q *models.Question) *discordgo.MessageEmbedField {
	counts := q.VoteCounts()
	return &discordgo.MessageEmbedField{
		Name: common.Truncate(q.Text, activeTextLimit),
		Value: strings.Join([]string{
			fmt.Sprintf("Ends %s", common.FormatDiscordTimestamp(q.EndTime, "R")),
			fmt.Sprintf("Yes %d • No %d", counts.Yes, counts.No),
			fmt.Sprintf("`%s`", q.ID),
		}, "\n"),
	}
}

func footerText(shown, total int) string {
	return fmt.Sprintf("Showing %d of %d", shown, total)
}

// EmbedLength counts the characters Discord checks against its 6000 limit
func EmbedLength(embed *discordgo.MessageEmbed) int {
	n := utf8.RuneCountInString(embed.Title) + utf8.RuneCountInString(embed.Description)
	for _, f := range embed.Fields {
		n += utf8.RuneCountInString(f.Name) + utf8.RuneCountInString(f.Value)
	}
	if embed.Footer != nil {
		n += utf8.RuneCountInString(embed.Footer.Text)
	}
	if embed.Author != nil {
		n += utf8.RuneCountInString(embed.Author.Name)
	}
	return n
}
