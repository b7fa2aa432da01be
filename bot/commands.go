package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// commands lists every slash command the bot registers
func commands() []*discordgo.ApplicationCommand {
	outcomeChoices := []*discordgo.ApplicationCommandOptionChoice{
		{Name: "Yes", Value: "yes"},
		{Name: "No", Value: "no"},
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        "create",
			Description: "Create a new yes/no prediction question",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "question",
					Description: "The yes/no question to predict",
					Required:    true,
					MaxLength:   256,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "duration",
					Description: "How long voting stays open (e.g. 1h, 2d, 1w)",
					Required:    true,
				},
			},
		},
		{
			Name:        "resolve",
			Description: "Resolve a prediction you created",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "question_id",
					Description: "Question ID shown in the prediction footer",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "outcome",
					Description: "What actually happened",
					Required:    true,
					Choices:     outcomeChoices,
				},
			},
		},
		{
			Name:        "leaderboard",
			Description: "Show the top predictors",
		},
		{
			Name:        "predictions",
			Description: "List predictions that are still open for votes",
		},
	}
}

// registerCommands registers all slash commands with Discord, guild-scoped when a guild is configured
func (b *Bot) registerCommands() error {
	appID := b.session.State.User.ID

	for _, cmd := range commands() {
		if _, err := b.session.ApplicationCommandCreate(appID, b.config.GuildID, cmd); err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}

	log.WithFields(log.Fields{
		"guildID":  b.config.GuildID,
		"commands": len(commands()),
	}).Info("Slash commands registered")
	return nil
}
