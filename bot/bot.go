package bot

import (
	"context"
	"fmt"

	"predictor/application"
	"predictor/bot/features/leaderboard"
	"predictor/bot/features/predictions"
	"predictor/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Config holds bot configuration
type Config struct {
	Token                string
	GuildID              string
	PredictionsChannelID string
	LeaderboardChannelID string
	XPAward              int64
}

// Bot manages the Discord session and the feature modules
type Bot struct {
	// Core components
	config     Config
	session    *discordgo.Session
	uowFactory service.UnitOfWorkFactory

	// Application workflows
	refresher *application.LeaderboardRefresher
	resolver  *application.ResolutionHandler
	sweeper   *application.ExpirySweeper

	// Feature modules
	predictions *predictions.Feature
	leaderboard *leaderboard.Feature
}

// New creates a new bot instance with all features and opens the gateway connection
func New(config Config, uowFactory service.UnitOfWorkFactory, locker application.Locker, emitter application.EventEmitter) (*Bot, error) {
	// Create Discord session
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers | discordgo.IntentsGuildMessages

	bot := &Bot{
		config:     config,
		session:    dg,
		uowFactory: uowFactory,
	}

	// Application workflows
	poster := leaderboard.NewPoster(dg, config.LeaderboardChannelID, bot.botUserID)
	bot.refresher = application.NewLeaderboardRefresher(uowFactory, poster, locker, emitter)
	bot.resolver = application.NewResolutionHandler(uowFactory, bot.refresher, config.XPAward)

	// Feature modules
	bot.predictions = predictions.NewFeature(dg, uowFactory, bot.resolver, predictions.Config{
		PredictionsChannelID: config.PredictionsChannelID,
		GuildID:              config.GuildID,
		XPAward:              config.XPAward,
	})
	bot.leaderboard = leaderboard.NewFeature(bot.refresher)

	announcer := bot.predictions.Announcer()
	bot.sweeper = application.NewExpirySweeper(uowFactory, announcer, announcer, emitter)

	// Register handlers
	dg.AddHandler(bot.handleCommands)
	dg.AddHandler(bot.handleInteractions)
	dg.AddHandlerOnce(bot.handleReady)

	// Open websocket connection
	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	return bot, nil
}

// Close closes the Discord session
func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) botUserID() string {
	if b.session.State == nil || b.session.State.User == nil {
		return ""
	}
	return b.session.State.User.ID
}

// handleReady posts the leaderboard and reconciles questions that expired while offline
func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	log.WithFields(log.Fields{
		"user":   r.User.Username,
		"guilds": len(r.Guilds),
	}).Info("Discord session ready")

	go func() {
		ctx := context.Background()

		result := b.refresher.Refresh(ctx)
		log.WithField("result", result).Info("Initial leaderboard refresh finished")

		report := b.sweeper.Sweep(ctx)
		log.WithFields(log.Fields{
			"total":               report.Total,
			"withResolveControls": report.WithResolveControls,
			"votingOnly":          report.VotingOnly,
			"failed":              report.Failed,
		}).Info("Startup expiry sweep finished")
	}()
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "create", "resolve", "predictions":
		b.predictions.HandleCommand(s, i)
	case "leaderboard":
		b.leaderboard.HandleCommand(s, i)
	}
}

func (b *Bot) handleInteractions(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}

	if predictions.IsPredictionCustomID(i.MessageComponentData().CustomID) {
		b.predictions.HandleInteraction(s, i)
	}
}
