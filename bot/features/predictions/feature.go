package predictions

import (
	"context"
	"time"

	"predictor/application"
	"predictor/bot/common"
	"predictor/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Config holds what the feature needs from the bot configuration
type Config struct {
	PredictionsChannelID string
	GuildID              string
	XPAward              int64
}

// Resolver runs the resolution workflow shared by /resolve and the resolve buttons
type Resolver interface {
	Resolve(ctx context.Context, req application.ResolveRequest) (*application.ResolutionResult, error)
}

// Feature represents the prediction questions feature
type Feature struct {
	session    *discordgo.Session
	uowFactory service.UnitOfWorkFactory
	resolver   Resolver
	announcer  *Announcer
	config     Config
	now        func() time.Time
}

// NewFeature creates a new predictions feature instance
func NewFeature(session *discordgo.Session, uowFactory service.UnitOfWorkFactory, resolver Resolver, config Config) *Feature {
	return &Feature{
		session:    session,
		uowFactory: uowFactory,
		resolver:   resolver,
		announcer:  NewAnnouncer(session, session, sessionGuildResolver(session, config.GuildID)),
		config:     config,
		now:        time.Now,
	}
}

// Announcer exposes the message renderer used by the expiry sweep
func (f *Feature) Announcer() *Announcer {
	return f.announcer
}

// HandleCommand routes /create, /resolve and /predictions
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.ApplicationCommandData().Name {
	case "create":
		f.handleCreate(s, i)
	case "resolve":
		f.handleResolveCommand(s, i)
	case "predictions":
		f.handleList(s, i)
	default:
		common.RespondWithError(s, i, "Unknown command.")
	}
}

// HandleInteraction handles vote and resolve buttons
func (f *Feature) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID

	interaction, err := ParseCustomID(customID)
	if err != nil {
		log.WithField("customID", customID).Warn("Unknown prediction button")
		common.RespondWithError(s, i, "Unknown button.")
		return
	}

	switch interaction.Kind {
	case KindVote:
		f.handleVote(s, i, interaction)
	case KindResolve:
		f.handleResolveButton(s, i, interaction)
	}
}

// sessionGuildResolver returns the configured guild, or the first guild the bot is in
func sessionGuildResolver(s *discordgo.Session, configured string) func() string {
	return func() string {
		if configured != "" {
			return configured
		}
		if s.State == nil {
			return ""
		}
		s.State.RLock()
		defer s.State.RUnlock()
		if len(s.State.Guilds) > 0 {
			return s.State.Guilds[0].ID
		}
		return ""
	}
}
