package predictions

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"predictor/application"
	"predictor/models"
	"predictor/service"

	"github.com/bwmarrin/discordgo"
)

type messageEditor interface {
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type memberFetcher interface {
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
}

// Announcer re-renders question announcements after they were posted
type Announcer struct {
	editor  messageEditor
	members memberFetcher
	guildID func() string
}

// NewAnnouncer creates an announcer. guildID is consulted on every membership check.
func NewAnnouncer(editor messageEditor, members memberFetcher, guildID func() string) *Announcer {
	return &Announcer{
		editor:  editor,
		members: members,
		guildID: guildID,
	}
}

// AnnounceExpired disables voting and optionally attaches resolve buttons
func (a *Announcer) AnnounceExpired(ctx context.Context, q *models.Question, withResolveControls bool) error {
	return a.edit(q, ExpiredEmbed(q), ExpiredComponents(q.ID, withResolveControls))
}

// AnnounceResolved shows the outcome and disables every button
func (a *Announcer) AnnounceResolved(ctx context.Context, q *models.Question, xpAward int64) error {
	return a.edit(q, ResolvedEmbed(q, xpAward), ResolvedComponents(q.ID))
}

func (a *Announcer) edit(q *models.Question, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) error {
	if !q.HasMessageRef() {
		return fmt.Errorf("question %s has no announcement message", q.ID)
	}

	embeds := []*discordgo.MessageEmbed{embed}
	_, err := a.editor.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         *q.MessageID,
		Channel:    *q.ChannelID,
		Embeds:     &embeds,
		Components: &components,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to edit announcement of question %s: %w", service.ErrChannelUnavailable, q.ID, err)
	}
	return nil
}

// IsMember reports whether a user is still in the guild. Unknown members are not
// an error; any other failure is returned to the caller.
func (a *Announcer) IsMember(ctx context.Context, userID string) (bool, error) {
	guildID := a.guildID()
	if guildID == "" {
		return false, errors.New("no guild available for membership check")
	}

	member, err := a.members.GuildMember(guildID, userID)
	if err != nil {
		var restErr *discordgo.RESTError
		if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to fetch guild member %s: %w", userID, err)
	}
	return member != nil, nil
}

var (
	_ application.ExpiredAnnouncer = (*Announcer)(nil)
	_ application.MemberChecker    = (*Announcer)(nil)
)
