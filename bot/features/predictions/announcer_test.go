package predictions

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"predictor/service"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEditor struct {
	edits []*discordgo.MessageEdit
	err   error
}

func (f *fakeEditor) ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.edits = append(f.edits, m)
	if f.err != nil {
		return nil, f.err
	}
	return &discordgo.Message{ID: m.ID, ChannelID: m.Channel}, nil
}

type fakeMembers struct {
	members map[string]bool
	err     error
	guilds  []string
}

func (f *fakeMembers) GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error) {
	f.guilds = append(f.guilds, guildID)
	if f.err != nil {
		return nil, f.err
	}
	if !f.members[userID] {
		return nil, &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusNotFound}}
	}
	return &discordgo.Member{User: &discordgo.User{ID: userID}}, nil
}

func staticGuild(id string) func() string {
	return func() string { return id }
}

func TestAnnouncer_AnnounceExpired(t *testing.T) {
	editor := &fakeEditor{}
	a := NewAnnouncer(editor, &fakeMembers{}, staticGuild("g"))

	require.NoError(t, a.AnnounceExpired(context.Background(), testQuestion(), true))
	require.Len(t, editor.edits, 1)

	edit := editor.edits[0]
	assert.Equal(t, "msg", edit.ID)
	assert.Equal(t, "chan", edit.Channel)
	require.NotNil(t, edit.Embeds)
	assert.Equal(t, StatusExpired, fieldValue(t, (*edit.Embeds)[0], "Status"))
	require.NotNil(t, edit.Components)
	assert.Len(t, buttons(t, *edit.Components), 4)
}

func TestAnnouncer_AnnounceResolved(t *testing.T) {
	editor := &fakeEditor{}
	a := NewAnnouncer(editor, &fakeMembers{}, staticGuild("g"))

	q := testQuestion()
	q.Resolved = true
	q.Outcome = boolPtr(true)

	require.NoError(t, a.AnnounceResolved(context.Background(), q, 10))
	require.Len(t, editor.edits, 1)
	assert.Equal(t, ResolvedTitle, (*editor.edits[0].Embeds)[0].Title)
	for _, b := range buttons(t, *editor.edits[0].Components) {
		assert.True(t, b.Disabled)
	}
}

func TestAnnouncer_Errors(t *testing.T) {
	t.Run("missing message ref", func(t *testing.T) {
		editor := &fakeEditor{}
		a := NewAnnouncer(editor, &fakeMembers{}, staticGuild("g"))

		q := testQuestion()
		q.MessageID = nil

		assert.Error(t, a.AnnounceExpired(context.Background(), q, false))
		assert.Empty(t, editor.edits)
	})

	t.Run("edit failure", func(t *testing.T) {
		a := NewAnnouncer(&fakeEditor{err: errors.New("unknown channel")}, &fakeMembers{}, staticGuild("g"))

		err := a.AnnounceExpired(context.Background(), testQuestion(), true)
		assert.ErrorIs(t, err, service.ErrChannelUnavailable)
	})
}

func TestAnnouncer_IsMember(t *testing.T) {
	ctx := context.Background()

	t.Run("member and non-member", func(t *testing.T) {
		members := &fakeMembers{members: map[string]bool{"100": true}}
		a := NewAnnouncer(&fakeEditor{}, members, staticGuild("g"))

		ok, err := a.IsMember(ctx, "100")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = a.IsMember(ctx, "999")
		require.NoError(t, err)
		assert.False(t, ok)

		assert.Equal(t, []string{"g", "g"}, members.guilds)
	})

	t.Run("lookup failure", func(t *testing.T) {
		a := NewAnnouncer(&fakeEditor{}, &fakeMembers{err: errors.New("gateway timeout")}, staticGuild("g"))

		_, err := a.IsMember(ctx, "100")
		assert.Error(t, err)
	})

	t.Run("no guild", func(t *testing.T) {
		a := NewAnnouncer(&fakeEditor{}, &fakeMembers{}, staticGuild(""))

		_, err := a.IsMember(ctx, "100")
		assert.Error(t, err)
	})
}
