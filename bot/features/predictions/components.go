package predictions

import (
	"predictor/models"

	"github.com/bwmarrin/discordgo"
)

// voteRow builds the Vote Yes / Vote No buttons
func voteRow(questionID string, disabled bool) discordgo.ActionsRow {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Vote Yes",
				Style:    discordgo.SuccessButton,
				CustomID: VoteCustomID(models.VoteYes, questionID),
				Disabled: disabled,
			},
			discordgo.Button{
				Label:    "Vote No",
				Style:    discordgo.DangerButton,
				CustomID: VoteCustomID(models.VoteNo, questionID),
				Disabled: disabled,
			},
		},
	}
}

// resolveRow builds the creator's resolution buttons
func resolveRow(questionID string, disabled bool) discordgo.ActionsRow {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Resolve as Yes",
				Style:    discordgo.SuccessButton,
				CustomID: ResolveCustomID(true, questionID),
				Disabled: disabled,
			},
			discordgo.Button{
				Label:    "Resolve as No",
				Style:    discordgo.DangerButton,
				CustomID: ResolveCustomID(false, questionID),
				Disabled: disabled,
			},
		},
	}
}

// OpenComponents are shown while votes are accepted
func OpenComponents(questionID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{voteRow(questionID, false)}
}

// ExpiredComponents disable voting and optionally offer resolution
func ExpiredComponents(questionID string, withResolveControls bool) []discordgo.MessageComponent {
	components := []discordgo.MessageComponent{voteRow(questionID, true)}
	if withResolveControls {
		components = append(components, resolveRow(questionID, false))
	}
	return components
}

// ResolvedComponents keep the buttons visible but inert
func ResolvedComponents(questionID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{voteRow(questionID, true)}
}
