package predictions

import (
	"context"
	"fmt"
	"strings"

	"predictor/application"
	"predictor/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// handleResolveCommand handles /resolve question_id:<id> outcome:<yes|no>
func (f *Feature) handleResolveCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var questionID, outcomeText string
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "question_id":
			questionID = strings.TrimSpace(opt.StringValue())
		case "outcome":
			outcomeText = strings.ToLower(opt.StringValue())
		}
	}

	if outcomeText != "yes" && outcomeText != "no" {
		common.RespondWithError(s, i, "Outcome must be yes or no.")
		return
	}

	if err := common.DeferResponse(s, i, true); err != nil {
		log.Errorf("Error deferring resolve response: %v", err)
		return
	}

	f.resolve(s, i, application.ResolveRequest{
		QuestionID: questionID,
		ResolverID: common.InteractionUserID(i),
		Outcome:    outcomeText == "yes",
		Source:     "command",
	})
}

// handleResolveButton handles the creator's resolve buttons on an expired question
func (f *Feature) handleResolveButton(s *discordgo.Session, i *discordgo.InteractionCreate, in Interaction) {
	// Scoring and the leaderboard refresh can outlast the interaction deadline
	if err := common.DeferResponse(s, i, true); err != nil {
		log.Errorf("Error deferring resolve button response: %v", err)
		return
	}

	f.resolve(s, i, application.ResolveRequest{
		QuestionID: in.QuestionID,
		ResolverID: common.InteractionUserID(i),
		Outcome:    in.Outcome(),
		Source:     "button",
	})
}

// resolve runs the workflow and renders its result; i must already be deferred
func (f *Feature) resolve(s *discordgo.Session, i *discordgo.InteractionCreate, req application.ResolveRequest) {
	ctx := context.Background()

	result, err := f.resolver.Resolve(ctx, req)
	if err != nil {
		common.HandleError(s, i, err, true)
		return
	}

	if err := f.announcer.AnnounceResolved(ctx, result.Question, result.XPAward); err != nil {
		log.WithField("questionID", result.Question.ID).WithError(err).Error("Failed to render resolved question")
	}

	outcome := "NO"
	if req.Outcome {
		outcome = "YES"
	}
	message := fmt.Sprintf("Prediction resolved as %s! XP has been awarded to all correct predictions.", outcome)
	if len(result.Failed) > 0 {
		message += fmt.Sprintf(" (%d voter(s) could not be updated)", len(result.Failed))
	}
	common.FollowUpWithSuccess(s, i, message, true)
}
