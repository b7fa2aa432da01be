package predictions

import (
	"context"
	"fmt"
	"strings"

	"predictor/bot/common"
	"predictor/models"
	"predictor/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// handleVote records a vote button press and refreshes the tally in place
func (f *Feature) handleVote(s *discordgo.Session, i *discordgo.InteractionCreate, in Interaction) {
	ctx := context.Background()
	voterID := common.InteractionUserID(i)

	question, err := f.castVote(ctx, voterID, common.DisplayName(i), in.QuestionID, in.Choice)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	log.WithFields(log.Fields{
		"questionID": question.ID,
		"voterID":    voterID,
		"choice":     in.Choice,
	}).Debug("Vote recorded")

	if err := common.UpdateComponentMessage(s, i, OpenEmbed(question), OpenComponents(question.ID)); err != nil {
		log.WithField("questionID", question.ID).WithError(err).Error("Failed to update vote counts")
		return
	}

	recorded, ok := question.ChoiceOf(voterID)
	if !ok {
		log.WithFields(log.Fields{
			"questionID": question.ID,
			"voterID":    voterID,
		}).Warn("Recorded vote missing from returned question")
		recorded = in.Choice
	}
	common.FollowUpWithSuccess(s, i, fmt.Sprintf("Your vote (%s) has been recorded!", strings.ToUpper(string(recorded))), true)
}

// castVote registers the voter and records the vote in one transaction
func (f *Feature) castVote(ctx context.Context, voterID, displayName, questionID string, choice models.VoteChoice) (*models.Question, error) {
	uow := f.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	userService := service.NewUserService(uow.UserRepository(), uow.EventBus())
	if _, err := userService.FindOrCreate(ctx, voterID, displayName); err != nil {
		return nil, err
	}

	questionService := service.NewQuestionService(uow.QuestionRepository(), uow.EventBus())
	question, err := questionService.CastVote(ctx, questionID, voterID, choice)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit vote: %w", err)
	}
	return question, nil
}
