package predictions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"predictor/bot/common"
	"predictor/models"
	"predictor/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// handleCreate handles /create question:<text> duration:<duration>
func (f *Feature) handleCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	var questionText, durationText string
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "question":
			questionText = strings.TrimSpace(opt.StringValue())
		case "duration":
			durationText = opt.StringValue()
		}
	}

	duration, err := service.ParseDuration(durationText)
	if err != nil {
		common.RespondWithError(s, i, `Invalid duration format. Please use formats like "1h" for 1 hour or "2d" for 2 days.`)
		return
	}
	if err := service.ValidateDuration(duration); err != nil {
		common.RespondWithError(s, i, "Duration must be between 1 hour and 7 days.")
		return
	}

	channelID := f.config.PredictionsChannelID
	if _, err := s.Channel(channelID); err != nil {
		common.HandleError(s, i, fmt.Errorf("%w: predictions channel %s: %w", service.ErrChannelUnavailable, channelID, err), false)
		return
	}

	if err := common.DeferResponse(s, i, true); err != nil {
		log.Errorf("Error deferring create response: %v", err)
		return
	}

	creatorID := common.InteractionUserID(i)
	question, err := f.createQuestion(ctx, creatorID, common.DisplayName(i), questionText, f.now().Add(duration))
	if err != nil {
		common.HandleError(s, i, err, true)
		return
	}

	message, err := s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{OpenEmbed(question)},
		Components: OpenComponents(question.ID),
	})
	if err != nil {
		log.WithFields(log.Fields{
			"questionID": question.ID,
			"channelID":  channelID,
		}).WithError(err).Error("Failed to post question announcement")

		if discardErr := f.discardQuestion(ctx, question.ID); discardErr != nil {
			log.WithField("questionID", question.ID).WithError(discardErr).Error("Failed to discard unannounced question")
			common.FollowUpWithError(s, i, fmt.Sprintf(
				"Your prediction was saved but could not be posted. Use `/resolve question_id:%s` to close it.", question.ID))
			return
		}
		common.HandleError(s, i, fmt.Errorf("%w: %w", service.ErrChannelUnavailable, err), true)
		return
	}

	if err := f.attachMessageRef(ctx, question.ID, channelID, message.ID); err != nil {
		common.HandleError(s, i, err, true)
		return
	}

	log.WithFields(log.Fields{
		"questionID": question.ID,
		"creatorID":  creatorID,
		"endTime":    question.EndTime,
		"messageID":  message.ID,
	}).Info("Prediction question posted")

	common.FollowUpWithSuccess(s, i, fmt.Sprintf("Your prediction question has been posted in %s!", common.ChannelMention(channelID)), true)
}

// createQuestion registers the creator and stores the question in one transaction
func (f *Feature) createQuestion(ctx context.Context, creatorID, displayName, text string, endTime time.Time) (*models.Question, error) {
	uow := f.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	userService := service.NewUserService(uow.UserRepository(), uow.EventBus())
	if _, err := userService.FindOrCreate(ctx, creatorID, displayName); err != nil {
		return nil, err
	}

	questionService := service.NewQuestionService(uow.QuestionRepository(), uow.EventBus())
	question, err := questionService.Create(ctx, text, creatorID, endTime)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit question: %w", err)
	}
	return question, nil
}

func (f *Feature) attachMessageRef(ctx context.Context, questionID, channelID, messageID string) error {
	uow := f.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	questionService := service.NewQuestionService(uow.QuestionRepository(), uow.EventBus())
	if err := questionService.AttachMessageRef(ctx, questionID, channelID, messageID); err != nil {
		return err
	}
	return uow.Commit()
}

// discardQuestion removes a question whose announcement could not be posted
func (f *Feature) discardQuestion(ctx context.Context, questionID string) error {
	uow := f.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	questionService := service.NewQuestionService(uow.QuestionRepository(), uow.EventBus())
	if err := questionService.Discard(ctx, questionID); err != nil {
		return err
	}
	return uow.Commit()
}
