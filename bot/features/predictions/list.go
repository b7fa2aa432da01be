package predictions

import (
	"context"
	"fmt"

	"predictor/bot/common"
	"predictor/models"
	"predictor/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// handleList handles /predictions
func (f *Feature) handleList(s *discordgo.Session, i *discordgo.InteractionCreate) {
	questions, err := f.listActive(context.Background())
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	if err := common.RespondWithEmbed(s, i, ActiveQuestionsEmbed(questions, f.now()), nil, true); err != nil {
		log.Errorf("Error responding to predictions command: %v", err)
	}
}

func (f *Feature) listActive(ctx context.Context) ([]*models.Question, error) {
	uow := f.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	questionService := service.NewQuestionService(uow.QuestionRepository(), uow.EventBus())
	return questionService.ListActive(ctx)
}
