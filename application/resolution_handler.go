package application

import (
	"context"
	"fmt"

	"predictor/events"
	"predictor/models"
	"predictor/service"

	log "github.com/sirupsen/logrus"
)

// ResolveRequest is the input shared by the /resolve command and the resolve buttons
type ResolveRequest struct {
	QuestionID string
	ResolverID string
	Outcome    bool
	Source     string // "command" or "button", for logs only
}

// ResolutionResult describes what a successful resolution changed
type ResolutionResult struct {
	Question  *models.Question
	XPAward   int64
	Correct   []string
	Incorrect []string
	// Failed holds voters whose counters could not be updated, keyed by external id
	Failed map[string]error
}

// ResolutionHandler commits an outcome, scores every voter and refreshes the leaderboard
type ResolutionHandler struct {
	uowFactory  service.UnitOfWorkFactory
	leaderboard LeaderboardTrigger
	xpAward     int64
}

// NewResolutionHandler creates a new resolution handler
func NewResolutionHandler(uowFactory service.UnitOfWorkFactory, leaderboard LeaderboardTrigger, xpAward int64) *ResolutionHandler {
	return &ResolutionHandler{
		uowFactory:  uowFactory,
		leaderboard: leaderboard,
		xpAward:     xpAward,
	}
}

// Resolve runs the whole resolution workflow. Precondition failures are returned
// before anything is written; per-voter failures are logged and collected.
func (h *ResolutionHandler) Resolve(ctx context.Context, req ResolveRequest) (*ResolutionResult, error) {
	question, err := h.commit(ctx, req)
	if err != nil {
		return nil, err
	}

	correct, incorrect := question.PartitionVoters(req.Outcome)
	result := &ResolutionResult{
		Question:  question,
		XPAward:   h.xpAward,
		Correct:   correct,
		Incorrect: incorrect,
		Failed:    make(map[string]error),
	}

	for _, voter := range correct {
		if err := h.scoreVoter(ctx, question.ID, voter, true); err != nil {
			result.Failed[voter] = err
		}
	}
	for _, voter := range incorrect {
		if err := h.scoreVoter(ctx, question.ID, voter, false); err != nil {
			result.Failed[voter] = err
		}
	}

	log.WithFields(log.Fields{
		"questionID": question.ID,
		"outcome":    req.Outcome,
		"source":     req.Source,
		"correct":    len(correct),
		"incorrect":  len(incorrect),
		"failed":     len(result.Failed),
	}).Info("Scored voters for resolved question")

	h.leaderboard.Refresh(ctx)

	return result, nil
}

func (h *ResolutionHandler) commit(ctx context.Context, req ResolveRequest) (*models.Question, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	resolutionService := service.NewResolutionService(uow.QuestionRepository(), uow.EventBus())
	question, err := resolutionService.Resolve(ctx, req.QuestionID, req.ResolverID, req.Outcome)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit resolution: %w", err)
	}
	return question, nil
}

// scoreVoter updates one voter's counters in its own transaction so a failure
// never touches the other voters
func (h *ResolutionHandler) scoreVoter(ctx context.Context, questionID, externalID string, correct bool) error {
	logger := log.WithFields(log.Fields{
		"questionID": questionID,
		"externalID": externalID,
		"correct":    correct,
	})

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		logger.WithError(err).Error("Failed to begin transaction for voter")
		return err
	}
	defer uow.Rollback()

	userService := service.NewUserService(uow.UserRepository(), uow.EventBus())

	var (
		user    *models.User
		err     error
		awarded int64
	)
	if correct {
		user, err = userService.AwardCorrect(ctx, externalID, h.xpAward)
		awarded = h.xpAward
	} else {
		user, err = userService.RecordIncorrect(ctx, externalID)
	}
	if err != nil {
		logger.WithError(err).Error("Failed to update voter counters")
		return err
	}

	uow.EventBus().Publish(events.PredictionScoredEvent{
		QuestionID: questionID,
		ExternalID: externalID,
		Correct:    correct,
		XPAwarded:  awarded,
		NewXP:      user.XP,
	})

	if err := uow.Commit(); err != nil {
		logger.WithError(err).Error("Failed to commit voter counters")
		return err
	}
	return nil
}
