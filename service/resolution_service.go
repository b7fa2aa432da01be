package service

import (
	"context"
	"fmt"
	"time"

	"predictor/events"
	"predictor/models"

	log "github.com/sirupsen/logrus"
)

// resolutionService implements the ResolutionService interface
type resolutionService struct {
	questionRepo   QuestionRepository
	eventPublisher EventPublisher
	now            func() time.Time
}

// NewResolutionService creates a new resolution service
func NewResolutionService(questionRepo QuestionRepository, eventPublisher EventPublisher) ResolutionService {
	return &resolutionService{
		questionRepo:   questionRepo,
		eventPublisher: eventPublisher,
		now:            time.Now,
	}
}

// Resolve checks existence, authorship and resolution state in that order. Expired
// questions may still be resolved by their creator.
func (s *resolutionService) Resolve(ctx context.Context, id, resolverID string, outcome bool) (*models.Question, error) {
	question, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load question %s: %w", id, err)
	}

	if question.CreatedBy != resolverID {
		return nil, fmt.Errorf("%w: only the creator of question %s can resolve it", ErrUnauthorized, id)
	}

	if question.Resolved {
		return nil, fmt.Errorf("question %s: %w", id, ErrAlreadyResolved)
	}

	// The compare-and-set still decides between concurrent resolvers
	resolvedAt := s.now().UTC()
	resolved, err := s.questionRepo.CommitResolution(ctx, id, outcome, resolverID, resolvedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to commit resolution of question %s: %w", id, err)
	}

	counts := resolved.VoteCounts()
	log.WithFields(log.Fields{
		"questionID": id,
		"outcome":    outcome,
		"resolvedBy": resolverID,
		"yesVotes":   counts.Yes,
		"noVotes":    counts.No,
	}).Info("Question resolved")

	s.eventPublisher.Publish(events.QuestionResolvedEvent{
		QuestionID: resolved.ID,
		Outcome:    outcome,
		ResolvedBy: resolverID,
		ResolvedAt: resolvedAt,
		YesCount:   counts.Yes,
		NoCount:    counts.No,
	})

	return resolved, nil
}
