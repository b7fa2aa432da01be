package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"predictor/events"
	"predictor/models"
)

// MaxQuestionLength bounds question text so the announcement embed stays readable
const MaxQuestionLength = 256

// questionService implements the QuestionService interface
type questionService struct {
	questionRepo   QuestionRepository
	eventPublisher EventPublisher
	now            func() time.Time
}

// NewQuestionService creates a new question service
func NewQuestionService(questionRepo QuestionRepository, eventPublisher EventPublisher) QuestionService {
	return &questionService{
		questionRepo:   questionRepo,
		eventPublisher: eventPublisher,
		now:            time.Now,
	}
}

// Create validates the deadline window and stores a new question
func (s *questionService) Create(ctx context.Context, text, creatorID string, endTime time.Time) (*models.Question, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, validationError("question text is required")
	}
	if utf8.RuneCountInString(text) > MaxQuestionLength {
		return nil, validationError("question text must be at most %d characters", MaxQuestionLength)
	}
	if creatorID == "" {
		return nil, validationError("creator is required")
	}

	// Callers derive endTime from their own clock a moment earlier
	now := s.now().UTC()
	if err := ValidateDuration(endTime.Sub(now).Round(time.Second)); err != nil {
		return nil, err
	}

	question := &models.Question{
		ID:        NewQuestionID(),
		Text:      text,
		CreatedBy: creatorID,
		Platform:  models.PlatformDiscord,
		CreatedAt: now,
		EndTime:   endTime.UTC(),
		YesVoters: []string{},
		NoVoters:  []string{},
	}

	if err := s.questionRepo.Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.eventPublisher.Publish(events.QuestionCreatedEvent{
		QuestionID: question.ID,
		CreatedBy:  question.CreatedBy,
		EndTime:    question.EndTime,
	})

	return question, nil
}

// AttachMessageRef records the announcement location once it has been posted
func (s *questionService) AttachMessageRef(ctx context.Context, id, channelID, messageID string) error {
	if channelID == "" || messageID == "" {
		return validationError("channel and message ids are required")
	}
	if err := s.questionRepo.AttachMessageRef(ctx, id, channelID, messageID); err != nil {
		return fmt.Errorf("failed to attach message to question %s: %w", id, err)
	}
	return nil
}

// Discard drops a question whose announcement could not be posted
func (s *questionService) Discard(ctx context.Context, id string) error {
	if err := s.questionRepo.DeleteUnannounced(ctx, id); err != nil {
		return fmt.Errorf("failed to discard question %s: %w", id, err)
	}
	return nil
}

// Get retrieves a question by id
func (s *questionService) Get(ctx context.Context, id string) (*models.Question, error) {
	question, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get question %s: %w", id, err)
	}
	return question, nil
}

// CastVote records a toggle-exclusive vote
func (s *questionService) CastVote(ctx context.Context, id, userID string, choice models.VoteChoice) (*models.Question, error) {
	if userID == "" {
		return nil, validationError("voter is required")
	}
	if _, err := models.ParseVoteChoice(string(choice)); err != nil {
		return nil, validationError("%v", err)
	}

	question, err := s.questionRepo.CastVote(ctx, id, userID, choice)
	if err != nil {
		return nil, fmt.Errorf("failed to cast vote on question %s: %w", id, err)
	}

	counts := question.VoteCounts()
	s.eventPublisher.Publish(events.VoteCastEvent{
		QuestionID: question.ID,
		UserID:     userID,
		Choice:     string(choice),
		YesCount:   counts.Yes,
		NoCount:    counts.No,
	})

	return question, nil
}

// ListActive returns questions still open for votes
func (s *questionService) ListActive(ctx context.Context) ([]*models.Question, error) {
	questions, err := s.questionRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active questions: %w", err)
	}
	return questions, nil
}

// ListExpiredUnresolved returns questions waiting for their creator
func (s *questionService) ListExpiredUnresolved(ctx context.Context) ([]*models.Question, error) {
	questions, err := s.questionRepo.ListExpiredUnresolved(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired questions: %w", err)
	}
	return questions, nil
}
