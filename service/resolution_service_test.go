package service

import (
	"context"
	"testing"
	"time"

	"predictor/events"
	"predictor/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestResolutionService(repo *MockQuestionRepository, publisher *MockEventPublisher) *resolutionService {
	svc := NewResolutionService(repo, publisher).(*resolutionService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func unresolvedQuestion(endTime time.Time) *models.Question {
	return &models.Question{
		ID:        "q_1",
		Text:      "Will it rain?",
		CreatedBy: "A",
		CreatedAt: fixedNow.Add(-2 * time.Hour),
		EndTime:   endTime,
		YesVoters: []string{"B"},
		NoVoters:  []string{"C", "D"},
	}
}

func TestResolutionService_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("creator resolves an open question", func(t *testing.T) {
		repo := new(MockQuestionRepository)
		publisher := new(MockEventPublisher)
		svc := newTestResolutionService(repo, publisher)

		question := unresolvedQuestion(fixedNow.Add(time.Hour))
		outcome := false
		resolvedBy := "A"
		resolved := *question
		resolved.Resolved = true
		resolved.Outcome = &outcome
		resolved.ResolvedBy = &resolvedBy
		resolved.ResolvedAt = &fixedNow

		repo.On("GetByID", ctx, "q_1").Return(question, nil)
		repo.On("CommitResolution", ctx, "q_1", false, "A", fixedNow).Return(&resolved, nil)
		publisher.On("Publish", events.QuestionResolvedEvent{
			QuestionID: "q_1",
			Outcome:    false,
			ResolvedBy: "A",
			ResolvedAt: fixedNow,
			YesCount:   1,
			NoCount:    2,
		}).Return()

		got, err := svc.Resolve(ctx, "q_1", "A", false)
		require.NoError(t, err)
		assert.True(t, got.Resolved)

		repo.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("creator may resolve after the deadline", func(t *testing.T) {
		repo := new(MockQuestionRepository)
		publisher := new(MockEventPublisher)
		svc := newTestResolutionService(repo, publisher)

		question := unresolvedQuestion(fixedNow.Add(-time.Hour))
		resolved := *question
		resolved.Resolved = true

		repo.On("GetByID", ctx, "q_1").Return(question, nil)
		repo.On("CommitResolution", ctx, "q_1", true, "A", fixedNow).Return(&resolved, nil)
		publisher.On("Publish", mock.AnythingOfType("events.QuestionResolvedEvent")).Return()

		_, err := svc.Resolve(ctx, "q_1", "A", true)
		require.NoError(t, err)
	})

	t.Run("missing question is not found", func(t *testing.T) {
		repo := new(MockQuestionRepository)
		svc := newTestResolutionService(repo, new(MockEventPublisher))

		repo.On("GetByID", ctx, "q_missing").Return(nil, ErrNotFound)

		_, err := svc.Resolve(ctx, "q_missing", "A", true)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("non-creator is unauthorized even when expired", func(t *testing.T) {
		repo := new(MockQuestionRepository)
		svc := newTestResolutionService(repo, new(MockEventPublisher))

		repo.On("GetByID", ctx, "q_1").Return(unresolvedQuestion(fixedNow.Add(-time.Hour)), nil)

		_, err := svc.Resolve(ctx, "q_1", "B", true)
		assert.ErrorIs(t, err, ErrUnauthorized)
		repo.AssertNotCalled(t, "CommitResolution", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unauthorized is reported before already resolved", func(t *testing.T) {
		repo := new(MockQuestionRepository)
		svc := newTestResolutionService(repo, new(MockEventPublisher))

		question := unresolvedQuestion(fixedNow.Add(time.Hour))
		question.Resolved = true
		repo.On("GetByID", ctx, "q_1").Return(question, nil)

		_, err := svc.Resolve(ctx, "q_1", "B", true)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("already resolved fails for either outcome", func(t *testing.T) {
		for _, outcome := range []bool{true, false} {
			repo := new(MockQuestionRepository)
			svc := newTestResolutionService(repo, new(MockEventPublisher))

			question := unresolvedQuestion(fixedNow.Add(time.Hour))
			question.Resolved = true
			repo.On("GetByID", ctx, "q_1").Return(question, nil)

			_, err := svc.Resolve(ctx, "q_1", "A", outcome)
			assert.ErrorIs(t, err, ErrAlreadyResolved)
			repo.AssertNotCalled(t, "CommitResolution", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		}
	})

	t.Run("losing the compare-and-set reports already resolved", func(t *testing.T) {
		repo := new(MockQuestionRepository)
		publisher := new(MockEventPublisher)
		svc := newTestResolutionService(repo, publisher)

		repo.On("GetByID", ctx, "q_1").Return(unresolvedQuestion(fixedNow.Add(time.Hour)), nil)
		repo.On("CommitResolution", ctx, "q_1", true, "A", fixedNow).Return(nil, ErrAlreadyResolved)

		_, err := svc.Resolve(ctx, "q_1", "A", true)
		assert.ErrorIs(t, err, ErrAlreadyResolved)
		publisher.AssertNotCalled(t, "Publish", mock.Anything)
	})
}
