package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"predictor/events"
	"predictor/models"
	"predictor/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func expiredQuestion(id, creator string, withRef bool) *models.Question {
	q := &models.Question{
		ID:        id,
		CreatedBy: creator,
		CreatedAt: time.Now().Add(-3 * time.Hour),
		EndTime:   time.Now().Add(-time.Hour),
	}
	if withRef {
		channelID, messageID := "chan", "msg_"+id
		q.ChannelID = &channelID
		q.MessageID = &messageID
	}
	return q
}

func TestExpirySweeper_Sweep(t *testing.T) {
	ctx := context.Background()

	stillHere := expiredQuestion("q_1", "A", true)
	departed := expiredQuestion("q_2", "B", true)
	noMessage := expiredQuestion("q_3", "A", false)
	editFails := expiredQuestion("q_4", "A", true)
	lookupFails := expiredQuestion("q_5", "C", true)

	questionRepo := new(service.MockQuestionRepository)
	factory, _ := newUowFactory(questionRepo, nil, new(service.MockEventPublisher))
	announcer := new(mockAnnouncer)
	members := new(mockMembers)
	emitter := new(mockEmitter)

	questionRepo.On("ListExpiredUnresolved", ctx).
		Return([]*models.Question{stillHere, departed, noMessage, editFails, lookupFails}, nil)
	members.On("IsMember", ctx, "A").Return(true, nil)
	members.On("IsMember", ctx, "B").Return(false, nil)
	members.On("IsMember", ctx, "C").Return(false, errors.New("discord unavailable"))
	announcer.On("AnnounceExpired", ctx, stillHere, true).Return(nil)
	announcer.On("AnnounceExpired", ctx, departed, false).Return(nil)
	announcer.On("AnnounceExpired", ctx, editFails, true).Return(errors.New("unknown message"))
	announcer.On("AnnounceExpired", ctx, lookupFails, false).Return(nil)
	emitter.On("Emit", ctx, events.ExpirySweepCompletedEvent{
		Total:             5,
		WithResolveButton: 1,
		VotingOnly:        2,
		Failed:            2,
	}).Return()

	sweeper := NewExpirySweeper(factory, announcer, members, emitter)
	report := sweeper.Sweep(ctx)

	assert.Equal(t, SweepReport{Total: 5, WithResolveControls: 1, VotingOnly: 2, Failed: 2}, report)
	announcer.AssertExpectations(t)
	emitter.AssertExpectations(t)
	announcer.AssertNotCalled(t, "AnnounceExpired", ctx, noMessage, mock.Anything)
}

func TestExpirySweeper_ListFailure(t *testing.T) {
	ctx := context.Background()

	questionRepo := new(service.MockQuestionRepository)
	factory, _ := newUowFactory(questionRepo, nil, new(service.MockEventPublisher))
	emitter := new(mockEmitter)

	questionRepo.On("ListExpiredUnresolved", ctx).Return(nil, service.ErrStore)
	emitter.On("Emit", ctx, events.ExpirySweepCompletedEvent{}).Return()

	sweeper := NewExpirySweeper(factory, new(mockAnnouncer), new(mockMembers), emitter)

	assert.Equal(t, SweepReport{}, sweeper.Sweep(ctx))
	emitter.AssertExpectations(t)
}

func TestExpirySweeper_SweptQuestionRejectsVotes(t *testing.T) {
	ctx := context.Background()

	question := expiredQuestion("q_1", "A", true)

	questionRepo := new(service.MockQuestionRepository)
	publisher := new(service.MockEventPublisher)
	factory, _ := newUowFactory(questionRepo, nil, publisher)
	announcer := new(mockAnnouncer)
	members := new(mockMembers)
	emitter := new(mockEmitter)

	questionRepo.On("ListExpiredUnresolved", ctx).Return([]*models.Question{question}, nil)
	members.On("IsMember", ctx, "A").Return(true, nil)
	announcer.On("AnnounceExpired", ctx, question, true).Return(nil)
	emitter.On("Emit", ctx, mock.Anything).Return()
	questionRepo.On("CastVote", ctx, "q_1", "B", models.VoteYes).Return(nil, service.ErrExpired)

	report := NewExpirySweeper(factory, announcer, members, emitter).Sweep(ctx)
	assert.Equal(t, 1, report.WithResolveControls)

	questionService := service.NewQuestionService(questionRepo, publisher)
	_, err := questionService.CastVote(ctx, "q_1", "B", models.VoteYes)

	assert.ErrorIs(t, err, service.ErrExpired)
	publisher.AssertNotCalled(t, "Publish", mock.Anything)
}
