package application

import (
	"context"
	"time"

	"predictor/events"
	"predictor/models"
	"predictor/service"

	"github.com/stretchr/testify/mock"
)

type mockPoster struct {
	mock.Mock
}

func (m *mockPoster) PostLeaderboard(ctx context.Context, entries []models.LeaderboardEntry) (bool, error) {
	args := m.Called(ctx, entries)
	return args.Bool(0), args.Error(1)
}

type mockAnnouncer struct {
	mock.Mock
}

func (m *mockAnnouncer) AnnounceExpired(ctx context.Context, question *models.Question, withResolveControls bool) error {
	args := m.Called(ctx, question, withResolveControls)
	return args.Error(0)
}

type mockMembers struct {
	mock.Mock
}

func (m *mockMembers) IsMember(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

type mockLocker struct {
	mock.Mock
}

func (m *mockLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	args := m.Called(ctx, key, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}

type mockEmitter struct {
	mock.Mock
}

func (m *mockEmitter) Emit(ctx context.Context, event events.Event) {
	m.Called(ctx, event)
}

type mockTrigger struct {
	mock.Mock
}

func (m *mockTrigger) Refresh(ctx context.Context) RefreshResult {
	args := m.Called(ctx)
	return args.Get(0).(RefreshResult)
}

// newUowFactory returns a factory whose units of work all share the given repositories
func newUowFactory(questionRepo service.QuestionRepository, userRepo service.UserRepository, publisher service.EventPublisher) (*service.MockUnitOfWorkFactory, *service.MockUnitOfWork) {
	uow := new(service.MockUnitOfWork)
	uow.SetRepositories(questionRepo, userRepo, publisher)
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("Commit").Return(nil)
	uow.On("Rollback").Return(nil)

	factory := new(service.MockUnitOfWorkFactory)
	factory.On("Create").Return(uow)
	return factory, uow
}
