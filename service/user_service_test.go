package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"predictor/events"
	"predictor/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func discordUser(id, externalID, displayName string) *models.User {
	return &models.User{
		ID: id,
		Identities: []models.PlatformIdentity{
			{Platform: models.PlatformDiscord, ExternalID: externalID, DisplayName: displayName},
		},
	}
}

func TestUserService_FindOrCreate_ExistingUser(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	publisher := new(MockEventPublisher)
	svc := NewUserService(userRepo, publisher)

	existing := discordUser("u_1", "123", "alice")
	userRepo.On("GetByExternalID", ctx, "123").Return(existing, nil)

	user, err := svc.FindOrCreate(ctx, "123", "alice")
	require.NoError(t, err)
	assert.Equal(t, existing, user)

	userRepo.AssertNotCalled(t, "UpdateDisplayName", mock.Anything, mock.Anything, mock.Anything)
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	publisher.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestUserService_FindOrCreate_UpdatesChangedDisplayName(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	svc := NewUserService(userRepo, new(MockEventPublisher))

	userRepo.On("GetByExternalID", ctx, "123").Return(discordUser("u_1", "123", "alice"), nil)
	userRepo.On("UpdateDisplayName", ctx, "123", "Alice W").Return(nil)

	user, err := svc.FindOrCreate(ctx, "123", "Alice W")
	require.NoError(t, err)
	assert.Equal(t, "Alice W", user.DisplayName(models.PlatformDiscord))
	userRepo.AssertExpectations(t)
}

func TestUserService_FindOrCreate_NewUser(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	publisher := new(MockEventPublisher)
	svc := NewUserService(userRepo, publisher)

	created := discordUser("u_new", "123", "alice")
	userRepo.On("GetByExternalID", ctx, "123").Return(nil, nil)
	userRepo.On("Create", ctx, mock.MatchedBy(func(id string) bool {
		return strings.HasPrefix(id, "u_")
	}), "123", "alice").Return(created, nil)
	publisher.On("Publish", events.UserCreatedEvent{
		UserID:      "u_new",
		Platform:    models.PlatformDiscord,
		ExternalID:  "123",
		DisplayName: "alice",
	}).Return()

	user, err := svc.FindOrCreate(ctx, "123", "alice")
	require.NoError(t, err)
	assert.Equal(t, created, user)
	assert.Equal(t, int64(0), user.XP)

	userRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestUserService_FindOrCreate_ConcurrentRegistration(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	publisher := new(MockEventPublisher)
	svc := NewUserService(userRepo, publisher)

	winner := discordUser("u_winner", "123", "alice")
	userRepo.On("GetByExternalID", ctx, "123").Return(nil, nil).Once()
	userRepo.On("Create", ctx, mock.Anything, "123", "alice").Return(nil, nil)
	userRepo.On("GetByExternalID", ctx, "123").Return(winner, nil).Once()

	user, err := svc.FindOrCreate(ctx, "123", "alice")
	require.NoError(t, err)
	assert.Equal(t, "u_winner", user.ID)
	publisher.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestUserService_FindOrCreate_CreateError(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	svc := NewUserService(userRepo, new(MockEventPublisher))

	userRepo.On("GetByExternalID", ctx, "123").Return(nil, nil)
	userRepo.On("Create", ctx, mock.Anything, "123", "alice").Return(nil, StoreError("insert user", errors.New("boom")))

	_, err := svc.FindOrCreate(ctx, "123", "alice")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStore)
	assert.Contains(t, err.Error(), "failed to create user")
}

func TestUserService_AwardCorrect(t *testing.T) {
	ctx := context.Background()

	t.Run("delegates to the atomic increment", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := NewUserService(userRepo, new(MockEventPublisher))

		awarded := &models.User{ID: "u_1", XP: 10, CorrectPredictions: 1, TotalPredictions: 1}
		userRepo.On("AwardCorrect", ctx, "123", int64(10)).Return(awarded, nil)

		user, err := svc.AwardCorrect(ctx, "123", 10)
		require.NoError(t, err)
		assert.Equal(t, awarded, user)
	})

	t.Run("unregistered user is not found", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := NewUserService(userRepo, new(MockEventPublisher))

		userRepo.On("AwardCorrect", ctx, "999", int64(10)).Return(nil, ErrNotFound)

		_, err := svc.AwardCorrect(ctx, "999", 10)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("negative award is rejected", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := NewUserService(userRepo, new(MockEventPublisher))

		_, err := svc.AwardCorrect(ctx, "123", -5)
		assert.ErrorIs(t, err, ErrValidation)
		userRepo.AssertNotCalled(t, "AwardCorrect", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestUserService_TopByXP(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	svc := NewUserService(userRepo, new(MockEventPublisher))

	top := []*models.User{{ID: "u_1", XP: 30}, {ID: "u_2", XP: 20}}
	userRepo.On("TopByXP", ctx, 10).Return(top, nil)

	users, err := svc.TopByXP(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, top, users)

	users, err = svc.TopByXP(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, users)
	userRepo.AssertNumberOfCalls(t, "TopByXP", 1)
}
