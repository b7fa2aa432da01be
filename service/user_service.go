package service

import (
	"context"
	"fmt"

	"predictor/events"
	"predictor/models"

	log "github.com/sirupsen/logrus"
)

// userService implements the UserService interface
type userService struct {
	userRepo       UserRepository
	eventPublisher EventPublisher
	platform       string
}

// NewUserService creates a new user service for Discord identities
func NewUserService(userRepo UserRepository, eventPublisher EventPublisher) UserService {
	return &userService{
		userRepo:       userRepo,
		eventPublisher: eventPublisher,
		platform:       models.PlatformDiscord,
	}
}

// FindOrCreate registers a player on first sight and keeps the display name current
func (s *userService) FindOrCreate(ctx context.Context, externalID, displayName string) (*models.User, error) {
	if externalID == "" {
		return nil, validationError("external id is required")
	}

	user, err := s.userRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	if user != nil {
		identity := user.Identity(s.platform)
		if displayName != "" && identity != nil && identity.DisplayName != displayName {
			if err := s.userRepo.UpdateDisplayName(ctx, externalID, displayName); err != nil {
				return nil, fmt.Errorf("failed to update display name: %w", err)
			}
			identity.DisplayName = displayName
		}
		return user, nil
	}

	created, err := s.userRepo.Create(ctx, NewUserID(), externalID, displayName)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if created == nil {
		// Another request registered the same identity first
		log.WithField("externalID", externalID).Debug("User registered concurrently, reloading")
		user, err = s.userRepo.GetByExternalID(ctx, externalID)
		if err != nil {
			return nil, fmt.Errorf("failed to reload user: %w", err)
		}
		if user == nil {
			return nil, StoreError("reload user", fmt.Errorf("identity %s vanished after conflict", externalID))
		}
		return user, nil
	}

	s.eventPublisher.Publish(events.UserCreatedEvent{
		UserID:      created.ID,
		Platform:    s.platform,
		ExternalID:  externalID,
		DisplayName: displayName,
	})

	return created, nil
}

// AwardCorrect credits a correct prediction
func (s *userService) AwardCorrect(ctx context.Context, externalID string, xp int64) (*models.User, error) {
	if xp < 0 {
		return nil, validationError("xp award must not be negative, got %d", xp)
	}

	user, err := s.userRepo.AwardCorrect(ctx, externalID, xp)
	if err != nil {
		return nil, fmt.Errorf("failed to award user %s: %w", externalID, err)
	}
	return user, nil
}

// RecordIncorrect counts an incorrect prediction
func (s *userService) RecordIncorrect(ctx context.Context, externalID string) (*models.User, error) {
	user, err := s.userRepo.RecordIncorrect(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to record incorrect prediction for user %s: %w", externalID, err)
	}
	return user, nil
}

// TopByXP returns the leaderboard ordering
func (s *userService) TopByXP(ctx context.Context, limit int) ([]*models.User, error) {
	if limit <= 0 {
		return []*models.User{}, nil
	}

	users, err := s.userRepo.TopByXP(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top users: %w", err)
	}
	return users, nil
}
