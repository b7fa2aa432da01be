package testutil

import (
	"time"

	"predictor/models"

	"github.com/google/uuid"
)

// CreateTestQuestion returns an open question by creatorID ending after d
func CreateTestQuestion(creatorID string, d time.Duration) *models.Question {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Question{
		ID:        "q_" + uuid.NewString(),
		Text:      "Will it rain?",
		CreatedBy: creatorID,
		Platform:  models.PlatformDiscord,
		CreatedAt: now,
		EndTime:   now.Add(d),
		YesVoters: []string{},
		NoVoters:  []string{},
	}
}

// CreateExpiredTestQuestion returns an unresolved question whose deadline passed ago
func CreateExpiredTestQuestion(creatorID string, ago time.Duration) *models.Question {
	q := CreateTestQuestion(creatorID, time.Hour)
	q.CreatedAt = q.CreatedAt.Add(-ago - time.Hour)
	q.EndTime = q.CreatedAt.Add(time.Hour)
	return q
}

// NewTestUserID returns a fresh internal user id
func NewTestUserID() string {
	return "u_" + uuid.NewString()
}
