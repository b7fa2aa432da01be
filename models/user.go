package models

import (
	"time"
)

// PlatformIdentity links a user to an account on a chat platform
type PlatformIdentity struct {
	Platform    string `db:"platform"`
	ExternalID  string `db:"external_id"`
	DisplayName string `db:"display_name"`
}

// User represents a player with XP and prediction accuracy counters
type User struct {
	ID                 string             `db:"id"`
	Identities         []PlatformIdentity `db:"-"`
	XP                 int64              `db:"xp"`
	TotalPredictions   int64              `db:"total_predictions"`
	CorrectPredictions int64              `db:"correct_predictions"`
	CreatedAt          time.Time          `db:"created_at"`
	UpdatedAt          time.Time          `db:"updated_at"`
}

// Identity returns the identity for a platform, or nil
func (u *User) Identity(platform string) *PlatformIdentity {
	for i := range u.Identities {
		if u.Identities[i].Platform == platform {
			return &u.Identities[i]
		}
	}
	return nil
}

// ExternalID returns the user's id on the given platform, or "" if not linked
func (u *User) ExternalID(platform string) string {
	if id := u.Identity(platform); id != nil {
		return id.ExternalID
	}
	return ""
}

// DisplayName returns the user's display name on the given platform, or "" if not linked
func (u *User) DisplayName(platform string) string {
	if id := u.Identity(platform); id != nil {
		return id.DisplayName
	}
	return ""
}

// Accuracy returns the share of correct predictions in [0, 1]
func (u *User) Accuracy() float64 {
	if u.TotalPredictions == 0 {
		return 0
	}
	return float64(u.CorrectPredictions) / float64(u.TotalPredictions)
}
