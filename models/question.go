package models

import (
	"slices"
	"time"
)

// PlatformDiscord is the only platform questions and identities are tagged with today
const PlatformDiscord = "discord"

// QuestionState is derived from the resolved flag and the deadline, never stored
type QuestionState string

const (
	QuestionStateOpen     QuestionState = "open"
	QuestionStateExpired  QuestionState = "expired"
	QuestionStateResolved QuestionState = "resolved"
)

// Question represents a yes/no prediction with a voting deadline
type Question struct {
	ID        string    `db:"id"`
	Text      string    `db:"text"`
	CreatedBy string    `db:"created_by"` // External user id of the author
	Platform  string    `db:"platform"`
	CreatedAt time.Time `db:"created_at"`
	EndTime   time.Time `db:"end_time"`

	// Announcement reference, attached once after the message is posted
	ChannelID *string `db:"channel_id"`
	MessageID *string `db:"message_id"`

	YesVoters []string `db:"yes_voters"`
	NoVoters  []string `db:"no_voters"`

	Resolved   bool       `db:"resolved"`
	Outcome    *bool      `db:"outcome"`
	ResolvedBy *string    `db:"resolved_by"`
	ResolvedAt *time.Time `db:"resolved_at"`
}

// State returns the lifecycle state of the question at the given time
func (q *Question) State(now time.Time) QuestionState {
	if q.Resolved {
		return QuestionStateResolved
	}
	if now.Before(q.EndTime) {
		return QuestionStateOpen
	}
	return QuestionStateExpired
}

// IsOpen reports whether votes are accepted at the given time
func (q *Question) IsOpen(now time.Time) bool {
	return q.State(now) == QuestionStateOpen
}

// HasMessageRef reports whether the announcement reference has been attached
func (q *Question) HasMessageRef() bool {
	return q.ChannelID != nil && q.MessageID != nil && *q.ChannelID != "" && *q.MessageID != ""
}

// VoteCounts returns the current tally
func (q *Question) VoteCounts() VoteCount {
	return VoteCount{
		Yes: len(q.YesVoters),
		No:  len(q.NoVoters),
	}
}

// ChoiceOf returns the user's current vote, if any
func (q *Question) ChoiceOf(userID string) (VoteChoice, bool) {
	if slices.Contains(q.YesVoters, userID) {
		return VoteYes, true
	}
	if slices.Contains(q.NoVoters, userID) {
		return VoteNo, true
	}
	return "", false
}

// PartitionVoters splits all voters into those who picked the outcome and those who did not
func (q *Question) PartitionVoters(outcome bool) (correct, incorrect []string) {
	if outcome {
		return slices.Clone(q.YesVoters), slices.Clone(q.NoVoters)
	}
	return slices.Clone(q.NoVoters), slices.Clone(q.YesVoters)
}
