package application

import (
	"context"
	"errors"
	"time"

	"predictor/events"
	"predictor/models"
)

// ErrLockHeld is returned by a Locker when another holder owns the key
var ErrLockHeld = errors.New("lock held")

// LeaderboardPoster publishes the ranking to the leaderboard channel without the
// application layer depending on the Discord API
type LeaderboardPoster interface {
	// PostLeaderboard edits the canonical leaderboard message, or sends a new one when
	// none is found. created reports which of the two happened.
	PostLeaderboard(ctx context.Context, entries []models.LeaderboardEntry) (created bool, err error)
}

// ExpiredAnnouncer re-renders the announcement of a question whose deadline passed
type ExpiredAnnouncer interface {
	// AnnounceExpired disables voting and, when withResolveControls is set, attaches
	// the creator's resolve buttons
	AnnounceExpired(ctx context.Context, question *models.Question, withResolveControls bool) error
}

// MemberChecker reports whether a user can still be reached in the guild
type MemberChecker interface {
	IsMember(ctx context.Context, userID string) (bool, error)
}

// Locker serialises work across processes
type Locker interface {
	// Acquire returns ErrLockHeld when the key is owned by someone else. The returned
	// unlock function is safe to call more than once.
	Acquire(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}

// EventEmitter receives events that are not tied to a unit of work
type EventEmitter interface {
	Emit(ctx context.Context, event events.Event)
}

// LeaderboardTrigger is what resolution needs from the leaderboard
type LeaderboardTrigger interface {
	Refresh(ctx context.Context) RefreshResult
}
