package application

import (
	"context"
	"errors"
	"time"

	"predictor/events"
	"predictor/models"
	"predictor/service"

	log "github.com/sirupsen/logrus"
)

// LeaderboardSize is the number of players shown on the leaderboard
const LeaderboardSize = 10

const (
	leaderboardLockKey  = "predictor:leaderboard:refresh"
	leaderboardLockTTL  = 30 * time.Second
	leaderboardLockWait = 10 * time.Second
	lockRetryInterval   = 250 * time.Millisecond
)

// RefreshResult is the outcome of one refresh attempt
type RefreshResult string

const (
	RefreshCreated RefreshResult = "created"
	RefreshUpdated RefreshResult = "updated"
	RefreshSkipped RefreshResult = "skipped"
	RefreshFailed  RefreshResult = "failed"
)

// LeaderboardRefresher rebuilds the ranking and keeps one canonical message current
type LeaderboardRefresher struct {
	uowFactory service.UnitOfWorkFactory
	poster     LeaderboardPoster
	locker     Locker
	emitter    EventEmitter
}

// NewLeaderboardRefresher creates a new leaderboard refresher
func NewLeaderboardRefresher(uowFactory service.UnitOfWorkFactory, poster LeaderboardPoster, locker Locker, emitter EventEmitter) *LeaderboardRefresher {
	return &LeaderboardRefresher{
		uowFactory: uowFactory,
		poster:     poster,
		locker:     locker,
		emitter:    emitter,
	}
}

// Refresh never returns an error; failures are logged and reported as RefreshFailed
func (r *LeaderboardRefresher) Refresh(ctx context.Context) RefreshResult {
	unlock, err := r.acquire(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to acquire leaderboard lock")
		return r.finish(ctx, RefreshFailed, 0)
	}
	defer unlock()

	entries, err := r.Top(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to load leaderboard")
		return r.finish(ctx, RefreshFailed, 0)
	}

	if len(entries) == 0 {
		log.Debug("No players yet, skipping leaderboard update")
		return r.finish(ctx, RefreshSkipped, 0)
	}

	created, err := r.poster.PostLeaderboard(ctx, entries)
	if err != nil {
		log.WithError(err).Error("Failed to post leaderboard")
		return r.finish(ctx, RefreshFailed, len(entries))
	}

	if created {
		return r.finish(ctx, RefreshCreated, len(entries))
	}
	return r.finish(ctx, RefreshUpdated, len(entries))
}

// Top returns the ranked leaderboard entries without posting them
func (r *LeaderboardRefresher) Top(ctx context.Context) ([]models.LeaderboardEntry, error) {
	uow := r.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	userService := service.NewUserService(uow.UserRepository(), uow.EventBus())
	users, err := userService.TopByXP(ctx, LeaderboardSize)
	if err != nil {
		return nil, err
	}
	return models.RankUsers(users), nil
}

// acquire waits a bounded time for the refresh lock so concurrent triggers queue
// instead of racing to create the canonical message
func (r *LeaderboardRefresher) acquire(ctx context.Context) (func(), error) {
	deadline := time.Now().Add(leaderboardLockWait)
	for {
		unlock, err := r.locker.Acquire(ctx, leaderboardLockKey, leaderboardLockTTL)
		if err == nil {
			return unlock, nil
		}
		if !errors.Is(err, ErrLockHeld) || time.Now().After(deadline) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
}

func (r *LeaderboardRefresher) finish(ctx context.Context, result RefreshResult, entries int) RefreshResult {
	log.WithFields(log.Fields{
		"result":  result,
		"entries": entries,
	}).Info("Leaderboard refresh finished")

	r.emitter.Emit(ctx, events.LeaderboardRefreshedEvent{
		Result:  string(result),
		Entries: entries,
	})
	return result
}
