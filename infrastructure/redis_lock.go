package infrastructure

import (
	"context"
	"fmt"
	"sync"
	"time"

	"predictor/application"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// unlockScript deletes the key only while it still holds the caller's token
const unlockScript = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}

	log.WithField("addr", addr).Info("Connected to Redis")
	return rdb, nil
}

// RedisLocker implements application.Locker with SET NX and a token-checked release
type RedisLocker struct {
	rdb    redis.UniversalClient
	unlock *redis.Script
}

// NewRedisLocker creates a locker on top of an existing client
func NewRedisLocker(rdb redis.UniversalClient) *RedisLocker {
	return &RedisLocker{
		rdb:    rdb,
		unlock: redis.NewScript(unlockScript),
	}
}

// Acquire returns application.ErrLockHeld when another holder owns the key
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := uuid.New().String()
	lockKey := "lock:" + key

	ok, err := l.rdb.SetNX(ctx, lockKey, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, application.ErrLockHeld
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			// The caller's context may already be cancelled
			releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := l.unlock.Run(releaseCtx, l.rdb, []string{lockKey}, token).Err(); err != nil {
				log.WithFields(log.Fields{
					"key":   key,
					"error": err,
				}).Warn("Failed to release lock, it will expire")
			}
		})
	}
	return release, nil
}

// LocalLocker implements application.Locker for a single process
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]time.Time
	now  func() time.Time
}

// NewLocalLocker creates an in-process locker
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{
		held: make(map[string]time.Time),
		now:  time.Now,
	}
}

// Acquire returns application.ErrLockHeld while an unexpired holder owns the key
func (l *LocalLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if expiresAt, ok := l.held[key]; ok && now.Before(expiresAt) {
		return nil, application.ErrLockHeld
	}
	expiresAt := now.Add(ttl)
	l.held[key] = expiresAt

	var once sync.Once
	release := func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			// A holder whose ttl ran out must not release its successor
			if l.held[key] == expiresAt {
				delete(l.held, key)
			}
		})
	}
	return release, nil
}

var (
	_ application.Locker = (*RedisLocker)(nil)
	_ application.Locker = (*LocalLocker)(nil)
)
