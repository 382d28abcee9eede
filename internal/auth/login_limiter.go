package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const loginAttemptKeyPrefix = "auth:login_attempts:"

// LoginLimiter throttles failed login attempts per username using a
// fixed-window Redis counter. Without a reachable Redis it fails open,
// matching how the rest of the service treats Redis as soft-required.
type LoginLimiter struct {
	client      *redis.Client
	logger      *zap.Logger
	maxAttempts int
	window      time.Duration
}

// NewLoginLimiter builds a limiter; client may be nil to disable.
func NewLoginLimiter(client *redis.Client, logger *zap.Logger, maxAttempts int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{
		client:      client,
		logger:      logger,
		maxAttempts: maxAttempts,
		window:      window,
	}
}

// Check returns ErrTooManyAttempts when the username has exhausted its
// failed-attempt budget inside the current window.
func (l *LoginLimiter) Check(ctx context.Context, username string) error {
	if l == nil || l.client == nil || l.maxAttempts <= 0 {
		return nil
	}
	count, err := l.client.Get(ctx, loginAttemptKeyPrefix+username).Int64()
	if err != nil {
		if err != redis.Nil {
			l.logger.Warn("login limiter unavailable", zap.Error(err))
		}
		return nil
	}
	if count >= int64(l.maxAttempts) {
		return ErrTooManyAttempts
	}
	return nil
}

// RecordFailure counts a failed attempt, starting the window on the first.
func (l *LoginLimiter) RecordFailure(ctx context.Context, username string) {
	if l == nil || l.client == nil || l.maxAttempts <= 0 {
		return
	}
	key := loginAttemptKeyPrefix + username
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		l.logger.Warn("login limiter unavailable", zap.Error(err))
		return
	}
	if count == 1 {
		l.client.Expire(ctx, key, l.window)
	}
}

// Reset clears the counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, username string) {
	if l == nil || l.client == nil {
		return
	}
	if err := l.client.Del(ctx, loginAttemptKeyPrefix+username).Err(); err != nil {
		l.logger.Warn("login limiter unavailable", zap.Error(err))
	}
}
