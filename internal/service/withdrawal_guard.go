package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const defaultWithdrawalLockTTL = 2 * time.Minute

// WithdrawalGuard serialises withdrawals of the same user across API replicas.
type WithdrawalGuard interface {
	Acquire(ctx context.Context, userID uint) (release func(), err error)
}

var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisWithdrawalGuard struct {
	redis  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewWithdrawalGuard returns a redis backed guard, or nil when redis is not configured.
func NewWithdrawalGuard(client *redis.Client, ttl time.Duration, logger zerolog.Logger) WithdrawalGuard {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultWithdrawalLockTTL
	}
	return &redisWithdrawalGuard{
		redis:  client,
		ttl:    ttl,
		logger: logger.With().Str("component", "withdrawal_guard").Logger(),
	}
}

func withdrawalLockKey(userID uint) string {
	return fmt.Sprintf("withdrawal:lock:%d", userID)
}

// Acquire fails open when redis is unreachable; the database constraints still hold.
func (g *redisWithdrawalGuard) Acquire(ctx context.Context, userID uint) (func(), error) {
	key := withdrawalLockKey(userID)
	token := uuid.NewString()

	acquired, err := g.redis.SetNX(ctx, key, token, g.ttl).Result()
	if err != nil {
		g.logger.Warn().Err(err).Uint("user_id", userID).Msg("withdrawal lock unavailable, continuing without it")
		return func() {}, nil
	}
	if !acquired {
		return nil, errWithdrawalInProgress()
	}

	release := func() {
		releaseCtx := context.WithoutCancel(ctx)
		if err := releaseLockScript.Run(releaseCtx, g.redis, []string{key}, token).Err(); err != nil {
			g.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to release withdrawal lock")
		}
	}
	return release, nil
}
