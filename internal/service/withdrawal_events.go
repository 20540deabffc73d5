package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/academy-api/internal/models"
)

// WithdrawalEvent announces a committed withdrawal. It carries no personal data.
type WithdrawalEvent struct {
	AnonymousID string           `json:"anonymous_id"`
	Role        models.Role      `json:"role"`
	WithdrawnAt time.Time        `json:"withdrawn_at"`
	Migrated    map[string]int64 `json:"migrated"`
}

// WithdrawalEventPublisher fans withdrawal events out to other subsystems.
type WithdrawalEventPublisher interface {
	PublishWithdrawn(ctx context.Context, event WithdrawalEvent) error
}

type withdrawalEventPublisher struct {
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	logger       zerolog.Logger
}

// NewWithdrawalEventPublisher publishes on {channelBase}:account.withdrawn over redis
// and {channelBase}.account.withdrawn over NATS. Either transport may be nil.
func NewWithdrawalEventPublisher(redisClient *redis.Client, natsConn *nats.Conn, channelBase string, logger zerolog.Logger) WithdrawalEventPublisher {
	channel := ""
	subject := ""
	if channelBase != "" {
		channel = channelBase + ":account.withdrawn"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".account.withdrawn"
	}

	return &withdrawalEventPublisher{
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
		logger:       logger.With().Str("component", "withdrawal_events").Logger(),
	}
}

func (p *withdrawalEventPublisher) PublishWithdrawn(ctx context.Context, event WithdrawalEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if p.redis != nil && p.redisChannel != "" {
		if err := p.redis.Publish(ctx, p.redisChannel, payload).Err(); err != nil {
			return err
		}
	}

	if p.nats != nil && p.natsSubject != "" {
		if err := p.nats.Publish(p.natsSubject, payload); err != nil {
			return err
		}
	}

	p.logger.Debug().Str("anonymous_id", event.AnonymousID).Msg("withdrawal event published")
	return nil
}
