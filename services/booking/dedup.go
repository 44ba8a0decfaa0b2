package booking

import (
	"context"
	"time"

	"tablecall/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const dedupTTL = 24 * time.Hour

// DeliveryLedger records which end-of-call reports have been handled so a
// platform redelivery does not re-run side effects. A claim taken for a
// delivery that then fails to process must be released, otherwise the
// platform's retry is dropped.
type DeliveryLedger interface {
	Claim(ctx context.Context, callID string) bool
	Release(ctx context.Context, callID string)
}

// RedisLedger implements DeliveryLedger on a shared Redis instance.
type RedisLedger struct {
	Client *redis.Client
}

// NewRedisLedger wraps a Redis client as a DeliveryLedger.
func NewRedisLedger(client *redis.Client) *RedisLedger {
	return &RedisLedger{Client: client}
}

func dedupKey(callID string) string {
	return "event:ended:" + callID
}

// Claim takes the delivery claim for callID. A Redis failure claims anyway;
// the transition guard still keeps replays harmless.
func (l *RedisLedger) Claim(ctx context.Context, callID string) bool {
	ok, err := l.Client.SetNX(ctx, dedupKey(callID), 1, dedupTTL).Result()
	if err != nil {
		utils.GetLogger().Warn("Webhook dedup check failed, proceeding", zap.Error(err))
		return true
	}
	return ok
}

// Release gives the claim back after a failed processing attempt.
func (l *RedisLedger) Release(ctx context.Context, callID string) {
	if err := l.Client.Del(ctx, dedupKey(callID)).Err(); err != nil {
		utils.GetLogger().Warn("Failed to release webhook dedup claim",
			zap.String("callId", callID),
			zap.Error(err))
	}
}
