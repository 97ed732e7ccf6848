package repository

import (
	"context"
	"fmt"
	"time"

	"career-coach/internal/domain"

	"github.com/redis/go-redis/v9"
)

// checkAndIncrScript runs atomically on the server: the read, the compare
// and the INCR cannot interleave with another caller.
var checkAndIncrScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
local limit = tonumber(ARGV[1])
if current >= limit then
  return {0, current}
end
current = redis.call('INCR', KEYS[1])
redis.call('EXPIREAT', KEYS[1], ARGV[2])
return {1, current}
`)

// RedisQuotaLedger keeps one counter key per (feature, period, user).
type RedisQuotaLedger struct {
	client redis.Scripter
	keep   time.Duration
}

func NewRedisQuotaLedger(client redis.Scripter) *RedisQuotaLedger {
	return &RedisQuotaLedger{client: client, keep: 31 * 24 * time.Hour}
}

func quotaKey(userID, feature, period string) string {
	return fmt.Sprintf("quota:%s:%s:%s", feature, period, userID)
}

func (l *RedisQuotaLedger) CheckAndIncrement(ctx context.Context, userID, feature, period string, limit int) (domain.QuotaDecision, error) {
	d := domain.QuotaDecision{Feature: feature, Period: period, Limit: limit}
	if limit <= 0 {
		return d, nil
	}

	start, err := time.Parse("2006-01", period)
	if err != nil {
		return d, fmt.Errorf("parse period %q: %w", period, err)
	}
	expireAt := start.AddDate(0, 1, 0).Add(l.keep).Unix()

	res, err := checkAndIncrScript.Run(ctx, l.client, []string{quotaKey(userID, feature, period)}, limit, expireAt).Int64Slice()
	if err != nil {
		return d, fmt.Errorf("quota script: %w", err)
	}
	if len(res) != 2 {
		return d, fmt.Errorf("quota script: unexpected reply %v", res)
	}
	d.Allowed = res[0] == 1
	d.Count = int(res[1])
	return d, nil
}
